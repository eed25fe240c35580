package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

// Ledger is an in-memory domain.Ledger used in tests and redis-less local
// runs. It mirrors the postgres implementation's matching rules, including
// the non-atomic exists/insert pair.
type Ledger struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.Registration
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1}
}

func (l *Ledger) EmailExists(ctx context.Context, email string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, r := range l.rows {
		if strings.ToLower(r.Email) == needle {
			return true, nil
		}
	}
	return false, nil
}

func (l *Ledger) InsertPending(ctx context.Context, reg domain.Registration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg.ID = l.nextID
	l.nextID++
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	if reg.Status == "" {
		reg.Status = domain.StatusPending
	}
	l.rows = append(l.rows, reg)
	return nil
}

func (l *Ledger) UpdateStatus(ctx context.Context, chatID int64, email string, status domain.Status, note string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(email))
	for i := len(l.rows) - 1; i >= 0; i-- {
		r := &l.rows[i]
		if r.ChatID != chatID || strings.ToLower(r.Email) != needle {
			continue
		}
		r.Status = status
		if note != "" {
			if r.Notes == "" {
				r.Notes = note
			} else {
				r.Notes = r.Notes + " | " + note
			}
		}
		return nil
	}
	return domain.ErrRegistrationNotFound
}

func (l *Ledger) List(ctx context.Context) ([]domain.Registration, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Registration, len(l.rows))
	copy(out, l.rows)
	return out, nil
}
