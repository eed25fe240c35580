package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

// Ledger persists registrations in the `registrations` table:
//
//	id bigserial primary key,
//	created_at timestamptz not null,
//	chat_id bigint not null,
//	name text not null,
//	email text not null,
//	password text not null,
//	status text not null,
//	notes text not null default ''
//
// There is intentionally NO unique index on email: the duplicate check and
// the insert are separate, non-atomic steps, and concurrent submissions of
// the same email can race past the check exactly as in the source system.
type Ledger struct {
	db    *sql.DB
	clock func() time.Time
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db, clock: time.Now}
}

// WithClock overrides the timestamp source, for tests.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (l *Ledger) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM registrations WHERE lower(email) = $1
);
`
	var exists bool
	if err := l.db.QueryRowContext(ctx, q, normalizeEmail(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("ledger email exists: %w", err)
	}
	return exists, nil
}

func (l *Ledger) InsertPending(ctx context.Context, reg domain.Registration) error {
	const q = `
INSERT INTO registrations (created_at, chat_id, name, email, password, status, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	createdAt := reg.CreatedAt
	if createdAt.IsZero() {
		createdAt = l.clock().UTC()
	}
	status := reg.Status
	if status == "" {
		status = domain.StatusPending
	}
	_, err := l.db.ExecContext(ctx, q,
		createdAt, reg.ChatID, reg.Name, reg.Email, reg.Password, string(status), reg.Notes)
	if err != nil {
		return fmt.Errorf("ledger insert pending: %w", err)
	}
	return nil
}

// UpdateStatus rewrites the status of the newest row matching (chatID, email)
// and appends note to the " | "-joined history. Older rows for the same pair
// keep their history; only the latest attempt is advanced.
func (l *Ledger) UpdateStatus(ctx context.Context, chatID int64, email string, status domain.Status, note string) error {
	const q = `
UPDATE registrations
SET status = $1,
    notes = CASE
        WHEN $2 = '' THEN notes
        WHEN notes = '' THEN $2
        ELSE notes || ' | ' || $2
    END
WHERE id = (
	SELECT id FROM registrations
	WHERE chat_id = $3 AND lower(email) = $4
	ORDER BY created_at DESC, id DESC
	LIMIT 1
);
`
	res, err := l.db.ExecContext(ctx, q, string(status), note, chatID, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("ledger update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger update status: %w", err)
	}
	if n == 0 {
		return domain.ErrRegistrationNotFound
	}
	return nil
}

func (l *Ledger) List(ctx context.Context) ([]domain.Registration, error) {
	const q = `
SELECT id, created_at, chat_id, name, email, password, status, notes
FROM registrations
ORDER BY created_at ASC, id ASC;
`
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	defer rows.Close()

	var regs []domain.Registration
	for rows.Next() {
		var r domain.Registration
		var status string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.ChatID, &r.Name, &r.Email, &r.Password, &status, &r.Notes); err != nil {
			return nil, fmt.Errorf("ledger list scan: %w", err)
		}
		r.Status = domain.Status(status)
		regs = append(regs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger list rows: %w", err)
	}
	return regs, nil
}
