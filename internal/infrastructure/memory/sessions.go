package memory

import (
	"context"
	"sync"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

// SessionStore keeps conversation state in process memory. State is lost on
// restart, which matches the source system; users simply /start again.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]domain.Session)}
}

func (s *SessionStore) Get(ctx context.Context, chatID int64) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) Put(ctx context.Context, chatID int64, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[chatID] = sess
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}
