package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/asfmarkets/intake-bot/internal/domain"
)

const sessionKeyPrefix = "intake:session:"

// SessionStore keeps conversation state in Redis as JSON with a sliding TTL,
// so an abandoned intake expires on its own and a restart of the bot process
// does not strand users mid-conversation across instances.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(addr, pass string, db int, ttl time.Duration) *SessionStore {
	rdb := goredis.NewClient(&goredis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// NewSessionStoreWithClient wires an existing client, for tests.
func NewSessionStoreWithClient(rdb *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

func sessionKey(chatID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(chatID, 10)
}

func (s *SessionStore) Get(ctx context.Context, chatID int64) (domain.Session, error) {
	val, err := s.rdb.Get(ctx, sessionKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("session get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		// A corrupt value is unrecoverable; treat as absent so the
		// conversation can restart cleanly.
		_ = s.rdb.Del(ctx, sessionKey(chatID)).Err()
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *SessionStore) Put(ctx context.Context, chatID int64, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(chatID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.rdb.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
