package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wildtrail/internal/adapters/observability"
	"wildtrail/internal/domain"
)

const sessionPrefix = "session:"

// SessionStore keeps browse session snapshots as JSON with a sliding TTL.
type SessionStore struct{ c *redis.Client }

func NewSessionStore(c *redis.Client) *SessionStore { return &SessionStore{c: c} }

func sessionKey(id string) string { return sessionPrefix + id }

func (s *SessionStore) Load(ctx context.Context, id string) (domain.SessionState, error) {
	b, err := s.c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("session", "miss")
		return domain.SessionState{}, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("load session %s: %w", id, err)
	}
	var st domain.SessionState
	if err := json.Unmarshal(b, &st); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	observability.ObserveCache("session", "hit")
	return st, nil
}

func (s *SessionStore) Save(ctx context.Context, st domain.SessionState, ttl time.Duration) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", st.ID, err)
	}
	observability.ObserveCache("session", "set")
	return s.c.Set(ctx, sessionKey(st.ID), b, ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	observability.ObserveCache("session", "del")
	return s.c.Del(ctx, sessionKey(id)).Err()
}

// releaseLock deletes the lock only while it still carries our token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

func lockKey(id string) string { return sessionKey(id) + ":lock" }

// Lock claims the session with SET NX. The lock expires on its own after ttl
// if the holder never releases it.
func (s *SessionStore) Lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := s.c.SetNX(ctx, lockKey(id), token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionBusy, id)
	}
	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseLock.Run(rctx, s.c, []string{lockKey(id)}, token).Err(); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("release session lock failed")
		}
	}, nil
}
