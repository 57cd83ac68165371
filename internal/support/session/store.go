// internal/support/session/store.go

// Package session persists per-session conversation context and query
// counters in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "support-chat/internal/common/errors"
	"support-chat/internal/common/logger"
	"support-chat/internal/models"
)

const (
	contextKeyPrefix = "session:ctx:"
	countKeyPrefix   = "session:count:"
)

// Store holds conversation context and query counters with a shared TTL.
// Both keys refresh on every touch so an active session never expires
// mid-conversation.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

// GetContext loads the session context, returning a fresh one when the
// session is new or expired. A corrupt payload is treated as missing
// rather than failing the turn.
func (s *Store) GetContext(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	raw, err := s.redis.Get(ctx, contextKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return models.NewSessionContext(), nil
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError("get_context", err)
	}

	var sc models.SessionContext
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		s.logger.Warn("discarding corrupt session context", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return models.NewSessionContext(), nil
	}
	return &sc, nil
}

// PutContext stores the session context and refreshes its TTL.
func (s *Store) PutContext(ctx context.Context, sessionID string, sc *models.SessionContext) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, contextKeyPrefix+sessionID, payload, s.ttl).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError("put_context", err)
	}
	return nil
}

// DeleteSession removes all session state. Used by the privacy cleanup
// endpoint.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, contextKeyPrefix+sessionID, countKeyPrefix+sessionID).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError("delete_session", err)
	}
	return nil
}

// QueryCount returns how many turns this session has consumed.
func (s *Store) QueryCount(ctx context.Context, sessionID string) (int, error) {
	count, err := s.redis.Get(ctx, countKeyPrefix+sessionID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewSessionStoreFailedError("query_count", err)
	}
	return count, nil
}

// IncrQueryCount bumps the session's turn counter and refreshes its TTL,
// returning the new count.
func (s *Store) IncrQueryCount(ctx context.Context, sessionID string) (int, error) {
	key := countKeyPrefix + sessionID

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, apperrors.NewSessionStoreFailedError("incr_query_count", err)
	}
	if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
		return 0, apperrors.NewSessionStoreFailedError("incr_query_count", err)
	}
	return int(count), nil
}
