package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

// sessionKey holds the single active import session. The dashboard has one
// administrator, so a new session simply overwrites the previous one.
const sessionKey = "imports:session:current"

// SessionRepository keeps the transient import session in Redis with a TTL so
// abandoned reviews expire on their own.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRepository{client: client, ttl: ttl}
}

// Get returns the current session, or ErrCacheMiss when the flow is idle.
func (r *SessionRepository) Get(ctx context.Context) (*models.ImportSession, error) {
	raw, err := r.client.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get import session: %w", err)
	}

	var session models.ImportSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal import session: %w", err)
	}
	return &session, nil
}

// Save stores the session, resetting its TTL.
func (r *SessionRepository) Save(ctx context.Context, session *models.ImportSession) error {
	session.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal import session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set import session: %w", err)
	}
	return nil
}

// Delete discards the session (cancel, or cleanup after finalize).
func (r *SessionRepository) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("redis delete import session: %w", err)
	}
	return nil
}
