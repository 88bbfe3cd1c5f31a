package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"
)

// Flash is a one-shot message queued for the next rendered page.
type Flash struct {
	Kind    string `json:"kind"` // "error" or "success"
	Message string `json:"message"`
}

// SessionStore wraps Redis for session and flash-message management.
// Anonymous visitors get a session too (user id ""), so flashes work
// before login.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Create stores a new session mapping sessionID -> userID.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.New().String()
	err := s.rdb.Set(ctx, "session:"+sid, userID, SessionTTL).Err()
	return sid, err
}

// Get returns the userID for a session, or "" if anonymous / not found.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	val, err := s.rdb.Get(ctx, "session:"+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Delete removes a session and any queued flashes.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, "session:"+sessionID, "flash:"+sessionID).Err()
}

// AddFlash queues a flash message on the session.
func (s *SessionStore) AddFlash(ctx context.Context, sessionID string, f Flash) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	key := "flash:" + sessionID
	if err := s.rdb.RPush(ctx, key, b).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, SessionTTL).Err()
}

// PopFlashes drains and returns all queued flashes for the session.
func (s *SessionStore) PopFlashes(ctx context.Context, sessionID string) ([]Flash, error) {
	key := "flash:" + sessionID
	vals, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return nil, err
	}
	out := make([]Flash, 0, len(vals))
	for _, v := range vals {
		var f Flash
		if err := json.Unmarshal([]byte(v), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
