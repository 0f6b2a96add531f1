package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"warden/internal/identity/models"
	id "warden/pkg/domain"
	"warden/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "session:"
	sessionSeqKey    = "session_seq"

	// defaultSessionTTL applies to sessions created without an expiry.
	defaultSessionTTL = 30 * 24 * time.Hour
	// expiredSessionTTL lets an already-expired session lapse quickly.
	expiredSessionTTL = time.Second
)

type sessionJSON struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Data      map[string]any `json:"data,omitempty"`
	ExpiresAt *int64         `json:"expires_at,omitempty"` // Unix nano
	CreatedAt int64          `json:"created_at"`           // Unix nano
	UpdatedAt int64          `json:"updated_at"`           // Unix nano
}

func sessionToJSON(s *models.Session) *sessionJSON {
	j := &sessionJSON{
		ID:        s.ID,
		UserID:    int64(s.UserID),
		Data:      s.Data,
		CreatedAt: s.CreatedAt.UnixNano(),
		UpdatedAt: s.UpdatedAt.UnixNano(),
	}
	if s.ExpiresAt != nil {
		ts := s.ExpiresAt.UnixNano()
		j.ExpiresAt = &ts
	}
	return j
}

func sessionFromJSON(digest []byte, j *sessionJSON) *models.Session {
	s := &models.Session{
		ID:          j.ID,
		TokenDigest: digest,
		UserID:      id.UserID(j.UserID),
		Data:        j.Data,
		CreatedAt:   time.Unix(0, j.CreatedAt),
		UpdatedAt:   time.Unix(0, j.UpdatedAt),
	}
	if j.ExpiresAt != nil {
		t := time.Unix(0, *j.ExpiresAt)
		s.ExpiresAt = &t
	}
	return s
}

// RedisStore persists sessions in Redis so several instances share them.
// Keys carry the hex token digest, never the token.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(digest []byte) string {
	return sessionKeyPrefix + hex.EncodeToString(digest)
}

func ttlFor(s *models.Session) time.Duration {
	if s.ExpiresAt == nil {
		return defaultSessionTTL
	}
	if remaining := time.Until(*s.ExpiresAt); remaining > 0 {
		return remaining
	}
	return expiredSessionTTL
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	seq, err := s.client.Incr(ctx, sessionSeqKey).Result()
	if err != nil {
		return nil, fmt.Errorf("allocate session id: %w", err)
	}
	now := time.Now()
	stored := session.Clone()
	stored.ID = seq
	stored.CreatedAt = now
	stored.UpdatedAt = now

	data, err := json.Marshal(sessionToJSON(stored))
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	created, err := s.client.SetNX(ctx, sessionKey(stored.TokenDigest), data, ttlFor(stored)).Result()
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("session token: %w", sentinel.ErrAlreadyUsed)
	}
	return stored, nil
}

func (s *RedisStore) FindByTokenDigest(ctx context.Context, digest []byte) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(digest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	var j sessionJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return sessionFromJSON(digest, &j), nil
}

// Update overwrites payload and expiry, keeping id, owner and creation time.
// A session without an expiry keeps its current TTL.
func (s *RedisStore) Update(ctx context.Context, session *models.Session) (*models.Session, error) {
	existing, err := s.FindByTokenDigest(ctx, session.TokenDigest)
	if err != nil {
		return nil, err
	}
	updated := session.Clone()
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	data, err := json.Marshal(sessionToJSON(updated))
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	var ttl time.Duration = redis.KeepTTL
	if updated.ExpiresAt != nil {
		ttl = ttlFor(updated)
	}
	ok, err := s.client.SetXX(ctx, sessionKey(updated.TokenDigest), data, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
	}
	return updated, nil
}

func (s *RedisStore) DeleteByTokenDigest(ctx context.Context, digest []byte) error {
	n, err := s.client.Del(ctx, sessionKey(digest)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete session: %w", sentinel.ErrNothingAffected)
	}
	return nil
}
