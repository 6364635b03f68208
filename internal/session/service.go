package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "orbitarium-server/internal/shared/errors"

	"orbitarium-server/internal/universe"
)

const sessionTTL = 24 * time.Hour

// Service stores viewer sessions in Redis, falling back to an in-process
// map when Redis is disabled. Both stores honor the same TTL.
type Service struct {
	redis  *redis.Client
	logger *slog.Logger

	mu    sync.RWMutex
	local map[string]localEntry
}

type localEntry struct {
	sess      Session
	expiresAt time.Time
}

func NewService(redisClient *redis.Client) *Service {
	s := &Service{
		redis:  redisClient,
		logger: slog.With("component", "session_service"),
	}
	if redisClient == nil {
		s.local = make(map[string]localEntry)
		s.logger.Info("Redis unavailable, storing sessions in memory")
		go s.startLocalCleanup()
	}
	return s
}

// Create opens a new session focused on the given body with a zero offset.
func (s *Service) Create(ctx context.Context, focus universe.ID) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, apperrors.WrapInternal("failed to generate session id", err)
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:          id,
		FocusedBody: focus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session, or a not-found error if it expired.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if s.redis == nil {
		s.mu.Lock()
		entry, ok := s.local[id]
		if ok && time.Now().After(entry.expiresAt) {
			delete(s.local, id)
			ok = false
		}
		s.mu.Unlock()
		if !ok {
			return nil, apperrors.NotFoundf("session %s not found", id)
		}
		copied := entry.sess
		return &copied, nil
	}

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFoundf("session %s not found", id)
	}
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load session", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, apperrors.WrapInternal("failed to decode session", err)
	}
	return &sess, nil
}

// Save writes the session back and refreshes its TTL.
func (s *Service) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()

	if s.redis == nil {
		s.mu.Lock()
		s.local[sess.ID] = localEntry{
			sess:      *sess,
			expiresAt: time.Now().Add(sessionTTL),
		}
		s.mu.Unlock()
		return nil
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return apperrors.WrapInternal("failed to encode session", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, sessionTTL).Err(); err != nil {
		return apperrors.WrapInternal("failed to store session", err)
	}
	return nil
}

func (s *Service) startLocalCleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanupExpiredLocal()
	}
}

func (s *Service) cleanupExpiredLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, entry := range s.local {
		if now.After(entry.expiresAt) {
			delete(s.local, id)
		}
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
