package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interview-coach/internal/cache"
	"interview-coach/internal/domain"
	"interview-coach/internal/logger"

	"go.uber.org/zap"
)

// sessionStoreImpl keeps each client's identity and interview snapshot as
// two JSON entries in the cache.
type sessionStoreImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewSessionStore creates a SessionStore over c. Entries expire after ttl;
// zero keeps them forever.
func NewSessionStore(c domain.Cache, ttl time.Duration) domain.SessionStore {
	return &sessionStoreImpl{cache: c, ttl: ttl}
}

func (s *sessionStoreImpl) LoadIdentity(ctx context.Context, sessionID string) (*domain.User, error) {
	var user domain.User
	ok, err := s.load(ctx, cache.IdentityKey(sessionID), &user)
	if err != nil || !ok {
		return nil, err
	}
	if user.Email == "" {
		s.discard(ctx, cache.IdentityKey(sessionID), errors.New("identity has no email"))
		return nil, nil
	}
	return &user, nil
}

func (s *sessionStoreImpl) SaveIdentity(ctx context.Context, sessionID string, user domain.User) error {
	return s.save(ctx, cache.IdentityKey(sessionID), user)
}

func (s *sessionStoreImpl) ClearIdentity(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, cache.IdentityKey(sessionID))
}

func (s *sessionStoreImpl) LoadSnapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	ok, err := s.load(ctx, cache.SnapshotKey(sessionID), &snap)
	if err != nil || !ok {
		return nil, err
	}
	if !snap.Valid() {
		s.discard(ctx, cache.SnapshotKey(sessionID), errors.New("snapshot failed validation"))
		return nil, nil
	}
	return &snap, nil
}

func (s *sessionStoreImpl) SaveSnapshot(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	return s.save(ctx, cache.SnapshotKey(sessionID), snap)
}

func (s *sessionStoreImpl) ClearSnapshot(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, cache.SnapshotKey(sessionID))
}

// load reports false for a missing entry. Unparseable entries are deleted
// and also read as missing.
func (s *sessionStoreImpl) load(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return false, nil
		}
		return false, fmt.Errorf("session store: get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.discard(ctx, key, err)
		return false, nil
	}
	return true, nil
}

func (s *sessionStoreImpl) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session store: marshal %s: %w", key, err)
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		return fmt.Errorf("session store: set %s: %w", key, err)
	}
	return nil
}

func (s *sessionStoreImpl) discard(ctx context.Context, key string, reason error) {
	logger.Get().Warn("Discarding unreadable session entry", zap.String("key", key), zap.Error(reason))
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Error("Failed to delete session entry", zap.String("key", key), zap.Error(err))
	}
}
