package callrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	activeCallKeyPrefix    = "call:active:"
	finalizedMarkPrefix    = "call:finalized:"
	defaultActiveCallTTL   = 24 * time.Hour
	finalizedMarkRetention = 24 * time.Hour
)

// ActiveStore holds in-flight call records in Redis, keyed by session ID.
// The finalized marker outlives the record long enough to catch a second
// finalize from a misbehaving caller.
type ActiveStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewActiveStore creates an active-call store backed by Redis.
func NewActiveStore(rdb *redis.Client, ttl time.Duration) *ActiveStore {
	if ttl <= 0 {
		ttl = defaultActiveCallTTL
	}
	return &ActiveStore{rdb: rdb, ttl: ttl}
}

func activeCallKey(sessionID string) string {
	return activeCallKeyPrefix + sessionID
}

func finalizedMarkKey(sessionID string) string {
	return finalizedMarkPrefix + sessionID
}

// Create stores a fresh record, failing if the session already has one.
func (s *ActiveStore) Create(ctx context.Context, rec *CallRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("callrecord: marshal: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, activeCallKey(rec.SessionID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("callrecord: create: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}
	return nil
}

// Get returns the active record for the session, or nil when absent.
func (s *ActiveStore) Get(ctx context.Context, sessionID string) (*CallRecord, error) {
	data, err := s.rdb.Get(ctx, activeCallKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("callrecord: get: %w", err)
	}
	var rec CallRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("callrecord: unmarshal: %w", err)
	}
	return &rec, nil
}

// Save overwrites the active record.
func (s *ActiveStore) Save(ctx context.Context, rec *CallRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("callrecord: marshal: %w", err)
	}
	return s.rdb.Set(ctx, activeCallKey(rec.SessionID), data, s.ttl).Err()
}

// Remove deletes the active record and leaves a finalized marker behind.
func (s *ActiveStore) Remove(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, activeCallKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("callrecord: remove: %w", err)
	}
	return s.rdb.Set(ctx, finalizedMarkKey(sessionID), "1", finalizedMarkRetention).Err()
}

// Finalized reports whether the session was already finalized.
func (s *ActiveStore) Finalized(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, finalizedMarkKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("callrecord: finalized check: %w", err)
	}
	return n > 0, nil
}
