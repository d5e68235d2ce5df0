package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionPatientKeyPrefix = "session:patient:"
	sessionVisitKeyPrefix   = "session:visit:"

	defaultSessionTTL = 24 * time.Hour
)

// SessionStore keeps per-session patient state in Redis. Entries expire with
// the session TTL; the durable store holds the long-lived copy.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore creates a session cache backed by Redis.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionPatientKey(sessionID, phone string) string {
	return sessionPatientKeyPrefix + sessionID + ":" + phone
}

func sessionVisitKey(sessionID, phone string) string {
	return sessionVisitKeyPrefix + sessionID + ":" + phone
}

// Get returns the cached record for this session, or nil when absent.
func (s *SessionStore) Get(ctx context.Context, sessionID, phone string) (*PatientRecord, error) {
	data, err := s.rdb.Get(ctx, sessionPatientKey(sessionID, phone)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("directory: session cache get: %w", err)
	}
	var rec PatientRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("directory: session cache unmarshal: %w", err)
	}
	return &rec, nil
}

// Put stores the record in the session cache.
func (s *SessionStore) Put(ctx context.Context, sessionID string, rec *PatientRecord) error {
	if rec == nil || rec.Phone == "" {
		return fmt.Errorf("directory: session cache: phone required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("directory: session cache marshal: %w", err)
	}
	return s.rdb.Set(ctx, sessionPatientKey(sessionID, rec.Phone), data, s.ttl).Err()
}

// MarkVisit records that this phone was counted for this session. Returns
// true only the first time, making visit counting idempotent per session.
func (s *SessionStore) MarkVisit(ctx context.Context, sessionID, phone string) (bool, error) {
	first, err := s.rdb.SetNX(ctx, sessionVisitKey(sessionID, phone), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("directory: mark visit: %w", err)
	}
	return first, nil
}
