package callrecord

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// Store is the durable sink call records are appended to at finalize.
type Store interface {
	Append(ctx context.Context, rec *CallRecord) error
}

// Recorder tracks the active call record per session. Every operation in a
// session updates the record; Finalize must be called exactly once when the
// session ends.
type Recorder struct {
	active *ActiveStore
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

// NewRecorder creates a call recorder.
func NewRecorder(active *ActiveStore, store Store, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{
		active: active,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Start opens a record for the session. Starting a session twice is an
// error; a session that was already finalized cannot restart.
func (r *Recorder) Start(ctx context.Context, sessionID string, initial Fields) (*CallRecord, error) {
	done, err := r.active.Finalized(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyFinalized
	}

	rec := &CallRecord{
		CallID:           uuid.NewString(),
		SessionID:        sessionID,
		StartedAt:        r.now(),
		ResolutionStatus: ResolutionInProgress,
	}
	rec.apply(initial)

	if err := r.active.Create(ctx, rec); err != nil {
		return nil, err
	}
	r.logger.Info("call record started", "session_id", sessionID, "call_id", rec.CallID)
	return rec, nil
}

// Update merges the fields into the session's active record, last write
// wins per field.
func (r *Recorder) Update(ctx context.Context, sessionID string, f Fields) (*CallRecord, error) {
	rec, err := r.active.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		done, err := r.active.Finalized(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, ErrAlreadyFinalized
		}
		return nil, ErrSessionNotFound
	}

	rec.apply(f)
	if err := r.active.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Finalize closes the record: computes the duration, defaults the resolution
// to partially_resolved when never explicitly set, persists exactly once,
// and drops the session from the active cache. A second Finalize for the
// same session returns ErrAlreadyFinalized.
func (r *Recorder) Finalize(ctx context.Context, sessionID string) (*CallRecord, error) {
	rec, err := r.active.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		done, err := r.active.Finalized(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, ErrAlreadyFinalized
		}
		return nil, ErrSessionNotFound
	}

	rec.EndedAt = r.now()
	rec.DurationSeconds = int(rec.EndedAt.Sub(rec.StartedAt) / time.Second)
	if rec.ResolutionStatus == "" || rec.ResolutionStatus == ResolutionInProgress {
		rec.ResolutionStatus = ResolutionPartiallyResolved
	}

	// Remove before append would lose the record on a crash in between;
	// append before remove risks a duplicate only if the remove fails, which
	// the finalized marker then catches. Take the second trade.
	if r.store != nil {
		if err := r.store.Append(ctx, rec); err != nil {
			// Degrade: the session still ends; the discrepancy is logged for
			// reconciliation rather than failing the cleanup hook.
			r.logger.Error("call record persistence failed",
				"error", err, "session_id", sessionID, "call_id", rec.CallID)
		}
	}

	if err := r.active.Remove(ctx, sessionID); err != nil {
		return nil, err
	}

	r.logger.Info("call record finalized",
		"session_id", sessionID,
		"call_id", rec.CallID,
		"duration_seconds", rec.DurationSeconds,
		"resolution", rec.ResolutionStatus,
	)
	return rec, nil
}
