package directory

import (
	"context"
	"errors"
	"time"

	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// Directory resolves caller identity in tiers: session cache first, then the
// durable store, then "new". The session cache is authoritative for the
// duration of a call; durable-store failures degrade to cache-only operation.
type Directory struct {
	cache  *SessionStore
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

// New creates a customer directory over the session cache and durable store.
func New(cache *SessionStore, store Store, logger *logging.Logger) *Directory {
	if logger == nil {
		logger = logging.Default()
	}
	return &Directory{
		cache:  cache,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Identify resolves the phone number to a customer tier and record. First
// match wins: session cache (existing), durable store (returning, pulled
// into the cache), else new with no record created.
func (d *Directory) Identify(ctx context.Context, sessionID, phone string) (CustomerType, *PatientRecord, error) {
	if phone == "" {
		return CustomerNew, nil, nil
	}

	cached, err := d.cache.Get(ctx, sessionID, phone)
	if err != nil {
		return CustomerNew, nil, err
	}
	if cached != nil {
		cached.CustomerType = CustomerExisting
		return CustomerExisting, cached, nil
	}

	if d.store == nil {
		return CustomerNew, nil, nil
	}

	stored, err := d.store.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, ErrPatientNotFound) {
		// Degrade to cache-only: an unreachable store must not fail the call.
		d.logger.Warn("durable patient lookup failed, continuing as new",
			"error", err, "phone", phone)
		return CustomerNew, nil, nil
	}
	if stored == nil {
		return CustomerNew, nil, nil
	}

	stored.CustomerType = CustomerReturning
	d.countVisit(ctx, sessionID, stored)

	if err := d.cache.Put(ctx, sessionID, stored); err != nil {
		return CustomerNew, nil, err
	}
	d.writeThrough(ctx, stored)

	return CustomerReturning, stored, nil
}

// Upsert merges the supplied fields into the session record and schedules a
// write-through to durable storage. A durable write failure is logged for
// reconciliation, never surfaced to the caller.
func (d *Directory) Upsert(ctx context.Context, sessionID string, in PatientRecord) (*PatientRecord, error) {
	if in.Phone == "" {
		return nil, errors.New("directory: upsert: phone required")
	}

	rec, err := d.cache.Get(ctx, sessionID, in.Phone)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		var stored *PatientRecord
		if d.store != nil {
			stored, err = d.store.GetByPhone(ctx, in.Phone)
			if err != nil && !errors.Is(err, ErrPatientNotFound) {
				d.logger.Warn("durable patient lookup failed during upsert",
					"error", err, "phone", in.Phone)
			}
		}
		if stored != nil {
			rec = stored
			rec.CustomerType = CustomerReturning
		} else {
			rec = &PatientRecord{Phone: in.Phone, CustomerType: CustomerNew, CreatedAt: d.now()}
		}
	} else {
		rec.CustomerType = CustomerExisting
	}

	rec.Merge(in)
	d.countVisit(ctx, sessionID, rec)
	rec.UpdatedAt = d.now()

	if err := d.cache.Put(ctx, sessionID, rec); err != nil {
		return nil, err
	}
	d.writeThrough(ctx, rec)

	return rec, nil
}

// countVisit bumps the visit counter at most once per session per phone.
func (d *Directory) countVisit(ctx context.Context, sessionID string, rec *PatientRecord) {
	first, err := d.cache.MarkVisit(ctx, sessionID, rec.Phone)
	if err != nil {
		d.logger.Warn("visit marker unavailable, skipping count", "error", err, "phone", rec.Phone)
		return
	}
	if first {
		rec.VisitCount++
		rec.LastVisit = d.now()
	}
}

func (d *Directory) writeThrough(ctx context.Context, rec *PatientRecord) {
	if d.store == nil {
		return
	}
	if err := d.store.Upsert(ctx, rec); err != nil {
		d.logger.Warn("durable patient write failed, cache remains authoritative",
			"error", err, "phone", rec.Phone)
	}
}
