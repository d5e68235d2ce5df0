package schedule

import (
	"context"
	"time"

	"github.com/renovalabs/voice-frontdesk/internal/calendar"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

// Checker answers whether a requested slot is free, delegating to the
// Allocator for ranked alternatives when it is not.
type Checker struct {
	cal        calendar.Service
	alloc      *Allocator
	policy     Policy
	windowDays int
	count      int
	logger     *logging.Logger
	now        func() time.Time
}

// NewChecker creates an availability checker. windowDays and count bound the
// alternative search; zero values fall back to package defaults.
func NewChecker(cal calendar.Service, alloc *Allocator, policy Policy, windowDays, count int, logger *logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Default()
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	return &Checker{
		cal:        cal,
		alloc:      alloc,
		policy:     policy,
		windowDays: windowDays,
		count:      count,
		logger:     logger,
		now:        time.Now,
	}
}

// Check reports whether the requested slot is free. Past slots are a
// validation error (ErrPastSlot), not an unavailability. A calendar failure
// degrades to "assume unavailable" with no alternatives rather than risking
// a double-booking.
func (c *Checker) Check(ctx context.Context, req Slot) (*AvailabilityResult, error) {
	if req.Duration <= 0 {
		req.Duration = c.policy.SlotDuration
	}
	if req.Start.Before(c.now()) {
		return nil, ErrPastSlot
	}

	// Off-hours requests never reach the calendar; alternatives are drawn
	// from the working window instead.
	if !c.policy.Allows(req) {
		alternatives := c.suggest(ctx, req)
		return &AvailabilityResult{Available: false, Alternatives: alternatives}, nil
	}

	events, err := c.cal.ListEvents(ctx, req.Start, req.End(), req.Doctor)
	if err != nil {
		c.logger.Warn("availability check degraded, assuming unavailable",
			"error", err, "doctor", req.Doctor, "start", req.Start)
		return &AvailabilityResult{Available: false}, nil
	}

	var conflicts []Slot
	for _, ev := range events {
		if ev.Overlaps(req.Start, req.End()) {
			conflicts = append(conflicts, Slot{
				Start:      ev.Start,
				Duration:   ev.End.Sub(ev.Start),
				Doctor:     ev.Doctor,
				Department: ev.Department,
			})
		}
	}

	if len(conflicts) == 0 {
		return &AvailabilityResult{Available: true}, nil
	}

	return &AvailabilityResult{
		Available:    false,
		Conflicts:    conflicts,
		Alternatives: c.suggest(ctx, req),
	}, nil
}

func (c *Checker) suggest(ctx context.Context, req Slot) []Slot {
	alternatives, err := c.alloc.Suggest(ctx, req, c.windowDays, c.count)
	if err != nil {
		c.logger.Warn("alternative slot search failed", "error", err)
		return nil
	}
	return alternatives
}
