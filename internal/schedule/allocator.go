package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/renovalabs/voice-frontdesk/internal/calendar"
	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

const (
	// DefaultWindowDays bounds the forward scan for alternative slots.
	DefaultWindowDays = 7
	// DefaultSuggestionCount caps how many alternatives are returned.
	DefaultSuggestionCount = 5
)

// Allocator generates ranked alternative slots when a request conflicts.
type Allocator struct {
	cal    calendar.Service
	policy Policy
	logger *logging.Logger
	now    func() time.Time
}

// NewAllocator creates a slot allocator against the given calendar.
func NewAllocator(cal calendar.Service, policy Policy, logger *logging.Logger) *Allocator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Allocator{
		cal:    cal,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Suggest scans forward from the requested slot's date for up to windowDays,
// at the policy's granularity inside working hours, and returns up to count
// free slots ranked by closeness to the request. Returned slots never
// conflict with existing calendar events nor with each other.
func (a *Allocator) Suggest(ctx context.Context, req Slot, windowDays, count int) ([]Slot, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if count <= 0 {
		count = DefaultSuggestionCount
	}
	if req.Duration <= 0 {
		req.Duration = a.policy.SlotDuration
	}

	now := a.now()
	reqLocal := req.Start.In(a.policy.Location)

	var pool []Slot
	for offset := 0; offset < windowDays; offset++ {
		day := reqLocal.AddDate(0, 0, offset)
		if !a.policy.WorkingDay(day) {
			continue
		}

		dayStart, dayEnd := a.policy.DayWindow(day)
		events, err := a.cal.ListEvents(ctx, dayStart, dayEnd, req.Doctor)
		if err != nil {
			// Fail safe: without a calendar answer no slot on this day can
			// be promised free.
			return nil, fmt.Errorf("schedule: list events for %s: %w", day.Format("2006-01-02"), err)
		}

		for start := dayStart; !start.Add(req.Duration).After(dayEnd); start = start.Add(a.policy.Granularity) {
			if start.Before(now) {
				continue
			}
			candidate := Slot{Start: start, Duration: req.Duration, Doctor: req.Doctor, Department: req.Department}
			if candidate.SameInterval(req) {
				continue
			}
			if conflictsAny(candidate, events) {
				continue
			}
			pool = append(pool, candidate)
		}
	}

	a.rank(pool, req)

	// Greedy pick in rank order, re-validating each pick against the ones
	// already chosen so the returned list is internally consistent.
	out := make([]Slot, 0, count)
	for _, candidate := range pool {
		if len(out) == count {
			break
		}
		clash := false
		for _, chosen := range out {
			if candidate.Overlaps(chosen) {
				clash = true
				break
			}
		}
		if !clash {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// rank orders candidates by (date distance, time-of-day distance, doctor
// match) relative to the request.
func (a *Allocator) rank(pool []Slot, req Slot) {
	reqLocal := req.Start.In(a.policy.Location)
	reqMidnight := midnight(reqLocal)
	reqClock := clockOffset(reqLocal)

	key := func(s Slot) (int, time.Duration, int) {
		local := s.Start.In(a.policy.Location)
		dateDist := int(midnight(local).Sub(reqMidnight).Hours() / 24)
		if dateDist < 0 {
			dateDist = -dateDist
		}
		timeDist := clockOffset(local) - reqClock
		if timeDist < 0 {
			timeDist = -timeDist
		}
		doctorRank := 0
		if req.Doctor != "" && s.Doctor != req.Doctor {
			doctorRank = 1
		}
		return dateDist, timeDist, doctorRank
	}

	sort.SliceStable(pool, func(i, j int) bool {
		di, ti, ri := key(pool[i])
		dj, tj, rj := key(pool[j])
		if di != dj {
			return di < dj
		}
		if ti != tj {
			return ti < tj
		}
		if ri != rj {
			return ri < rj
		}
		return pool[i].Start.Before(pool[j].Start)
	})
}

func conflictsAny(s Slot, events []calendar.Event) bool {
	for _, ev := range events {
		if ev.Overlaps(s.Start, s.End()) {
			return true
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func clockOffset(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}
