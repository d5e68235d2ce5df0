package calendar

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryService is an in-process calendar for development and tests. It
// enforces the same per-doctor non-overlap rule a hosted calendar would,
// under a single mutex, so concurrent creates serialize here too.
type MemoryService struct {
	mu     sync.Mutex
	events map[string]Event
}

// NewMemoryService creates an empty in-memory calendar.
func NewMemoryService() *MemoryService {
	return &MemoryService{events: make(map[string]Event)}
}

// ListEvents returns events intersecting [from, to), ordered by start time.
func (s *MemoryService) ListEvents(_ context.Context, from, to time.Time, doctor string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, ev := range s.events {
		if !ev.Overlaps(from, to) {
			continue
		}
		if doctor != "" && !strings.EqualFold(ev.Doctor, doctor) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// CreateEvent adds the event unless a same-doctor event overlaps it.
func (s *MemoryService) CreateEvent(_ context.Context, ev Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events {
		if !strings.EqualFold(existing.Doctor, ev.Doctor) {
			continue
		}
		if existing.Overlaps(ev.Start, ev.End) {
			return "", ErrSlotTaken
		}
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	s.events[ev.ID] = ev
	return ev.ID, nil
}

// DeleteEvent removes the event with the given ID.
func (s *MemoryService) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

var _ Service = (*MemoryService)(nil)
