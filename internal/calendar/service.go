// Package calendar wraps the shared clinic calendar the booking engine
// books against. The calendar service is the final arbiter of slot
// uniqueness: event creation is the only true serialization point.
package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSlotTaken is returned by CreateEvent when the calendar rejects the
	// event because a conflicting event already occupies the interval.
	ErrSlotTaken = errors.New("calendar: slot already taken")

	// ErrEventNotFound is returned when an event ID does not exist.
	ErrEventNotFound = errors.New("calendar: event not found")
)

// Service is the calendar collaborator consumed by the booking engine.
// Implementations can be swapped (hosted calendar API, in-memory) without
// changing callers.
type Service interface {
	// ListEvents returns events intersecting [from, to). An empty doctor
	// matches events for all doctors.
	ListEvents(ctx context.Context, from, to time.Time, doctor string) ([]Event, error)

	// CreateEvent adds the event and returns its assigned ID. Returns
	// ErrSlotTaken when a conflicting event already holds the interval.
	CreateEvent(ctx context.Context, ev Event) (string, error)

	// DeleteEvent removes the event with the given ID.
	DeleteEvent(ctx context.Context, id string) error
}
