// Package schedule implements the appointment scheduling core: slot types,
// working-hours policy, availability checking against the clinic calendar,
// and ranked alternative-slot allocation.
package schedule

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultSlotDuration applies when a request does not specify one.
const DefaultSlotDuration = 30 * time.Minute

var (
	// ErrInvalidDate is returned when a date string matches no accepted format.
	ErrInvalidDate = errors.New("schedule: unrecognized date format")

	// ErrInvalidTime is returned when a time string matches no accepted format.
	ErrInvalidTime = errors.New("schedule: unrecognized time format")

	// ErrPastSlot is returned when the requested slot starts in the past.
	ErrPastSlot = errors.New("schedule: requested time is in the past")
)

// Slot is a bookable or booked (date, time, duration, doctor) interval.
// Immutable value once booked.
type Slot struct {
	Start      time.Time
	Duration   time.Duration
	Doctor     string
	Department string
}

// End returns the exclusive end of the slot interval.
func (s Slot) End() time.Time {
	return s.Start.Add(s.Duration)
}

// Overlaps reports whether two slots share any positive duration.
// Touching endpoints do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End()) && o.Start.Before(s.End())
}

// SameInterval reports whether two slots occupy the identical interval for
// the same doctor.
func (s Slot) SameInterval(o Slot) bool {
	return s.Start.Equal(o.Start) && s.Duration == o.Duration && strings.EqualFold(s.Doctor, o.Doctor)
}

// DateString renders the slot date in ISO 8601 form.
func (s Slot) DateString() string {
	return s.Start.Format("2006-01-02")
}

// TimeString renders the slot start time in 12-hour form, e.g. "10:00 AM".
func (s Slot) TimeString() string {
	return s.Start.Format("3:04 PM")
}

// slotJSON is the wire form of a Slot: the same normalized date/time strings
// callers supply at the boundary.
type slotJSON struct {
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Doctor          string `json:"doctor_name,omitempty"`
	Department      string `json:"department,omitempty"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON{
		Date:            s.DateString(),
		Time:            s.TimeString(),
		DurationMinutes: int(s.Duration / time.Minute),
		Doctor:          s.Doctor,
		Department:      s.Department,
	})
}

// AvailabilityResult is the transient answer to one availability check.
// Alternatives are empty unless Available is false.
type AvailabilityResult struct {
	Available    bool
	Conflicts    []Slot
	Alternatives []Slot
}

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02-01-2006",
}

var timeFormats = []string{
	"15:04",
	"3:04 PM",
	"3:04PM",
	"15:04:05",
}

// ParseDateTime combines a date string and a time-of-day string into a
// wall-clock instant in the given location. Callers resolve relative dates
// ("tomorrow") before reaching this boundary.
func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	var date time.Time
	var ok bool
	for _, layout := range dateFormats {
		if parsed, err := time.Parse(layout, strings.TrimSpace(dateStr)); err == nil {
			date, ok = parsed, true
			break
		}
	}
	if !ok {
		return time.Time{}, ErrInvalidDate
	}

	var clock time.Time
	ok = false
	for _, layout := range timeFormats {
		if parsed, err := time.Parse(layout, strings.ToUpper(strings.TrimSpace(timeStr))); err == nil {
			clock, ok = parsed, true
			break
		}
	}
	if !ok {
		return time.Time{}, ErrInvalidTime
	}

	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
