package schedule

import (
	"fmt"
	"time"
)

// Policy captures the clinic's working-hours rules. Requests outside the
// working window are unavailable without ever querying the calendar.
type Policy struct {
	Location       *time.Location
	DayStart       time.Duration // offset from midnight, e.g. 9h
	DayEnd         time.Duration // offset from midnight, e.g. 18h
	NonWorkingDays map[time.Weekday]bool
	SlotDuration   time.Duration
	Granularity    time.Duration
}

// NewPolicy builds a Policy from configuration strings. Day bounds use the
// "15:04" form; nonWorkingDays are English weekday names.
func NewPolicy(timezone, dayStart, dayEnd string, nonWorkingDays []string, slotDuration, granularity time.Duration) (Policy, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("schedule: load timezone %q: %w", timezone, err)
	}

	start, err := parseClockOffset(dayStart)
	if err != nil {
		return Policy{}, fmt.Errorf("schedule: workday start: %w", err)
	}
	end, err := parseClockOffset(dayEnd)
	if err != nil {
		return Policy{}, fmt.Errorf("schedule: workday end: %w", err)
	}
	if end <= start {
		return Policy{}, fmt.Errorf("schedule: workday end %s not after start %s", dayEnd, dayStart)
	}

	days := make(map[time.Weekday]bool, len(nonWorkingDays))
	for _, name := range nonWorkingDays {
		day, err := parseWeekday(name)
		if err != nil {
			return Policy{}, err
		}
		days[day] = true
	}

	if slotDuration <= 0 {
		slotDuration = DefaultSlotDuration
	}
	if granularity <= 0 {
		granularity = DefaultSlotDuration
	}

	return Policy{
		Location:       loc,
		DayStart:       start,
		DayEnd:         end,
		NonWorkingDays: days,
		SlotDuration:   slotDuration,
		Granularity:    granularity,
	}, nil
}

// WorkingDay reports whether the date falls on a working day.
func (p Policy) WorkingDay(t time.Time) bool {
	return !p.NonWorkingDays[t.In(p.Location).Weekday()]
}

// WithinHours reports whether [start, start+d] fits inside the working
// window of its day.
func (p Policy) WithinHours(start time.Time, d time.Duration) bool {
	local := start.In(p.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
	offset := local.Sub(midnight)
	return offset >= p.DayStart && offset+d <= p.DayEnd
}

// Allows reports whether the slot falls on a working day inside working hours.
func (p Policy) Allows(s Slot) bool {
	return p.WorkingDay(s.Start) && p.WithinHours(s.Start, s.Duration)
}

// DayWindow returns the working window for the day containing t.
func (p Policy) DayWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(p.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
	return midnight.Add(p.DayStart), midnight.Add(p.DayEnd)
}

func parseClockOffset(s string) (time.Duration, error) {
	clock, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("schedule: unknown weekday %q", name)
}
