package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(t *testing.T) Policy {
	t.Helper()
	p, err := NewPolicy("UTC", "09:00", "18:00", []string{"Sunday"}, 30*time.Minute, 30*time.Minute)
	require.NoError(t, err)
	return p
}

func TestNewPolicyValidation(t *testing.T) {
	_, err := NewPolicy("Mars/Olympus", "09:00", "18:00", nil, 0, 0)
	assert.Error(t, err)

	_, err = NewPolicy("UTC", "18:00", "09:00", nil, 0, 0)
	assert.Error(t, err)

	_, err = NewPolicy("UTC", "09:00", "18:00", []string{"Funday"}, 0, 0)
	assert.Error(t, err)
}

func TestWithinHoursBoundaries(t *testing.T) {
	p := testPolicy(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) // Monday

	assert.True(t, p.WithinHours(day.Add(9*time.Hour), 30*time.Minute))
	// Last slot of the day ends exactly at close.
	assert.True(t, p.WithinHours(day.Add(17*time.Hour+30*time.Minute), 30*time.Minute))
	// Slot running past close is out.
	assert.False(t, p.WithinHours(day.Add(17*time.Hour+45*time.Minute), 30*time.Minute))
	assert.False(t, p.WithinHours(day.Add(8*time.Hour+59*time.Minute), 30*time.Minute))
	assert.False(t, p.WithinHours(day.Add(20*time.Hour), 30*time.Minute))
}

func TestWorkingDay(t *testing.T) {
	p := testPolicy(t)

	monday := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)

	assert.True(t, p.WorkingDay(monday))
	assert.False(t, p.WorkingDay(sunday))
}

func TestDayWindow(t *testing.T) {
	p := testPolicy(t)
	start, end := p.DayWindow(time.Date(2025, 3, 10, 13, 45, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), end)
}
