package frontdesk

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovalabs/voice-frontdesk/internal/booking"
	"github.com/renovalabs/voice-frontdesk/internal/calendar"
	"github.com/renovalabs/voice-frontdesk/internal/callrecord"
	"github.com/renovalabs/voice-frontdesk/internal/directory"
	"github.com/renovalabs/voice-frontdesk/internal/notify"
	"github.com/renovalabs/voice-frontdesk/internal/schedule"
)

type fakePatientStore struct {
	mu   sync.Mutex
	recs map[string]*directory.PatientRecord
}

func (f *fakePatientStore) GetByPhone(_ context.Context, phone string) (*directory.PatientRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.recs[phone]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, directory.ErrPatientNotFound
}

func (f *fakePatientStore) Upsert(_ context.Context, rec *directory.PatientRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recs == nil {
		f.recs = map[string]*directory.PatientRecord{}
	}
	cp := *rec
	f.recs[rec.Phone] = &cp
	return nil
}

type fakeCallStore struct {
	mu   sync.Mutex
	recs []*callrecord.CallRecord
}

func (f *fakeCallStore) Append(_ context.Context, rec *callrecord.CallRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.recs = append(f.recs, &cp)
	return nil
}

type testEnv struct {
	svc      *Service
	cal      *calendar.MemoryService
	patients *fakePatientStore
	calls    *fakeCallStore
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	policy, err := schedule.NewPolicy("UTC", "09:00", "18:00", []string{"Sunday"}, 30*time.Minute, 30*time.Minute)
	require.NoError(t, err)

	cal := calendar.NewMemoryService()
	alloc := schedule.NewAllocator(cal, policy, nil)
	checker := schedule.NewChecker(cal, alloc, policy, 7, 5, nil)

	patients := &fakePatientStore{}
	dir := directory.New(directory.NewSessionStore(rdb, time.Hour), patients, nil)

	calls := &fakeCallStore{}
	recorder := callrecord.NewRecorder(callrecord.NewActiveStore(rdb, time.Hour), calls, nil)

	renderer := notify.NewRenderer("Renova Hospitals", "+91-11-1234-5678")
	sender := notify.NewStubEmailSender(nil)
	coord := booking.NewCoordinator(checker, cal, sender, renderer, dir, recorder, nil)
	verifier := booking.NewVerifier(cal, sender, renderer, recorder, 15*time.Minute, nil)

	svc := NewService(checker, coord, verifier, dir, recorder, policy, nil, "Renova Hospitals", nil)
	return &testEnv{svc: svc, cal: cal, patients: patients, calls: calls}
}

// futureWorkday returns a weekday at 10:00 UTC far enough ahead that the
// slot cannot slide into the past while the test runs.
func futureWorkday(t *testing.T) time.Time {
	t.Helper()
	day := time.Now().UTC().AddDate(0, 1, 0)
	for day.Weekday() == time.Sunday || day.Weekday() == time.Saturday {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.UTC)
}

func TestBookingScenario(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	start := futureWorkday(t)
	date := start.Format("2006-01-02")

	check, err := env.svc.CheckAvailability(ctx, AvailabilityRequest{
		SessionID: "sess-1",
		Date:      date,
		Time:      "10:00 AM",
		Doctor:    "Dr. Rao",
	})
	require.NoError(t, err)
	assert.True(t, check.Available)
	assert.Empty(t, check.Conflicts)

	booked, err := env.svc.Book(ctx, BookRequest{
		SessionID:   "sess-1",
		PatientName: "Asha Verma",
		Email:       "asha@example.com",
		Phone:       "+919876543210",
		Date:        date,
		Time:        "10:00 AM",
		Doctor:      "Dr. Rao",
		Department:  "Cardiology",
	})
	require.NoError(t, err)
	assert.True(t, booked.Success)
	assert.True(t, booked.EmailSent)
	assert.NotEmpty(t, booked.CalendarEventID)

	recheck, err := env.svc.CheckAvailability(ctx, AvailabilityRequest{
		SessionID: "sess-1",
		Date:      date,
		Time:      "10:00 AM",
		Doctor:    "Dr. Rao",
	})
	require.NoError(t, err)
	assert.False(t, recheck.Available)
	require.NotEmpty(t, recheck.Conflicts)
	assert.True(t, recheck.Conflicts[0].Start.Equal(start))
	assert.LessOrEqual(t, len(recheck.Alternatives), 5)
	for _, alt := range recheck.Alternatives {
		assert.False(t, alt.SameInterval(recheck.Requested))
	}
}

func TestBookThenCancelThroughService(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	start := futureWorkday(t)
	date := start.Format("2006-01-02")

	_, err := env.svc.Book(ctx, BookRequest{
		SessionID:   "sess-1",
		PatientName: "Asha Verma",
		Email:       "asha@example.com",
		Phone:       "+919876543210",
		Date:        date,
		Time:        "10:00 AM",
		Doctor:      "Dr. Rao",
		Department:  "Cardiology",
	})
	require.NoError(t, err)

	// The caller misremembers the time by ten minutes, inside the tolerance.
	res, err := env.svc.Cancel(ctx, CancelRequest{
		SessionID:   "sess-1",
		PatientName: "asha verma",
		Phone:       "+919876543210",
		Date:        date,
		Time:        "10:10 AM",
		Doctor:      "Dr. Rao",
	})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.True(t, res.Success)

	events, err := env.cal.ListEvents(ctx, start.Add(-time.Hour), start.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCheckAvailabilityValidation(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	_, err := env.svc.CheckAvailability(ctx, AvailabilityRequest{Time: "10:00 AM"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)

	_, err = env.svc.CheckAvailability(ctx, AvailabilityRequest{Date: "not-a-date", Time: "10:00 AM"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)

	_, err = env.svc.CheckAvailability(ctx, AvailabilityRequest{Date: "2020-01-06", Time: "10:00 AM"})
	require.ErrorAs(t, err, &verr, "past dates are a validation error, not unavailability")
}

func TestBookValidation(t *testing.T) {
	env := newTestService(t)
	start := futureWorkday(t)

	_, err := env.svc.Book(context.Background(), BookRequest{
		PatientName: "Asha Verma",
		Email:       "asha@example.com",
		Date:        start.Format("2006-01-02"),
		Time:        "10:00 AM",
		Doctor:      "Dr. Rao",
		Department:  "Cardiology",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone", verr.Field)
}

func TestLogCallAndFinalize(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	err := env.svc.LogCall(ctx, "sess-1", callrecord.Fields{
		CustomerPhone: "+919876543210",
		CallType:      callrecord.CallTypeInquiry,
		Summary:       "asked about cardiology hours",
	})
	require.NoError(t, err, "first log opens the record")

	err = env.svc.LogCall(ctx, "sess-1", callrecord.Fields{CustomerName: "Asha Verma"})
	require.NoError(t, err)

	rec, err := env.svc.FinalizeCall(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", rec.CustomerName)
	assert.Equal(t, callrecord.CallTypeInquiry, rec.CallType)
	require.Len(t, env.calls.recs, 1)

	_, err = env.svc.FinalizeCall(ctx, "sess-1")
	assert.ErrorIs(t, err, callrecord.ErrAlreadyFinalized)
	assert.Len(t, env.calls.recs, 1, "finalize persists exactly once")
}

func TestIdentifyGreetings(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	res, err := env.svc.Identify(ctx, "sess-1", "+910000000000")
	require.NoError(t, err)
	assert.Equal(t, directory.CustomerNew, res.CustomerType)
	assert.Contains(t, res.Greeting, "Thank you for calling Renova Hospitals")

	require.NoError(t, env.patients.Upsert(ctx, &directory.PatientRecord{
		Phone:           "+919876543210",
		Name:            "Asha Verma",
		PreferredDoctor: "Dr. Rao",
	}))

	res, err = env.svc.Identify(ctx, "sess-2", "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, directory.CustomerReturning, res.CustomerType)
	assert.Contains(t, res.Greeting, "Welcome back")
	assert.Contains(t, res.Greeting, "Dr. Rao")

	// Same phone later in the same session resolves from the session cache.
	res, err = env.svc.Identify(ctx, "sess-2", "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, directory.CustomerExisting, res.CustomerType)
}

func TestBookUnavailableReturnsAlternatives(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	start := futureWorkday(t)
	date := start.Format("2006-01-02")

	req := BookRequest{
		SessionID:   "sess-1",
		PatientName: "Asha Verma",
		Email:       "asha@example.com",
		Phone:       "+919876543210",
		Date:        date,
		Time:        "10:00 AM",
		Doctor:      "Dr. Rao",
		Department:  "Cardiology",
	}
	first, err := env.svc.Book(ctx, req)
	require.NoError(t, err)
	require.True(t, first.Success)

	req.SessionID = "sess-2"
	req.PatientName = "Ravi Kumar"
	req.Phone = "+911111111111"
	second, err := env.svc.Book(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.NotEmpty(t, second.Alternatives)

	events, err := env.cal.ListEvents(ctx, start.Add(-time.Hour), start.Add(time.Hour), "")
	require.NoError(t, err)
	assert.Len(t, events, 1, "no duplicate event for the contested slot")
}
