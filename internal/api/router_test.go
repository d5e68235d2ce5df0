package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovalabs/voice-frontdesk/internal/booking"
	"github.com/renovalabs/voice-frontdesk/internal/calendar"
	"github.com/renovalabs/voice-frontdesk/internal/callrecord"
	"github.com/renovalabs/voice-frontdesk/internal/directory"
	"github.com/renovalabs/voice-frontdesk/internal/frontdesk"
	"github.com/renovalabs/voice-frontdesk/internal/notify"
	"github.com/renovalabs/voice-frontdesk/internal/schedule"
)

type memPatientStore struct {
	mu   sync.Mutex
	recs map[string]*directory.PatientRecord
}

func (f *memPatientStore) GetByPhone(_ context.Context, phone string) (*directory.PatientRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.recs[phone]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, directory.ErrPatientNotFound
}

func (f *memPatientStore) Upsert(_ context.Context, rec *directory.PatientRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recs == nil {
		f.recs = map[string]*directory.PatientRecord{}
	}
	cp := *rec
	f.recs[rec.Phone] = &cp
	return nil
}

type memCallArchive struct {
	mu   sync.Mutex
	recs []callrecord.CallRecord
}

func (f *memCallArchive) Append(_ context.Context, rec *callrecord.CallRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *memCallArchive) Stats(_ context.Context, days int) (*callrecord.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &callrecord.Stats{
		Days:           days,
		TotalCalls:     len(f.recs),
		ByCallType:     map[string]int{},
		ByResolution:   map[string]int{},
		ByCustomerType: map[string]int{},
		ByLanguage:     map[string]int{},
	}
	for _, rec := range f.recs {
		st.ByCallType[string(rec.CallType)]++
		st.ByResolution[string(rec.ResolutionStatus)]++
	}
	return st, nil
}

func (f *memCallArchive) RecentCalls(_ context.Context, limit int) ([]callrecord.CallRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 || limit > len(f.recs) {
		limit = len(f.recs)
	}
	out := make([]callrecord.CallRecord, limit)
	copy(out, f.recs[len(f.recs)-limit:])
	return out, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memCallArchive) {
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

	dir := directory.New(directory.NewSessionStore(rdb, time.Hour), &memPatientStore{}, nil)
	archive := &memCallArchive{}
	recorder := callrecord.NewRecorder(callrecord.NewActiveStore(rdb, time.Hour), archive, nil)

	renderer := notify.NewRenderer("Renova Hospitals", "")
	sender := notify.NewStubEmailSender(nil)
	coord := booking.NewCoordinator(checker, cal, sender, renderer, dir, recorder, nil)
	verifier := booking.NewVerifier(cal, sender, renderer, recorder, 15*time.Minute, nil)

	svc := frontdesk.NewService(checker, coord, verifier, dir, recorder, policy, nil, "Renova Hospitals", nil)

	deps := map[string]Pinger{
		"redis": PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	}
	router := NewRouter(RouterConfig{
		Handler:        NewHandler(svc, archive, deps, nil),
		MetricsHandler: promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, archive
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func futureDate(t *testing.T) string {
	t.Helper()
	day := time.Now().UTC().AddDate(0, 1, 0)
	for day.Weekday() == time.Sunday || day.Weekday() == time.Saturday {
		day = day.AddDate(0, 0, 1)
	}
	return day.Format("2006-01-02")
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/availability", map[string]any{
		"date":        futureDate(t),
		"time":        "10:00 AM",
		"doctor_name": "Dr. Rao",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Available bool `json:"available"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Available)
}

func TestAvailabilityEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/availability", map[string]any{"time": "10:00 AM"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Field string `json:"field"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "date", body.Field)
}

func TestAvailabilityEndpointBadJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/availability", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookAndFinalizeFlow(t *testing.T) {
	srv, archive := newTestServer(t)
	date := futureDate(t)

	resp := postJSON(t, srv.URL+"/v1/appointments", map[string]any{
		"session_id":   "sess-1",
		"patient_name": "Asha Verma",
		"email":        "asha@example.com",
		"phone":        "+919876543210",
		"date":         date,
		"time":         "10:00 AM",
		"doctor_name":  "Dr. Rao",
		"department":   "Cardiology",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var booked struct {
		Success   bool `json:"success"`
		EmailSent bool `json:"email_sent"`
	}
	decodeBody(t, resp, &booked)
	assert.True(t, booked.Success)
	assert.True(t, booked.EmailSent)

	resp = postJSON(t, srv.URL+"/v1/calls/sess-1/log", map[string]any{
		"summary": "booked cardiology appointment",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/v1/calls/sess-1/finalize", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec callrecord.CallRecord
	decodeBody(t, resp, &rec)
	assert.Equal(t, callrecord.CallTypeBooking, rec.CallType)
	assert.Equal(t, "booked cardiology appointment", rec.Summary)
	assert.Len(t, archive.recs, 1)

	resp = postJSON(t, srv.URL+"/v1/calls/sess-1/finalize", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Len(t, archive.recs, 1, "double finalize must not persist twice")
}

func TestCancelEndpointNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/appointments/cancel", map[string]any{
		"patient_name": "Asha Verma",
		"phone":        "+919876543210",
		"date":         futureDate(t),
		"time":         "10:00 AM",
		"doctor_name":  "Dr. Rao",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Found bool `json:"found"`
	}
	decodeBody(t, resp, &body)
	assert.False(t, body.Found)
}

func TestFinalizeUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/calls/nope/finalize", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminStatsEndpoint(t *testing.T) {
	srv, archive := newTestServer(t)
	archive.recs = append(archive.recs, callrecord.CallRecord{
		CallID:           "call-1",
		CallType:         callrecord.CallTypeInquiry,
		ResolutionStatus: callrecord.ResolutionResolved,
	})

	resp, err := http.Get(srv.URL + "/admin/stats?days=7")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats callrecord.Stats
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1, stats.TotalCalls)
	assert.Equal(t, 1, stats.ByCallType["inquiry"])

	resp, err = http.Get(srv.URL + "/admin/calls/recent?limit=5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recs []callrecord.CallRecord
	decodeBody(t, resp, &recs)
	assert.Len(t, recs, 1)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	decodeBody(t, resp, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["redis"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
