package callrecord

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var callColumns = []string{
	"call_id", "session_id", "started_at", "ended_at", "duration_seconds",
	"customer_phone", "customer_name", "customer_email", "customer_type", "language",
	"call_type", "department_enquired", "doctor_enquired",
	"appointment_date", "appointment_time",
	"resolution_status", "summary", "agent_notes", "hangup_reason",
}

func TestPostgresStoreAppend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	started := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO call_records").
		WithArgs("call-1", "sess-1", started, started.Add(3*time.Minute), 180,
			"+919876543210", "Asha Verma", "asha@example.com", "returning", "english",
			"appointment_booking", "Cardiology", "Dr. Rao",
			"2025-03-12", "10:00 AM",
			"resolved", "booked follow-up", "", "caller_hangup").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Append(context.Background(), &CallRecord{
		CallID:             "call-1",
		SessionID:          "sess-1",
		StartedAt:          started,
		EndedAt:            started.Add(3 * time.Minute),
		DurationSeconds:    180,
		CustomerPhone:      "+919876543210",
		CustomerName:       "Asha Verma",
		CustomerEmail:      "asha@example.com",
		CustomerType:       "returning",
		Language:           "english",
		CallType:           CallTypeBooking,
		DepartmentEnquired: "Cardiology",
		DoctorEnquired:     "Dr. Rao",
		AppointmentDate:    "2025-03-12",
		AppointmentTime:    "10:00 AM",
		ResolutionStatus:   ResolutionResolved,
		Summary:            "booked follow-up",
		HangupReason:       "caller_hangup",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreAppendRequiresCallID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	if err := store.Append(context.Background(), &CallRecord{SessionID: "sess-1"}); err == nil {
		t.Fatal("expected error for missing call id")
	}
}

func TestPostgresStoreStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count", "avg"}).AddRow(12, 145.5))
	mock.ExpectQuery("SELECT call_type, COUNT").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"call_type", "count"}).
			AddRow("appointment_booking", 8).
			AddRow("inquiry", 4))
	mock.ExpectQuery("SELECT resolution_status, COUNT").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"resolution_status", "count"}).
			AddRow("resolved", 10).
			AddRow("escalated", 2))
	mock.ExpectQuery("SELECT customer_type, COUNT").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"customer_type", "count"}).
			AddRow("returning", 7).
			AddRow("new", 5))
	mock.ExpectQuery("SELECT language, COUNT").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"language", "count"}).
			AddRow("english", 9).
			AddRow("hindi", 3))

	st, err := store.Stats(context.Background(), 7)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalCalls != 12 || st.AvgDurationSeconds != 145.5 {
		t.Fatalf("unexpected totals: %+v", st)
	}
	if st.ByCallType["appointment_booking"] != 8 {
		t.Fatalf("unexpected call type counts: %+v", st.ByCallType)
	}
	if st.ByResolution["escalated"] != 2 {
		t.Fatalf("unexpected resolution counts: %+v", st.ByResolution)
	}
	if st.ByLanguage["hindi"] != 3 {
		t.Fatalf("unexpected language counts: %+v", st.ByLanguage)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreRecentCalls(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	t1 := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT call_id, session_id").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows(callColumns).
			AddRow("call-2", "sess-2", t1, t1.Add(2*time.Minute), 120,
				"+911111111111", "Ravi", "", "new", "english",
				"inquiry", "Orthopedics", "", "", "",
				"resolved", "", "", "").
			AddRow("call-1", "sess-1", t2, t2.Add(3*time.Minute), 180,
				"+919876543210", "Asha Verma", "asha@example.com", "returning", "english",
				"appointment_booking", "Cardiology", "Dr. Rao", "2025-03-12", "10:00 AM",
				"resolved", "booked follow-up", "", "caller_hangup"))

	recs, err := store.RecentCalls(context.Background(), 2)
	if err != nil {
		t.Fatalf("recent calls: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].CallID != "call-2" || recs[1].CallID != "call-1" {
		t.Fatalf("unexpected order: %s, %s", recs[0].CallID, recs[1].CallID)
	}
	if recs[1].CallType != CallTypeBooking {
		t.Fatalf("unexpected call type: %s", recs[1].CallType)
	}
}
