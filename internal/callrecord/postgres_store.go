package callrecord

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the store needs, so tests can
// substitute pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stats aggregates finalized calls over a trailing window.
type Stats struct {
	Days               int            `json:"days"`
	TotalCalls         int            `json:"total_calls"`
	AvgDurationSeconds float64        `json:"avg_duration_seconds"`
	ByCallType         map[string]int `json:"by_call_type"`
	ByResolution       map[string]int `json:"by_resolution"`
	ByCustomerType     map[string]int `json:"by_customer_type"`
	ByLanguage         map[string]int `json:"by_language"`
}

// PostgresStore archives finalized call records in Postgres.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore creates a call-record archive backed by pgx.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		return nil
	}
	return &PostgresStore{pool: pool}
}

// Append inserts a finalized record. Records are append-only; call_id is
// unique so a retried append of the same record is a no-op.
func (s *PostgresStore) Append(ctx context.Context, rec *CallRecord) error {
	if rec == nil || rec.CallID == "" {
		return fmt.Errorf("callrecord: append: call id required")
	}

	query := `
		INSERT INTO call_records (
			call_id, session_id, started_at, ended_at, duration_seconds,
			customer_phone, customer_name, customer_email, customer_type, language,
			call_type, department_enquired, doctor_enquired,
			appointment_date, appointment_time,
			resolution_status, summary, agent_notes, hangup_reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (call_id) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query,
		rec.CallID,
		rec.SessionID,
		rec.StartedAt,
		rec.EndedAt,
		rec.DurationSeconds,
		rec.CustomerPhone,
		rec.CustomerName,
		rec.CustomerEmail,
		rec.CustomerType,
		rec.Language,
		string(rec.CallType),
		rec.DepartmentEnquired,
		rec.DoctorEnquired,
		rec.AppointmentDate,
		rec.AppointmentTime,
		string(rec.ResolutionStatus),
		rec.Summary,
		rec.AgentNotes,
		rec.HangupReason,
	); err != nil {
		return fmt.Errorf("callrecord: append: %w", err)
	}
	return nil
}

// Stats aggregates call counts over the trailing window of days.
func (s *PostgresStore) Stats(ctx context.Context, days int) (*Stats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	st := &Stats{
		Days:           days,
		ByCallType:     map[string]int{},
		ByResolution:   map[string]int{},
		ByCustomerType: map[string]int{},
		ByLanguage:     map[string]int{},
	}

	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(AVG(duration_seconds), 0)
		FROM call_records
		WHERE started_at >= $1
	`, since)
	if err := row.Scan(&st.TotalCalls, &st.AvgDurationSeconds); err != nil {
		return nil, fmt.Errorf("callrecord: stats totals: %w", err)
	}

	groups := []struct {
		column string
		dest   map[string]int
	}{
		{"call_type", st.ByCallType},
		{"resolution_status", st.ByResolution},
		{"customer_type", st.ByCustomerType},
		{"language", st.ByLanguage},
	}
	for _, g := range groups {
		query := fmt.Sprintf(`
			SELECT %s, COUNT(*)
			FROM call_records
			WHERE started_at >= $1 AND %s <> ''
			GROUP BY %s
		`, g.column, g.column, g.column)
		rows, err := s.pool.Query(ctx, query, since)
		if err != nil {
			return nil, fmt.Errorf("callrecord: stats by %s: %w", g.column, err)
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("callrecord: stats by %s: %w", g.column, err)
			}
			g.dest[key] = count
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("callrecord: stats by %s: %w", g.column, err)
		}
	}

	return st, nil
}

// RecentCalls returns the most recently started records, newest first.
func (s *PostgresStore) RecentCalls(ctx context.Context, limit int) ([]CallRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, `
		SELECT call_id, session_id, started_at, ended_at, duration_seconds,
		       customer_phone, customer_name, customer_email, customer_type, language,
		       call_type, department_enquired, doctor_enquired,
		       appointment_date, appointment_time,
		       resolution_status, summary, agent_notes, hangup_reason
		FROM call_records
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("callrecord: recent calls: %w", err)
	}
	defer rows.Close()

	var recs []CallRecord
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(
			&rec.CallID,
			&rec.SessionID,
			&rec.StartedAt,
			&rec.EndedAt,
			&rec.DurationSeconds,
			&rec.CustomerPhone,
			&rec.CustomerName,
			&rec.CustomerEmail,
			&rec.CustomerType,
			&rec.Language,
			&rec.CallType,
			&rec.DepartmentEnquired,
			&rec.DoctorEnquired,
			&rec.AppointmentDate,
			&rec.AppointmentTime,
			&rec.ResolutionStatus,
			&rec.Summary,
			&rec.AgentNotes,
			&rec.HangupReason,
		); err != nil {
			return nil, fmt.Errorf("callrecord: recent calls: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("callrecord: recent calls: %w", err)
	}
	return recs, nil
}

var _ Store = (*PostgresStore)(nil)
