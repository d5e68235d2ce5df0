package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is the durable patient store consumed by the Directory.
type Store interface {
	GetByPhone(ctx context.Context, phone string) (*PatientRecord, error)
	Upsert(ctx context.Context, rec *PatientRecord) error
}

// PgxPool is the subset of pgxpool.Pool the store needs, so tests can
// substitute pgxmock.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists patient records in Postgres.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore creates a patient store backed by pgx.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		return nil
	}
	return &PostgresStore{pool: pool}
}

// GetByPhone fetches the patient keyed by phone number.
func (s *PostgresStore) GetByPhone(ctx context.Context, phone string) (*PatientRecord, error) {
	query := `
		SELECT phone, name, email, preferred_doctor, department, language,
		       customer_type, visit_count, last_visit, notes, created_at, updated_at
		FROM patients
		WHERE phone = $1
	`
	row := s.pool.QueryRow(ctx, query, phone)

	var rec PatientRecord
	var lastVisit *time.Time
	if err := row.Scan(
		&rec.Phone,
		&rec.Name,
		&rec.Email,
		&rec.PreferredDoctor,
		&rec.Department,
		&rec.Language,
		&rec.CustomerType,
		&rec.VisitCount,
		&lastVisit,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("directory: select patient: %w", err)
	}
	if lastVisit != nil {
		rec.LastVisit = *lastVisit
	}
	return &rec, nil
}

// Upsert inserts the record or merges it into the existing row. Phone is the
// sole identity key; rows are never deleted.
func (s *PostgresStore) Upsert(ctx context.Context, rec *PatientRecord) error {
	if rec == nil || rec.Phone == "" {
		return fmt.Errorf("directory: upsert: phone required")
	}

	var lastVisit *time.Time
	if !rec.LastVisit.IsZero() {
		lastVisit = &rec.LastVisit
	}

	query := `
		INSERT INTO patients (phone, name, email, preferred_doctor, department, language,
		                      customer_type, visit_count, last_visit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (phone)
		DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), patients.name),
			email = COALESCE(NULLIF(EXCLUDED.email, ''), patients.email),
			preferred_doctor = COALESCE(NULLIF(EXCLUDED.preferred_doctor, ''), patients.preferred_doctor),
			department = COALESCE(NULLIF(EXCLUDED.department, ''), patients.department),
			language = COALESCE(NULLIF(EXCLUDED.language, ''), patients.language),
			customer_type = COALESCE(NULLIF(EXCLUDED.customer_type, ''), patients.customer_type),
			visit_count = GREATEST(EXCLUDED.visit_count, patients.visit_count),
			last_visit = COALESCE(EXCLUDED.last_visit, patients.last_visit),
			notes = COALESCE(NULLIF(EXCLUDED.notes, ''), patients.notes),
			updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, query,
		rec.Phone,
		rec.Name,
		rec.Email,
		rec.PreferredDoctor,
		rec.Department,
		rec.Language,
		string(rec.CustomerType),
		rec.VisitCount,
		lastVisit,
		rec.Notes,
	); err != nil {
		return fmt.Errorf("directory: upsert patient: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
