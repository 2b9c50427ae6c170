package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/onnwee/student-roster/internal/metrics"
	"github.com/onnwee/student-roster/internal/roster"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS students (
    id          BIGSERIAL PRIMARY KEY,
    student_id  VARCHAR(255) NOT NULL UNIQUE,
    first_name  VARCHAR(255) NOT NULL,
    last_name   VARCHAR(255) NOT NULL,
    module_code VARCHAR(255) NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores students in a single table; the serial id keeps insertion order.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema creates the students table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create students table: %w", mapError(err))
	}
	return nil
}

func (p *Postgres) Insert(ctx context.Context, rec roster.Record) (roster.Record, error) {
	defer observe("insert")()

	const q = `INSERT INTO students (student_id, first_name, last_name, module_code)
               VALUES ($1, $2, $3, $4)
               RETURNING student_id, first_name, last_name, module_code`
	var out roster.Record
	err := p.db.QueryRowContext(ctx, q, rec.StudentID, rec.FirstName, rec.LastName, rec.ModuleCode).
		Scan(&out.StudentID, &out.FirstName, &out.LastName, &out.ModuleCode)
	if err != nil {
		metrics.StoreOperationErrors.WithLabelValues("insert").Inc()
		return roster.Record{}, mapError(err)
	}
	return out, nil
}

func (p *Postgres) ListAll(ctx context.Context) ([]roster.Record, error) {
	defer observe("list")()

	rows, err := p.db.QueryContext(ctx,
		`SELECT student_id, first_name, last_name, module_code FROM students ORDER BY id`)
	if err != nil {
		metrics.StoreOperationErrors.WithLabelValues("list").Inc()
		return nil, mapError(err)
	}
	defer rows.Close()

	recs := []roster.Record{}
	for rows.Next() {
		var r roster.Record
		if err := rows.Scan(&r.StudentID, &r.FirstName, &r.LastName, &r.ModuleCode); err != nil {
			metrics.StoreOperationErrors.WithLabelValues("list").Inc()
			return nil, mapError(err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreOperationErrors.WithLabelValues("list").Inc()
		return nil, mapError(err)
	}
	return recs, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }

// mapError classifies driver errors. Context errors pass through untouched so
// callers can tell a timeout from an outage.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Detail)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func observe(op string) func() {
	start := time.Now()
	return func() {
		metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
