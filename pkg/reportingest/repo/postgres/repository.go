package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streetfix/report-ingest/pkg/reportingest"
)

// DB is the subset of pgxpool.Pool the repository needs. Each call to Begin
// checks a connection out of the pool, so concurrent requests never share a
// transaction.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository implements reportingest.Repository using PostgreSQL
type Repository struct {
	db DB
}

// New creates a new PostgreSQL repository
func New(db DB) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// InsertReport inserts one report row inside an explicit transaction and
// returns the store-assigned identifier. Any failure rolls back fully and
// surfaces as ErrMetadataWriteFailed carrying the cause.
func (r *Repository) InsertReport(ctx context.Context, report *reportingest.Report) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, r.writeError("begin", err)
	}
	// No-op once Commit has succeeded.
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reports (
			name, longitude, latitude, bucket_name, file_name,
			username, type, detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, date_created`

	err = tx.QueryRow(ctx, query,
		report.Name, report.Longitude, report.Latitude,
		report.BucketName, report.FileName,
		report.Username, report.Type, report.Detail,
	).Scan(&report.ID, &report.DateCreated)
	if err != nil {
		return 0, r.writeError("insert report", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, r.writeError("commit", err)
	}

	return report.ID, nil
}

// ListReports returns all reports ordered by creation time, descending
func (r *Repository) ListReports(ctx context.Context) ([]*reportingest.Report, error) {
	query := `
		SELECT id, name, longitude, latitude, bucket_name, file_name,
		       username, type, detail, date_created
		FROM reports
		ORDER BY date_created DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []*reportingest.Report
	for rows.Next() {
		var report reportingest.Report
		if err := rows.Scan(
			&report.ID, &report.Name, &report.Longitude, &report.Latitude,
			&report.BucketName, &report.FileName,
			&report.Username, &report.Type, &report.Detail, &report.DateCreated); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	return reports, nil
}

func (r *Repository) writeError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502": // not_null_violation
			err = fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			err = fmt.Errorf("reports table does not exist - database migration required")
		default:
			err = fmt.Errorf("%s (code: %s)", pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("%w: %s: %w", reportingest.ErrMetadataWriteFailed, operation, err)
}
