package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps job records in a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS ` + jobStatusTable + ` (
			job_id TEXT PRIMARY KEY,
			job_type TEXT NOT NULL,
			status TEXT NOT NULL,
			input_payload TEXT,
			output_details TEXT,
			error_message TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: conn, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateJobRecord inserts a PENDING record.
func (s *SQLiteStore) CreateJobRecord(ctx context.Context, jobID, jobType string, inputPayload interface{}) error {
	payload, err := marshalOptional(inputPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal input payload: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+jobStatusTable+` (job_id, job_type, status, input_payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, jobType, StatusPending, nullableText(payload), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}
	return nil
}

// UpdateJobStatus sets status and, when given, output details and error.
func (s *SQLiteStore) UpdateJobStatus(ctx context.Context, jobID, status string, outputDetails interface{}, errorMessage string) error {
	output, err := marshalOptional(outputDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal output details: %w", err)
	}
	var errMsg sql.NullString
	if errorMessage != "" {
		errMsg = sql.NullString{String: errorMessage, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+jobStatusTable+`
		 SET status = ?,
		     output_details = COALESCE(?, output_details),
		     error_message = COALESCE(?, error_message),
		     updated_at = ?
		 WHERE job_id = ?`,
		status, nullableText(output), errMsg, time.Now().UTC().Format(time.RFC3339Nano), jobID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job record %s: %w", jobID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update job record %s: %w", jobID, ErrJobNotFound)
	}
	return nil
}

// GetJob returns the record for jobID or ErrJobNotFound.
func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*VideoJobStatus, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT job_id, job_type, status, input_payload, output_details, error_message, created_at, updated_at
		 FROM `+jobStatusTable+` WHERE job_id = ?`, jobID)

	var (
		rec                     VideoJobStatus
		payload, output, errMsg sql.NullString
		created, updated        string
	)
	if err := row.Scan(&rec.JobID, &rec.JobType, &rec.Status, &payload, &output, &errMsg, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to read job record %s: %w", jobID, err)
	}
	if payload.Valid {
		rec.InputPayload = []byte(payload.String)
	}
	if output.Valid {
		rec.OutputDetails = []byte(output.String)
	}
	if errMsg.Valid {
		msg := errMsg.String
		rec.ErrorMessage = &msg
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &rec, nil
}

func nullableText(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
