package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("job not found")

// Store is the single authority for job state. It is backed by an in-memory
// SQLite database, so job records live exactly as long as the process: the
// registry survives no restart by design.
type Store struct {
	db *sql.DB
}

// Open initializes the in-memory registry database.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A memory database exists per connection; pinning the pool to one
	// connection keeps it alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection, discarding all records.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// Create registers a new pending job and assigns its unique identifier.
func (s *Store) Create(ctx context.Context, job *Job) error {
	ctx = ensureContext(ctx)

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = StatusPending
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			id, kind, source_path, out_format, fps, cell_size, max_block,
			status, progress, message, frames_done, frames_total,
			output_path, error_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, string(job.Kind), job.SourcePath, job.OutFormat, job.FPS,
		job.CellSize, job.MaxBlock, string(job.Status), job.Progress,
		job.Message, job.FramesDone, job.FramesTotal, job.OutputPath,
		job.ErrorMsg, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a job.
func (s *Store) Update(ctx context.Context, job *Job) error {
	ctx = ensureContext(ctx)
	job.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET
			status = ?, progress = ?, message = ?, frames_done = ?,
			frames_total = ?, output_path = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		string(job.Status), job.Progress, job.Message, job.FramesDone,
		job.FramesTotal, job.OutputPath, job.ErrorMsg, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update job %s: %w", job.ID, ErrNotFound)
	}
	return nil
}

// GetByID fetches one job.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job, err
}

// List returns all jobs in creation order.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var result []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

// NextPending claims the oldest pending job, transitioning it to processing.
// Returns nil when no pending job exists.
func (s *Store) NextPending(ctx context.Context) (*Job, error) {
	ctx = ensureContext(ctx)

	row := s.db.QueryRowContext(ctx,
		selectColumns+" WHERE status = ? ORDER BY created_at, id LIMIT 1",
		string(StatusPending),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.Status = StatusProcessing
	job.Message = "Starting..."
	if err := s.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// MarkFailed transitions a job to failed with the given message.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	job.SetFailed(message)
	return s.Update(ctx, job)
}

const selectColumns = `
	SELECT id, kind, source_path, out_format, fps, cell_size, max_block,
		status, progress, message, frames_done, frames_total,
		output_path, error_message, created_at, updated_at
	FROM jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var kind, status string
	err := row.Scan(
		&job.ID, &kind, &job.SourcePath, &job.OutFormat, &job.FPS,
		&job.CellSize, &job.MaxBlock, &status, &job.Progress, &job.Message,
		&job.FramesDone, &job.FramesTotal, &job.OutputPath, &job.ErrorMsg,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	job.Kind = Kind(kind)
	job.Status = Status(status)
	return &job, nil
}
