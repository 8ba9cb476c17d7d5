// Package postgres implements service.Storage directly against the task
// table of a Postgres database (for example a Supabase project's
// database connection).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tasktrack/internal/service"
)

// DefaultTimeout bounds every query.
const DefaultTimeout = 5 * time.Second

// Storage is a task table reached through a connection pool.
type Storage struct {
	pool    *pgxpool.Pool
	table   string
	timeout time.Duration
	logger  *slog.Logger
}

// New connects to the database at dsn. A nil logger discards.
func New(ctx context.Context, dsn, table string, timeout time.Duration, logger *slog.Logger) (*Storage, error) {
	if dsn == "" {
		return nil, service.Unavailable("TASKTRACK_DATABASE_URL")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", service.ErrServiceUnavailable, err)
	}
	return NewWithPool(pool, table, timeout, logger), nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool, table string, timeout time.Duration, logger *slog.Logger) *Storage {
	if table == "" {
		table = "tasks"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Storage{
		pool:    pool,
		table:   pgx.Identifier{table}.Sanitize(),
		timeout: timeout,
		logger:  logger,
	}
}

// Close releases the pool.
func (s *Storage) Close() {
	s.pool.Close()
}

// Migrate creates the task table if it does not exist.
func (s *Storage) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+s.table+` (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			title text NOT NULL,
			is_completed boolean NOT NULL DEFAULT false,
			user_id uuid NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`)
	return err
}

const columns = `id::text, title, is_completed, user_id::text, created_at`

// ListByOwner returns the owner's tasks, newest first.
func (s *Storage) ListByOwner(ctx context.Context, ownerID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT `+columns+`
		FROM `+s.table+`
		WHERE user_id::text = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	var tasks []service.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			s.logger.Warn("skipping malformed task row", "err", err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, wrapError(rows.Err())
}

// Insert creates a task and returns the stored row.
func (s *Storage) Insert(ctx context.Context, title, ownerID string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO `+s.table+` (title, user_id)
		VALUES ($1, $2)
		RETURNING `+columns, title, ownerID)
	t, err := scanTask(row)
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return t, nil
}

// UpdateCompletion sets is_completed on one of the owner's tasks.
func (s *Storage) UpdateCompletion(ctx context.Context, ownerID, id string, completed bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table+`
		SET is_completed = $1
		WHERE id::text = $2 AND user_id::text = $3`, completed, id, ownerID)
	return wrapError(err)
}

// DeleteByID deletes one of the owner's tasks.
func (s *Storage) DeleteByID(ctx context.Context, ownerID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		DELETE FROM `+s.table+`
		WHERE id::text = $1 AND user_id::text = $2`, id, ownerID)
	return wrapError(err)
}

// scanTask reads one row, rejecting NULL columns.
func scanTask(row pgx.Row) (service.Task, error) {
	var (
		id, title, owner *string
		completed        *bool
		createdAt        *time.Time
	)
	if err := row.Scan(&id, &title, &completed, &owner, &createdAt); err != nil {
		return service.Task{}, err
	}
	if id == nil || title == nil || completed == nil || owner == nil || createdAt == nil {
		return service.Task{}, fmt.Errorf("%w: task row has NULL columns", service.ErrOperationFailed)
	}
	return service.Task{
		ID:          *id,
		Title:       *title,
		IsCompleted: *completed,
		OwnerID:     *owner,
		CreatedAt:   *createdAt,
	}, nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
