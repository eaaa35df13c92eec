// Package store persists daily tasks and notes in Postgres.
//
// Every task operation is scoped to a single civil date passed in by the
// caller; the database never evaluates its own CURRENT_DATE, so the day
// boundary follows the configured time zone and tests can inject dates.
package store

import (
	"context"
	"fmt"
	"time"

	"pilotage/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

// opTimeout bounds every store call so a slow database cannot stall the
// receive loop.
const opTimeout = 5 * time.Second

// Task is one daily task row.
type Task struct {
	ID            int64
	Title         string
	Category      string
	Justification string
	Impact        *string
	TaskDate      time.Time
	Completed     bool
	CompletedAt   *time.Time
}

// Note is the free-text note attached to one day.
type Note struct {
	NoteDate  time.Time
	Note      string
	UpdatedAt time.Time
}

// Stats aggregates one day's task counts.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// Store is a Postgres-backed task and note store.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// New constructs a Store on top of an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		logger: logging.NewComponentLogger("Store"),
	}
}

// EnsureSchema creates the tables this store needs if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'Dynamic',
    justification TEXT NOT NULL DEFAULT '',
    impact TEXT,
    task_date DATE NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMPTZ
);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_date_category ON tasks (task_date, category, id);`,
		`CREATE TABLE IF NOT EXISTS daily_notes (
    note_date DATE PRIMARY KEY,
    note TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		`CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value JSONB NOT NULL
);`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Day truncates t to its civil date. The result is anchored in UTC so that
// pgx encodes it as a plain DATE regardless of the wall-clock zone.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}
