package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Categories written by this system. Dynamic is the default for ad-hoc
// additions; the other three are used by default-task seeding and display.
const (
	CategoryRecovery = "Recovery"
	CategoryCore     = "Core"
	CategoryDynamic  = "Dynamic"
	CategoryDenial   = "Denial"
)

const taskColumns = `id, title, category, justification, impact, task_date, completed, completed_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Category, &t.Justification, &t.Impact,
		&t.TaskDate, &t.Completed, &t.CompletedAt)
	return t, err
}

// AddTask inserts one task for the given day and returns it with its
// assigned ID.
func (s *Store) AddTask(ctx context.Context, day time.Time, title, category, justification string, impact *string) (Task, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
INSERT INTO tasks (title, category, justification, impact, task_date)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+taskColumns, title, category, justification, impact, day)
	task, err := scanTask(row)
	if err != nil {
		return Task{}, fmt.Errorf("add task: %w", err)
	}
	return task, nil
}

// ListTasks returns all tasks for the given day, ordered by category then ID.
func (s *Store) ListTasks(ctx context.Context, day time.Time) ([]Task, error) {
	return s.listTasks(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE task_date = $1
ORDER BY category, id`, day)
}

// ListIncomplete returns the day's unfinished tasks, same ordering as
// ListTasks.
func (s *Store) ListIncomplete(ctx context.Context, day time.Time) ([]Task, error) {
	return s.listTasks(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE task_date = $1 AND completed = FALSE
ORDER BY category, id`, day)
}

func (s *Store) listTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// MarkDone marks the task as completed. The second return is false when no
// task matches the id on that day; a task from another day is invisible.
func (s *Store) MarkDone(ctx context.Context, day time.Time, id int64) (Task, bool, error) {
	return s.setCompleted(ctx, day, id, `
UPDATE tasks
SET completed = TRUE, completed_at = now()
WHERE id = $1 AND task_date = $2
RETURNING `+taskColumns)
}

// MarkUndone is the inverse of MarkDone and clears completed_at.
func (s *Store) MarkUndone(ctx context.Context, day time.Time, id int64) (Task, bool, error) {
	return s.setCompleted(ctx, day, id, `
UPDATE tasks
SET completed = FALSE, completed_at = NULL
WHERE id = $1 AND task_date = $2
RETURNING `+taskColumns)
}

func (s *Store) setCompleted(ctx context.Context, day time.Time, id int64, query string) (Task, bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	task, err := scanTask(s.pool.QueryRow(ctx, query, id, day))
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, false, nil
	}
	if err != nil {
		return Task{}, false, fmt.Errorf("update task: %w", err)
	}
	return task, true, nil
}

// DeleteTask removes the task and reports whether a row matched.
func (s *Store) DeleteTask(ctx context.Context, day time.Time, id int64) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND task_date = $2`, id, day)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetStats returns the day's aggregate counts.
func (s *Store) GetStats(ctx context.Context, day time.Time) (Stats, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var st Stats
	err := s.pool.QueryRow(ctx, `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE completed),
       COUNT(*) FILTER (WHERE NOT completed)
FROM tasks
WHERE task_date = $1`, day).Scan(&st.Total, &st.Completed, &st.Pending)
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return st, nil
}

// HasTasks reports whether any task exists for the day.
func (s *Store) HasTasks(ctx context.Context, day time.Time) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE task_date = $1)`, day)
}

// HasCompletedAny reports whether any task was completed on the day.
func (s *Store) HasCompletedAny(ctx context.Context, day time.Time) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE task_date = $1 AND completed = TRUE)`, day)
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var found bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return found, nil
}
