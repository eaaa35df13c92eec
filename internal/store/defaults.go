package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Config keys holding the default task titles, and the titles used when the
// keys are absent.
const (
	recoveryTitlesKey = "default_recovery_tasks"
	coreTitlesKey     = "default_core_tasks"
)

var (
	fallbackRecoveryTitles = []string{"Sport", "Anime/Manga", "Sommeil (8h)"}
	fallbackCoreTitles     = []string{"Apprentissage Rust", "Prospection Cyber"}
)

// SeedDefaults creates the day's default tasks: the configured recovery
// titles under Recovery, then the core titles under Core. It is a no-op
// returning nil when the day already has tasks. All inserts happen in one
// transaction.
func (s *Store) SeedDefaults(ctx context.Context, day time.Time) ([]Task, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	has, err := s.HasTasks(ctx, day)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	defer tx.Rollback(ctx)

	var created []Task
	for _, group := range []struct {
		key      string
		fallback []string
		category string
	}{
		{recoveryTitlesKey, fallbackRecoveryTitles, CategoryRecovery},
		{coreTitlesKey, fallbackCoreTitles, CategoryCore},
	} {
		titles, err := defaultTitles(ctx, tx, group.key, group.fallback)
		if err != nil {
			return nil, err
		}
		for _, title := range titles {
			row := tx.QueryRow(ctx, `
INSERT INTO tasks (title, category, task_date)
VALUES ($1, $2, $3)
RETURNING `+taskColumns, title, group.category, day)
			task, err := scanTask(row)
			if err != nil {
				return nil, fmt.Errorf("seed %s task: %w", group.category, err)
			}
			created = append(created, task)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}
	s.logger.Info("Seeded %d default tasks for %s", len(created), day.Format("2006-01-02"))
	return created, nil
}

// defaultTitles loads a JSON array of titles from the config table, falling
// back to the built-in list when the key is absent or empty.
func defaultTitles(ctx context.Context, tx pgx.Tx, key string, fallback []string) ([]string, error) {
	var titles []string
	err := tx.QueryRow(ctx, `SELECT value FROM config WHERE key = $1`, key).Scan(&titles)
	if errors.Is(err, pgx.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if len(titles) == 0 {
		return fallback, nil
	}
	return titles, nil
}
