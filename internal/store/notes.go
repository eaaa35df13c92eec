package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SetNote writes the day's note, overwriting any previous one.
func (s *Store) SetNote(ctx context.Context, day time.Time, text string) (Note, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var n Note
	err := s.pool.QueryRow(ctx, `
INSERT INTO daily_notes (note_date, note, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (note_date)
DO UPDATE SET note = EXCLUDED.note, updated_at = now()
RETURNING note_date, note, updated_at`, day, text).Scan(&n.NoteDate, &n.Note, &n.UpdatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("set note: %w", err)
	}
	return n, nil
}

// GetNote returns the day's note text; the second return is false when the
// day has no note.
func (s *Store) GetNote(ctx context.Context, day time.Time) (string, bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var text string
	err := s.pool.QueryRow(ctx, `SELECT note FROM daily_notes WHERE note_date = $1`, day).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get note: %w", err)
	}
	return text, true, nil
}
