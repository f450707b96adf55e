package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/waypoint/internal/model"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetOrCreateProgress returns the progress record for (user, module),
// creating a NotStarted record stamped with now if none exists.
//
// Uses INSERT ... ON CONFLICT(user_id, module_id) DO NOTHING followed by a
// re-select, so concurrent callers always observe the same row.
func (s *Store) GetOrCreateProgress(ctx context.Context, userID, moduleID string, now time.Time) (model.ModuleProgress, error) {
	p, err := getOrCreateProgress(ctx, s.db, userID, moduleID, now)
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("get or create progress: %w", err)
	}
	return p, nil
}

func getOrCreateProgress(ctx context.Context, db execer, userID, moduleID string, now time.Time) (model.ModuleProgress, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO module_progress (id, user_id, module_id, status, percentage, last_accessed)
		VALUES (?, ?, ?, 'not_started', 0, ?)
		ON CONFLICT(user_id, module_id) DO NOTHING
	`, uuid.Must(uuid.NewV7()).String(), userID, moduleID, formatTime(now))
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("insert: %w", err)
	}

	p, err := scanProgress(db.QueryRowContext(ctx, `
		SELECT `+progressColumns+`
		FROM module_progress
		WHERE user_id = ? AND module_id = ?
	`, userID, moduleID))
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("select: %w", err)
	}
	return p, nil
}

// UpdateProgress merges patch into the (user, module) record inside one
// transaction and returns the stored result. The record is created first if
// it does not exist. The merge is model.Apply, so a stale or duplicate patch
// can never regress status or percentage.
func (s *Store) UpdateProgress(ctx context.Context, userID, moduleID string, patch model.ProgressPatch) (model.ModuleProgress, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("update progress: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	now := patch.At
	if now.IsZero() {
		now = time.Now()
	}

	current, err := getOrCreateProgress(ctx, tx, userID, moduleID, now)
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("update progress: %w", err)
	}

	next := model.Apply(current, patch)
	if err := writeProgress(ctx, tx, next); err != nil {
		return model.ModuleProgress{}, fmt.Errorf("update progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.ModuleProgress{}, fmt.Errorf("update progress: commit: %w", err)
	}
	return next, nil
}

func writeProgress(ctx context.Context, db execer, p model.ModuleProgress) error {
	_, err := db.ExecContext(ctx, `
		UPDATE module_progress
		SET status = ?, percentage = ?, quiz_score = ?, time_spent_minutes = ?,
		    last_accessed = ?, completed_at = ?
		WHERE id = ?
	`,
		p.Status.String(),
		p.Percentage,
		nullInt(p.QuizScore),
		p.TimeSpentMinutes,
		formatTime(p.LastAccessed),
		formatNullTime(p.CompletedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ListProgress returns the user's existing progress records for the given
// modules, ordered by module ID. Modules never accessed are absent.
func (s *Store) ListProgress(ctx context.Context, userID string, moduleIDs []string) ([]model.ModuleProgress, error) {
	if len(moduleIDs) == 0 {
		return []model.ModuleProgress{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(moduleIDs)), ",")
	args := make([]any, 0, len(moduleIDs)+1)
	args = append(args, userID)
	for _, id := range moduleIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+progressColumns+`
		FROM module_progress
		WHERE user_id = ? AND module_id IN (`+placeholders+`)
		ORDER BY module_id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	progress := []model.ModuleProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("list progress: %w", err)
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progress: iterate: %w", err)
	}
	return progress, nil
}

// CountCompleted returns how many modules the user has completed across all
// tracks.
func (s *Store) CountCompleted(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM module_progress
		WHERE user_id = ? AND status = 'completed'
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed: %w", err)
	}
	return n, nil
}
