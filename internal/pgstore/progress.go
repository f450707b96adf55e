package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/roach88/waypoint/internal/model"
)

const progressColumns = `id, user_id, module_id, status, percentage, quiz_score, time_spent_minutes, last_accessed, completed_at`

func scanProgress(row pgx.Row) (model.ModuleProgress, error) {
	var (
		p      model.ModuleProgress
		status string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.ModuleID, &status, &p.Percentage, &p.QuizScore,
		&p.TimeSpentMinutes, &p.LastAccessed, &p.CompletedAt); err != nil {
		return model.ModuleProgress{}, err
	}
	var err error
	if p.Status, err = model.ParseStatus(status); err != nil {
		return model.ModuleProgress{}, err
	}
	p.LastAccessed = p.LastAccessed.UTC()
	if p.CompletedAt != nil {
		t := p.CompletedAt.UTC()
		p.CompletedAt = &t
	}
	return p, nil
}

func insertProgress(ctx context.Context, q querier, userID, moduleID string, now time.Time) error {
	_, err := q.Exec(ctx, `
		INSERT INTO module_progress (id, user_id, module_id, status, percentage, last_accessed)
		VALUES ($1, $2, $3, 'not_started', 0, $4)
		ON CONFLICT (user_id, module_id) DO NOTHING
	`, uuid.Must(uuid.NewV7()).String(), userID, moduleID, now.UTC())
	return err
}

// GetOrCreateProgress returns the (user, module) record, creating a
// NotStarted one if absent.
func (s *Store) GetOrCreateProgress(ctx context.Context, userID, moduleID string, now time.Time) (model.ModuleProgress, error) {
	if err := insertProgress(ctx, s.pool, userID, moduleID, now); err != nil {
		return model.ModuleProgress{}, fmt.Errorf("get or create progress: insert: %w", err)
	}
	p, err := scanProgress(s.pool.QueryRow(ctx, `
		SELECT `+progressColumns+` FROM module_progress
		WHERE user_id = $1 AND module_id = $2
	`, userID, moduleID))
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("get or create progress: select: %w", err)
	}
	return p, nil
}

// UpdateProgress merges patch into the row while holding a row lock.
func (s *Store) UpdateProgress(ctx context.Context, userID, moduleID string, patch model.ProgressPatch) (model.ModuleProgress, error) {
	now := patch.At
	if now.IsZero() {
		now = time.Now()
	}

	var next model.ModuleProgress
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertProgress(ctx, tx, userID, moduleID, now); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		current, err := scanProgress(tx.QueryRow(ctx, `
			SELECT `+progressColumns+` FROM module_progress
			WHERE user_id = $1 AND module_id = $2
			FOR UPDATE
		`, userID, moduleID))
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}

		next = model.Apply(current, patch)
		_, err = tx.Exec(ctx, `
			UPDATE module_progress
			SET status = $1, percentage = $2, quiz_score = $3, time_spent_minutes = $4,
			    last_accessed = $5, completed_at = $6
			WHERE id = $7
		`, next.Status.String(), next.Percentage, next.QuizScore, next.TimeSpentMinutes,
			next.LastAccessed.UTC(), next.CompletedAt, next.ID)
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.ModuleProgress{}, fmt.Errorf("update progress: %w", err)
	}
	return next, nil
}

// ListProgress returns existing records for the given modules, ordered by
// module ID.
func (s *Store) ListProgress(ctx context.Context, userID string, moduleIDs []string) ([]model.ModuleProgress, error) {
	if len(moduleIDs) == 0 {
		return []model.ModuleProgress{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+progressColumns+` FROM module_progress
		WHERE user_id = $1 AND module_id = ANY($2)
		ORDER BY module_id COLLATE "C" ASC
	`, userID, moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	out := []model.ModuleProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("list progress: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progress: iterate: %w", err)
	}
	return out, nil
}

// CountCompleted returns the user's lifetime completed-module count.
func (s *Store) CountCompleted(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM module_progress WHERE user_id = $1 AND status = 'completed'
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed: %w", err)
	}
	return n, nil
}
