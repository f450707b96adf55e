package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/waypoint/internal/model"
)

// UpsertBadges writes badge definitions, replacing existing rows with the
// same ID. Badges are reference data seeded from the catalog.
func (s *Store) UpsertBadges(ctx context.Context, badges []model.Badge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert badges: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, b := range badges {
		if b.Criteria == nil {
			return fmt.Errorf("upsert badges: badge %s has no criteria", b.ID)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO badges (id, slug, name, description, icon, tier, points, criteria_type, required_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				slug = excluded.slug,
				name = excluded.name,
				description = excluded.description,
				icon = excluded.icon,
				tier = excluded.tier,
				points = excluded.points,
				criteria_type = excluded.criteria_type,
				required_count = excluded.required_count
		`,
			b.ID, b.Slug, b.Name, b.Description, b.Icon, b.Tier.String(), b.Points,
			string(b.Criteria.Type()), b.Criteria.Required(),
		)
		if err != nil {
			return fmt.Errorf("upsert badges: %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert badges: commit: %w", err)
	}
	return nil
}

// ListBadges returns all badge definitions.
func (s *Store) ListBadges(ctx context.Context) ([]model.Badge, error) {
	return s.queryBadges(ctx, "list badges", `
		SELECT `+badgeColumns+` FROM badges
		ORDER BY `+tierOrder+`, id COLLATE BINARY ASC
	`)
}

// ListBadgesByCriteriaType returns the badges whose criteria has the given
// type, ordered by tier then ID.
func (s *Store) ListBadgesByCriteriaType(ctx context.Context, typ model.CriteriaType) ([]model.Badge, error) {
	return s.queryBadges(ctx, "list badges by criteria", `
		SELECT `+badgeColumns+` FROM badges
		WHERE criteria_type = ?
		ORDER BY `+tierOrder+`, id COLLATE BINARY ASC
	`, string(typ))
}

// tierOrder sorts tier names by rank rather than alphabetically.
const tierOrder = `CASE tier WHEN 'bronze' THEN 1 WHEN 'silver' THEN 2 WHEN 'gold' THEN 3 WHEN 'platinum' THEN 4 END`

func (s *Store) queryBadges(ctx context.Context, op, query string, args ...any) ([]model.Badge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	badges := []model.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return badges, nil
}

// FindUserBadge returns the user's award of a badge, or nil if not earned.
func (s *Store) FindUserBadge(ctx context.Context, userID, badgeID string) (*model.UserBadge, error) {
	ub, err := scanUserBadge(s.db.QueryRowContext(ctx, `
		SELECT `+userBadgeColumns+`
		FROM user_badges
		WHERE user_id = ? AND badge_id = ?
	`, userID, badgeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user badge: %w", err)
	}
	return &ub, nil
}

// InsertUserBadgeUnique records a badge award. Returns model.ErrConflict if
// the user already holds the badge.
func (s *Store) InsertUserBadgeUnique(ctx context.Context, ub model.UserBadge) error {
	progress, err := marshalSnapshot(ub.Progress)
	if err != nil {
		return fmt.Errorf("insert user badge: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_badges (id, user_id, badge_id, earned_at, progress)
		VALUES (?, ?, ?, ?, ?)
	`, ub.ID, ub.UserID, ub.BadgeID, formatTime(ub.EarnedAt), progress)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert user badge: %w", model.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user badge: %w", err)
	}
	return nil
}

// ListUserBadges returns the user's earned badges, oldest first.
func (s *Store) ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userBadgeColumns+`
		FROM user_badges
		WHERE user_id = ?
		ORDER BY earned_at ASC, id COLLATE BINARY ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	defer rows.Close()

	out := []model.UserBadge{}
	for rows.Next() {
		ub, err := scanUserBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("list user badges: %w", err)
		}
		out = append(out, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user badges: iterate: %w", err)
	}
	return out, nil
}
