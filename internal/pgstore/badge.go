package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/roach88/waypoint/internal/model"
)

const badgeColumns = `id, slug, name, description, icon, tier, points, criteria_type, required_count`

// tierOrder sorts tier names by rank rather than alphabetically.
const tierOrder = `CASE tier WHEN 'bronze' THEN 1 WHEN 'silver' THEN 2 WHEN 'gold' THEN 3 WHEN 'platinum' THEN 4 END`

func scanBadge(row pgx.Row) (model.Badge, error) {
	var (
		b             model.Badge
		tier          string
		criteriaType  string
		requiredCount int
	)
	if err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.Description, &b.Icon, &tier, &b.Points,
		&criteriaType, &requiredCount); err != nil {
		return model.Badge{}, err
	}
	var err error
	if b.Tier, err = model.ParseTier(tier); err != nil {
		return model.Badge{}, err
	}
	if b.Criteria, err = model.NewCriteria(model.CriteriaType(criteriaType), requiredCount); err != nil {
		return model.Badge{}, err
	}
	return b, nil
}

// UpsertBadges writes badge definitions in one batch transaction.
func (s *Store) UpsertBadges(ctx context.Context, badges []model.Badge) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, b := range badges {
			if b.Criteria == nil {
				return fmt.Errorf("badge %s has no criteria", b.ID)
			}
			batch.Queue(`
				INSERT INTO badges (id, slug, name, description, icon, tier, points, criteria_type, required_count)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (id) DO UPDATE SET
					slug = EXCLUDED.slug,
					name = EXCLUDED.name,
					description = EXCLUDED.description,
					icon = EXCLUDED.icon,
					tier = EXCLUDED.tier,
					points = EXCLUDED.points,
					criteria_type = EXCLUDED.criteria_type,
					required_count = EXCLUDED.required_count
			`, b.ID, b.Slug, b.Name, b.Description, b.Icon, b.Tier.String(), b.Points,
				string(b.Criteria.Type()), b.Criteria.Required())
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("upsert badges: %w", err)
	}
	return nil
}

func (s *Store) queryBadges(ctx context.Context, op, query string, args ...any) ([]model.Badge, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []model.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return out, nil
}

// ListBadges returns all badge definitions ordered by tier, then ID.
func (s *Store) ListBadges(ctx context.Context) ([]model.Badge, error) {
	return s.queryBadges(ctx, "list badges",
		`SELECT `+badgeColumns+` FROM badges ORDER BY `+tierOrder+`, id COLLATE "C"`)
}

// ListBadgesByCriteriaType returns badges with the given criteria type.
func (s *Store) ListBadgesByCriteriaType(ctx context.Context, typ model.CriteriaType) ([]model.Badge, error) {
	return s.queryBadges(ctx, "list badges by criteria",
		`SELECT `+badgeColumns+` FROM badges WHERE criteria_type = $1 ORDER BY `+tierOrder+`, id COLLATE "C"`,
		string(typ))
}

const userBadgeColumns = `id, user_id, badge_id, earned_at, progress`

func scanUserBadge(row pgx.Row) (model.UserBadge, error) {
	var (
		ub       model.UserBadge
		progress []byte
	)
	if err := row.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &ub.EarnedAt, &progress); err != nil {
		return model.UserBadge{}, err
	}
	ub.EarnedAt = ub.EarnedAt.UTC()
	if len(progress) > 0 {
		var snap model.Snapshot
		if err := json.Unmarshal(progress, &snap); err != nil {
			return model.UserBadge{}, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		ub.Progress = &snap
	}
	return ub, nil
}

// FindUserBadge returns the user's award of a badge or nil.
func (s *Store) FindUserBadge(ctx context.Context, userID, badgeID string) (*model.UserBadge, error) {
	ub, err := scanUserBadge(s.pool.QueryRow(ctx, `
		SELECT `+userBadgeColumns+` FROM user_badges WHERE user_id = $1 AND badge_id = $2
	`, userID, badgeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user badge: %w", err)
	}
	return &ub, nil
}

// InsertUserBadgeUnique records an award, reporting model.ErrConflict if the
// user already holds the badge.
func (s *Store) InsertUserBadgeUnique(ctx context.Context, ub model.UserBadge) error {
	var progress []byte
	if ub.Progress != nil {
		data, err := json.Marshal(ub.Progress)
		if err != nil {
			return fmt.Errorf("insert user badge: marshal snapshot: %w", err)
		}
		progress = data
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_badges (id, user_id, badge_id, earned_at, progress)
		VALUES ($1, $2, $3, $4, $5)
	`, ub.ID, ub.UserID, ub.BadgeID, ub.EarnedAt.UTC(), progress)
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
	rows, err := s.pool.Query(ctx, `
		SELECT `+userBadgeColumns+` FROM user_badges
		WHERE user_id = $1
		ORDER BY earned_at ASC, id COLLATE "C" ASC
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
