package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/waypoint/internal/model"
)

// timeLayout is fixed width so TEXT ordering is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// marshalSnapshot converts a badge progress snapshot to JSON TEXT.
func marshalSnapshot(s *model.Snapshot) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalSnapshot parses JSON TEXT into a snapshot. NULL yields nil.
func unmarshalSnapshot(ns sql.NullString) (*model.Snapshot, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var s model.Snapshot
	if err := json.Unmarshal([]byte(ns.String), &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const progressColumns = `id, user_id, module_id, status, percentage, quiz_score, time_spent_minutes, last_accessed, completed_at`

func scanProgress(row rowScanner) (model.ModuleProgress, error) {
	var (
		p            model.ModuleProgress
		status       string
		quizScore    sql.NullInt64
		lastAccessed string
		completedAt  sql.NullString
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.ModuleID, &status, &p.Percentage, &quizScore,
		&p.TimeSpentMinutes, &lastAccessed, &completedAt); err != nil {
		return model.ModuleProgress{}, err
	}

	var err error
	if p.Status, err = model.ParseStatus(status); err != nil {
		return model.ModuleProgress{}, fmt.Errorf("scan progress: %w", err)
	}
	if p.LastAccessed, err = parseTime(lastAccessed); err != nil {
		return model.ModuleProgress{}, fmt.Errorf("scan progress: %w", err)
	}
	if p.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return model.ModuleProgress{}, fmt.Errorf("scan progress: %w", err)
	}
	p.QuizScore = intPtr(quizScore)
	return p, nil
}

const certificateColumns = `id, user_id, track_id, verification_code, issued_at`

func scanCertificate(row rowScanner) (model.Certificate, error) {
	var (
		c        model.Certificate
		issuedAt string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.TrackID, &c.Code, &issuedAt); err != nil {
		return model.Certificate{}, err
	}
	t, err := parseTime(issuedAt)
	if err != nil {
		return model.Certificate{}, fmt.Errorf("scan certificate: %w", err)
	}
	c.IssuedAt = t
	return c, nil
}

const badgeColumns = `id, slug, name, description, icon, tier, points, criteria_type, required_count`

func scanBadge(row rowScanner) (model.Badge, error) {
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
		return model.Badge{}, fmt.Errorf("scan badge: %w", err)
	}
	if b.Criteria, err = model.NewCriteria(model.CriteriaType(criteriaType), requiredCount); err != nil {
		return model.Badge{}, fmt.Errorf("scan badge: %w", err)
	}
	return b, nil
}

const userBadgeColumns = `id, user_id, badge_id, earned_at, progress`

func scanUserBadge(row rowScanner) (model.UserBadge, error) {
	var (
		ub       model.UserBadge
		earnedAt string
		progress sql.NullString
	)
	if err := row.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &earnedAt, &progress); err != nil {
		return model.UserBadge{}, err
	}

	var err error
	if ub.EarnedAt, err = parseTime(earnedAt); err != nil {
		return model.UserBadge{}, fmt.Errorf("scan user badge: %w", err)
	}
	if ub.Progress, err = unmarshalSnapshot(progress); err != nil {
		return model.UserBadge{}, fmt.Errorf("scan user badge: %w", err)
	}
	return ub, nil
}
