package engine

import (
	"context"
	"time"

	"github.com/roach88/waypoint/internal/model"
)

// ProgressStore persists per (user, module) progress records.
//
// UpdateProgress must perform its read-merge-write atomically, applying
// model.Apply to the stored record.
type ProgressStore interface {
	GetOrCreateProgress(ctx context.Context, userID, moduleID string, now time.Time) (model.ModuleProgress, error)
	UpdateProgress(ctx context.Context, userID, moduleID string, patch model.ProgressPatch) (model.ModuleProgress, error)
	ListProgress(ctx context.Context, userID string, moduleIDs []string) ([]model.ModuleProgress, error)
	CountCompleted(ctx context.Context, userID string) (int, error)
}

// CertificateStore persists issued certificates.
//
// InsertCertificateUnique returns an error wrapping model.ErrConflict when
// the (user, track) pair or the verification code already exists.
// The Find methods return nil, nil when nothing matches.
type CertificateStore interface {
	FindCertificate(ctx context.Context, userID, trackID string) (*model.Certificate, error)
	InsertCertificateUnique(ctx context.Context, c model.Certificate) error
	FindCertificateByCode(ctx context.Context, code string) (*model.Certificate, error)
	ListCertificates(ctx context.Context, userID string) ([]model.Certificate, error)
	CountCertificates(ctx context.Context, userID string) (int, error)
}

// BadgeStore persists badge definitions and awards.
//
// InsertUserBadgeUnique returns an error wrapping model.ErrConflict when the
// user already holds the badge.
type BadgeStore interface {
	UpsertBadges(ctx context.Context, badges []model.Badge) error
	ListBadges(ctx context.Context) ([]model.Badge, error)
	ListBadgesByCriteriaType(ctx context.Context, typ model.CriteriaType) ([]model.Badge, error)
	FindUserBadge(ctx context.Context, userID, badgeID string) (*model.UserBadge, error)
	InsertUserBadgeUnique(ctx context.Context, ub model.UserBadge) error
	ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error)
}

// Store combines the three stores. Both store.Store (SQLite) and
// pgstore.Store (PostgreSQL) implement it.
type Store interface {
	ProgressStore
	CertificateStore
	BadgeStore
}

// Catalog is the read-only content the engine evaluates against.
// *catalog.Catalog implements it.
type Catalog interface {
	Tracks() []model.Track
	TrackBySlug(slug string) (model.Track, error)
	TrackByID(id string) (model.Track, error)
	ModulesByTrack(slug string) ([]model.Module, error)
	ModuleByID(id string) (model.Module, error)
	PreviousModule(id string) (*model.Module, error)
	Badges() []model.Badge
}

// Counters supplies activity counts the engine does not track itself.
type Counters interface {
	WebinarsAttended(ctx context.Context, userID string) (int, error)
	LoginStreak(ctx context.Context, userID string) (int, error)
}
