package model

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier is the ordinal rank of a badge: bronze < silver < gold < platinum.
type Tier int

const (
	TierBronze Tier = iota + 1
	TierSilver
	TierGold
	TierPlatinum
)

var tierNames = map[Tier]string{
	TierBronze:   "bronze",
	TierSilver:   "silver",
	TierGold:     "gold",
	TierPlatinum: "platinum",
}

// String returns the lower-case tier name.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Title returns the display name of the tier ("Gold").
func (t Tier) Title() string {
	// Casers carry state and are not shared between goroutines.
	return cases.Title(language.English).String(t.String())
}

// ParseTier parses a lower-case tier name.
func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if _, ok := tierNames[t]; !ok {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// CriteriaType names a Criteria variant. Values match the persisted
// criteria_type column.
type CriteriaType string

const (
	CriteriaModuleComplete      CriteriaType = "module_complete"
	CriteriaTourComplete        CriteriaType = "tour_complete"
	CriteriaCertificateComplete CriteriaType = "certificate_complete"
	CriteriaWebinarAttend       CriteriaType = "webinar_attend"
	CriteriaStreakDays          CriteriaType = "streak_days"
)

// Criteria is a sealed interface over badge award conditions.
type Criteria interface {
	criteria() // Sealed
	Type() CriteriaType
	// Required is the threshold the matching counter must reach.
	// TourComplete returns 1.
	Required() int
}

// ModuleComplete is satisfied once the user has completed RequiredCount
// modules across all tracks.
type ModuleComplete struct {
	RequiredCount int `json:"required_count"`
}

func (ModuleComplete) criteria() {}
func (ModuleComplete) Type() CriteriaType { return CriteriaModuleComplete }
func (c ModuleComplete) Required() int { return c.RequiredCount }

// TourComplete is satisfied by the tour completion event itself.
type TourComplete struct{}

func (TourComplete) criteria() {}
func (TourComplete) Type() CriteriaType { return CriteriaTourComplete }
func (TourComplete) Required() int { return 1 }

// CertificateComplete is satisfied once the user holds RequiredCount
// certificates. A zero RequiredCount means 1.
type CertificateComplete struct {
	RequiredCount int `json:"required_count,omitempty"`
}

func (CertificateComplete) criteria() {}
func (CertificateComplete) Type() CriteriaType { return CriteriaCertificateComplete }
func (c CertificateComplete) Required() int {
	if c.RequiredCount <= 0 {
		return 1
	}
	return c.RequiredCount
}

// WebinarAttend is satisfied once the user has attended RequiredCount
// webinars.
type WebinarAttend struct {
	RequiredCount int `json:"required_count"`
}

func (WebinarAttend) criteria() {}
func (WebinarAttend) Type() CriteriaType { return CriteriaWebinarAttend }
func (c WebinarAttend) Required() int { return c.RequiredCount }

// StreakDays is satisfied once the user's login streak reaches
// RequiredCount days.
type StreakDays struct {
	RequiredCount int `json:"required_count"`
}

func (StreakDays) criteria() {}
func (StreakDays) Type() CriteriaType { return CriteriaStreakDays }
func (c StreakDays) Required() int { return c.RequiredCount }

// NewCriteria builds a Criteria from its persisted form.
func NewCriteria(typ CriteriaType, requiredCount int) (Criteria, error) {
	switch typ {
	case CriteriaModuleComplete:
		return ModuleComplete{RequiredCount: requiredCount}, nil
	case CriteriaTourComplete:
		return TourComplete{}, nil
	case CriteriaCertificateComplete:
		return CertificateComplete{RequiredCount: requiredCount}, nil
	case CriteriaWebinarAttend:
		return WebinarAttend{RequiredCount: requiredCount}, nil
	case CriteriaStreakDays:
		return StreakDays{RequiredCount: requiredCount}, nil
	default:
		return nil, fmt.Errorf("unknown criteria type %q", typ)
	}
}

// Badge is an award definition.
type Badge struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Tier        Tier     `json:"tier"`
	Points      int      `json:"points"`
	Criteria    Criteria `json:"-"`
}

// MarshalJSON renders the criteria as criteria_type and required_count.
func (b Badge) MarshalJSON() ([]byte, error) {
	type plain Badge
	out := struct {
		plain
		CriteriaType  CriteriaType `json:"criteria_type"`
		RequiredCount int          `json:"required_count"`
	}{plain: plain(b)}
	if b.Criteria != nil {
		out.CriteriaType = b.Criteria.Type()
		out.RequiredCount = b.Criteria.Required()
	}
	return json.Marshal(out)
}

// UserBadge records that a user earned a badge.
type UserBadge struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
	Progress *Snapshot `json:"progress,omitempty"`
}

// Snapshot captures the counter values at the moment a badge was earned.
type Snapshot struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Source  string `json:"source,omitempty"` // Event type that triggered the award
}
