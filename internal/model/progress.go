package model

import (
	"fmt"
	"time"
)

// Status is the completion state of a module for a user.
// Values are ordered: NotStarted < InProgress < Completed.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusCompleted
)

var statusNames = [...]string{
	StatusNotStarted: "not_started",
	StatusInProgress: "in_progress",
	StatusCompleted:  "completed",
}

// String returns the persisted status name.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus parses a persisted status name.
func ParseStatus(v string) (Status, error) {
	for i, name := range statusNames {
		if name == v {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", v)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ModuleProgress is the per (user, module) progress record.
// Created lazily on first access and never deleted.
type ModuleProgress struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	ModuleID         string     `json:"module_id"`
	Status           Status     `json:"status"`
	Percentage       int        `json:"percentage"`
	QuizScore        *int       `json:"quiz_score,omitempty"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	LastAccessed     time.Time  `json:"last_accessed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// IsCompleted reports whether the record has reached its terminal state.
func (p ModuleProgress) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// ProgressPatch is a requested change to a progress record.
// Nil fields leave the stored value alone.
type ProgressPatch struct {
	Status     *Status
	Percentage *int
	QuizScore  *int
	// TimeSpentMinutes is added to the stored total.
	TimeSpentMinutes int
	// At is the time of the change. It becomes last_accessed, and
	// completed_at when the patch completes the module.
	At time.Time
}

// Apply merges a patch into a progress record and returns the result.
//
// The merge is monotonic, so applying patches in any order converges:
//   - status only moves forward; Completed is terminal
//   - percentage never decreases
//   - once Completed, only last_accessed and time spent change
//   - completing sets percentage to 100 and completed_at to At
//
// Apply is pure; persisting the result is the store's job.
func Apply(p ModuleProgress, patch ProgressPatch) ModuleProgress {
	if !patch.At.IsZero() && patch.At.After(p.LastAccessed) {
		p.LastAccessed = patch.At
	}
	if patch.TimeSpentMinutes > 0 {
		p.TimeSpentMinutes += patch.TimeSpentMinutes
	}
	if p.Status == StatusCompleted {
		return p
	}

	if patch.Percentage != nil && *patch.Percentage > p.Percentage {
		p.Percentage = min(*patch.Percentage, 100)
	}

	if patch.Status == nil || *patch.Status <= p.Status {
		return p
	}
	p.Status = *patch.Status
	if p.Status == StatusCompleted {
		p.Percentage = 100
		if patch.QuizScore != nil {
			score := *patch.QuizScore
			p.QuizScore = &score
		}
		at := patch.At
		if at.IsZero() {
			at = p.LastAccessed
		}
		p.CompletedAt = &at
	}
	return p
}

// StatusPtr returns a pointer to s, for building patches.
func StatusPtr(s Status) *Status { return &s }

// IntPtr returns a pointer to n, for building patches.
func IntPtr(n int) *int { return &n }
