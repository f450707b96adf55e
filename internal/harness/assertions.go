package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/waypoint/internal/engine"
	"github.com/roach88/waypoint/internal/model"
	"github.com/roach88/waypoint/internal/store"
)

// AssertionContext provides the state assertions are evaluated against.
type AssertionContext struct {
	Ctx    context.Context
	Store  *store.Store
	Engine *engine.Engine
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages. An empty slice means all assertions passed.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertCertificateCount:
		return assertCertificateCount(a, actx)
	case AssertBadgeCount:
		return assertBadgeCount(a, actx)
	case AssertProgressStatus:
		return assertProgressStatus(a, actx)
	case AssertCompletedCount:
		return assertCompletedCount(a, actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertCertificateCount counts the user's certificates, optionally
// restricted to one track.
func assertCertificateCount(a Assertion, actx *AssertionContext) error {
	certs, err := actx.Engine.Certificates(actx.Ctx, a.User)
	if err != nil {
		return fmt.Errorf("list certificates: %w", err)
	}
	n := 0
	for _, c := range certs {
		if a.Track == "" || c.TrackID == a.Track {
			n++
		}
	}
	return compareCount(a, n)
}

// assertBadgeCount counts the user's earned badges, optionally restricted
// to one badge ID.
func assertBadgeCount(a Assertion, actx *AssertionContext) error {
	held, err := actx.Store.ListUserBadges(actx.Ctx, a.User)
	if err != nil {
		return fmt.Errorf("list user badges: %w", err)
	}
	n := 0
	for _, ub := range held {
		if a.Badge == "" || ub.BadgeID == a.Badge {
			n++
		}
	}
	return compareCount(a, n)
}

// assertProgressStatus reads the stored record without creating one.
// A missing record reads as not_started.
func assertProgressStatus(a Assertion, actx *AssertionContext) error {
	records, err := actx.Store.ListProgress(actx.Ctx, a.User, []string{a.Module})
	if err != nil {
		return fmt.Errorf("list progress: %w", err)
	}
	got := model.StatusNotStarted.String()
	if len(records) > 0 {
		got = records[0].Status.String()
	}
	if got != a.Status {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s on %s for %s", a.Status, a.Module, a.User),
			Actual:   got,
		}
	}
	return nil
}

func assertCompletedCount(a Assertion, actx *AssertionContext) error {
	n, err := actx.Store.CountCompleted(actx.Ctx, a.User)
	if err != nil {
		return fmt.Errorf("count completed: %w", err)
	}
	return compareCount(a, n)
}

func compareCount(a Assertion, got int) error {
	if got == *a.Count {
		return nil
	}
	scope := a.User
	if a.Track != "" {
		scope += " on " + a.Track
	}
	if a.Badge != "" {
		scope += " for " + a.Badge
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d (%s)", *a.Count, scope),
		Actual:   fmt.Sprint(got),
	}
}
