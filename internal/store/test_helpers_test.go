package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/waypoint/internal/model"
)

var testTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testBadges returns a small badge set covering several criteria types.
func testBadges() []model.Badge {
	return []model.Badge{
		{ID: "badge-certified", Slug: "certified", Name: "Certified", Tier: model.TierGold, Points: 100,
			Criteria: model.CertificateComplete{}},
		{ID: "badge-first", Slug: "first-steps", Name: "First Steps", Tier: model.TierBronze, Points: 10,
			Criteria: model.ModuleComplete{RequiredCount: 1}},
		{ID: "badge-five", Slug: "fast-learner", Name: "Fast Learner", Tier: model.TierSilver, Points: 25,
			Criteria: model.ModuleComplete{RequiredCount: 5}},
		{ID: "badge-tour", Slug: "welcome", Name: "Welcome", Tier: model.TierBronze, Points: 5,
			Criteria: model.TourComplete{}},
	}
}
