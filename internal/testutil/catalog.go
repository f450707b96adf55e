package testutil

import (
	"strconv"
	"testing"

	"github.com/roach88/waypoint/internal/catalog"
	"github.com/roach88/waypoint/internal/model"
)

// Fixture catalog layout:
//
//	track-solar (slug "solar"):  sol-1 reading, sol-2 video (100s), sol-3 quiz (4 questions, pass 75)
//	track-wind  (slug "wind"):   wind-1 interactive, wind-2 reading (prerequisite: sol-1)
const (
	TrackSolar = "track-solar"
	TrackWind  = "track-wind"
)

// QuizAnswers are the correct answers to sol-3, in question order.
var QuizAnswers = []int{0, 1, 2, 3}

// FixtureTracks returns the fixture tracks.
func FixtureTracks() []model.Track {
	return []model.Track{
		{ID: TrackSolar, Slug: "solar", Name: "Solar Basics", RequiredTier: "free"},
		{ID: TrackWind, Slug: "wind", Name: "Wind Basics", RequiredTier: "basic"},
	}
}

// FixtureModules returns the fixture modules.
func FixtureModules() []model.Module {
	questions := make([]model.Question, len(QuizAnswers))
	for i, correct := range QuizAnswers {
		questions[i] = model.Question{
			ID:            "q" + strconv.Itoa(i+1),
			Prompt:        "Question " + strconv.Itoa(i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: correct,
		}
	}
	return []model.Module{
		{ID: "sol-1", TrackSlug: "solar", Title: "What is a panel", Sequence: 1,
			Content: model.Reading{EstimatedReadMinutes: 5}},
		{ID: "sol-2", TrackSlug: "solar", Title: "Panels in action", Sequence: 2,
			Content: model.Video{DurationSeconds: 100}},
		{ID: "sol-3", TrackSlug: "solar", Title: "Solar check", Sequence: 3,
			Content: model.Quiz{Questions: questions, PassingScorePercent: 75}},
		{ID: "wind-1", TrackSlug: "wind", Title: "Turbine simulator", Sequence: 1,
			Content: model.Interactive{Tool: "simulator"}},
		{ID: "wind-2", TrackSlug: "wind", Title: "Wind and solar together", Sequence: 2,
			Content: model.Reading{EstimatedReadMinutes: 3}, Prerequisites: []string{"sol-1"}},
	}
}

// FixtureBadges returns one badge per criteria type plus a second
// module-count badge.
func FixtureBadges() []model.Badge {
	return []model.Badge{
		{ID: "badge-first", Slug: "first-steps", Name: "First Steps", Tier: model.TierBronze, Points: 10,
			Criteria: model.ModuleComplete{RequiredCount: 1}},
		{ID: "badge-three", Slug: "hat-trick", Name: "Hat Trick", Tier: model.TierSilver, Points: 25,
			Criteria: model.ModuleComplete{RequiredCount: 3}},
		{ID: "badge-tour", Slug: "welcome", Name: "Welcome", Tier: model.TierBronze, Points: 5,
			Criteria: model.TourComplete{}},
		{ID: "badge-certified", Slug: "certified", Name: "Certified", Tier: model.TierGold, Points: 100,
			Criteria: model.CertificateComplete{}},
		{ID: "badge-webinar", Slug: "webinar-regular", Name: "Webinar Regular", Tier: model.TierSilver, Points: 30,
			Criteria: model.WebinarAttend{RequiredCount: 3}},
		{ID: "badge-streak", Slug: "week-streak", Name: "Week Streak", Tier: model.TierSilver, Points: 20,
			Criteria: model.StreakDays{RequiredCount: 7}},
	}
}

// Catalog builds the fixture catalog, failing the test on error.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(FixtureTracks(), FixtureModules(), FixtureBadges())
	if err != nil {
		t.Fatalf("fixture catalog: %v", err)
	}
	return cat
}
