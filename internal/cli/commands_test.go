package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waypoint/internal/engine"
	"github.com/roach88/waypoint/internal/model"
)

func TestCompleteTrackIssuesCertificate(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "complete", "alice", "res-001")...)
	require.NoError(t, err)
	assert.Contains(t, out, "alice res-001: completed (100%)")
	assert.Contains(t, out, "Badge earned: First Steps (Bronze)")

	for _, m := range []string{"res-002", "res-004"} {
		_, err := execute(t, argv(db, "complete", "alice", m)...)
		require.NoError(t, err, m)
	}
	out, err = execute(t, argv(db, "complete", "alice", "res-003", "--score", "88")...)
	require.NoError(t, err)
	assert.Contains(t, out, "score 88")

	out, err = execute(t, argv(db, "--format", "json", "complete", "alice", "res-005")...)
	require.NoError(t, err)
	var res struct {
		Certificate *model.Certificate `json:"certificate"`
		Badges      []struct {
			ID string `json:"id"`
		} `json:"badges"`
	}
	decodeData(t, out, &res)
	require.NotNil(t, res.Certificate)
	assert.Equal(t, "track-residential", res.Certificate.TrackID)
	assert.Regexp(t, `^CERT-[0-9a-z]+-[0-9A-Z]{8}$`, res.Certificate.Code)
	require.Len(t, res.Badges, 2)
	assert.Equal(t, "badge-fast-learner", res.Badges[0].ID)
	assert.Equal(t, "badge-certified", res.Badges[1].ID)

	// Verification, listing and re-issue all see the same certificate
	out, err = execute(t, argv(db, "certificate", "verify", res.Certificate.Code)...)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, err = execute(t, argv(db, "certificate", "list", "alice")...)
	require.NoError(t, err)
	assert.Contains(t, out, res.Certificate.Code)

	out, err = execute(t, argv(db, "--format", "json", "certificate", "issue", "alice", "residential-energy")...)
	require.NoError(t, err)
	var issued IssueResult
	decodeData(t, out, &issued)
	assert.True(t, issued.Issued)
	assert.Equal(t, res.Certificate.Code, issued.Certificate.Code)

	out, err = execute(t, argv(db, "progress", "alice", "residential-energy")...)
	require.NoError(t, err)
	assert.Contains(t, out, "5/5 modules (100%)")
	assert.Contains(t, out, "certificate: "+res.Certificate.Code)
}

func TestCompleteQuizRequiresScore(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "complete", "bob", "res-003")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [VALIDATION]")
}

func TestCompleteUnknownModule(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "--format", "json", "complete", "bob", "nope")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeData(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, string(engine.ErrCodeNotFound), resp.Error.Code)
}

func TestInteractQuiz(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "interact", "carol", "res-003", "--answers", "0,0,0,0,0,0,0,0")...)
	require.NoError(t, err)
	assert.Contains(t, out, "carol res-003: in_progress (0%)")
	assert.Contains(t, out, "Quiz score 13 is below the passing score")

	out, err = execute(t, argv(db, "interact", "carol", "res-003", "--answers", "2,1,2,1,0,3,2,1")...)
	require.NoError(t, err)
	assert.Contains(t, out, "completed (100%) score 100")

	_, err = execute(t, argv(db, "interact", "carol", "res-003", "--answers", "2,1")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestInteractVideoAndReading(t *testing.T) {
	db := withDB(t)

	// res-002 is a 1200s video; 80% is 960s
	out, err := execute(t, argv(db, "interact", "dave", "res-002", "--watched-seconds", "600")...)
	require.NoError(t, err)
	assert.Contains(t, out, "in_progress (50%)")

	out, err = execute(t, argv(db, "interact", "dave", "res-002", "--watched-seconds", "960")...)
	require.NoError(t, err)
	assert.Contains(t, out, "completed (100%)")

	out, err = execute(t, argv(db, "interact", "dave", "res-001", "--reached-end")...)
	require.NoError(t, err)
	assert.Contains(t, out, "dave res-001: completed")
}

func TestOpenAndProgress(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "open", "erin", "res-001")...)
	require.NoError(t, err)
	assert.Contains(t, out, "erin res-001: in_progress (0%)")

	out, err = execute(t, argv(db, "--format", "json", "progress", "erin")...)
	require.NoError(t, err)
	var summaries []engine.TrackSummary
	decodeData(t, out, &summaries)
	require.Len(t, summaries, 3)
	for _, s := range summaries {
		assert.Equal(t, 0, s.CompletedCount)
		assert.Equal(t, 5, s.TotalCount)
	}
}

func TestProgressUnknownTrack(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "progress", "erin", "nope")...)
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_FOUND]")
}

func TestProgressUnknownTrackSuggestsSlug(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "progress", "erin", "grid")...)
	require.Error(t, err)
	assert.Contains(t, out, "did you mean grid-operations?")
}

func TestEventAwardsBadgeOnce(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "event", "frank", "tour_complete")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Badge earned: Welcome Aboard")

	out, err = execute(t, argv(db, "event", "frank", "tour_complete")...)
	require.NoError(t, err)
	assert.Contains(t, out, "tour_complete recorded; no new badge")

	out, err = execute(t, argv(db, "event", "frank", "login", "--count", "7")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Badge earned: Week Streak")

	out, err = execute(t, argv(db, "event", "frank", "bogus")...)
	require.Error(t, err)
	assert.Contains(t, out, "Error [VALIDATION]")
}

func TestBadges(t *testing.T) {
	db := withDB(t)

	_, err := execute(t, argv(db, "event", "gina", "webinar_attend", "--count", "2")...)
	require.NoError(t, err)
	_, err = execute(t, argv(db, "complete", "gina", "res-001")...)
	require.NoError(t, err)

	out, err := execute(t, argv(db, "--format", "json", "badges", "gina")...)
	require.NoError(t, err)
	var statuses []struct {
		Badge struct {
			ID string `json:"id"`
		} `json:"badge"`
		Earned  bool `json:"earned"`
		Current int  `json:"current"`
		Total   int  `json:"total"`
	}
	decodeData(t, out, &statuses)
	require.Len(t, statuses, 8)

	byID := make(map[string]int)
	for i, s := range statuses {
		byID[s.Badge.ID] = i
	}
	first := statuses[byID["badge-first-steps"]]
	assert.True(t, first.Earned)

	fast := statuses[byID["badge-fast-learner"]]
	assert.False(t, fast.Earned)
	assert.Equal(t, 1, fast.Current)
	assert.Equal(t, 5, fast.Total)

	out, err = execute(t, argv(db, "badges", "gina")...)
	require.NoError(t, err)
	assert.Contains(t, out, "★ First Steps")
}

func TestCertificateVerifyUnknownCode(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "certificate", "verify", "CERT-NOPE")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "is not a valid certificate code")
}

func TestCertificateIssueIncompleteTrack(t *testing.T) {
	db := withDB(t)

	out, err := execute(t, argv(db, "certificate", "issue", "henry", "residential-energy")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Track not complete")

	out, err = execute(t, argv(db, "certificate", "list", "henry")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No certificates.")
}

func TestEnforcedPrerequisitesFromEnv(t *testing.T) {
	db := withDB(t)
	t.Setenv("WAYPOINT_ENGINE_PREREQUISITES", "enforced")

	out, err := execute(t, argv(db, "complete", "ivy", "res-002")...)
	require.Error(t, err)
	assert.Contains(t, out, "Error [PREREQUISITES_UNMET]")
}

func TestInvalidConfig(t *testing.T) {
	db := withDB(t)
	t.Setenv("WAYPOINT_LOG_LEVEL", "loud")

	out, err := execute(t, argv(db, "progress", "ivy")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E000]")
}
