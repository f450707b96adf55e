package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waypoint/internal/model"
)

// shippedCatalog is the repository's content directory.
const shippedCatalog = "../../content"

func TestLoadDirShippedCatalog(t *testing.T) {
	cat, err := LoadDir(shippedCatalog)
	require.NoError(t, err)

	assert.Equal(t, Stats{Tracks: 3, Modules: 15, Badges: 8}, cat.Stats())

	track, err := cat.TrackBySlug("residential-energy")
	require.NoError(t, err)
	assert.Equal(t, "track-residential", track.ID)
	assert.Equal(t, []string{"res-001", "res-002", "res-003", "res-004", "res-005"}, track.ModuleIDs)

	quiz, err := cat.ModuleByID("res-003")
	require.NoError(t, err)
	content, ok := quiz.Content.(model.Quiz)
	require.True(t, ok)
	assert.Len(t, content.Questions, 8)
	assert.Equal(t, 75, content.PassingScorePercent)
	assert.Equal(t, []string{"res-001", "res-002"}, quiz.Prerequisites)

	video, err := cat.ModuleByID("res-002")
	require.NoError(t, err)
	assert.Equal(t, model.Video{DurationSeconds: 1200}, video.Content)

	expert, err := cat.BadgeBySlug("energy-expert")
	require.NoError(t, err)
	assert.Equal(t, model.TierPlatinum, expert.Tier)
	assert.Equal(t, 3, expert.Criteria.Required())
}

func TestLoadDirNotFound(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadDirNoFiles(t *testing.T) {
	_, err := LoadDir(t.TempDir())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadDirCompileErrorHasPosition(t *testing.T) {
	dir := t.TempDir()
	src := `package test

track: t: {id: "track-t", name: "T"}

module: m1: {
	track:    "t"
	title:    "Broken"
	sequence: 1
	content: {type: "hologram"}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.cue"), []byte(src), 0644))

	_, err := LoadDir(dir)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeCompile, loadErr.Code)
	assert.True(t, loadErr.Pos.IsValid())
	assert.Equal(t, 9, loadErr.Pos.Line())
	assert.Contains(t, loadErr.Error(), "hologram")
}

func TestLoadDirCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	src := `package test

track: t: {id: "track-t"}

module: m1: {track: "t", title: "No content", sequence: 1}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte(src), 0644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "content is required")
}

func TestLoadStringValidationErrors(t *testing.T) {
	_, err := LoadString(`
		track: t: {id: "track-t", name: "T"}
		module: m1: {
			track: "t", title: "One", sequence: 1
			content: {type: "reading"}
			prerequisites: ["m9"]
		}
	`)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, ErrUnknownPrerequisite, verrs[0].Code)
}

func TestLoadStringRequiresTracks(t *testing.T) {
	_, err := LoadString(`badge: b: {id: "b", name: "B", tier: "gold", criteria: type: "tour_complete"}`)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeEmpty, loadErr.Code)
}
