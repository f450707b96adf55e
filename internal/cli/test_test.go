package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", t.TempDir())
	require.NoError(t, err)

	var result TestResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, result.Total)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := execute(t, "test", harnessScenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ track_certificate")
	assert.Contains(t, out, "Test Summary: 5 passed, 0 failed, 5 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", harnessScenarios, "--filter", "quiz_*")
	require.NoError(t, err)

	var result TestResult
	decodeData(t, out, &result)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "quiz_retry", result.Scenarios[0].Name)
	assert.True(t, result.Scenarios[0].Pass)
}

// writeTempScenario writes a scenario into <tmp>/scenarios with an
// absolute catalog path and returns the scenarios directory.
func writeTempScenario(t *testing.T, body string) string {
	t.Helper()
	catalogDir, err := filepath.Abs(contentDir)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	src := fmt.Sprintf(body, catalogDir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tour.yaml"), []byte(src), 0o644))
	return dir
}

const tourScenario = `name: tour
description: Taking the tour earns the welcome badge
catalog: %s
steps:
  - event: tour_complete
    user: alice
    expect:
      badges: [badge-welcome]
`

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := writeTempScenario(t, tourScenario)

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tour (golden updated)")

	golden := filepath.Join(filepath.Dir(dir), "golden", "tour.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "tour"`)

	out, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed")

	// A stale golden file fails the run
	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFailingExpectation(t *testing.T) {
	dir := writeTempScenario(t, `name: tour
description: Wrong badge expected
catalog: %s
steps:
  - event: tour_complete
    user: alice
    expect:
      badges: [badge-certified]
`)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ tour")
	assert.Contains(t, out, "expected badges [badge-certified]")
}

func TestGoldenFilePath(t *testing.T) {
	got := goldenFilePath(filepath.Join("testdata", "scenarios", "quiz.yaml"), "quiz_retry")
	assert.Equal(t, filepath.Join("testdata", "golden", "quiz_retry.golden"), got)
}
