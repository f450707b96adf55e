package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "waypoint", cmd.Use)
	assert.Contains(t, cmd.Long, "WAYPOINT_*")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"catalog", "validate"},
		{"catalog", "tracks"},
		{"open"},
		{"progress"},
		{"complete"},
		{"interact"},
		{"event"},
		{"certificate", "issue"},
		{"certificate", "verify"},
		{"certificate", "list"},
		{"badges"},
		{"test"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "db", "catalog"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Empty(t, f.DefValue)
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	completeCmd, _, err := cmd.Find([]string{"complete"})
	require.NoError(t, err)
	assert.NotNil(t, completeCmd.Flags().Lookup("score"))

	interactCmd, _, err := cmd.Find([]string{"interact"})
	require.NoError(t, err)
	for _, name := range []string{"reached-end", "watched-seconds", "answers", "runs", "acknowledged"} {
		assert.NotNil(t, interactCmd.Flags().Lookup(name), name)
	}

	eventCmd, _, err := cmd.Find([]string{"event"})
	require.NoError(t, err)
	assert.NotNil(t, eventCmd.Flags().Lookup("count"))

	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)
	assert.NotNil(t, testCmd.Flags().Lookup("update"))
	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "catalog", "validate", contentDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
