package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var contentDir = filepath.Join("..", "..", "content")

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// withDB returns global flags pointing at a fresh SQLite file and the
// shipped catalog. Commands run with the same flags share state.
func withDB(t *testing.T) []string {
	t.Helper()
	t.Setenv("WAYPOINT_DATABASE_DRIVER", "sqlite")
	return []string{"--db", filepath.Join(t.TempDir(), "waypoint.db"), "--catalog", contentDir}
}

func argv(global []string, rest ...string) []string {
	return append(append([]string{}, global...), rest...)
}

// decodeData unmarshals the data field of a JSON CLIResponse into v.
func decodeData(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if v != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}
