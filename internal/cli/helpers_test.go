package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testDefsDir holds the tasks (grouped, listed) and menu (ungrouped) collections.
var testDefsDir = filepath.Join("testdata", "defs")

// testEnv runs commands against a fresh database and the test definitions.
type testEnv struct {
	db   string
	defs string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		db:   filepath.Join(t.TempDir(), "ordering.db"),
		defs: testDefsDir,
	}
}

// run executes the root command with args and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", e.db, "--defs", e.defs}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

// mustRun executes a command that must succeed.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "output: %s", out)
	return out
}

// runJSON executes args with --format json and decodes the response.
func (e *testEnv) runJSON(t *testing.T, args ...string) (CLIResponse, error) {
	t.Helper()
	out, err := e.run(t, append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

// decodeData re-decodes a response's data into v.
func decodeData(t *testing.T, resp CLIResponse, v any) {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
