package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_AllContiguous(t *testing.T) {
	env := newTestEnv(t)
	seedTasks(t, env)
	env.mustRun(t, "add", "menu", "--id", "home")

	out := env.mustRun(t, "check")
	assert.Equal(t, "✓ menu\n✓ tasks\n", out)
}

func TestCheck_Gap(t *testing.T) {
	env := newTestEnv(t)
	seedTasks(t, env)
	corrupt(t, env.db, `UPDATE items SET position = 5 WHERE id = 'c'`)

	resp, err := env.runJSON(t, "check", "tasks")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConsistency, resp.Error.Code)

	var result CheckResult
	decodeData(t, resp, &result)
	require.Len(t, result.Collections, 1)
	assert.False(t, result.Collections[0].OK)
	assert.Contains(t, result.Collections[0].Error, "CONSISTENCY_VIOLATION")

	// renumber repairs it
	env.mustRun(t, "renumber", "tasks")
	env.mustRun(t, "check", "tasks")
}

func TestCheck_UnknownCollection(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "check", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
