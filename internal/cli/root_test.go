package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ordering", cmd.Use)
	assert.Contains(t, cmd.Long, "contiguous")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "add", "move", "transfer", "delete", "list", "renumber", "check", "serve", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
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

	for _, name := range []string{"config", "db", "defs"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestInvalidFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "--format", "xml", "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestSettings_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "ordering.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
ordering:
  database: from-file.db
  definitions: from-file
  locale: de
`), 0644))

	opts := &RootOptions{ConfigFile: configFile, Database: "flag.db"}
	settings, err := opts.Settings()
	require.NoError(t, err)
	assert.Equal(t, "flag.db", settings.Database)
	assert.Equal(t, "from-file", settings.Definitions)
	assert.Equal(t, "de", settings.Locale)

	// loaded once
	again, err := opts.Settings()
	require.NoError(t, err)
	assert.Same(t, settings, again)
}

func TestSettings_MissingConfigFile(t *testing.T) {
	opts := &RootOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := opts.Settings()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCommandUsesConfiguredLocale(t *testing.T) {
	env := newTestEnv(t)
	seedTasks(t, env)

	configFile := filepath.Join(t.TempDir(), "ordering.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("ordering:\n  locale: de\n"), 0644))

	out := env.mustRun(t, "--config", configFile, "list", "tasks", "--group", "project=p1", "--options")
	assert.Equal(t, "\"\"\t« Erster »\n\"a\"\ta\n\"b\"\tb\n\"c\"\tc\n\"-1\"\t« Letzter »\n", out)
}
