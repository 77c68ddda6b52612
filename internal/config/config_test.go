package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	s, used, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, used)
	assert.Equal(t, DefaultDatabase, s.Database)
	assert.Equal(t, DefaultBusyTimeout, s.BusyTimeout)
	assert.Equal(t, DefaultDefinitions, s.Definitions)
	assert.Equal(t, DefaultLocale, s.Locale)
	assert.Equal(t, DefaultBindAddress, s.Server.BindAddress)
	assert.Equal(t, DefaultShutdownTimeout, s.Server.ShutdownTimeout)
	assert.Empty(t, s.Accounts())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ordering.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ordering:
  database: /var/lib/ordering/items.db
  busy_timeout: 250ms
  definitions: /etc/ordering/defs
  locale: ru
  server:
    bind_address: 127.0.0.1:9000
    shutdown_timeout: 3s
  auth:
    basic_auth:
      - name: admin
        password: secret
  logging:
    level: debug
    json: true
`), 0o644))

	s, used, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, "/var/lib/ordering/items.db", s.Database)
	assert.Equal(t, 250*time.Millisecond, s.BusyTimeout)
	assert.Equal(t, "/etc/ordering/defs", s.Definitions)
	assert.Equal(t, "ru", s.Locale)
	assert.Equal(t, "127.0.0.1:9000", s.Server.BindAddress)
	assert.Equal(t, 3*time.Second, s.Server.ShutdownTimeout)
	assert.Equal(t, map[string]string{"admin": "secret"}, s.Accounts())
	require.NotNil(t, s.Logging)
	require.NotNil(t, s.Logging.Json)
	assert.True(t, *s.Logging.Json)
}

func TestLoadSearchesConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "ordering.yaml"),
		[]byte("ordering:\n  locale: de\n"), 0o644))
	t.Chdir(dir)

	s, used, err := Load("")
	require.NoError(t, err)
	assert.Contains(t, used, "ordering.yaml")
	assert.Equal(t, "de", s.Locale)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ordering.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ordering:\n  database: file.db\n"), 0o644))
	t.Setenv("ORDERING_DATABASE", "env.db")
	t.Setenv("ORDERING_SERVER_BIND_ADDRESS", ":7070")

	s, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", s.Database)
	assert.Equal(t, ":7070", s.Server.BindAddress)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	debug := "debug"
	bogus := "loud"
	yes := true

	tests := []struct {
		name      string
		logging   *Logging
		verbose   bool
		wantDebug bool
		wantJSON  bool
	}{
		{name: "defaults", logging: nil},
		{name: "verbose", logging: nil, verbose: true, wantDebug: true},
		{name: "configured debug", logging: &Logging{Level: &debug}, wantDebug: true},
		{name: "unknown level", logging: &Logging{Level: &bogus}},
		{name: "json", logging: &Logging{Json: &yes}, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.logging, &buf, tt.verbose)

			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			logger.Info("hello", "k", "v")
			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "msg=hello")
			}
		})
	}
}
