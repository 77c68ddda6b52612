// Package config reads the runtime settings of the ordering binary from an
// optional ordering.yaml and ORDERING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigPaths are searched for ordering.yaml when no file is given.
var DefaultConfigPaths = []string{
	".",
	"./config",
}

// Defaults for settings the file and environment leave unset.
const (
	DefaultDatabase        = "ordering.db"
	DefaultBusyTimeout     = 5 * time.Second
	DefaultDefinitions     = "defs"
	DefaultLocale          = "en"
	DefaultBindAddress     = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
)

// Load reads the settings. configFile may be empty, in which case
// DefaultConfigPaths are searched and a missing file is not an error.
// It returns the settings and the config file used, if any.
func Load(configFile string) (*Settings, string, error) {
	v := viper.New()
	v.AllowEmptyEnv(true)
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ordering")
		for _, p := range DefaultConfigPaths {
			v.AddConfigPath(p)
		}
	}

	// ordering.server.bind_address <=> ORDERING_SERVER_BIND_ADDRESS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	}

	// UnmarshalKey doesn't play well with env vars, hence the top level
	// wrapping.
	var t TopLevel
	if err := v.Unmarshal(&t); err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}
	return &t.Ordering, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ordering.database", DefaultDatabase)
	v.SetDefault("ordering.busy_timeout", DefaultBusyTimeout)
	v.SetDefault("ordering.definitions", DefaultDefinitions)
	v.SetDefault("ordering.locale", DefaultLocale)
	v.SetDefault("ordering.server.bind_address", DefaultBindAddress)
	v.SetDefault("ordering.server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("ordering.logging.level", "info")
	v.SetDefault("ordering.logging.json", false)
}
