package config

import "time"

// TopLevel wraps the settings under an "ordering" key so the config file is
// namespaced while env vars still bind (ORDERING_SERVER_BIND_ADDRESS, ...).
type TopLevel struct {
	Ordering Settings `json:"ordering" mapstructure:"ordering"`
}

// Settings are the runtime settings of the ordering binary.
type Settings struct {
	Database    string        `json:"database" mapstructure:"database"`
	BusyTimeout time.Duration `json:"busy_timeout" mapstructure:"busy_timeout"`
	Definitions string        `json:"definitions" mapstructure:"definitions"`
	Locale      string        `json:"locale" mapstructure:"locale"`
	Server      Server        `json:"server" mapstructure:"server"`
	Auth        *Auth         `json:"auth,omitempty" mapstructure:"auth"`
	Logging     *Logging      `json:"logging,omitempty" mapstructure:"logging"`
}

type Server struct {
	BindAddress     string        `json:"bind_address" mapstructure:"bind_address"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type Auth struct {
	BasicAuth []BasicAuthUser `json:"basic_auth" mapstructure:"basic_auth"`
}

type BasicAuthUser struct {
	Name     string `json:"name" mapstructure:"name"`
	Password string `json:"password" mapstructure:"password"`
}

type Logging struct {
	Json  *bool   `json:"json,omitempty" mapstructure:"json"`
	Level *string `json:"level,omitempty" mapstructure:"level"`
}

// Accounts returns the configured basic auth users as name => password.
func (s Settings) Accounts() map[string]string {
	accounts := make(map[string]string)
	if s.Auth != nil {
		for _, u := range s.Auth.BasicAuth {
			accounts[u.Name] = u.Password
		}
	}
	return accounts
}
