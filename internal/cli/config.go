package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultSecretFile is where Chef clients keep the shared data bag secret.
const DefaultSecretFile = "/etc/chef/encrypted_data_bag_secret"

// Config is read from the environment. Flags override it.
type Config struct {
	SecretFile   string `env:"DATABAG_SECRET_FILE" envDefault:"/etc/chef/encrypted_data_bag_secret"`
	MinVersion   int    `env:"DATABAG_MIN_VERSION" envDefault:"0"`
	HistoryDB    string `env:"DATABAG_HISTORY_DB"`
	OutputFormat string `env:"DATABAG_OUTPUT_FORMAT" envDefault:"json"`
	LogLevel     string `env:"DATABAG_LOG_LEVEL" envDefault:"warn"`
	LogFormat    string `env:"DATABAG_LOG_FORMAT" envDefault:"text"`
}

// LoadConfig parses Config from the process environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}
