package elnk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by ConfigFromEnv
const EnvPrefix = "ELNK"

// ConfigFromEnv reads a Config from ELNK_API_KEY, ELNK_DOMAIN_ID,
// ELNK_PROJECT_ID, ELNK_TIMEOUT and ELNK_BASE_URL.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load elnk config from environment: %w", err)
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("%s_API_KEY: %w", EnvPrefix, ErrMissingAPIKey)
	}
	cfg.applyDefaults()
	return cfg, nil
}
