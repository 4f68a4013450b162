package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/elnk/elnk"
)

// EnvPrefix is the prefix of environment overrides, e.g. ELNK_API_KEY for api.key
const EnvPrefix = "ELNK"

const placeholderAPIKey = "your-api-key-here"

var validate *validator.Validate

// envAliases are the SDK variable names also accepted for the api section
var envAliases = map[string][]string{
	"api.key":        {"ELNK_API_KEY"},
	"api.domain_id":  {"ELNK_API_DOMAIN_ID", "ELNK_DOMAIN_ID"},
	"api.project_id": {"ELNK_API_PROJECT_ID", "ELNK_PROJECT_ID"},
	"api.base_url":   {"ELNK_API_BASE_URL", "ELNK_BASE_URL"},
	"api.timeout":    {"ELNK_API_TIMEOUT", "ELNK_TIMEOUT"},
}

// Load loads the configuration from file and environment. A config file is
// optional unless configPath names one explicitly.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".elnk"))
		}

		// Check /etc
		v.AddConfigPath("/etc/elnk/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && configPath == "":
			// Environment-only configuration
		case errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config file not found: %w", err)
		default:
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", elnk.DefaultBaseURL)
	v.SetDefault("api.short_base_url", elnk.DefaultShortBaseURL)
	v.SetDefault("api.timeout", elnk.DefaultTimeout)

	v.SetDefault("bulk.concurrency", elnk.DefaultConcurrency)

	v.SetDefault("retry.max_retries", elnk.DefaultMaxRetries)
	v.SetDefault("retry.retry_delay", elnk.DefaultRetryDelay)

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.dsn", defaultHistoryDSN())

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("update.repository", "s0up4200/elnk")
}

func defaultHistoryDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "elnk-history.db"
	}
	return filepath.Join(home, ".elnk", "history.db")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.API.Key == placeholderAPIKey {
		return fmt.Errorf("api.key must be set to a valid API key")
	}

	for name, expression := range c.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter.%s is empty", name)
		}
	}

	return nil
}

func init() {
	validate = validator.New()

	// Report fields by their config key rather than the Go field name
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	if err := validate.RegisterValidation("repo", validateRepo); err != nil {
		panic(fmt.Sprintf("failed to register repo validator: %v", err))
	}
}

// validateRepo accepts GitHub repository slugs of the form owner/name
func validateRepo(fl validator.FieldLevel) bool {
	owner, name, ok := strings.Cut(fl.Field().String(), "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}

// formatValidationErrors formats validation errors into a user-friendly error message
func formatValidationErrors(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed validation: %s", fieldPath(err.Namespace()), err.Tag()))
	}
	return fmt.Errorf("validation errors: %s", strings.Join(msgs, "; "))
}

// fieldPath turns a validator namespace such as "Config.api.key" into "api.key"
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
