package config

import (
	"time"

	"github.com/s0up4200/elnk/elnk"
)

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Bulk    BulkConfig    `mapstructure:"bulk"`
	Retry   RetryConfig   `mapstructure:"retry"`
	History HistoryConfig `mapstructure:"history"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// APIConfig holds elnk API connection details
type APIConfig struct {
	Key          string        `mapstructure:"key" validate:"required"`
	DomainID     string        `mapstructure:"domain_id"`
	ProjectID    string        `mapstructure:"project_id"`
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	ShortBaseURL string        `mapstructure:"short_base_url" validate:"required,url"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// ClientConfig converts the section into the SDK's configuration
func (c APIConfig) ClientConfig() elnk.Config {
	return elnk.Config{
		APIKey:    c.Key,
		DomainID:  c.DomainID,
		ProjectID: c.ProjectID,
		Timeout:   c.Timeout,
		BaseURL:   c.BaseURL,
	}
}

// BulkConfig controls bulk create and delete
type BulkConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"min=1,max=50"`
}

// RetryConfig controls retried short URL creation
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"min=1,max=10"`
	RetryDelay time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

// Options converts the section into the SDK's retry options
func (c RetryConfig) Options() elnk.RetryOptions {
	return elnk.RetryOptions{MaxRetries: c.MaxRetries, RetryDelay: c.RetryDelay}
}

// HistoryConfig controls the local record of created links
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// FilterConfig contains named filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
	Color  bool   `mapstructure:"color"`
}

// UpdateConfig controls self-update
type UpdateConfig struct {
	Repository string `mapstructure:"repository" validate:"required,repo"`
}
