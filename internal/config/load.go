package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. WORKBOARD_SERVER_PORT.
const EnvPrefix = "WORKBOARD"

// defaults are registered with viper so that AutomaticEnv can see every key
// during Unmarshal, even keys absent from any config file.
var defaults = map[string]any{
	"server.port":                 8080,
	"server.log_level":            "info",
	"database.url":                "",
	"database.max_open_conns":     10,
	"database.max_idle_conns":     5,
	"auth.jwt_secret":             "",
	"auth.token_lifetime_minutes": 60,
	"mail.host":                   "",
	"mail.port":                   587,
	"mail.secure":                 false,
	"mail.username":               "",
	"mail.password":               "",
	"mail.from_name":              "WorkBoard",
	"mail.from_address":           "",
	"mail.timeout":                15 * time.Second,
	"notify.base_url":             "http://localhost:3000",
	"notify.code_prefix":          "WB",
	"notify.date_layout":          "02/01/2006",
	"notify.language":             "en-IN",
	"notify.async":                false,
	"notify.worker_count":         2,
	"notify.queue_size":           100,
	"report.enabled":              true,
	"report.interval":             8 * time.Hour,
	"report.recipient":            "",
	"report.send_to_all":          false,
	"report.timezone":             "UTC",
	"report.concurrency":          4,
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags and cross-field rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Report.SendToAll && cfg.Report.Recipient != "" {
		return fmt.Errorf("config validation failed: report.recipient and report.send_to_all are mutually exclusive")
	}
	if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
		return fmt.Errorf("config validation failed: report.timezone: %w", err)
	}
	return nil
}
