package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
	Notify   NotifyConfig   `mapstructure:"notify" validate:"required"`
	Report   ReportConfig   `mapstructure:"report" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// MailConfig holds static SMTP settings. When Host is empty the settings
// stored in the database are used instead; both may legitimately be empty,
// in which case no mail is sent.
type MailConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port" validate:"gte=0,lt=65536"`
	Secure      bool          `mapstructure:"secure"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	FromName    string        `mapstructure:"from_name"`
	FromAddress string        `mapstructure:"from_address" validate:"omitempty,email"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// NotifyConfig controls how notifications are rendered and dispatched.
type NotifyConfig struct {
	BaseURL     string `mapstructure:"base_url" validate:"required,url"`
	CodePrefix  string `mapstructure:"code_prefix" validate:"required,alphanum,max=8"`
	DateLayout  string `mapstructure:"date_layout" validate:"required"`
	Language    string `mapstructure:"language" validate:"required"`
	Async       bool   `mapstructure:"async"`
	WorkerCount int    `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int    `mapstructure:"queue_size" validate:"gte=1"`
}

// ReportConfig controls the periodic task report.
type ReportConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	Recipient   string        `mapstructure:"recipient" validate:"omitempty,email"`
	SendToAll   bool          `mapstructure:"send_to_all"`
	Timezone    string        `mapstructure:"timezone" validate:"required"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=1"`
}
