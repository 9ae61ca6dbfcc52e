package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBDSN         string        `mapstructure:"db_dsn" validate:"required"`
	ServerPort    string        `mapstructure:"server_port" validate:"required,numeric"`
	SessionSecret string        `mapstructure:"session_secret" validate:"required,min=16"`
	TokenSecret   string        `mapstructure:"token_secret" validate:"required,min=16"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	MediaDir      string        `mapstructure:"media_dir" validate:"required"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
	LogFile   string `mapstructure:"log_file"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port" validate:"gte=0,lt=65536"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	MailFrom     string `mapstructure:"mail_from" validate:"omitempty,email"`

	AdminUsername string `mapstructure:"admin_username" validate:"required"`
	AdminPassword string `mapstructure:"admin_password" validate:"required"`
	AdminEmail    string `mapstructure:"admin_email" validate:"omitempty,email"`
}

var defaults = map[string]any{
	"db_dsn":         "",
	"server_port":    "8080",
	"session_secret": "",
	"token_secret":   "",
	"token_ttl":      "72h",
	"media_dir":      "./media",
	"log_level":      "info",
	"log_format":     "text",
	"log_file":       "",
	"smtp_host":      "",
	"smtp_port":      587,
	"smtp_username":  "",
	"smtp_password":  "",
	"mail_from":      "noreply@taskboard.local",
	"admin_username": "admin",
	"admin_password": "Admin123!",
	"admin_email":    "admin@taskboard.local",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = cfg.SessionSecret
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}
