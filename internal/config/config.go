package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	AppEnv     string
	LogFormat  string

	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	JWTSecret string
	JWTIssuer string

	SessionIdleTimeout   time.Duration
	AuthIdleTimeout      time.Duration
	SessionSweepInterval time.Duration
	AnswerRateLimit      int
	DueWordsLimit        int

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
	ReminderTime string
	EmailDebug   bool
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// DevJWTSecret signs tokens outside production when JWT_SECRET is unset
const DevJWTSecret = "vocabclash-dev-secret"

// TokenSecret returns the bearer token signing key
func (c *Config) TokenSecret() string {
	if c.JWTSecret == "" {
		return DevJWTSecret
	}
	return c.JWTSecret
}

// EmailEnabled reports whether outgoing email is configured
func (c *Config) EmailEnabled() bool {
	return c.SESFromEmail != ""
}

// Load reads configuration from an optional .env file and the environment.
// Missing keys fall back to development defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.S().Debugw("no .env file loaded", "error", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("DATABASE_TYPE", "sqlite")
	v.SetDefault("DB_PATH", "./vocabclash.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "vocabclash")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("AUTH_IDLE_TIMEOUT", "60m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "5m")
	v.SetDefault("ANSWER_RATE_LIMIT", 120)
	v.SetDefault("DUE_WORDS_LIMIT", 20)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SES_FROM_EMAIL", "")
	v.SetDefault("SES_FROM_NAME", "VocabClash")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("REMINDER_TIME", "18:00")
	v.SetDefault("EMAIL_DEBUG", false)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:           v.GetString("PORT"),
		AppEnv:               v.GetString("APP_ENV"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		DatabaseType:         strings.ToLower(v.GetString("DATABASE_TYPE")),
		DatabasePath:         v.GetString("DB_PATH"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTIssuer:            v.GetString("JWT_ISSUER"),
		SessionIdleTimeout:   v.GetDuration("SESSION_IDLE_TIMEOUT"),
		AuthIdleTimeout:      v.GetDuration("AUTH_IDLE_TIMEOUT"),
		SessionSweepInterval: v.GetDuration("SESSION_SWEEP_INTERVAL"),
		AnswerRateLimit:      v.GetInt("ANSWER_RATE_LIMIT"),
		DueWordsLimit:        v.GetInt("DUE_WORDS_LIMIT"),
		AWSRegion:            v.GetString("AWS_REGION"),
		SESFromEmail:         v.GetString("SES_FROM_EMAIL"),
		SESFromName:          v.GetString("SES_FROM_NAME"),
		AppBaseURL:           strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		ReminderTime:         v.GetString("REMINDER_TIME"),
		EmailDebug:           v.GetBool("EMAIL_DEBUG"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return errors.Errorf("DATABASE_URL is required for database type %s", c.DatabaseType)
		}
	default:
		return errors.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.SessionIdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.AuthIdleTimeout < c.SessionIdleTimeout {
		return errors.New("AUTH_IDLE_TIMEOUT must not be shorter than SESSION_IDLE_TIMEOUT")
	}
	if c.SessionSweepInterval <= 0 {
		return errors.New("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.AnswerRateLimit <= 0 {
		return errors.New("ANSWER_RATE_LIMIT must be positive")
	}
	if c.DueWordsLimit <= 0 {
		return errors.New("DUE_WORDS_LIMIT must be positive")
	}
	if _, err := time.Parse("15:04", c.ReminderTime); err != nil {
		return errors.Wrap(err, "REMINDER_TIME must be HH:MM")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}
