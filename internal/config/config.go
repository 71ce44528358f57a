package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`

	// External payer/network eligibility API.
	EligibilityAPIURL     string        `mapstructure:"ELIGIBILITY_API_URL"`
	EligibilityAPIKey     string        `mapstructure:"ELIGIBILITY_API_KEY"`
	EligibilityAPITimeout time.Duration `mapstructure:"ELIGIBILITY_API_TIMEOUT"`

	// Notification channel credentials. All injected, never hardcoded.
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	SMTPUsername  string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom      string `mapstructure:"SMTP_FROM"`
	SMSGatewayURL string `mapstructure:"SMS_GATEWAY_URL"`
	SMSGatewayKey string `mapstructure:"SMS_GATEWAY_KEY"`
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("ELIGIBILITY_API_TIMEOUT", "10s")
	v.SetDefault("SMTP_PORT", 587)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("ELIGIBILITY_API_URL")
	v.BindEnv("ELIGIBILITY_API_KEY")
	v.BindEnv("ELIGIBILITY_API_TIMEOUT")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("SMTP_USERNAME")
	v.BindEnv("SMTP_PASSWORD")
	v.BindEnv("SMTP_FROM")
	v.BindEnv("SMS_GATEWAY_URL")
	v.BindEnv("SMS_GATEWAY_KEY")
	v.BindEnv("WEBHOOK_SECRET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production the
// upstream eligibility API must be configured with an HTTPS URL and an API
// key; in development the service falls back to the deterministic fake
// provider when the URL is unset.
func (c *Config) Validate() error {
	if c.EligibilityAPIURL != "" {
		u, err := url.Parse(c.EligibilityAPIURL)
		if err != nil {
			return fmt.Errorf("ELIGIBILITY_API_URL is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("ELIGIBILITY_API_URL scheme must be http or https, got %q", u.Scheme)
		}
		if c.IsProduction() && u.Scheme != "https" {
			return fmt.Errorf("ELIGIBILITY_API_URL must use https in production")
		}
	}
	if c.IsProduction() && c.EligibilityAPIURL == "" {
		return fmt.Errorf("ELIGIBILITY_API_URL is required in production")
	}
	if c.IsProduction() && c.EligibilityAPIKey == "" {
		return fmt.Errorf("ELIGIBILITY_API_KEY is required in production")
	}

	if c.EligibilityAPITimeout <= 0 {
		return fmt.Errorf("ELIGIBILITY_API_TIMEOUT must be positive, got %s", c.EligibilityAPITimeout)
	}

	// SMTP is optional, but when a host is given the sender address must be set.
	if c.SMTPHost != "" && c.SMTPFrom == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}

	return nil
}
