package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Server     ServerConfig     `envPrefix:""`
	Database   DatabaseConfig   `envPrefix:"DB_"`
	JWT        JWTConfig        `envPrefix:"JWT_"`
	OAuth      OAuthConfig      `envPrefix:""`
	Cloudinary CloudinaryConfig `envPrefix:"CLOUDINARY_"`
	Paystack   PaystackConfig   `envPrefix:"PAYSTACK_"`
	Mail       MailConfig       `envPrefix:"SMTP_"`
	Reconcile  ReconcileConfig  `envPrefix:"RECONCILE_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	Env          string        `env:"APP_ENV" envDefault:"development"`
	BaseURL      string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL  string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	DSN             string        `env:"DSN" envDefault:"vendora:vendora@tcp(localhost:3306)/vendora?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"ACCESS_SECRET" envDefault:"change-me-in-production"`
	RefreshSecret string        `env:"REFRESH_SECRET" envDefault:"change-me-refresh"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
	Issuer        string        `env:"ISSUER" envDefault:"vendora"`
}

type OAuthConfig struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
}

type PaystackConfig struct {
	BaseURL   string `env:"BASE_URL" envDefault:"https://api.paystack.co"`
	SecretKey string `env:"SECRET_KEY"`
}

type MailConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@vendora.app"`
}

// ReconcileConfig drives the background sweep over stale pending payments.
// Interval is how often the sweep runs; StaleAfter is the minimum age of a
// pending payment before it is re-verified against the gateway.
type ReconcileConfig struct {
	Interval   time.Duration `env:"INTERVAL" envDefault:"20m"`
	StaleAfter time.Duration `env:"STALE_AFTER" envDefault:"10m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
