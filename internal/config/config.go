// Package config loads the runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const envFile = ".env"

// Config holds runtime configuration for the server.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"INFO"`
	APIVersion  string `envconfig:"API_VERSION" default:"main:latest"`

	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASS" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"30"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"0s"`

	BcryptCost  int   `envconfig:"BCRYPT_COST" default:"12"`
	HashWorkers int64 `envconfig:"HASH_WORKERS" default:"4"`

	MailgunDomain    string `envconfig:"MAILGUN_DOMAIN"`
	MailgunAPIKey    string `envconfig:"MAILGUN_API_KEY"`
	MailgunEU        bool   `envconfig:"MAILGUN_EU" default:"true"`
	ContactEmail     string `envconfig:"CONTACT_EMAIL" default:"team@example.com"`
	BaseWebClientURL string `envconfig:"BASE_WEB_CLIENT_URL" default:"http://localhost:4200/"`

	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:4200"`
	VerifyEmailMX      bool     `envconfig:"VERIFY_EMAIL_MX" default:"false"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the optional .env file and then processes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 bytes")
	}
	if c.HashWorkers < 1 {
		return errors.New("config: HASH_WORKERS must be positive")
	}
	if c.TokenTTL < 0 {
		return errors.New("config: TOKEN_TTL must not be negative")
	}
	return nil
}

// IsProduction returns true when the server runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.Environment == "production"
}

// DatabaseURL returns the keyword/value connection string for pgx.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}
