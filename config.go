package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	storageMemory = "memory"
	storageSQLite = "sqlite"
)

// Config holds the environment driven settings for the site.
type Config struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	Port            int           `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"./dist"`

	// Guestbook
	StorageBackend    string `env:"GUESTBOOK_STORAGE" envDefault:"memory"` // "memory" or "sqlite"
	SQLitePath        string `env:"SQLITE_PATH" envDefault:"portfolio.db"`
	MaxSignatureBytes int    `env:"GUESTBOOK_MAX_SIGNATURE_BYTES" envDefault:"524288"`

	// Admin
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminSecret   string `env:"ADMIN_SECRET"`

	// Contact form (SMTP)
	SMTPHost string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	ToEmail  string `env:"TO_EMAIL"`
}

// LoadConfig parses environment variables into Config.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = storageMemory
	}
	if cfg.StorageBackend != storageMemory && cfg.StorageBackend != storageSQLite {
		return nil, fmt.Errorf("GUESTBOOK_STORAGE must be %q or %q, got %q", storageMemory, storageSQLite, cfg.StorageBackend)
	}
	if cfg.MaxSignatureBytes <= 0 {
		cfg.MaxSignatureBytes = 512 * 1024
	}
	cfg.AdminUsername = strings.TrimSpace(cfg.AdminUsername)
	cfg.SMTPUser = strings.TrimSpace(cfg.SMTPUser)
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
