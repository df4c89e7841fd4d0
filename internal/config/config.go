// Package config provides centralized configuration for the notes application.
// It loads configuration from CLI flags and environment variables, validates
// required fields, and provides sensible defaults.
//
// The --no-email flag swaps the Resend transport for a mock that captures
// emails; everything else comes from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration. It is constructed once in main
// and injected into the services that need it; nothing reads it as global
// state.
type Config struct {
	// Server settings
	ListenAddr   string
	BaseURL      string
	TemplatesDir string

	// Storage
	DatabasePath    string // Path to the shared SQLite file (e.g. /data/notes.db)
	DatabaseKey     string // Optional SQLCipher key, 64 hex characters (32 bytes)
	SessionDuration time.Duration

	// Mock service flags (controlled by CLI flags, not env vars)
	NoEmail bool // If true, use mock email service (--no-email)

	// Resend email transport
	ResendAPIKey    string
	ResendFromEmail string

	// Administration
	AdminEmails []string // Accounts granted the administrator role
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags and returns them. Call before LoadConfig.
func ParseFlags() (noEmail bool, addr string) {
	flag.BoolVar(&noEmail, "no-email", false, "Use mock email service (captures emails instead of sending)")
	flag.StringVar(&addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.Parse()
	return noEmail, addr
}

// LoadConfig loads configuration from environment variables and CLI flag values.
// The addr flag overrides the LISTEN_ADDR env var if non-empty.
func LoadConfig(noEmail bool, addr string) (*Config, error) {
	cfg := &Config{}

	cfg.NoEmail = noEmail

	// Server settings
	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.BaseURL = strings.TrimSpace(os.Getenv("BASE_URL"))
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost" + cfg.ListenAddr
	}
	cfg.TemplatesDir = getEnvOrDefault("TEMPLATES_DIR", "./web/templates")

	// Storage
	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "./data/notes.db")
	cfg.DatabaseKey = strings.TrimSpace(os.Getenv("DATABASE_KEY"))
	cfg.SessionDuration = parseDurationOrDefault("SESSION_DURATION", 24*time.Hour)

	// Resend email transport
	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.ResendFromEmail = getEnvOrDefault("RESEND_FROM_EMAIL", "noreply@notes.local")

	// Administrators
	cfg.AdminEmails = splitEmails(os.Getenv("ADMIN_EMAILS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.ListenAddr == "" {
		errs = append(errs, "LISTEN_ADDR must not be empty")
	}
	if c.DatabasePath == "" {
		errs = append(errs, "DATABASE_PATH must not be empty")
	}

	// Encryption is optional, but a malformed key is a hard error: opening the
	// database with the wrong key silently produces an unreadable file.
	if c.DatabaseKey != "" {
		if len(c.DatabaseKey) != 64 {
			errs = append(errs, "DATABASE_KEY must be 64 hex characters (32 bytes)")
		} else if _, err := hex.DecodeString(c.DatabaseKey); err != nil {
			errs = append(errs, "DATABASE_KEY must be valid hex (generate with: openssl rand -hex 32)")
		}
	}

	if c.SessionDuration <= 0 {
		errs = append(errs, "SESSION_DURATION must be positive")
	}

	for _, email := range c.AdminEmails {
		if !strings.Contains(email, "@") {
			errs = append(errs, fmt.Sprintf("ADMIN_EMAILS entry %q is not an email address", email))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// EmailConfigured reports whether the real email transport has everything it
// needs. The password-reset flow checks this before touching any account data.
func (c *Config) EmailConfigured() bool {
	if c.NoEmail {
		return true // mock transport needs no credentials
	}
	return c.ResendAPIKey != "" && c.ResendFromEmail != ""
}

// RequireSecureCookies returns true if secure cookies should be required.
// Returns false for localhost development URLs.
func (c *Config) RequireSecureCookies() bool {
	return !strings.HasPrefix(c.BaseURL, "http://localhost") &&
		!strings.HasPrefix(c.BaseURL, "http://127.0.0.1")
}

// IsAdminEmail reports whether the given address is in the configured
// administrator list. Comparison is case-insensitive.
func (c *Config) IsAdminEmail(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if strings.ToLower(admin) == needle {
			return true
		}
	}
	return false
}

// PrintStartupSummary prints a human-readable summary of the configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "notesapp server starting...")

	if c.NoEmail {
		fmt.Fprintln(os.Stderr, "  Email:    Mock (--no-email)")
	} else if c.EmailConfigured() {
		fmt.Fprintf(os.Stderr, "  Email:    Resend (from: %s)\n", c.ResendFromEmail)
	} else {
		fmt.Fprintln(os.Stderr, "  Email:    NOT CONFIGURED (password reset disabled)")
	}

	if c.DatabaseKey != "" {
		fmt.Fprintf(os.Stderr, "  Database: %s (encrypted)\n", c.DatabasePath)
	} else {
		fmt.Fprintf(os.Stderr, "  Database: %s\n", c.DatabasePath)
	}

	fmt.Fprintf(os.Stderr, "  Admins:   %d configured\n", len(c.AdminEmails))
	fmt.Fprintf(os.Stderr, "  Listen:   %s\n", c.ListenAddr)
	fmt.Fprintf(os.Stderr, "  Base:     %s\n", c.BaseURL)
	fmt.Fprintln(os.Stderr, "")
}

// MustLoadConfig loads configuration and panics if validation fails.
// Use this in main() when the application should fail fast on bad config.
func MustLoadConfig(noEmail bool, addr string) *Config {
	cfg, err := LoadConfig(noEmail, addr)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
