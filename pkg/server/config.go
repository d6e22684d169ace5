package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// csrfKeyLength is the key size gorilla/csrf expects.
const csrfKeyLength = 32

// Config holds server configuration.
type Config struct {
	Name    string
	Version string

	Address string
	Port    int

	// Rate limiting applies to the page and API routes only.
	RateLimit      rate.Limit
	RateLimitBurst int

	// Request limits
	MaxBodyBytes int64
	MaxAdds      int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LogLevel slog.Level

	// ConfigPath is a group configuration file or directory.
	ConfigPath string

	// CSRFKey must hold 32 bytes. DefaultConfig generates one when CSRF_KEY
	// is unset, so tokens do not survive restarts.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
}

// DefaultConfig returns defaults overridden by environment variables.
func DefaultConfig() *Config {
	cfg := &Config{
		Name:            "formset-server",
		Version:         version,
		Address:         "",
		Port:            8080,
		RateLimit:       100, // 100 req/s
		RateLimitBurst:  200,
		MaxBodyBytes:    1 << 20,
		MaxAdds:         50,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        slog.LevelInfo,
		TrustedOrigins:  []string{"localhost:8080", "127.0.0.1:8080"},
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil {
			cfg.Port = port
		}
	}

	if logLevelStr := os.Getenv("LOG_LEVEL"); logLevelStr != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevelStr)); err == nil {
			cfg.LogLevel = level
		}
	}

	// Match the orchestrator's termination grace period.
	if shutdownStr := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); shutdownStr != "" {
		var seconds int
		if _, err := fmt.Sscanf(shutdownStr, "%d", &seconds); err == nil && seconds > 0 {
			cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
		}
	}

	cfg.ConfigPath = strings.TrimSpace(os.Getenv("FORMSET_CONFIG"))
	cfg.CSRFKey = parseCSRFKey(os.Getenv("CSRF_KEY"))

	return cfg
}

// parseCSRFKey accepts a 64 character hex string or the raw key. An empty
// value yields a random key.
func parseCSRFKey(raw string) []byte {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		key := make([]byte, csrfKeyLength)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("server: generate csrf key: %v", err))
		}
		return key
	}
	if decoded, err := hex.DecodeString(raw); err == nil && len(decoded) == csrfKeyLength {
		return decoded
	}
	return []byte(raw)
}

func (c *Config) validate() error {
	if len(c.CSRFKey) != csrfKeyLength {
		return fmt.Errorf("server: csrf key must be %d bytes, got %d", csrfKeyLength, len(c.CSRFKey))
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Port)
	}
	if c.MaxAdds < 1 {
		return fmt.Errorf("server: max adds must be at least 1, got %d", c.MaxAdds)
	}
	return nil
}
