// Package config loads the service configuration from environment variables
// and validates it on startup so that misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration. Every field maps to an
// environment variable named SECTION_FIELD, for example SERVER_PORT.
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Upload   UploadConfig   `envconfig:"UPLOAD"`
	Session  SessionConfig  `envconfig:"SESSION"`
	Rate     RateConfig     `envconfig:"RATE_LIMIT"`
	Logging  LoggingConfig  `envconfig:"LOG"`
	Database DatabaseConfig `envconfig:"DATABASE"`
	Metrics  MetricsConfig  `envconfig:"METRICS"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single request, including parsing an upload.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Real-IP and
	// X-Forwarded-For headers are believed. Comma separated.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// UploadConfig holds CSV upload settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 100MB).
	MaxFileSize int64 `envconfig:"MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is how many uploads may be parsed at once.
	MaxConcurrent int `envconfig:"MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an upload waits for a parse slot.
	MaxWaitTime time.Duration `envconfig:"MAX_WAIT_TIME" default:"10s"`
}

// SessionConfig holds in-memory session settings.
type SessionConfig struct {
	Max           int           `envconfig:"MAX" default:"1000"`
	IdleTimeout   time.Duration `envconfig:"IDLE_TIMEOUT" default:"30m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	// CookieSecure marks the session cookie Secure. Enable behind HTTPS.
	CookieSecure bool `envconfig:"COOKIE_SECURE" default:"false"`
}

// RateConfig holds per-client rate limiting settings.
type RateConfig struct {
	Enabled           bool `envconfig:"ENABLED" default:"true"`
	RequestsPerMinute int  `envconfig:"REQUESTS_PER_MINUTE" default:"120"`
	Burst             int  `envconfig:"BURST" default:"20"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `envconfig:"LEVEL" default:"info"`

	// Format is text or json.
	Format string `envconfig:"FORMAT" default:"text"`
}

// DatabaseConfig holds the optional audit database. Leave URL empty to keep
// the audit trail in the log only.
type DatabaseConfig struct {
	URL      string `envconfig:"URL"`
	MaxConns int    `envconfig:"MAX_CONNS" default:"4"`
}

// MetricsConfig controls the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// Token, when set, must be presented as a bearer token to scrape.
	Token string `envconfig:"TOKEN"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
