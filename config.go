package storefront

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config is the full client configuration. Start from [DefaultConfig] and
// override fields; [Builder.Build] validates it.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the inventory service.
type APIConfig struct {
	// BaseURL is the REST root, for example "http://localhost:8080/api".
	BaseURL string
	Timeout time.Duration
	// StockFeedURL is the ws:// or wss:// inventory hub. Empty disables
	// [Client.WatchStock].
	StockFeedURL string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig controls durable client storage.
type StorageConfig struct {
	// Prefix namespaces every key in Redis ("sf" gives "sf:session.token").
	Prefix string
	// QuotaBytes bounds the in-memory fallback store. 0 means unbounded.
	QuotaBytes int
}

/*
====================================
SESSION CONFIG
====================================
*/

type SessionConfig struct {
	// RejectExpiredTokens discards a persisted JWT whose exp has passed
	// when the session is hydrated. Opaque tokens are always kept.
	RejectExpiredTokens bool
	TokenLeeway         time.Duration
	LoginPath           string
}

/*
====================================
AUDIT & METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used when [Builder.WithConfig] is
// not called.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			Prefix:     "sf",
			QuotaBytes: 5 << 20,
		},
		Session: SessionConfig{
			RejectExpiredTokens: true,
			TokenLeeway:         30 * time.Second,
			LoginPath:           "/login",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// API
	if c.API.BaseURL == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API BaseURL must be an absolute http or https URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}
	if c.API.StockFeedURL != "" {
		u, err := url.Parse(c.API.StockFeedURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return errors.New("API StockFeedURL must be a ws or wss URL")
		}
	}

	// Storage
	if c.Storage.Prefix == "" {
		return errors.New("Storage Prefix cannot be empty")
	}
	if strings.ContainsAny(c.Storage.Prefix, " \t\r\n") {
		return errors.New("Storage Prefix cannot contain whitespace")
	}
	if c.Storage.QuotaBytes < 0 {
		return errors.New("Storage QuotaBytes must be >= 0")
	}

	// Session
	if c.Session.TokenLeeway < 0 {
		return errors.New("Session TokenLeeway must be >= 0")
	}
	if !strings.HasPrefix(c.Session.LoginPath, "/") {
		return errors.New("Session LoginPath must start with /")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
