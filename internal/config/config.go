// Package config defines the configuration structures of the ClauseLens
// dashboard and CLI. No I/O lives here, only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxUploadBytes caps a contract upload.
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

// BackendConfig points at the analysis backend.
type BackendConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RetryMax int           `mapstructure:"retry_max"`
	// HybridThreshold is the GNN confidence below which the backend falls
	// back to the LLM.
	HybridThreshold float64 `mapstructure:"hybrid_threshold"`
}

// DashboardConfig holds viewer and scoring presentation settings.
type DashboardConfig struct {
	Scale          float64       `mapstructure:"scale"`
	ContainerWidth float64       `mapstructure:"container_width"`
	FadeAfter      time.Duration `mapstructure:"fade_after"`
	RemoveAfter    time.Duration `mapstructure:"remove_after"`
	Sensitivity    string        `mapstructure:"sensitivity"`
	DefaultMode    string        `mapstructure:"default_mode"` // llm | gnn | hybrid
}

// CacheConfig holds the Redis result cache parameters.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// ArchiveConfig holds MinIO / S3-compatible object-storage parameters.
type ArchiveConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	Endpoint            string        `mapstructure:"endpoint"`
	AccessKey           string        `mapstructure:"access_key"`
	SecretKey           string        `mapstructure:"secret_key"`
	UseSSL              bool          `mapstructure:"use_ssl"`
	Region              string        `mapstructure:"region"`
	ContractsBucket     string        `mapstructure:"contracts_bucket"`
	ReportsBucket       string        `mapstructure:"reports_bucket"`
	PresignExpiry       time.Duration `mapstructure:"presign_expiry"`
	ReportRetentionDays int           `mapstructure:"report_retention_days"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// WorkspaceConfig bounds the in-memory review sessions.
type WorkspaceConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	// NotificationLimit caps the notifications kept per workspace.
	NotificationLimit int `mapstructure:"notification_limit"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Backend   BackendConfig     `mapstructure:"backend"`
	Dashboard DashboardConfig   `mapstructure:"dashboard"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Archive   ArchiveConfig     `mapstructure:"archive"`
	Log       logging.LogConfig `mapstructure:"log"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Workspace WorkspaceConfig   `mapstructure:"workspace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("config: server.max_upload_bytes must be ≥ 0, got %d", c.Server.MaxUploadBytes)
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: backend.base_url %q must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.RetryMax < 0 {
		return fmt.Errorf("config: backend.retry_max must be ≥ 0, got %d", c.Backend.RetryMax)
	}
	if c.Backend.HybridThreshold < 0 || c.Backend.HybridThreshold > 1 {
		return fmt.Errorf("config: backend.hybrid_threshold %v is out of range [0, 1]", c.Backend.HybridThreshold)
	}

	if c.Dashboard.Scale <= 0 {
		return fmt.Errorf("config: dashboard.scale must be > 0, got %v", c.Dashboard.Scale)
	}
	if c.Dashboard.ContainerWidth < 0 {
		return fmt.Errorf("config: dashboard.container_width must be ≥ 0, got %v", c.Dashboard.ContainerWidth)
	}
	if c.Dashboard.FadeAfter < 0 || c.Dashboard.RemoveAfter < 0 {
		return fmt.Errorf("config: dashboard fade timings must not be negative")
	}
	if _, ok := clause.LookupProfile(c.Dashboard.Sensitivity); !ok {
		return fmt.Errorf("config: dashboard.sensitivity %q is invalid; expected conservative|balanced|aggressive", c.Dashboard.Sensitivity)
	}
	switch c.Dashboard.DefaultMode {
	case "llm", "gnn", "hybrid":
	default:
		return fmt.Errorf("config: dashboard.default_mode %q is invalid; expected llm|gnn|hybrid", c.Dashboard.DefaultMode)
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("config: cache.addr is required when the cache is enabled")
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("config: cache.db must be ≥ 0, got %d", c.Cache.DB)
	}
	if c.Archive.Enabled && c.Archive.Endpoint == "" {
		return fmt.Errorf("config: archive.endpoint is required when the archive is enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Workspace.TTL <= 0 {
		return fmt.Errorf("config: workspace.ttl must be > 0")
	}
	return nil
}

// Addr is the listen address of the dashboard server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
