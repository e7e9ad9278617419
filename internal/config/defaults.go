package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost     = "0.0.0.0"
	DefaultServerPort     = 8080
	DefaultServerMode     = "release"
	DefaultMaxUploadBytes = 32 << 20

	DefaultBackendURL      = "http://localhost:8000"
	DefaultBackendTimeout  = 120 * time.Second
	DefaultHybridThreshold = 0.70

	DefaultScale       = 1.5
	DefaultFadeAfter   = 3500 * time.Millisecond
	DefaultRemoveAfter = 600 * time.Millisecond
	DefaultSensitivity = "balanced"
	DefaultModelMode   = "hybrid"

	DefaultCacheAddr = "localhost:6379"
	DefaultCacheTTL  = 24 * time.Hour
	DefaultKeyPrefix = "clauselens:"

	DefaultArchiveEndpoint = "localhost:9000"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"

	DefaultWorkspaceTTL      = 2 * time.Hour
	DefaultCleanupInterval   = 10 * time.Minute
	DefaultNotificationLimit = 50
)

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields in cfg. Values already set win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// report generation and document analysis are slow
		cfg.Server.WriteTimeout = 3 * time.Minute
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}

	// ── Backend ───────────────────────────────────────────────────────────────
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = DefaultBackendURL
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultBackendTimeout
	}
	if cfg.Backend.HybridThreshold == 0 {
		cfg.Backend.HybridThreshold = DefaultHybridThreshold
	}

	// ── Dashboard ─────────────────────────────────────────────────────────────
	if cfg.Dashboard.Scale == 0 {
		cfg.Dashboard.Scale = DefaultScale
	}
	if cfg.Dashboard.FadeAfter == 0 {
		cfg.Dashboard.FadeAfter = DefaultFadeAfter
	}
	if cfg.Dashboard.RemoveAfter == 0 {
		cfg.Dashboard.RemoveAfter = DefaultRemoveAfter
	}
	if cfg.Dashboard.Sensitivity == "" {
		cfg.Dashboard.Sensitivity = DefaultSensitivity
	}
	if cfg.Dashboard.DefaultMode == "" {
		cfg.Dashboard.DefaultMode = DefaultModelMode
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultKeyPrefix
	}

	// ── Archive ───────────────────────────────────────────────────────────────
	if cfg.Archive.Endpoint == "" {
		cfg.Archive.Endpoint = DefaultArchiveEndpoint
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Workspace ─────────────────────────────────────────────────────────────
	if cfg.Workspace.TTL == 0 {
		cfg.Workspace.TTL = DefaultWorkspaceTTL
	}
	if cfg.Workspace.CleanupInterval == 0 {
		cfg.Workspace.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.Workspace.NotificationLimit == 0 {
		cfg.Workspace.NotificationLimit = DefaultNotificationLimit
	}
}
