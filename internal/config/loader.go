package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "CLAUSELENS"

// keys lists every leaf key so AutomaticEnv can resolve it during Unmarshal.
// Viper only consults the environment for keys it already knows about.
var keys = []string{
	"server.host", "server.port", "server.mode", "server.read_timeout",
	"server.write_timeout", "server.shutdown_timeout", "server.max_upload_bytes",
	"server.cors_origins",

	"backend.base_url", "backend.api_key", "backend.timeout", "backend.retry_max",
	"backend.hybrid_threshold",

	"dashboard.scale", "dashboard.container_width", "dashboard.fade_after",
	"dashboard.remove_after", "dashboard.sensitivity", "dashboard.default_mode",

	"cache.enabled", "cache.addr", "cache.password", "cache.db", "cache.pool_size",
	"cache.dial_timeout", "cache.read_timeout", "cache.write_timeout", "cache.ttl",
	"cache.key_prefix",

	"archive.enabled", "archive.endpoint", "archive.access_key", "archive.secret_key",
	"archive.use_ssl", "archive.region", "archive.contracts_bucket",
	"archive.reports_bucket", "archive.presign_expiry", "archive.report_retention_days",

	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"log.file.path", "log.file.max_size_mb", "log.file.max_backups",
	"log.file.max_age_days", "log.file.compress",

	"metrics.enabled", "metrics.path",

	"workspace.ttl", "workspace.cleanup_interval", "workspace.notification_limit",
}

// newViper builds a Viper with YAML input, CLAUSELENS_ env overrides and a
// "." → "_" key replacer, so "backend.base_url" reads CLAUSELENS_BACKEND_BASE_URL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.SetDefault("metrics.enabled", true)
	return v
}

// Load reads the YAML file at configPath, merges CLAUSELENS_* overrides,
// applies defaults and validates. An empty path loads from the environment
// only.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from CLAUSELENS_<SECTION>_<FIELD> variables
// and defaults, with no file.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load that panics, for use in main.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
