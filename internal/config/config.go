package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/curator/internal/domain/permission"
)

// Config holds the curator API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Curation CurationConfig `yaml:"curation"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// DatabaseConfig holds database connection settings. Empty addrs disable feed storage.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether feed storage is configured.
func (d DatabaseConfig) Enabled() bool { return len(d.Addrs) > 0 }

// CurationConfig holds pipeline limits and the permission domain.
type CurationConfig struct {
	MaxRecords       int              `yaml:"max_records"`
	DefaultMaxCount  int              `yaml:"default_max_count"`
	MaxCountCap      int              `yaml:"max_count_cap"`
	BatchConcurrency int              `yaml:"batch_concurrency"`
	MaxBatchSize     int              `yaml:"max_batch_size"`
	Permission       PermissionConfig `yaml:"permission"`
}

// PermissionConfig describes the permission domain: either named levels
// (lowest first) or a numeric [min, max] range.
type PermissionConfig struct {
	Min   int      `yaml:"min"`
	Max   int      `yaml:"max"`
	Names []string `yaml:"names"`
}

// Domain builds the configured permission domain.
func (p PermissionConfig) Domain() (permission.Domain, error) {
	if len(p.Names) > 0 {
		d, err := permission.NewNamed(p.Names...)
		if err != nil {
			return permission.Domain{}, fmt.Errorf("curation.permission.names: %w", err)
		}
		return d, nil
	}
	d, err := permission.NewRange(p.Min, p.Max)
	if err != nil {
		return permission.Domain{}, fmt.Errorf("curation.permission: %w", err)
	}
	return d, nil
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix  string `yaml:"key_prefix"`
	FeedTTLSec int    `yaml:"feed_ttl_sec"` // 0 = feeds never expire
}

// FeedTTL returns the feed expiry as a duration.
func (s StorageConfig) FeedTTL() time.Duration {
	return time.Duration(s.FeedTTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, expands, defaults and validates raw YAML configuration.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 8 << 20
	}
	// An unset ${VAR} leaves an empty entry behind; storage stays off without real addrs.
	addrs := c.Database.Addrs[:0]
	for _, a := range c.Database.Addrs {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	c.Database.Addrs = addrs
	if len(c.Database.Addrs) == 0 {
		c.Database.Addrs = nil
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Curation.MaxRecords <= 0 {
		c.Curation.MaxRecords = 10000
	}
	if c.Curation.DefaultMaxCount <= 0 {
		c.Curation.DefaultMaxCount = 20
	}
	if c.Curation.MaxCountCap <= 0 {
		c.Curation.MaxCountCap = 100
	}
	if c.Curation.BatchConcurrency <= 0 {
		c.Curation.BatchConcurrency = 4
	}
	if c.Curation.MaxBatchSize <= 0 {
		c.Curation.MaxBatchSize = 20
	}
	p := &c.Curation.Permission
	if len(p.Names) == 0 && p.Min == 0 && p.Max == 0 {
		p.Min = permission.DefaultMin
		p.Max = permission.DefaultMax
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "curator:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
		// ok
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if c.Curation.DefaultMaxCount > c.Curation.MaxCountCap {
		return fmt.Errorf(
			"curation.default_max_count (%d) must not exceed curation.max_count_cap (%d)",
			c.Curation.DefaultMaxCount, c.Curation.MaxCountCap,
		)
	}
	if _, err := c.Curation.Permission.Domain(); err != nil {
		return err
	}
	if c.Storage.FeedTTLSec < 0 {
		return fmt.Errorf("storage.feed_ttl_sec must not be negative, got %d", c.Storage.FeedTTLSec)
	}
	for i, k := range c.Auth.APIKeys {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("auth.api_keys[%d] is empty", i)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
