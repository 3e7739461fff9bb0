package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all client configuration.
type Config struct {
	Account   AccountConfig   `yaml:"account" toml:"account"`
	Session   SessionConfig   `yaml:"session" toml:"session"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Archive   ArchiveConfig   `yaml:"archive" toml:"archive"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// AccountConfig holds the cloud credentials.
type AccountConfig struct {
	Email    string `yaml:"email" toml:"email"`
	Password string `yaml:"password" toml:"password"`
}

// SessionConfig controls periodic reauthorization.
type SessionConfig struct {
	AuthorizeInterval time.Duration `yaml:"authorize_interval" toml:"authorize_interval"` // 0 disables
}

// TransportConfig holds HTTP settings.
type TransportConfig struct {
	Timeout    time.Duration `yaml:"timeout" toml:"timeout"`
	RateLimit  float64       `yaml:"rate_limit" toml:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst  int           `yaml:"rate_burst" toml:"rate_burst"`
	RequestLog bool          `yaml:"request_log" toml:"request_log"`
}

// ArchiveConfig locates the local event archive.
type ArchiveConfig struct {
	Path string `yaml:"path" toml:"path"` // empty: no archive
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "text" or "json"
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Transport: TransportConfig{
			Timeout:   30 * time.Second,
			RateBurst: 1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

// LoadFile reads a YAML (.yaml, .yml) or TOML (.toml) file over the
// defaults, then applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported file type %q", ext)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Validate reports every problem with c.
func (c Config) Validate() error {
	var errs []error
	if c.Account.Email == "" {
		errs = append(errs, errors.New("account email is required"))
	}
	if c.Account.Password == "" {
		errs = append(errs, errors.New("account password is required"))
	}
	if c.Session.AuthorizeInterval < 0 {
		errs = append(errs, fmt.Errorf("authorize interval %v is negative", c.Session.AuthorizeInterval))
	}
	if c.Transport.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %v is negative", c.Transport.Timeout))
	}
	if c.Transport.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit %v is negative", c.Transport.RateLimit))
	}
	if c.Transport.RateLimit > 0 && c.Transport.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate burst must be at least 1, got %d", c.Transport.RateBurst))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// applyEnv overrides fields whose GIGASET_* variable is set.
func applyEnv(c *Config) {
	c.Account.Email = getenv("GIGASET_EMAIL", c.Account.Email)
	c.Account.Password = getenv("GIGASET_PASSWORD", c.Account.Password)
	c.Session.AuthorizeInterval = getenvDuration("GIGASET_AUTHORIZE_INTERVAL", c.Session.AuthorizeInterval)
	c.Transport.Timeout = getenvDuration("GIGASET_TIMEOUT", c.Transport.Timeout)
	c.Transport.RateLimit = getenvFloat("GIGASET_RATE_LIMIT", c.Transport.RateLimit)
	c.Transport.RateBurst = getenvInt("GIGASET_RATE_BURST", c.Transport.RateBurst)
	c.Transport.RequestLog = getenvBool("GIGASET_REQUEST_LOG", c.Transport.RequestLog)
	c.Archive.Path = getenv("GIGASET_ARCHIVE_PATH", c.Archive.Path)
	c.Log.Level = getenv("GIGASET_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("GIGASET_LOG_FORMAT", c.Log.Format)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
