package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"GIGASET_EMAIL", "GIGASET_PASSWORD", "GIGASET_AUTHORIZE_INTERVAL",
	"GIGASET_TIMEOUT", "GIGASET_RATE_LIMIT", "GIGASET_RATE_BURST",
	"GIGASET_REQUEST_LOG", "GIGASET_ARCHIVE_PATH",
	"GIGASET_LOG_LEVEL", "GIGASET_LOG_FORMAT",
}

// clearEnv blanks every GIGASET_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Account.Email != "" || cfg.Account.Password != "" {
		t.Fatalf("expected empty credentials, got %+v", cfg.Account)
	}
	if cfg.Session.AuthorizeInterval != 0 {
		t.Fatalf("expected reauthorization disabled by default, got %v", cfg.Session.AuthorizeInterval)
	}
	if cfg.Transport.Timeout != 30*time.Second {
		t.Fatalf("expected default Timeout=30s, got %v", cfg.Transport.Timeout)
	}
	if cfg.Transport.RateLimit != 0 || cfg.Transport.RateBurst != 1 {
		t.Fatalf("expected no rate limit with burst 1, got %v/%d", cfg.Transport.RateLimit, cfg.Transport.RateBurst)
	}
	if cfg.Transport.RequestLog {
		t.Fatal("expected default RequestLog=false")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("expected info/text logging, got %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIGASET_EMAIL", "user@example.com")
	t.Setenv("GIGASET_PASSWORD", "secret")
	t.Setenv("GIGASET_AUTHORIZE_INTERVAL", "6h")
	t.Setenv("GIGASET_RATE_LIMIT", "2.5")
	t.Setenv("GIGASET_RATE_BURST", "4")
	t.Setenv("GIGASET_REQUEST_LOG", "true")
	t.Setenv("GIGASET_ARCHIVE_PATH", "/tmp/events.db")

	cfg := Load()

	if cfg.Account.Email != "user@example.com" || cfg.Account.Password != "secret" {
		t.Fatalf("unexpected credentials %+v", cfg.Account)
	}
	if cfg.Session.AuthorizeInterval != 6*time.Hour {
		t.Fatalf("expected 6h, got %v", cfg.Session.AuthorizeInterval)
	}
	if cfg.Transport.RateLimit != 2.5 || cfg.Transport.RateBurst != 4 {
		t.Fatalf("expected 2.5/4, got %v/%d", cfg.Transport.RateLimit, cfg.Transport.RateBurst)
	}
	if !cfg.Transport.RequestLog {
		t.Fatal("expected RequestLog=true")
	}
	if cfg.Archive.Path != "/tmp/events.db" {
		t.Fatalf("expected archive path, got %q", cfg.Archive.Path)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIGASET_TIMEOUT", "soon")
	t.Setenv("GIGASET_RATE_BURST", "many")
	t.Setenv("GIGASET_REQUEST_LOG", "maybe")

	cfg := Load()

	if cfg.Transport.Timeout != 30*time.Second {
		t.Fatalf("expected fallback Timeout=30s, got %v", cfg.Transport.Timeout)
	}
	if cfg.Transport.RateBurst != 1 {
		t.Fatalf("expected fallback RateBurst=1, got %d", cfg.Transport.RateBurst)
	}
	if cfg.Transport.RequestLog {
		t.Fatal("expected fallback RequestLog=false")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "gigaset.yaml", `
account:
  email: yaml@example.com
  password: from-file
session:
  authorize_interval: 2h
transport:
  rate_limit: 1
log:
  format: json
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Account.Email != "yaml@example.com" {
		t.Fatalf("expected email from file, got %q", cfg.Account.Email)
	}
	if cfg.Session.AuthorizeInterval != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", cfg.Session.AuthorizeInterval)
	}
	if cfg.Transport.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout kept, got %v", cfg.Transport.Timeout)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadFile_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "gigaset.toml", `
[account]
email = "toml@example.com"
password = "from-file"

[transport]
timeout = "10s"
rate_burst = 3

[archive]
path = "events.db"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Account.Email != "toml@example.com" {
		t.Fatalf("expected email from file, got %q", cfg.Account.Email)
	}
	if cfg.Transport.Timeout != 10*time.Second || cfg.Transport.RateBurst != 3 {
		t.Fatalf("unexpected transport config %+v", cfg.Transport)
	}
	if cfg.Archive.Path != "events.db" {
		t.Fatalf("expected archive path from file, got %q", cfg.Archive.Path)
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIGASET_PASSWORD", "from-env")
	path := writeFile(t, "gigaset.yml", "account:\n  email: a@b.c\n  password: from-file\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Account.Password != "from-env" {
		t.Fatalf("expected env to win, got %q", cfg.Account.Password)
	}
	if cfg.Account.Email != "a@b.c" {
		t.Fatalf("expected file email kept, got %q", cfg.Account.Email)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := LoadFile(writeFile(t, "gigaset.json", "{}")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported file type error, got %v", err)
	}
	if _, err := LoadFile(writeFile(t, "bad.yaml", "account: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Account = AccountConfig{Email: "a@b.c", Password: "pw"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing email", func(c *Config) { c.Account.Email = "" }, "email"},
		{"missing password", func(c *Config) { c.Account.Password = "" }, "password"},
		{"negative interval", func(c *Config) { c.Session.AuthorizeInterval = -time.Second }, "interval"},
		{"negative timeout", func(c *Config) { c.Transport.Timeout = -1 }, "timeout"},
		{"negative rate", func(c *Config) { c.Transport.RateLimit = -1 }, "rate limit"},
		{"zero burst", func(c *Config) { c.Transport.RateLimit = 1; c.Transport.RateBurst = 0 }, "burst"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
