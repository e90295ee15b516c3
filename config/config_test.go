package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "negative workers",
			mutate: func(cfg *Config) {
				cfg.Workers = -1
			},
			wantErr: "workers",
		},
		{
			name: "zero parallelism",
			mutate: func(cfg *Config) {
				cfg.Parallelism = 0
			},
			wantErr: "parallelism",
		},
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = 0
			},
			wantErr: "max pages",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "unknown parser",
			mutate: func(cfg *Config) {
				cfg.Parser = "regex"
			},
			wantErr: "parser",
		},
		{
			name: "bad output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Fatalf("default server config should validate, got %v", err)
	}
}

func TestValidateServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TokenTTL = 0
	if err := cfg.ValidateServer(); err == nil || !strings.Contains(err.Error(), "token ttl") {
		t.Fatalf("expected token ttl error, got %v", err)
	}
}

func TestLoadSites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "url.txt")
	content := "https://books.toscrape.com/\n\n   \n  http://mirror.test/  \n#not-a-comment\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sites, err := LoadSites(path)
	if err != nil {
		t.Fatalf("load sites: %v", err)
	}
	if len(sites) != 3 || sites[0] != "https://books.toscrape.com/" || sites[1] != "http://mirror.test/" || sites[2] != "#not-a-comment" {
		t.Fatalf("sites = %v", sites)
	}
}

func TestLoadSitesMissingFile(t *testing.T) {
	if _, err := LoadSites(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv(EnvPrefix+"WORKERS", " 8 ")
	t.Setenv(EnvPrefix+"BAD_INT", "eight")
	t.Setenv(EnvPrefix+"LEGACY", "true")
	t.Setenv(EnvPrefix+"TIMEOUT", "5s")

	if n, ok, err := EnvInt("WORKERS"); err != nil || !ok || n != 8 {
		t.Fatalf("EnvInt = %d %v %v", n, ok, err)
	}
	if _, _, err := EnvInt("BAD_INT"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, ok, err := EnvInt("UNSET"); ok || err != nil {
		t.Fatalf("unset key should report not found")
	}
	if b, ok, err := EnvBool("LEGACY"); err != nil || !ok || !b {
		t.Fatalf("EnvBool = %v %v %v", b, ok, err)
	}
	if d, ok, err := EnvDuration("TIMEOUT"); err != nil || !ok || d != 5*time.Second {
		t.Fatalf("EnvDuration = %v %v %v", d, ok, err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CATALOG_DOTENV_PROBE=yes\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvPrefix+"DOTENV_PROBE", "")
	os.Unsetenv(EnvPrefix + "DOTENV_PROBE")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if value, ok := EnvString("DOTENV_PROBE"); !ok || value != "yes" {
		t.Fatalf("EnvString = %q %v", value, ok)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"WORKERS", "4")
	t.Setenv(EnvPrefix+"PARSER", "xpath")
	t.Setenv(EnvPrefix+"FIRST_SITE_BUCKET", "1")
	t.Setenv(EnvPrefix+"TOKEN_TTL", "90m")
	t.Setenv(EnvPrefix+"SITES", "http://a.test/, ,http://b.test/")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Workers != 4 || cfg.Parser != "xpath" || !cfg.AttributeToFirstSite || cfg.TokenTTL != 90*time.Minute {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Sites) != 2 || cfg.Sites[1] != "http://b.test/" {
		t.Fatalf("sites = %v", cfg.Sites)
	}
	if cfg.Parallelism != DefaultConfig().Parallelism {
		t.Fatalf("unset key changed parallelism")
	}
}

func TestApplyEnvRejectsBadValue(t *testing.T) {
	t.Setenv(EnvPrefix+"MAX_PAGES", "many")
	if err := ApplyEnv(DefaultConfig()); err == nil || !strings.Contains(err.Error(), "MAX_PAGES") {
		t.Fatalf("err = %v, want MAX_PAGES parse error", err)
	}
}

func TestValidateAcceptsMalformedSites(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sites = []string{"books.toscrape.com", "http://", "https://books.toscrape.com/"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
