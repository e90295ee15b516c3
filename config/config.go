package config

import (
	"fmt"
	"time"

	"github.com/aluiziolira/go-catalog-crawler/parser"
)

// Config holds crawler and server configuration.
type Config struct {
	Sites                []string
	SitesFile            string
	Workers              int
	Parallelism          int
	Timeout              time.Duration
	MaxPages             int
	UserAgent            string
	Parser               string // css or xpath
	AttributeToFirstSite bool
	RespectRobotsTxt     bool
	OutputFile           string
	OutputFormat         string // csv, json, or dual
	MetricsAddr          string
	Verbose              bool

	ListenAddr string
	UsersFile  string
	TokenFile  string
	TokenTTL   time.Duration
	MaxTokens  int
}

// DefaultConfig returns conservative defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		SitesFile:    "config/url.txt",
		Workers:      16,
		Parallelism:  16,
		Timeout:      30 * time.Second,
		MaxPages:     1000,
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Parser:       parser.BackendCSS,
		OutputFile:   "output/catalog.json",
		OutputFormat: "json",
		ListenAddr:   ":8080",
		UsersFile:    "config/users.txt",
		TokenFile:    "config/token.txt",
		TokenTTL:     24 * time.Hour,
		MaxTokens:    1024,
	}
}

// Validate ensures the crawler settings are coherent. Site URLs are not
// checked here: a malformed site fails on its own when it is fetched.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if _, err := parser.NewBackend(c.Parser); err != nil {
		return fmt.Errorf("parser: %w", err)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}

	return nil
}

// ValidateServer checks the settings only the API server needs.
func (c *Config) ValidateServer() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if c.UsersFile == "" {
		return fmt.Errorf("users file cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	return nil
}
