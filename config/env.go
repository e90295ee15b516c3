package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment key read by this package.
const EnvPrefix = "CATALOG_"

// LoadDotEnv loads key=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// EnvString returns the trimmed value of CATALOG_<key> if it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses CATALOG_<key> as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return n, true, nil
}

// EnvBool parses CATALOG_<key> as a boolean.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return b, true, nil
}

// EnvDuration parses CATALOG_<key> with time.ParseDuration.
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return d, true, nil
}

// ApplyEnv overrides cfg fields from CATALOG_* environment variables.
func ApplyEnv(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"WORKERS", &cfg.Workers},
		{"PARALLEL", &cfg.Parallelism},
		{"MAX_PAGES", &cfg.MaxPages},
		{"MAX_TOKENS", &cfg.MaxTokens},
	}
	for _, field := range ints {
		value, ok, err := EnvInt(field.key)
		if err != nil {
			return err
		}
		if ok {
			*field.dst = value
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"SITES_FILE", &cfg.SitesFile},
		{"USER_AGENT", &cfg.UserAgent},
		{"PARSER", &cfg.Parser},
		{"OUTPUT", &cfg.OutputFile},
		{"FORMAT", &cfg.OutputFormat},
		{"METRICS_ADDR", &cfg.MetricsAddr},
		{"LISTEN_ADDR", &cfg.ListenAddr},
		{"USERS_FILE", &cfg.UsersFile},
		{"TOKEN_FILE", &cfg.TokenFile},
	}
	for _, field := range strs {
		if value, ok := EnvString(field.key); ok {
			*field.dst = value
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"FIRST_SITE_BUCKET", &cfg.AttributeToFirstSite},
		{"RESPECT_ROBOTS", &cfg.RespectRobotsTxt},
		{"VERBOSE", &cfg.Verbose},
	}
	for _, field := range bools {
		value, ok, err := EnvBool(field.key)
		if err != nil {
			return err
		}
		if ok {
			*field.dst = value
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TIMEOUT", &cfg.Timeout},
		{"TOKEN_TTL", &cfg.TokenTTL},
	}
	for _, field := range durations {
		value, ok, err := EnvDuration(field.key)
		if err != nil {
			return err
		}
		if ok {
			*field.dst = value
		}
	}

	if value, ok := EnvString("SITES"); ok {
		cfg.Sites = SplitSites(value)
	}
	return nil
}
