package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadSites reads site root URLs from path, one per line. Blank lines are
// skipped.
func LoadSites(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sites file: %w", err)
	}
	defer f.Close()

	sites, err := ParseSites(f)
	if err != nil {
		return nil, fmt.Errorf("read sites file %s: %w", path, err)
	}
	return sites, nil
}

// ParseSites reads the line-oriented site list format from r.
func ParseSites(r io.Reader) ([]string, error) {
	var sites []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sites = append(sites, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sites, nil
}

// SplitSites splits a comma separated site list, dropping empty items.
func SplitSites(list string) []string {
	var sites []string
	for _, site := range strings.Split(list, ",") {
		if site = strings.TrimSpace(site); site != "" {
			sites = append(sites, site)
		}
	}
	return sites
}
