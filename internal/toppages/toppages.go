// Package toppages reads the newline-delimited URL list that stands in for a
// site's ranked top pages when live traffic data is unavailable locally.
package toppages

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// DefaultBaseURL is the placeholder host used when no top page can be parsed.
const DefaultBaseURL = "https://example.com"

// Parse returns the URLs in r in file order.
// Lines are trimmed; empty lines and lines starting with "#" are skipped.
func Parse(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan top pages: %w", err)
	}
	return urls, nil
}

// Load reads and parses the top-pages file at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open top pages: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// LoadOrEmpty is Load with errors degraded to an empty list.
// The failure is logged; the local run carries on without top pages.
func LoadOrEmpty(path string, logger *slog.Logger) []string {
	urls, err := Load(path)
	if err != nil {
		if logger != nil {
			logger.Warn("could not load top pages, continuing without them", "path", path, "error", err)
		}
		return []string{}
	}
	if logger != nil {
		logger.Info("loaded top pages", "path", path, "count", len(urls))
	}
	return urls
}

// BaseURL derives "scheme://host" from the first URL in urls.
// Returns DefaultBaseURL if urls is empty or the first entry does not parse
// as an absolute URL. The port, if any, is dropped.
func BaseURL(urls []string) string {
	if len(urls) == 0 {
		return DefaultBaseURL
	}
	u, err := url.Parse(urls[0])
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return DefaultBaseURL
	}
	return u.Scheme + "://" + u.Hostname()
}
