package objectstore

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/auditlocal/internal/toppages"
)

// ScrapeFileName is the only file treated as a page-scrape artifact.
const ScrapeFileName = "scrape.json"

// ScrapeResultPaths maps a reconstructed page URL to the path of its
// scrape.json relative to the emulator root. Iteration follows insertion
// order; each URL appears once.
type ScrapeResultPaths struct {
	urls  []string
	paths map[string]string
}

// NewScrapeResultPaths creates an empty mapping.
func NewScrapeResultPaths() *ScrapeResultPaths {
	return &ScrapeResultPaths{paths: make(map[string]string)}
}

// Set maps url to path. Setting an existing url replaces its path in place.
func (m *ScrapeResultPaths) Set(url, path string) {
	if _, ok := m.paths[url]; !ok {
		m.urls = append(m.urls, url)
	}
	m.paths[url] = path
}

// Get returns the path for url.
func (m *ScrapeResultPaths) Get(url string) (string, bool) {
	p, ok := m.paths[url]
	return p, ok
}

// Len returns the number of URLs.
func (m *ScrapeResultPaths) Len() int {
	return len(m.urls)
}

// URLs returns the URLs in insertion order.
func (m *ScrapeResultPaths) URLs() []string {
	out := make([]string, len(m.urls))
	copy(out, m.urls)
	return out
}

// All iterates url, path pairs in insertion order.
func (m *ScrapeResultPaths) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, u := range m.urls {
			if !yield(u, m.paths[u]) {
				return
			}
		}
	}
}

// ResolveScrapeResultPaths walks root for scrape.json files and maps each
// to baseURL joined with its directory path. An empty baseURL uses
// toppages.DefaultBaseURL. A missing root or a traversal failure yields an
// empty mapping.
func (e *Emulator) ResolveScrapeResultPaths(baseURL string) *ScrapeResultPaths {
	if baseURL == "" {
		baseURL = toppages.DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	result := NewScrapeResultPaths()

	if _, err := os.Stat(e.root); e.root == "" || err != nil {
		e.logger.Warn("scraper directory not found", "path", e.root)
		e.logParentContents()
		return result
	}

	var files []string
	err := filepath.WalkDir(e.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || d.Name() != ScrapeFileName {
			return nil
		}
		rel, err := filepath.Rel(e.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		e.logger.Error("error loading scrape result paths", "path", e.root, "error", err)
		return NewScrapeResultPaths()
	}

	for _, rel := range files {
		result.Set(pageURL(baseURL, rel), rel)
	}

	e.logger.Info("resolved scrape result paths", "root", e.root, "base_url", baseURL, "count", result.Len())
	return result
}

// pageURL joins baseURL with the directory of a scrape.json path.
// Directory names are NFC-normalised so decomposed file names (as written by
// some filesystems) produce the same URL as the page they came from.
func pageURL(baseURL, rel string) string {
	dir := strings.TrimSuffix(strings.TrimSuffix(rel, ScrapeFileName), "/")
	return baseURL + "/" + norm.NFC.String(dir)
}

func (e *Emulator) logParentContents() {
	if e.root == "" {
		return
	}
	parent := filepath.Dir(e.root)
	entries, err := os.ReadDir(parent)
	if err != nil {
		e.logger.Warn("parent directory also not found", "path", parent)
		return
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	e.logger.Warn("parent directory contents", "path", parent, "entries", names)
}
