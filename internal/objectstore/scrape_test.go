package objectstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveScrapeResultPaths_JoinsBaseURLWithDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pageA/scrape.json":               `{}`,
		"pageA/screenshot-desktop.png":    "png",
		"sub/pageB/scrape.json":           `{}`,
		"sub/pageB/screenshot-mobile.png": "png",
	})
	e := New(Options{Root: root})

	paths := e.ResolveScrapeResultPaths("https://ex.com")

	assert.Equal(t, 2, paths.Len())
	p, ok := paths.Get("https://ex.com/pageA")
	assert.True(t, ok)
	assert.Equal(t, "pageA/scrape.json", p)
	p, ok = paths.Get("https://ex.com/sub/pageB")
	assert.True(t, ok)
	assert.Equal(t, "sub/pageB/scrape.json", p)
}

func TestResolveScrapeResultPaths_DefaultBaseURL(t *testing.T) {
	root := writeTree(t, map[string]string{"x/scrape.json": `{}`})
	e := New(Options{Root: root})

	paths := e.ResolveScrapeResultPaths("")

	assert.Equal(t, []string{"https://example.com/x"}, paths.URLs())
}

func TestResolveScrapeResultPaths_TrailingSlashBase(t *testing.T) {
	root := writeTree(t, map[string]string{"x/scrape.json": `{}`})
	e := New(Options{Root: root})

	assert.Equal(t, []string{"https://ex.com/x"}, e.ResolveScrapeResultPaths("https://ex.com/").URLs())
}

func TestResolveScrapeResultPaths_RootLevelScrape(t *testing.T) {
	root := writeTree(t, map[string]string{"scrape.json": `{}`})
	e := New(Options{Root: root})

	paths := e.ResolveScrapeResultPaths("https://ex.com")

	p, ok := paths.Get("https://ex.com/")
	assert.True(t, ok)
	assert.Equal(t, "scrape.json", p)
}

func TestResolveScrapeResultPaths_NormalisesDecomposedNames(t *testing.T) {
	// "cafe" + combining acute accent (NFD) should map to the composed form.
	root := writeTree(t, map[string]string{"cafe\u0301/scrape.json": `{}`})
	e := New(Options{Root: root})

	paths := e.ResolveScrapeResultPaths("https://ex.com")

	_, ok := paths.Get("https://ex.com/caf\u00e9")
	assert.True(t, ok)
}

func TestResolveScrapeResultPaths_MissingRoot(t *testing.T) {
	e := New(Options{Root: filepath.Join(t.TempDir(), "absent")})

	paths := e.ResolveScrapeResultPaths("https://ex.com")
	assert.Equal(t, 0, paths.Len())
}

func TestScrapeResultPaths_SetReplacesInPlace(t *testing.T) {
	m := NewScrapeResultPaths()
	m.Set("https://a/1", "1/scrape.json")
	m.Set("https://a/2", "2/scrape.json")
	m.Set("https://a/1", "one/scrape.json")

	assert.Equal(t, []string{"https://a/1", "https://a/2"}, m.URLs())
	p, _ := m.Get("https://a/1")
	assert.Equal(t, "one/scrape.json", p)

	var got []string
	for u, p := range m.All() {
		got = append(got, u+"="+p)
	}
	assert.Equal(t, []string{"https://a/1=one/scrape.json", "https://a/2=2/scrape.json"}, got)
}
