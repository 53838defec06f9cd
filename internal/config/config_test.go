package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local-config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(Options{
		File:        filepath.Join(t.TempDir(), "absent.json"),
		Environment: map[string]string{"HOME": "/home/dev"},
	})
	require.NoError(t, err)

	assert.False(t, cfg.UseLocalScraperData)
	assert.False(t, cfg.UseLocalTopPages)
	assert.True(t, cfg.UseMockDataAccess)
	assert.False(t, cfg.FileLoaded)
	assert.Equal(t, "/home/dev/Documents/my-workspace-tools/urls-to-scrape.txt", cfg.TopPagesFile)
	assert.Equal(t, DefaultSiteID, cfg.SiteID)
	assert.Equal(t, DefaultAuditType, cfg.AuditType)
	assert.Equal(t, DefaultScraperDataDir, cfg.ScraperDataDir)
	assert.Equal(t, DefaultCaptureDir, cfg.CaptureDir)
	assert.Equal(t, filepath.Join(DefaultScraperDataDir, DefaultSiteID), cfg.ScraperRoot())
}

func TestResolve_AbsentFileMatchesEnvOnly(t *testing.T) {
	environ := map[string]string{
		"USE_LOCAL_SCRAPER_DATA": "true",
		"USE_LOCAL_TOP_PAGES":    "false",
		"TOP_PAGES_FILE":         "/data/urls.txt",
		"RUM_DOMAIN_KEY":         "abcdefgh-1234-5678-ijklmnop",
		"SITE_ID":                "site-123",
	}

	absent, err := Resolve(Options{File: filepath.Join(t.TempDir(), "absent.json"), Environment: environ})
	require.NoError(t, err)

	empty, err := Resolve(Options{File: writeConfigFile(t, "{}"), Environment: environ})
	require.NoError(t, err)

	empty.FileLoaded = false
	assert.Equal(t, empty, absent)
	assert.True(t, absent.UseLocalScraperData)
	assert.False(t, absent.UseLocalTopPages)
	assert.Equal(t, "/data/urls.txt", absent.TopPagesFile)
	assert.Equal(t, "site-123", absent.SiteID)
}

func TestResolve_FileEnablesFlags(t *testing.T) {
	path := writeConfigFile(t, `{
		"USE_LOCAL_SCRAPER_DATA": true,
		"USE_LOCAL_TOP_PAGES": true,
		"TOP_PAGES_FILE": "/from/file.txt",
		"siteId": "file-site"
	}`)

	cfg, err := Resolve(Options{File: path, Environment: map[string]string{}})
	require.NoError(t, err)

	assert.True(t, cfg.FileLoaded)
	assert.True(t, cfg.UseLocalScraperData)
	assert.True(t, cfg.UseLocalTopPages)
	assert.Equal(t, "/from/file.txt", cfg.TopPagesFile)
	assert.Equal(t, "file-site", cfg.SiteID)
}

func TestResolve_EnvWinsForStrings(t *testing.T) {
	path := writeConfigFile(t, `{"TOP_PAGES_FILE": "/from/file.txt", "siteId": "file-site"}`)

	cfg, err := Resolve(Options{File: path, Environment: map[string]string{
		"TOP_PAGES_FILE": "/from/env.txt",
	}})
	require.NoError(t, err)

	assert.Equal(t, "/from/env.txt", cfg.TopPagesFile)
	assert.Equal(t, "file-site", cfg.SiteID)
}

func TestResolve_EitherSourceEnablesFlag(t *testing.T) {
	path := writeConfigFile(t, `{"USE_LOCAL_TOP_PAGES": false}`)

	cfg, err := Resolve(Options{File: path, Environment: map[string]string{
		"USE_LOCAL_TOP_PAGES": "true",
	}})
	require.NoError(t, err)
	assert.True(t, cfg.UseLocalTopPages)
}

func TestResolve_OnlyLiteralTrueEnables(t *testing.T) {
	cfg, err := Resolve(Options{File: filepath.Join(t.TempDir(), "absent.json"), Environment: map[string]string{
		"USE_LOCAL_SCRAPER_DATA": "1",
		"USE_LOCAL_TOP_PAGES":    "TRUE",
	}})
	require.NoError(t, err)

	assert.False(t, cfg.UseLocalScraperData)
	assert.False(t, cfg.UseLocalTopPages)
}

func TestResolve_MockDataAccessCanBeDisabled(t *testing.T) {
	cfg, err := Resolve(Options{File: filepath.Join(t.TempDir(), "absent.json"), Environment: map[string]string{
		"USE_MOCK_DATA_ACCESS": "false",
	}})
	require.NoError(t, err)
	assert.False(t, cfg.UseMockDataAccess)

	cfg, err = Resolve(Options{File: writeConfigFile(t, `{"USE_MOCK_DATA_ACCESS": false}`), Environment: map[string]string{}})
	require.NoError(t, err)
	assert.False(t, cfg.UseMockDataAccess)
}

func TestResolve_MalformedFileIgnored(t *testing.T) {
	path := writeConfigFile(t, `{"USE_LOCAL_SCRAPER_DATA": tru`)

	cfg, err := Resolve(Options{File: path, Environment: map[string]string{"SITE_ID": "env-site"}})
	require.NoError(t, err)

	assert.False(t, cfg.FileLoaded)
	assert.False(t, cfg.UseLocalScraperData)
	assert.Equal(t, "env-site", cfg.SiteID)
}

func TestResolve_MistypedKeyKeepsRestOfFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"USE_LOCAL_TOP_PAGES": "true",
		"USE_LOCAL_SCRAPER_DATA": true,
		"USE_MOCK_DATA_ACCESS": "false",
		"siteId": "site-9",
		"auditType": 42
	}`)

	cfg, err := Resolve(Options{File: path, Environment: map[string]string{}})
	require.NoError(t, err)

	assert.True(t, cfg.FileLoaded)
	assert.True(t, cfg.UseLocalScraperData)
	assert.False(t, cfg.UseLocalTopPages, "only a JSON true enables a flag")
	assert.True(t, cfg.UseMockDataAccess, "only a JSON false disables mock data access")
	assert.Equal(t, "site-9", cfg.SiteID)
	assert.Equal(t, DefaultAuditType, cfg.AuditType)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "abcdefgh...stuvwxyz", MaskKey("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "********", MaskKey("short"))
}
