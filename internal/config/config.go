// Package config resolves which emulators a local run activates and where
// the local sample data lives.
//
// Values come from two places: an optional JSON override file (by default
// ./local-config.json) and environment variables. Boolean flags are enabled
// when either source enables them. String settings prefer the environment,
// then the file, then a built-in default. A missing or malformed override
// file is ignored and resolution proceeds from the environment alone.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/gjson"
)

// DefaultFile is the override file looked up in the working directory.
const DefaultFile = "local-config.json"

const (
	DefaultSiteID         = "1db7b770-db7f-4c52-a9dc-6e05add6c11e"
	DefaultAuditType      = "meta-tags"
	DefaultScraperDataDir = "scraper-data"
	DefaultCaptureDir     = "tmp"
	defaultTopPagesRel    = "Documents/my-workspace-tools/urls-to-scrape.txt"
)

// Config is the resolved flag and path set. It is not modified after Resolve.
type Config struct {
	UseLocalScraperData bool
	UseLocalTopPages    bool
	UseMockDataAccess   bool

	TopPagesFile   string
	RUMDomainKey   string
	ScraperDataDir string
	SiteID         string
	AuditType      string
	BrokenLinksDir string
	PolicyFile     string
	CaptureDir     string

	// FileLoaded reports whether the override file was read successfully.
	FileLoaded bool
}

// ScraperRoot is the directory holding this site's scrape artifacts.
func (c Config) ScraperRoot() string {
	return filepath.Join(c.ScraperDataDir, c.SiteID)
}

// Options controls where Resolve reads from.
type Options struct {
	// File is the override file path. Empty means DefaultFile.
	File string

	// Environment replaces the process environment when non-nil.
	Environment map[string]string

	Logger *slog.Logger
}

// envVars holds raw environment values. Flags stay strings so that only the
// literal "true" enables them, matching the file's boolean semantics.
type envVars struct {
	UseLocalScraperData string `env:"USE_LOCAL_SCRAPER_DATA"`
	UseLocalTopPages    string `env:"USE_LOCAL_TOP_PAGES"`
	UseMockDataAccess   string `env:"USE_MOCK_DATA_ACCESS"`
	TopPagesFile        string `env:"TOP_PAGES_FILE"`
	RUMDomainKey        string `env:"RUM_DOMAIN_KEY"`
	ScraperDataDir      string `env:"SCRAPER_DATA_DIR"`
	SiteID              string `env:"SITE_ID"`
	AuditType           string `env:"AUDIT_TYPE"`
	BrokenLinksDir      string `env:"BROKEN_LINKS_DIR"`
	PolicyFile          string `env:"HANDLER_POLICY_FILE"`
	CaptureDir          string `env:"CAPTURE_OUTPUT_DIR"`
	Home                string `env:"HOME"`
}

// fileVars holds the keys read from the override file. Each key is read on
// its own: a flag is set only by a JSON boolean and a string setting only by
// a JSON string, so one mistyped key never discards the rest of the file.
type fileVars struct {
	UseLocalScraperData *bool
	UseLocalTopPages    *bool
	UseMockDataAccess   *bool
	TopPagesFile        string
	RUMDomainKey        string
	ScraperDataDir      string
	SiteID              string
	AuditType           string
	BrokenLinksDir      string
	PolicyFile          string
	CaptureDir          string
}

func parseFile(doc gjson.Result) fileVars {
	return fileVars{
		UseLocalScraperData: fileFlag(doc, "USE_LOCAL_SCRAPER_DATA"),
		UseLocalTopPages:    fileFlag(doc, "USE_LOCAL_TOP_PAGES"),
		UseMockDataAccess:   fileFlag(doc, "USE_MOCK_DATA_ACCESS"),
		TopPagesFile:        fileString(doc, "TOP_PAGES_FILE"),
		RUMDomainKey:        fileString(doc, "RUM_DOMAIN_KEY"),
		ScraperDataDir:      fileString(doc, "SCRAPER_DATA_DIR"),
		SiteID:              fileString(doc, "siteId"),
		AuditType:           fileString(doc, "auditType"),
		BrokenLinksDir:      fileString(doc, "BROKEN_LINKS_DIR"),
		PolicyFile:          fileString(doc, "HANDLER_POLICY_FILE"),
		CaptureDir:          fileString(doc, "CAPTURE_OUTPUT_DIR"),
	}
}

// fileFlag is nil unless key holds a JSON boolean.
func fileFlag(doc gjson.Result, key string) *bool {
	switch v := doc.Get(key); v.Type {
	case gjson.True, gjson.False:
		b := v.Bool()
		return &b
	}
	return nil
}

// fileString is empty unless key holds a JSON string.
func fileString(doc gjson.Result, key string) string {
	if v := doc.Get(key); v.Type == gjson.String {
		return v.Str
	}
	return ""
}

// Resolve merges the override file with the environment.
func Resolve(opts Options) (Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var raw envVars
	if err := env.ParseWithOptions(&raw, env.Options{Environment: opts.Environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	path := opts.File
	if path == "" {
		path = DefaultFile
	}
	file, loaded := readFile(path, logger)

	cfg := Config{
		UseLocalScraperData: raw.UseLocalScraperData == "true" || isTrue(file.UseLocalScraperData),
		UseLocalTopPages:    raw.UseLocalTopPages == "true" || isTrue(file.UseLocalTopPages),
		UseMockDataAccess:   raw.UseMockDataAccess != "false" && (file.UseMockDataAccess == nil || *file.UseMockDataAccess),
		TopPagesFile:        first(raw.TopPagesFile, file.TopPagesFile, filepath.Join(raw.Home, defaultTopPagesRel)),
		RUMDomainKey:        first(raw.RUMDomainKey, file.RUMDomainKey),
		ScraperDataDir:      first(raw.ScraperDataDir, file.ScraperDataDir, DefaultScraperDataDir),
		SiteID:              first(raw.SiteID, file.SiteID, DefaultSiteID),
		AuditType:           first(raw.AuditType, file.AuditType, DefaultAuditType),
		BrokenLinksDir:      first(raw.BrokenLinksDir, file.BrokenLinksDir),
		PolicyFile:          first(raw.PolicyFile, file.PolicyFile),
		CaptureDir:          first(raw.CaptureDir, file.CaptureDir, DefaultCaptureDir),
		FileLoaded:          loaded,
	}

	logger.Info("resolved local configuration",
		"config_file_loaded", cfg.FileLoaded,
		"use_local_scraper_data", cfg.UseLocalScraperData,
		"use_local_top_pages", cfg.UseLocalTopPages,
		"use_mock_data_access", cfg.UseMockDataAccess,
		"top_pages_file", cfg.TopPagesFile,
		"scraper_root", cfg.ScraperRoot(),
		"site_id", cfg.SiteID,
		"audit_type", cfg.AuditType,
	)
	if cfg.RUMDomainKey != "" {
		logger.Info("RUM domain key found", "key", MaskKey(cfg.RUMDomainKey))
	}

	return cfg, nil
}

// readFile loads the override file. Any failure yields the zero value.
func readFile(path string, logger *slog.Logger) (fileVars, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("could not read config file, using environment variables only", "path", path, "error", err)
		}
		return fileVars{}, false
	}

	if !gjson.ValidBytes(data) {
		logger.Warn("could not parse config file, using environment variables only", "path", path)
		return fileVars{}, false
	}

	logger.Info("loaded configuration file", "path", path)
	return parseFile(gjson.ParseBytes(data)), true
}

// MaskKey keeps the first and last 8 characters of a credential.
func MaskKey(key string) string {
	if len(key) <= 16 {
		return "********"
	}
	return key[:8] + "..." + key[len(key)-8:]
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
