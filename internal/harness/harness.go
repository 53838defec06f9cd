package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"time"

	"github.com/roach88/auditlocal/internal/appctx"
	"github.com/roach88/auditlocal/internal/config"
	"github.com/roach88/auditlocal/internal/itemstore"
	"github.com/roach88/auditlocal/internal/objectstore"
	"github.com/roach88/auditlocal/internal/stubs"
	"github.com/roach88/auditlocal/internal/toppages"
	"github.com/roach88/auditlocal/internal/trace"
)

// Options configures a harness run.
type Options struct {
	Config   config.Config
	Pipeline Pipeline

	// Scenario, when set, overrides the synthetic message and is asserted
	// on after the run.
	Scenario *Scenario

	// Env is the environment handed to the pipeline. Scenario env wins.
	Env map[string]string

	// Store receives the journal. Nil journals to a private in-memory
	// database that is closed when Run returns.
	Store *trace.Store

	// RunIDs names the run. Nil uses UUIDv7.
	RunIDs trace.RunIDGenerator

	// Now stamps the run and created records. Nil uses time.Now.
	Now func() time.Time

	// Correlation is handed to the item store. Nil creates one per run.
	Correlation *itemstore.CorrelationCache

	// RUMUpstream is the RUM backend queries are forwarded to.
	RUMUpstream stubs.Querier

	Logger *slog.Logger
}

// Harness holds the services attached to one run.
type Harness struct {
	cfg         config.Config
	body        appctx.MessageBody
	journal     *trace.Journal
	queue       *stubs.Queue
	interceptor *appctx.Interceptor
	logger      *slog.Logger
}

// Run executes the pipeline once and returns its result.
//
// Execution flow:
// 1. Build the synthetic message from config and scenario
// 2. Start the run journal
// 3. Build the context and attach the emulators the config selects
// 4. Run pipeline Init and merge the seeded item store into whatever
//    item store it returned or assigned
// 5. Run pipeline Handle and evaluate scenario assertions
//
// Errors returned by the pipeline are returned unchanged.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Pipeline == nil {
		return nil, errors.New("harness: no pipeline")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = trace.UUIDv7Generator{}
	}

	cfg := opts.Config
	body := appctx.NewBody(cfg.AuditType, cfg.SiteID)
	if opts.Scenario != nil {
		body = opts.Scenario.Message.Apply(body)
	}
	msg, err := appctx.NewMessage(body)
	if err != nil {
		return nil, err
	}

	st := opts.Store
	if st == nil {
		st, err = trace.Open(trace.MemoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
		}
		defer st.Close()
	}

	journal, err := trace.NewJournal(ctx, st, trace.Run{
		ID:        runIDs.Generate(),
		AuditType: body.Type,
		SiteID:    body.SiteID,
		StartedAt: now().UTC().Format(time.RFC3339),
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("starting local audit run",
		"run_id", journal.RunID(),
		"audit_type", body.Type,
		"site_id", body.SiteID,
		"local_scraper_data", cfg.UseLocalScraperData,
		"local_top_pages", cfg.UseLocalTopPages,
		"mock_data_access", cfg.UseMockDataAccess,
		"config_file", cfg.FileLoaded,
	)

	h := &Harness{
		cfg:     cfg,
		body:    body,
		journal: journal,
		queue:   stubs.NewQueue(logger, journal),
		logger:  logger,
	}

	actx, err := h.buildContext(msg, mergeEnv(opts.Env, opts.Scenario), opts, now)
	if err != nil {
		return nil, err
	}
	h.interceptor = appctx.Wrap(actx, logger)

	result := newResult()
	seeded := actx.DataAccess
	replaced, err := opts.Pipeline.Init(ctx, actx)
	if err != nil {
		return nil, err
	}
	switch {
	case replaced != nil:
		result.Merged = h.interceptor.SetDataAccess(replaced)
	case actx.DataAccess != seeded:
		// Init assigned the context's item store itself.
		result.Merged = h.interceptor.SetDataAccess(actx.DataAccess)
	}

	value, err := opts.Pipeline.Handle(ctx, msg, h.interceptor.Context())
	if err != nil {
		return nil, err
	}

	result.Value = value
	result.RunID = journal.RunID()
	result.QueueCounts = h.queue.Counts()
	if result.Calls, err = journal.Calls(ctx); err != nil {
		return nil, err
	}

	if opts.Scenario != nil {
		for _, failure := range EvaluateAssertions(result, opts.Scenario.Assertions) {
			result.AddError(failure)
		}
	}

	logger.Info("local audit run finished",
		"run_id", result.RunID, "calls", len(result.Calls), "queue_counts", result.QueueCounts)
	return result, nil
}

// buildContext attaches the emulators selected by the configuration.
func (h *Harness) buildContext(msg appctx.Message, env map[string]string, opts Options, now func() time.Time) (*appctx.Context, error) {
	cfg := h.cfg
	actx := appctx.New(msg, env, h.logger)
	actx.SQS = h.queue
	actx.Genvar = stubs.NewGenvar(h.logger, h.journal)

	if cfg.RUMDomainKey != "" {
		h.logger.Info("attaching RUM client", "domainkey", config.MaskKey(cfg.RUMDomainKey))
		actx.RUM = stubs.NewRUM(cfg.RUMDomainKey, opts.RUMUpstream, h.logger, h.journal)
	}

	var topPages []string
	if cfg.UseLocalTopPages {
		topPages = toppages.LoadOrEmpty(cfg.TopPagesFile, h.logger)
	}

	if cfg.UseLocalScraperData {
		root := filepath.Join(cfg.ScraperDataDir, h.body.SiteID)
		objects := objectstore.New(objectstore.Options{
			Root:      root,
			KeyPrefix: "scrapes/" + h.body.SiteID + "/",
			Logger:    h.logger,
			Recorder:  h.journal,
		})
		actx.S3 = objects
		actx.ScrapeResultPaths = objects.ResolveScrapeResultPaths(toppages.BaseURL(topPages))
		h.logger.Info("attached local object store", "root", root, "scrape_results", actx.ScrapeResultPaths.Len())
	}

	if cfg.UseMockDataAccess {
		policy := itemstore.DefaultPolicy()
		if cfg.PolicyFile != "" {
			p, err := itemstore.LoadPolicy(cfg.PolicyFile)
			if err != nil {
				return nil, fmt.Errorf("load handler policy: %w", err)
			}
			policy = p
		}
		items := itemstore.New(itemstore.Options{
			SiteID:              h.body.SiteID,
			TopPages:            topPages,
			BaseURLFromTopPages: cfg.UseLocalTopPages,
			BrokenLinksDir:      cfg.BrokenLinksDir,
			Policy:              &policy,
			Correlation:         opts.Correlation,
			Now:                 now,
			Logger:              h.logger,
			Recorder:            h.journal,
		})
		actx.DataAccess = items.DataAccess()
		h.logger.Info("attached mock item store", "collections", actx.DataAccess.Collections())
	}

	return actx, nil
}

func mergeEnv(base map[string]string, scenario *Scenario) map[string]string {
	env := maps.Clone(base)
	if env == nil {
		env = map[string]string{}
	}
	if scenario != nil {
		maps.Copy(env, scenario.Env)
	}
	return env
}
