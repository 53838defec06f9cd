package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlocal/internal/config"
	"github.com/roach88/auditlocal/internal/harness"
	"github.com/roach88/auditlocal/internal/pipeline/probe"
	"github.com/roach88/auditlocal/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigFile string
	Scenario   string
	TraceDB    string

	// Pipeline replaces the probe pipeline (for testing).
	Pipeline harness.Pipeline

	// Environment replaces the process environment (for testing).
	Environment map[string]string

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs trace.RunIDGenerator
}

// RunOutput is what the run command reports.
type RunOutput struct {
	RunID       string         `json:"run_id"`
	Value       any            `json:"value"`
	Calls       int            `json:"calls"`
	QueueCounts map[string]int `json:"queue_counts"`
	Merged      []string       `json:"merged,omitempty"`
	Scenario    string         `json:"scenario,omitempty"`
	Pass        bool           `json:"pass"`
	Errors      []string       `json:"errors,omitempty"`
}

// String renders the output for text format.
func (o RunOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %d emulated calls\n", o.RunID, o.Calls)
	if o.Value != nil {
		text := fmt.Sprint(o.Value)
		b.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			b.WriteString("\n")
		}
	}
	for _, t := range slices.Sorted(maps.Keys(o.QueueCounts)) {
		fmt.Fprintf(&b, "  queued %s: %d\n", t, o.QueueCounts[t])
	}
	if o.Scenario != "" {
		if o.Pass {
			fmt.Fprintf(&b, "Scenario %s: PASS\n", o.Scenario)
		} else {
			fmt.Fprintf(&b, "Scenario %s: FAIL\n", o.Scenario)
			for _, e := range o.Errors {
				fmt.Fprintf(&b, "  %s\n", e)
			}
		}
	}
	return b.String()
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the audit pipeline once against local data",
		Long: `Build a synthetic audit message for the configured site and audit type,
attach the emulators selected by local-config.json and the environment,
and run the pipeline once.

A scenario file overrides the message and environment and adds assertions
on the journalled calls. --trace-db keeps the journal for later inspection.

Examples:
  auditlocal run
  auditlocal run --config ./local-config.json --trace-db ./runs.db
  auditlocal run --scenario scenarios/meta_tags.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", config.DefaultFile, "local override file")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario YAML file")
	cmd.Flags().StringVar(&opts.TraceDB, "trace-db", "", "SQLite file the journal is kept in")

	return cmd
}

func runAudit(opts *RunOptions, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	out := opts.formatter(cmd)

	environment := opts.Environment
	if environment == nil {
		environment = environMap(os.Environ())
	}

	cfg, err := config.Resolve(config.Options{
		File:        opts.ConfigFile,
		Environment: environment,
		Logger:      logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve configuration", err)
	}

	var scenario *harness.Scenario
	if opts.Scenario != "" {
		if scenario, err = harness.LoadScenario(opts.Scenario); err != nil {
			return WrapExitError(ExitCommandError, "failed to load scenario", err)
		}
	}

	var st *trace.Store
	if opts.TraceDB != "" {
		if st, err = trace.Open(opts.TraceDB); err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing trace database", "error", closeErr)
			}
		}()
	}

	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = probe.New(logger)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	result, err := harness.Run(ctx, harness.Options{
		Config:   cfg,
		Pipeline: pipeline,
		Scenario: scenario,
		Env:      environment,
		Store:    st,
		RunIDs:   opts.RunIDs,
		Logger:   logger,
	})
	if err != nil {
		if opts.Format == "json" {
			_ = out.Error(CodePipeline, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "pipeline failed", err)
	}

	output := RunOutput{
		RunID:       result.RunID,
		Value:       result.Value,
		Calls:       len(result.Calls),
		QueueCounts: result.QueueCounts,
		Merged:      result.Merged,
		Pass:        result.Pass,
		Errors:      result.Errors,
	}
	if scenario != nil {
		output.Scenario = scenario.Name
	}
	if err := out.SuccessForRun(result.RunID, output); err != nil {
		return err
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d assertion(s) failed", len(result.Errors)))
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// environMap converts KEY=value pairs to a map.
func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
