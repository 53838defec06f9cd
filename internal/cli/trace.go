package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlocal/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	Operation string // optional - filter to one operation
	Service   string // optional - filter to one service
}

// RunList is the output of trace without a run id.
type RunList struct {
	Runs []trace.Run `json:"runs"`
}

func (l RunList) String() string {
	if len(l.Runs) == 0 {
		return "No runs recorded\n"
	}
	var b strings.Builder
	for _, r := range l.Runs {
		fmt.Fprintf(&b, "%s  %s  %s  %s  %d calls\n", r.ID, r.StartedAt, r.AuditType, r.SiteID, r.Calls)
	}
	return b.String()
}

// CallList is the output of trace for one run.
type CallList struct {
	RunID string       `json:"run_id"`
	Calls []trace.Call `json:"calls"`

	verbose bool
}

func (l CallList) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trace for run: %s\n", l.RunID)
	if len(l.Calls) == 0 {
		b.WriteString("  (no calls)\n")
		return b.String()
	}
	for _, c := range l.Calls {
		formatCall(&b, c, l.verbose)
	}
	return b.String()
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Inspect journalled runs",
		Long: `List the runs kept in a trace database, or print the emulated calls of
one run in the order they happened.

Examples:
  auditlocal trace --db ./runs.db
  auditlocal trace --db ./runs.db 0192f3c4-...
  auditlocal trace --db ./runs.db 0192f3c4-... --service dynamodb --verbose`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Operation, "operation", "", "filter to one operation")
	cmd.Flags().StringVar(&opts.Service, "service", "", "filter to one service")

	return cmd
}

func runTrace(opts *TraceOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	// trace.Open would create a fresh database; a missing file is an error here.
	if _, err := os.Stat(opts.Database); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewExitError(ExitCommandError, fmt.Sprintf("trace database not found: %s", opts.Database))
		}
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	st, err := trace.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	out := opts.formatter(cmd)

	if len(args) == 0 {
		runs, err := st.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		return out.Success(RunList{Runs: runs})
	}

	runID := args[0]
	calls, err := st.ReadCalls(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read calls", err)
	}
	return out.SuccessForRun(runID, CallList{
		RunID:   runID,
		Calls:   filterCalls(calls, opts.Service, opts.Operation),
		verbose: opts.Verbose,
	})
}

// filterCalls keeps calls matching service and operation. Empty filters
// match everything.
func filterCalls(calls []trace.Call, service, operation string) []trace.Call {
	if service == "" && operation == "" {
		return calls
	}
	filtered := []trace.Call{}
	for _, c := range calls {
		if service != "" && c.Service != service {
			continue
		}
		if operation != "" && c.Operation != operation {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// formatCall writes one call line, plus args and result when verbose.
func formatCall(w io.Writer, c trace.Call, verbose bool) {
	status := "ok"
	if c.Error != "" {
		status = "error: " + c.Error
	}
	fmt.Fprintf(w, "  [%d] %s %s (%s)\n", c.Seq, c.Service, c.Operation, status)
	if !verbose {
		return
	}
	if args := decodeRaw(c.Args); args != nil {
		fmt.Fprintf(w, "       Args:   %s\n", formatValue(args))
	}
	if result := decodeRaw(c.Result); result != nil {
		fmt.Fprintf(w, "       Result: %s\n", formatValue(result))
	}
}

func decodeRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// formatArgs formats a map with sorted keys so output is deterministic.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, formatValue(args[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatValue formats a decoded JSON value.
func formatValue(v any) string {
	switch val := v.(type) {
	case map[string]any:
		return formatArgs(val)
	case []any:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = formatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return val
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
