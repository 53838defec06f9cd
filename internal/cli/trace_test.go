package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlocal/internal/trace"
)

// seedJournal writes one run with three calls.
func seedJournal(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := trace.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.WriteRun(ctx, trace.Run{
		ID: "run-1", AuditType: "meta-tags", SiteID: "site-1", StartedAt: "2025-01-01T00:00:00Z",
	}))
	for _, c := range []trace.Call{
		{Seq: 1, Service: "dynamodb", Operation: "Site.findById", Args: json.RawMessage(`{"id":"site-1"}`), Result: json.RawMessage(`{"baseURL":"https://a.test"}`)},
		{Seq: 2, Service: "s3", Operation: "GetObject", Args: json.RawMessage(`{"key":"scrapes/site-1/x/scrape.json"}`), Result: json.RawMessage(`null`), Error: "NoSuchKey"},
		{Seq: 3, Service: "sqs", Operation: "SendMessage", Args: json.RawMessage(`{"type":"guidance:meta-tags"}`), Result: json.RawMessage(`{"MessageId":"0"}`)},
	} {
		require.NoError(t, st.WriteCall(ctx, "run-1", c))
	}
	return dbPath
}

func executeTrace(t *testing.T, format string, verbose bool, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: format, Verbose: verbose})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	if args == nil {
		args = []string{} // keep cobra off os.Args
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, err := executeTrace(t, "text", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceNonExistentDatabase(t *testing.T) {
	_, err := executeTrace(t, "text", false, "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "trace database not found")
}

func TestTraceListsRuns(t *testing.T) {
	dbPath := seedJournal(t)

	out, err := executeTrace(t, "text", false, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "run-1  2025-01-01T00:00:00Z  meta-tags  site-1  3 calls")
}

func TestTraceListsRunsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := trace.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeTrace(t, "text", false, "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded\n", out)
}

func TestTracePrintsCalls(t *testing.T) {
	dbPath := seedJournal(t)

	out, err := executeTrace(t, "text", false, "--db", dbPath, "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Trace for run: run-1")
	assert.Contains(t, out, "[1] dynamodb Site.findById (ok)")
	assert.Contains(t, out, "[2] s3 GetObject (error: NoSuchKey)")
	assert.NotContains(t, out, "Args:")
}

func TestTraceVerboseShowsArgs(t *testing.T) {
	dbPath := seedJournal(t)

	out, err := executeTrace(t, "text", true, "--db", dbPath, "run-1", "--service", "dynamodb")
	require.NoError(t, err)
	assert.Contains(t, out, "Args:   {id=site-1}")
	assert.Contains(t, out, "Result: {baseURL=https://a.test}")
	assert.NotContains(t, out, "GetObject")
}

func TestTraceJSONFiltersOperation(t *testing.T) {
	dbPath := seedJournal(t)

	out, err := executeTrace(t, "json", false, "--db", dbPath, "run-1", "--operation", "SendMessage")
	require.NoError(t, err)

	var resp struct {
		RunID string `json:"run_id"`
		Data  struct {
			Calls []trace.Call `json:"calls"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	require.Len(t, resp.Data.Calls, 1)
	assert.Equal(t, "sqs", resp.Data.Calls[0].Service)
}

func TestTraceUnknownRun(t *testing.T) {
	dbPath := seedJournal(t)

	out, err := executeTrace(t, "text", false, "--db", dbPath, "run-404")
	require.NoError(t, err)
	assert.Contains(t, out, "(no calls)")
}

func TestFormatValue(t *testing.T) {
	v := map[string]any{"b": []any{1.0, "x"}, "a": nil, "c": map[string]any{}}
	assert.Equal(t, "{a=null, b=[1, x], c={}}", formatValue(v))
}
