package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteRun(ctx, Run{ID: "run-1", AuditType: "meta-tags", SiteID: "site", StartedAt: "2025-01-01T00:00:00Z"}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}

func TestOpen_MemoryDatabasePersistsAcrossQueries(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, Run{ID: "r", AuditType: "a", SiteID: "s", StartedAt: "t"}))
	require.NoError(t, s.WriteCall(ctx, "r", Call{Seq: 1, Service: "s3", Operation: "GetObject", Args: []byte(`{}`), Result: []byte(`null`)}))

	calls, err := s.ReadCalls(ctx, "r")
	require.NoError(t, err)
	assert.Len(t, calls, 1)
}

func TestWriteRun_DuplicateIgnored(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	run := Run{ID: "r", AuditType: "a", SiteID: "s", StartedAt: "t"}
	require.NoError(t, s.WriteRun(ctx, run))
	require.NoError(t, s.WriteRun(ctx, run))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteCall_RequiresRun(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	err = s.WriteCall(context.Background(), "missing", Call{Seq: 1, Service: "s3", Operation: "GetObject", Args: []byte(`{}`), Result: []byte(`null`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write call")
}

func TestReadCalls_EmptyRun(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	calls, err := s.ReadCalls(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, calls)
	assert.Empty(t, calls)
}

func TestRuns_CountsCalls(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, Run{ID: "a", AuditType: "meta-tags", SiteID: "s", StartedAt: "2025-01-01T00:00:00Z"}))
	require.NoError(t, s.WriteRun(ctx, Run{ID: "b", AuditType: "canonical", SiteID: "s", StartedAt: "2025-01-02T00:00:00Z"}))
	for seq := int64(1); seq <= 3; seq++ {
		require.NoError(t, s.WriteCall(ctx, "b", Call{Seq: seq, Service: "x", Operation: "y", Args: []byte(`{}`), Result: []byte(`null`)}))
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].ID)
	assert.Equal(t, 0, runs[0].Calls)
	assert.Equal(t, "b", runs[1].ID)
	assert.Equal(t, 3, runs[1].Calls)
}
