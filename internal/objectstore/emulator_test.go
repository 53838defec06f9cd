package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditlocal/internal/fault"
)

// writeTree creates files (relative slash paths) under a new temp root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func keys(resp *ListResponse) []string {
	out := make([]string, len(resp.Contents))
	for i, o := range resp.Contents {
		out[i] = o.Key
	}
	sort.Strings(out)
	return out
}

func TestList_EnumeratesEveryFileOnce(t *testing.T) {
	root := writeTree(t, map[string]string{
		"scrapes/pageA/scrape.json":            `{}`,
		"scrapes/pageA/screenshot-desktop.png": "png",
		"scrapes/sub/pageB/scrape.json":        `{"a":1}`,
		"other/ignored.json":                   `{}`,
	})
	e := New(Options{Root: root})

	resp, err := e.List(context.Background(), ListRequest{Prefix: "scrapes/"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"scrapes/pageA/scrape.json",
		"scrapes/pageA/screenshot-desktop.png",
		"scrapes/sub/pageB/scrape.json",
	}, keys(resp))

	for _, o := range resp.Contents {
		if o.Key == "scrapes/sub/pageB/scrape.json" {
			assert.Equal(t, int64(len(`{"a":1}`)), o.Size)
			assert.False(t, o.LastModified.IsZero())
		}
	}
}

func TestList_EmptyPrefixListsRoot(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a", "d/b.txt": "b"})
	e := New(Options{Root: root})

	resp, err := e.List(context.Background(), ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "d/b.txt"}, keys(resp))
}

func TestList_MissingPrefixIsEmpty(t *testing.T) {
	e := New(Options{Root: t.TempDir()})

	resp, err := e.List(context.Background(), ListRequest{Prefix: "nope/"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Contents)
	assert.Empty(t, resp.Contents)
}

func TestList_NoRootIsEmpty(t *testing.T) {
	e := New(Options{OutDir: t.TempDir()})

	resp, err := e.List(context.Background(), ListRequest{Prefix: "x"})
	require.NoError(t, err)
	assert.Empty(t, resp.Contents)
}

func TestGet_ReadsFileWithContentType(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pageA/scrape.json": `{"finalUrl":"https://ex.com/pageA"}`,
		"pageA/notes.txt":   "hello",
	})
	e := New(Options{Root: root})
	ctx := context.Background()

	resp, err := e.Get(ctx, GetRequest{Key: "pageA/scrape.json"})
	require.NoError(t, err)
	assert.Equal(t, `{"finalUrl":"https://ex.com/pageA"}`, resp.String())
	assert.Equal(t, "application/json", resp.ContentType)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = e.Get(ctx, GetRequest{Key: "pageA/notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", resp.ContentType)
}

func TestGet_StripsKeyPrefix(t *testing.T) {
	root := writeTree(t, map[string]string{"pageA/scrape.json": `{}`})
	e := New(Options{Root: root, KeyPrefix: "scrapes/site-123/"})

	resp, err := e.Get(context.Background(), GetRequest{Key: "scrapes/site-123/pageA/scrape.json"})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.String())
}

func TestGet_MissingFileIsNoSuchKey(t *testing.T) {
	root := t.TempDir()
	e := New(Options{Root: root})

	_, err := e.Get(context.Background(), GetRequest{Key: "missing/scrape.json"})
	require.Error(t, err)

	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, filepath.Join(root, "missing", "scrape.json"), fault.PathOf(err))

	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "NoSuchKey", fe.Name())
	assert.Equal(t, "missing/scrape.json", fe.Key)
}

func TestGet_KeyEscapingRootIsNoSuchKey(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "fixtures")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("hidden"), 0644))
	e := New(Options{Root: root})

	resp, err := e.Get(context.Background(), GetRequest{Key: "../secret.txt"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, fault.IsNotFound(err))
	assert.Equal(t, filepath.Join(parent, "secret.txt"), fault.PathOf(err))
}

func TestGet_CaptureModeAlwaysMisses(t *testing.T) {
	e := New(Options{OutDir: t.TempDir()})

	_, err := e.Get(context.Background(), GetRequest{Key: "anything"})
	require.Error(t, err)
	assert.True(t, fault.IsNotFound(err))
}

func TestPut_WritesUnderOutDir(t *testing.T) {
	out := t.TempDir()
	e := New(Options{OutDir: out})

	resp, err := e.Put(context.Background(), PutRequest{Key: "scrapes/job/page/scrape.json", Body: []byte(`{"ok":true}`)})
	require.NoError(t, err)

	want := filepath.Join(out, "scrapes", "job", "page", "scrape.json")
	assert.Equal(t, want, resp.Path)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestPut_WithoutOutDirUnsupported(t *testing.T) {
	e := New(Options{Root: t.TempDir()})

	_, err := e.Put(context.Background(), PutRequest{Key: "k", Body: []byte("x")})
	require.Error(t, err)
	assert.True(t, fault.IsUnsupported(err))
}

func TestSend_DispatchesByRequestType(t *testing.T) {
	root := writeTree(t, map[string]string{"a/scrape.json": `{}`})
	out := t.TempDir()
	e := New(Options{Root: root, OutDir: out})
	ctx := context.Background()

	resp, err := e.Send(ctx, ListRequest{Prefix: "a"})
	require.NoError(t, err)
	require.IsType(t, &ListResponse{}, resp)
	assert.Len(t, resp.(*ListResponse).Contents, 1)

	resp, err = e.Send(ctx, &GetRequest{Key: "a/scrape.json"})
	require.NoError(t, err)
	require.IsType(t, &GetResponse{}, resp)

	resp, err = e.Send(ctx, PutRequest{Key: "b.txt", Body: []byte("b")})
	require.NoError(t, err)
	require.IsType(t, &PutResponse{}, resp)
}

func TestSend_NilRequestUnsupported(t *testing.T) {
	e := New(Options{Root: t.TempDir()})

	_, err := e.Send(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, fault.IsUnsupported(err))
}

func TestPut_KeyEscapingOutDirUnsupported(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(parent, "capture")
	e := New(Options{OutDir: out})

	_, err := e.Put(context.Background(), PutRequest{Key: "../../escaped.json", Body: []byte("x")})
	require.Error(t, err)
	assert.True(t, fault.IsUnsupported(err))

	_, statErr := os.Stat(filepath.Join(filepath.Dir(parent), "escaped.json"))
	assert.True(t, os.IsNotExist(statErr))
}
