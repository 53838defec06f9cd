package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/roach88/auditlocal/internal/fault"
	"github.com/roach88/auditlocal/internal/trace"
)

const service = "s3"

// Options configures an Emulator.
type Options struct {
	// Root is the directory objects are read from. Empty means every Get
	// misses.
	Root string

	// KeyPrefix is stripped from Get keys before they are resolved under
	// Root, e.g. "scrapes/<siteId>/".
	KeyPrefix string

	// OutDir is where Put writes objects. Empty disables Put.
	OutDir string

	Logger   *slog.Logger
	Recorder trace.Recorder
}

// Emulator answers object store requests from the local filesystem.
type Emulator struct {
	root      string
	keyPrefix string
	outDir    string
	logger    *slog.Logger
	recorder  trace.Recorder
}

// New creates an emulator.
func New(opts Options) *Emulator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = trace.Nop{}
	}
	return &Emulator{
		root:      opts.Root,
		keyPrefix: opts.KeyPrefix,
		outDir:    opts.OutDir,
		logger:    logger.With("service", service),
		recorder:  recorder,
	}
}

// Root returns the directory objects are read from.
func (e *Emulator) Root() string {
	return e.root
}

// Send dispatches a request to the matching operation.
func (e *Emulator) Send(ctx context.Context, req Request) (Response, error) {
	switch r := req.(type) {
	case ListRequest:
		return e.List(ctx, r)
	case *ListRequest:
		return e.List(ctx, *r)
	case GetRequest:
		return e.Get(ctx, r)
	case *GetRequest:
		return e.Get(ctx, *r)
	case PutRequest:
		return e.Put(ctx, r)
	case *PutRequest:
		return e.Put(ctx, *r)
	default:
		err := fault.Unsupported("Send", fmt.Sprintf("unsupported command %T", req))
		e.recorder.Record(ctx, service, "Send", nil, nil, err)
		return nil, err
	}
}

// List enumerates every file under root/prefix.
// A missing prefix directory, or any traversal failure, yields an empty
// listing rather than an error.
func (e *Emulator) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	e.logger.Info("ListObjectsV2 called", "bucket", req.Bucket, "prefix", req.Prefix)

	resp := &ListResponse{Contents: []Object{}}
	if e.root == "" {
		e.recorder.Record(ctx, service, req.operation(), req, listSummary(resp), nil)
		return resp, nil
	}

	prefixPath := filepath.Join(e.root, filepath.FromSlash(req.Prefix))
	if _, err := os.Stat(prefixPath); err != nil {
		e.logger.Warn("directory not found", "path", prefixPath)
		e.recorder.Record(ctx, service, req.operation(), req, listSummary(resp), nil)
		return resp, nil
	}

	objects, err := walkFiles(prefixPath, req.Prefix)
	if err != nil {
		e.logger.Error("error listing files", "path", prefixPath, "error", err)
		e.recorder.Record(ctx, service, req.operation(), req, listSummary(resp), nil)
		return resp, nil
	}

	resp.Contents = objects
	e.logger.Info("listed files", "count", len(objects))
	e.recorder.Record(ctx, service, req.operation(), req, listSummary(resp), nil)
	return resp, nil
}

func walkFiles(dir, prefix string) ([]Object, error) {
	objects := []Object{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Key:          path.Join(prefix, filepath.ToSlash(rel)),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// Get reads the file backing key.
// Fails with a NoSuchKey fault carrying the resolved path when the file is
// absent. Other read failures propagate.
func (e *Emulator) Get(ctx context.Context, req GetRequest) (*GetResponse, error) {
	e.logger.Info("GetObject called", "bucket", req.Bucket, "key", req.Key)

	if e.root == "" {
		err := fault.NoSuchKey(req.operation(), req.Key, "")
		e.recorder.Record(ctx, service, req.operation(), req, nil, err)
		return nil, err
	}

	filePath := e.resolve(req.Key)
	if !within(e.root, filePath) {
		err := fault.NoSuchKey(req.operation(), req.Key, filePath)
		e.logger.Warn("key escapes object root", "key", req.Key, "path", filePath)
		e.recorder.Record(ctx, service, req.operation(), req, nil, err)
		return nil, err
	}
	e.logger.Debug("reading object", "path", filePath)

	body, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fault.NoSuchKey(req.operation(), req.Key, filePath)
		}
		e.logger.Error("error reading file", "path", filePath, "error", err)
		e.recorder.Record(ctx, service, req.operation(), req, nil, err)
		return nil, err
	}

	resp := &GetResponse{
		Body:        body,
		ContentType: contentType(filePath),
		StatusCode:  http.StatusOK,
	}
	e.logger.Info("read file", "path", filePath, "bytes", len(body))
	e.recorder.Record(ctx, service, req.operation(), req, map[string]any{
		"content_type": resp.ContentType,
		"bytes":        len(body),
	}, nil)
	return resp, nil
}

// Put writes the body to OutDir/key, creating parent directories.
func (e *Emulator) Put(ctx context.Context, req PutRequest) (*PutResponse, error) {
	e.logger.Info("PutObject called", "bucket", req.Bucket, "key", req.Key, "bytes", len(req.Body))

	if e.outDir == "" {
		err := fault.Unsupported(req.operation(), "no capture directory configured")
		e.recorder.Record(ctx, service, req.operation(), req, nil, err)
		return nil, err
	}

	target := filepath.Join(e.outDir, filepath.FromSlash(req.Key))
	if !within(e.outDir, target) {
		err := fault.Unsupported(req.operation(), fmt.Sprintf("key %q escapes the capture directory", req.Key))
		e.recorder.Record(ctx, service, req.operation(), req, nil, err)
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		err = fmt.Errorf("create capture directory: %w", err)
		e.recorder.Record(ctx, service, req.operation(), req, nil, err)
		return nil, err
	}
	if err := os.WriteFile(target, req.Body, 0644); err != nil {
		err = fmt.Errorf("write captured object: %w", err)
		e.recorder.Record(ctx, service, req.operation(), req, nil, err)
		return nil, err
	}

	resp := &PutResponse{Path: target}
	e.recorder.Record(ctx, service, req.operation(), req, resp, nil)
	return resp, nil
}

// resolve maps an object key to its file under root.
func (e *Emulator) resolve(key string) string {
	if e.keyPrefix != "" {
		key = strings.Replace(key, e.keyPrefix, "", 1)
	}
	return filepath.Join(e.root, filepath.FromSlash(key))
}

// within reports whether path lies under dir after cleaning.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".json") {
		return "application/json"
	}
	return "text/plain"
}

func listSummary(resp *ListResponse) map[string]any {
	keys := make([]string, len(resp.Contents))
	for i, o := range resp.Contents {
		keys[i] = o.Key
	}
	return map[string]any{"keys": keys}
}
