package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlocal/internal/config"
	"github.com/roach88/auditlocal/internal/objectstore"
)

// CaptureOptions holds flags for the capture command.
type CaptureOptions struct {
	*RootOptions
	Key         string
	OutDir      string
	ContentType string
	ConfigFile  string

	// Environment replaces the process environment (for testing).
	Environment map[string]string
	// NewStore replaces the object store emulator (for testing).
	NewStore func(objectstore.Options) objectSender
}

type objectSender interface {
	Send(ctx context.Context, req objectstore.Request) (objectstore.Response, error)
}

func newEmulator(o objectstore.Options) objectSender {
	return objectstore.New(o)
}

// CaptureOutput reports where an object was written.
type CaptureOutput struct {
	Key   string `json:"key"`
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

func (o CaptureOutput) String() string {
	return fmt.Sprintf("Captured %s (%d bytes) to %s\n", o.Key, o.Bytes, o.Path)
}

// NewCaptureCommand creates the capture command.
func NewCaptureCommand(rootOpts *RootOptions) *cobra.Command {
	return newCaptureCommand(&CaptureOptions{RootOptions: rootOpts})
}

func newCaptureCommand(opts *CaptureOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture [file]",
		Short: "Store an object the way the capture harness does",
		Long: `Write an object through the object store emulator in capture mode.

The body is read from file, or from stdin when no file is given, and is
written to <out>/<key>. --out defaults to CAPTURE_OUTPUT_DIR, then ./tmp.

Examples:
  auditlocal capture --key screenshots/home.png ./home.png
  cat page.html | auditlocal capture --key pages/home.html --out ./captures`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "object key (required)")
	_ = cmd.MarkFlagRequired("key")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "capture output directory")
	cmd.Flags().StringVar(&opts.ContentType, "content-type", "", "content type recorded with the object")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", config.DefaultFile, "local override file")

	return cmd
}

func runCapture(opts *CaptureOptions, args []string, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	outDir := opts.OutDir
	if outDir == "" {
		environment := opts.Environment
		if environment == nil {
			environment = environMap(os.Environ())
		}
		cfg, err := config.Resolve(config.Options{File: opts.ConfigFile, Environment: environment, Logger: logger})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to resolve configuration", err)
		}
		outDir = cfg.CaptureDir
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		in = f
	}
	body, err := io.ReadAll(in)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}

	newStore := opts.NewStore
	if newStore == nil {
		newStore = newEmulator
	}
	store := newStore(objectstore.Options{OutDir: outDir, Logger: logger})
	resp, err := store.Send(cmd.Context(), objectstore.PutRequest{
		Key:         opts.Key,
		Body:        body,
		ContentType: opts.ContentType,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to capture object", err)
	}
	put, ok := resp.(*objectstore.PutResponse)
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("unexpected capture response %T", resp))
	}

	return opts.formatter(cmd).Success(CaptureOutput{
		Key:   opts.Key,
		Path:  put.Path,
		Bytes: len(body),
	})
}
