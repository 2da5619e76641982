package mdembed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-mdembed/internal/fileutil"
	"github.com/alnah/go-mdembed/internal/pipeline"
	"github.com/alnah/go-mdembed/internal/process"
)

// PandocBinEnv overrides the pandoc executable when no path is configured.
const PandocBinEnv = "MDEMBED_PANDOC_BIN"

const pandocName = "pandoc"

// Document is the rewritten Markdown handed to a Driver.
type Document struct {
	Markdown string
	Format   string
	BaseDir  string // directory that references left relative resolve against
}

// Driver converts rewritten Markdown into the requested output format.
type Driver interface {
	Convert(ctx context.Context, doc Document) ([]byte, error)
}

// PandocDriver converts Markdown by invoking the pandoc CLI with fixed
// presentation options: standalone output, MathJax math and the pygments
// highlighting theme.
type PandocDriver struct {
	Path   string // resolved pandoc executable
	Runner CommandRunner
	Logger *zap.SugaredLogger
}

// NewPandocDriver locates pandoc (see LocatePandoc) and returns a driver
// that runs it for real.
func NewPandocDriver(configured string, logger *zap.SugaredLogger) (*PandocDriver, error) {
	path, err := LocatePandoc(configured)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PandocDriver{Path: path, Runner: &process.ExecRunner{}, Logger: logger}, nil
}

// Convert writes the Markdown to a temp file, runs pandoc into a scoped temp
// directory and returns the produced document. Any failure is fatal and
// wrapped in ErrConversion with pandoc's stderr.
func (d *PandocDriver) Convert(ctx context.Context, doc Document) ([]byte, error) {
	inPath, cleanup, err := fileutil.WriteTempFile(doc.Markdown, markdownExtension)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	defer cleanup()

	outDir, err := os.MkdirTemp("", "mdembed-pandoc-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating output workspace: %w", ErrConversion, err)
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	outPath := filepath.Join(outDir, "output."+doc.Format)
	args := pandocArgs(inPath, outPath, doc)

	d.logger().Debugw("running pandoc", "path", d.Path, "args", args)
	_, stderr, err := d.Runner.Run(ctx, d.Path, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: pandoc: %s: %w", ErrConversion, strings.TrimSpace(stderr), err)
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		d.logger().Warnw("pandoc reported warnings", "stderr", msg)
	}

	data, err := os.ReadFile(outPath) // #nosec G304 -- path inside our own temp dir
	if err != nil {
		return nil, fmt.Errorf("%w: reading pandoc output: %w", ErrConversion, err)
	}
	return data, nil
}

func (d *PandocDriver) logger() *zap.SugaredLogger {
	if d.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return d.Logger
}

// pandocArgs builds the pandoc command line. For pdf the writer is left to
// pandoc, which picks its PDF engine from the output file name.
func pandocArgs(inPath, outPath string, doc Document) []string {
	args := []string{"-f", "markdown"}
	if !strings.EqualFold(doc.Format, "pdf") {
		args = append(args, "-t", doc.Format)
	}
	args = append(args,
		"-s",
		"--mathjax",
		"--highlight-style", pipeline.HighlightStyle,
	)
	if doc.BaseDir != "" {
		args = append(args, "--resource-path", doc.BaseDir)
	}
	return append(args, "-o", outPath, inPath)
}

// ---------------------------------------------------------------------------
// Locating pandoc
// ---------------------------------------------------------------------------

// LocatePandoc finds the pandoc executable. Candidates, in order: the
// configured name or path, $MDEMBED_PANDOC_BIN, pandoc on PATH, and pandoc
// next to the running executable. It only inspects the filesystem, so
// repeated calls with the same argument return the same result.
func LocatePandoc(configured string) (string, error) {
	return defaultLocator().locate(configured)
}

// pandocLocator holds the lookups LocatePandoc depends on.
type pandocLocator struct {
	lookPath   func(string) (string, error)
	getenv     func(string) string
	executable func() (string, error)
	isFile     func(string) bool
	goos       string
}

func defaultLocator() pandocLocator {
	return pandocLocator{
		lookPath:   exec.LookPath,
		getenv:     os.Getenv,
		executable: os.Executable,
		isFile:     fileutil.FileExists,
		goos:       runtime.GOOS,
	}
}

func (l pandocLocator) locate(configured string) (string, error) {
	if configured != "" {
		if path, ok := l.resolve(configured); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: %q", ErrPandocNotFound, configured)
	}

	if env := l.getenv(PandocBinEnv); env != "" {
		if path, ok := l.resolve(env); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s=%q", ErrPandocNotFound, PandocBinEnv, env)
	}

	name := pandocName
	if l.goos == "windows" {
		name += ".exe"
	}
	if path, err := l.lookPath(name); err == nil {
		return path, nil
	}

	if exe, err := l.executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), name)
		if l.isFile(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: not on PATH and not next to the executable", ErrPandocNotFound)
}

// resolve accepts a path (checked on disk) or a bare name (looked up on PATH).
func (l pandocLocator) resolve(nameOrPath string) (string, bool) {
	if strings.ContainsAny(nameOrPath, `/\`) {
		return nameOrPath, l.isFile(nameOrPath)
	}
	path, err := l.lookPath(nameOrPath)
	if err != nil {
		return "", false
	}
	return path, true
}

// IsPandocNotFound reports whether err means pandoc could not be located,
// either up front or when the runner tried to start it.
func IsPandocNotFound(err error) bool {
	return errors.Is(err, ErrPandocNotFound) || errors.Is(err, process.ErrToolNotFound)
}
