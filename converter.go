package mdembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/alnah/go-mdembed/internal/fileutil"
	"github.com/alnah/go-mdembed/internal/pipeline"
	"github.com/alnah/go-mdembed/internal/process"
)

// Compile-time interface implementation checks.
var (
	_ Driver                 = (*PandocDriver)(nil)
	_ Driver                 = (*BuiltinDriver)(nil)
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ process.Runner         = (*process.ExecRunner)(nil)
)

// Output file and directory permissions.
const (
	outputDirPerm  = 0o750
	outputFilePerm = 0o644
)

// Converter rewrites Markdown image references into inline data URIs and
// hands the result to a document converter.
// Create with NewConverter, use Convert or ConvertFile, and Close when done.
type Converter struct {
	cfg      converterConfig
	rewriter *pipeline.Rewriter

	driverMu sync.Mutex
	driver   Driver
}

// NewConverter creates a Converter with default configuration.
// The document converter is chosen lazily on the first conversion that
// needs one, so rewrite-only use never requires pandoc or Chrome.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:     defaultTimeout,
			engine:      EngineAuto,
			diagramTool: pipeline.DefaultDiagramTool,
			logger:      zap.NewNop().Sugar(),
			fs:          afero.NewOsFs(),
			runner:      &process.ExecRunner{},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, err := ParseEngine(string(c.cfg.engine)); err != nil {
		return nil, err
	}

	encoder := &pipeline.AssetEncoder{
		Fs:              c.cfg.fs,
		DetectMediaType: c.cfg.detectMediaType,
	}
	c.rewriter = &pipeline.Rewriter{
		Registry: pipeline.DefaultRegistry(),
		Encoder:  encoder,
		Renderer: &pipeline.DiagramRenderer{
			Runner:    c.cfg.runner,
			Tool:      c.cfg.diagramTool,
			ExtraArgs: c.cfg.diagramArgs,
			Encoder:   encoder,
			Logger:    c.cfg.logger,
		},
		Logger:            c.cfg.logger,
		Mode:              c.cfg.substitution,
		FoldExtensionCase: c.cfg.foldExtensionCase,
	}
	c.driver = c.cfg.driver

	return c, nil
}

// Convert rewrites input.Markdown and, unless MarkdownOnly is set, converts
// it to input.Format. Per-asset failures are reported in Result.Report and
// never fail the call. Recovers from internal panics to prevent crashes
// from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.validate(); err != nil {
		return nil, err
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	rewritten, err := c.rewriter.Run(ctx, input.Markdown, pipeline.Dirs{
		BaseDir:   input.BaseDir,
		OutputDir: input.OutputDir,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Markdown: rewritten.Markdown,
		Report:   newReport(rewritten),
	}
	if input.MarkdownOnly {
		return res, nil
	}

	driver, err := c.resolveDriver()
	if err != nil {
		return nil, err
	}

	format := input.format()
	out, err := driver.Convert(ctx, Document{
		Markdown: rewritten.Markdown,
		Format:   format,
		BaseDir:  input.BaseDir,
	})
	if err != nil {
		return nil, fmt.Errorf("converting to %s: %w", format, err)
	}

	res.Output = out
	return res, nil
}

// ConvertFile converts the Markdown file at rc.InputPath and writes
// "<output dir>/<stem>.<format>". The output directory is created if needed
// and the file is replaced atomically, so a failed run leaves no partial
// output behind.
func (c *Converter) ConvertFile(ctx context.Context, rc RunConfig) (*Result, error) {
	fs := c.cfg.fs

	data, err := afero.ReadFile(fs, rc.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadInput, rc.InputPath, err)
	}

	outDir := rc.ResolvedOutputDir()
	outPath := rc.OutputPath()
	if samePath(outPath, rc.InputPath) {
		return nil, fmt.Errorf("%w: %s", ErrOutputIsInput, outPath)
	}

	if err := fs.MkdirAll(outDir, outputDirPerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOutputDir, outDir, err)
	}

	res, err := c.Convert(ctx, Input{
		Markdown:     string(data),
		BaseDir:      filepath.Dir(rc.InputPath),
		OutputDir:    outDir,
		Format:       rc.Format,
		MarkdownOnly: rc.MarkdownOnly,
	})
	if err != nil {
		return nil, err
	}

	payload := res.Output
	if rc.MarkdownOnly {
		payload = []byte(res.Markdown)
	}
	if err := fileutil.WriteFileAtomic(fs, outPath, payload, outputFilePerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWriteOutput, outPath, err)
	}

	c.cfg.logger.Debugw("wrote output", "path", outPath, "bytes", len(payload))
	res.OutputPath = outPath
	return res, nil
}

// Close releases driver resources (headless Chrome).
func (c *Converter) Close() error {
	c.driverMu.Lock()
	defer c.driverMu.Unlock()

	if closer, ok := c.driver.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// resolveDriver picks the document converter on first use.
func (c *Converter) resolveDriver() (Driver, error) {
	c.driverMu.Lock()
	defer c.driverMu.Unlock()

	if c.driver != nil {
		return c.driver, nil
	}

	switch c.cfg.engine {
	case EngineBuiltin:
		c.driver = NewBuiltinDriver(c.cfg.timeout)
	case EnginePandoc:
		d, err := c.newPandocDriver()
		if err != nil {
			return nil, err
		}
		c.driver = d
	default:
		d, err := c.newPandocDriver()
		switch {
		case err == nil:
			c.driver = d
		case errors.Is(err, ErrPandocNotFound):
			c.cfg.logger.Warnw("pandoc not found, using builtin engine", "error", err)
			c.driver = NewBuiltinDriver(c.cfg.timeout)
		default:
			return nil, err
		}
	}
	return c.driver, nil
}

func (c *Converter) newPandocDriver() (*PandocDriver, error) {
	d, err := NewPandocDriver(c.cfg.pandocPath, c.cfg.logger)
	if err != nil {
		return nil, err
	}
	d.Runner = c.cfg.runner
	c.cfg.logger.Debugw("using pandoc", "path", d.Path)
	return d, nil
}

// samePath compares two paths after making them absolute.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
