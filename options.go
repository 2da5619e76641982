package mdembed

import (
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/alnah/go-mdembed/internal/pipeline"
	"github.com/alnah/go-mdembed/internal/process"
)

// SubstitutionMode selects how resolved assets are written back.
type SubstitutionMode = pipeline.SubstitutionMode

// Substitution modes.
const (
	SubstituteOffsets         = pipeline.SubstituteOffsets         // each reference at its own position
	SubstituteFirstOccurrence = pipeline.SubstituteFirstOccurrence // first literal match in the evolving text
)

// CommandRunner runs external tools (pandoc, draw.io).
type CommandRunner = process.Runner

// Default timeout for a whole conversion, diagram exports included.
const defaultTimeout = 5 * time.Minute

// converterConfig holds converter configuration.
type converterConfig struct {
	timeout           time.Duration
	engine            Engine
	pandocPath        string
	diagramTool       string
	diagramArgs       []string
	substitution      SubstitutionMode
	detectMediaType   bool
	foldExtensionCase bool
	logger            *zap.SugaredLogger
	fs                afero.Fs
	runner            CommandRunner
	driver            Driver
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout bounds each conversion. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger used for diagnostics. Default: no-op.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.cfg.logger = logger
		}
	}
}

// WithEngine selects the document converter. Default: EngineAuto.
func WithEngine(e Engine) Option {
	return func(c *Converter) {
		c.cfg.engine = e
	}
}

// WithDriver replaces engine selection with a custom Driver.
func WithDriver(d Driver) Option {
	return func(c *Converter) {
		c.cfg.driver = d
	}
}

// WithPandocPath sets the pandoc executable name or path.
func WithPandocPath(path string) Option {
	return func(c *Converter) {
		c.cfg.pandocPath = path
	}
}

// WithDiagramTool sets the draw.io executable name or path and extra
// arguments placed before the input file (e.g. --no-sandbox).
func WithDiagramTool(tool string, args ...string) Option {
	return func(c *Converter) {
		if tool != "" {
			c.cfg.diagramTool = tool
		}
		c.cfg.diagramArgs = args
	}
}

// WithSubstitution selects how resolved assets are written back.
func WithSubstitution(mode SubstitutionMode) Option {
	return func(c *Converter) {
		c.cfg.substitution = mode
	}
}

// WithDetectMediaType declares the sniffed image type in data URIs instead
// of the fixed image/png.
func WithDetectMediaType(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.detectMediaType = enabled
	}
}

// WithFoldExtensionCase makes extension dispatch case-insensitive.
func WithFoldExtensionCase(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.foldExtensionCase = enabled
	}
}

// WithFs sets the filesystem used for input, assets and output.
func WithFs(fs afero.Fs) Option {
	return func(c *Converter) {
		if fs != nil {
			c.cfg.fs = fs
		}
	}
}

// WithRunner sets the subprocess runner used for pandoc and draw.io.
func WithRunner(r CommandRunner) Option {
	return func(c *Converter) {
		if r != nil {
			c.cfg.runner = r
		}
	}
}
