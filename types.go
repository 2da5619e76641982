package mdembed

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/alnah/go-mdembed/internal/fileutil"
	"github.com/alnah/go-mdembed/internal/pipeline"
)

// DefaultFormat is the output format used when none is given.
const DefaultFormat = "html"

// markdownExtension names rewritten-markdown output files.
const markdownExtension = "md"

// Engine selects the document converter.
type Engine string

// Engine values.
const (
	EngineAuto    Engine = "auto"    // pandoc when locatable, builtin otherwise
	EnginePandoc  Engine = "pandoc"  // external pandoc executable
	EngineBuiltin Engine = "builtin" // Goldmark, plus headless Chrome for pdf
)

// ParseEngine parses an engine name (case-insensitive). Empty means auto.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EngineAuto, nil
	case EngineAuto, EnginePandoc, EngineBuiltin:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q (must be auto, pandoc or builtin)", ErrInvalidEngine, s)
	}
}

// Input contains the data for a single conversion.
type Input struct {
	Markdown     string // Markdown source (required)
	BaseDir      string // directory that relative targets resolve against
	OutputDir    string // directory the output will be written to
	Format       string // output format token, defaults to html
	MarkdownOnly bool   // stop after rewriting, skip the document converter
}

// format returns the requested format, defaulting to html.
func (i Input) format() string {
	if i.Format == "" {
		return DefaultFormat
	}
	return i.Format
}

// validate checks the format token before any work is done.
func (i Input) validate() error {
	if i.MarkdownOnly {
		return nil
	}
	return validateFormat(i.format())
}

func validateFormat(format string) error {
	if err := fileutil.ValidateExtension(format); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidFormat, format, err)
	}
	if strings.ContainsAny(format, " \t\r\n") {
		return fmt.Errorf("%w: %q: contains whitespace", ErrInvalidFormat, format)
	}
	return nil
}

// Result is the outcome of a conversion.
type Result struct {
	Markdown   string // rewritten Markdown
	Output     []byte // converted document, nil when MarkdownOnly is set
	OutputPath string // set by ConvertFile
	Report     Report
}

// Report lists what happened to each image reference.
type Report struct {
	Resolved []AssetOutcome
	Skipped  []AssetOutcome
	Failed   []AssetOutcome
}

// AssetOutcome describes one image reference.
type AssetOutcome struct {
	Label     string
	Target    string
	Handler   string // passthrough, encode, render-diagram, or empty when unregistered
	MediaType string // set for resolved references
	Reason    string // why a reference was skipped
	Err       error  // why a reference failed
}

// newReport converts pipeline outcomes into the public report.
func newReport(res *pipeline.RewriteResult) Report {
	return Report{
		Resolved: lo.Map(res.Resolved, toAssetOutcome),
		Skipped:  lo.Map(res.Skipped, toAssetOutcome),
		Failed:   lo.Map(res.Failed, toAssetOutcome),
	}
}

func toAssetOutcome(o pipeline.Outcome, _ int) AssetOutcome {
	out := AssetOutcome{
		Label:  o.Reference.Label,
		Target: o.Reference.Target,
		Reason: o.Reason,
		Err:    o.Err,
	}
	if o.Handler != 0 {
		out.Handler = o.Handler.String()
	}
	if o.Asset != nil {
		out.MediaType = o.Asset.MediaType
	}
	return out
}

// RunConfig describes one file conversion.
type RunConfig struct {
	InputPath    string // Markdown file (required)
	OutputDir    string // defaults to DefaultOutputDir(InputPath, Format)
	Format       string // defaults to html
	MarkdownOnly bool   // write the rewritten Markdown instead of converting
}

// DefaultOutputDir returns the sibling directory "<dir>/<stem>_<format>"
// used when no output directory is given.
func DefaultOutputDir(inputPath, format string) string {
	return filepath.Join(filepath.Dir(inputPath), fileutil.Stem(inputPath)+"_"+format)
}

// extension is the output file extension: the format, or md when only the
// rewritten Markdown is written.
func (rc RunConfig) extension() string {
	if rc.MarkdownOnly {
		return markdownExtension
	}
	if rc.Format == "" {
		return DefaultFormat
	}
	return rc.Format
}

// ResolvedOutputDir returns OutputDir or its default.
func (rc RunConfig) ResolvedOutputDir() string {
	if rc.OutputDir != "" {
		return rc.OutputDir
	}
	return DefaultOutputDir(rc.InputPath, rc.extension())
}

// OutputPath returns "<output dir>/<input stem>.<format>".
func (rc RunConfig) OutputPath() string {
	return filepath.Join(rc.ResolvedOutputDir(), fileutil.Stem(rc.InputPath)+"."+rc.extension())
}
