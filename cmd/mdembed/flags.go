package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-mdembed/internal/config"
	"github.com/alnah/go-mdembed/internal/pipeline"
	flag "github.com/spf13/pflag"
)

// Sentinel errors for command-line parsing.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input specified (use -i/--input)")
	ErrConflictingFlags = errors.New("conflicting flags")
)

// convertFlags holds the flags of the conversion command.
type convertFlags struct {
	input     string
	output    string
	format    string
	config    string
	engine    string
	pandoc    string
	drawio    string
	timeout   string
	logFormat string

	detectMIME      bool
	foldExtCase     bool
	firstOccurrence bool
	markdownOnly    bool
	quiet           bool
	verbose         bool
	help            bool

	// changed reports whether a flag was given on the command line, so
	// defaults never override config or environment values.
	changed func(name string) bool
}

// newConvertFlagSet declares the conversion flags on a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("mdembed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVarP(&f.input, "input", "i", "", "markdown file to convert")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.format, "format", "f", "html", "output format")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.engine, "engine", "e", "auto", "document converter: auto, pandoc, builtin")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc executable name or path")
	fs.StringVar(&f.drawio, "drawio", "", "draw.io executable name or path")
	fs.BoolVar(&f.detectMIME, "detect-mime", false, "detect image media types from content")
	fs.BoolVar(&f.foldExtCase, "fold-ext-case", false, "match extensions case-insensitively")
	fs.BoolVar(&f.firstOccurrence, "first-occurrence", false, "substitute the first textual occurrence of each target")
	fs.BoolVar(&f.markdownOnly, "markdown-only", false, "write the rewritten markdown instead of converting")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "conversion timeout, e.g. 90s")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print debug diagnostics")
	fs.StringVar(&f.logFormat, "log-format", "", "diagnostics format: console, json")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	f.changed = fs.Changed
	return fs
}

// parseConvertFlags parses the conversion command line.
func parseConvertFlags(args []string) (*convertFlags, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if f.help {
		return f, nil
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(fs.Args(), " "))
	}
	if f.input == "" {
		return nil, ErrNoInput
	}
	if f.quiet && f.verbose {
		return nil, fmt.Errorf("%w: --quiet and --verbose", ErrConflictingFlags)
	}
	return f, nil
}

// mergeFlags applies explicitly set flags to cfg (flags win).
func mergeFlags(f *convertFlags, cfg *config.Config) {
	if f.changed("output") {
		cfg.Output.DefaultDir = f.output
	}
	if f.changed("format") {
		cfg.Output.Format = f.format
	}
	if f.changed("engine") {
		cfg.Converter.Engine = f.engine
	}
	if f.changed("pandoc") {
		cfg.Converter.PandocPath = f.pandoc
	}
	if f.changed("timeout") {
		cfg.Converter.Timeout = f.timeout
	}
	if f.changed("drawio") {
		cfg.Diagrams.Tool = f.drawio
	}
	if f.detectMIME {
		cfg.Assets.DetectMediaType = true
	}
	if f.foldExtCase {
		cfg.Assets.FoldExtensionCase = true
	}
	if f.firstOccurrence {
		cfg.Assets.Substitution = pipeline.SubstituteFirstOccurrence.String()
	}
	if f.changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	switch {
	case f.verbose:
		cfg.Logging.Level = "debug"
	case f.quiet:
		cfg.Logging.Level = "error"
	}
}
