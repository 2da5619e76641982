package main

import (
	"errors"
	"os"

	mdembed "github.com/alnah/go-mdembed"
	"github.com/alnah/go-mdembed/internal/config"
	"github.com/alnah/go-mdembed/internal/pipeline"
)

// Exit codes for the mdembed CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Successful conversion
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // File not found, permission denied
	ExitConverter = 4 // pandoc, builtin engine or browser errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Converter errors (exit 4)
	if mdembed.IsPandocNotFound(err) ||
		errors.Is(err, mdembed.ErrConversion) ||
		errors.Is(err, mdembed.ErrUnsupportedFormat) ||
		errors.Is(err, pipeline.ErrHTMLConversion) ||
		errors.Is(err, mdembed.ErrBrowserConnect) ||
		errors.Is(err, mdembed.ErrPageCreate) ||
		errors.Is(err, mdembed.ErrPageLoad) ||
		errors.Is(err, mdembed.ErrPDFGeneration) {
		return ExitConverter
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrConflictingFlags) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdembed.ErrInvalidFormat) ||
		errors.Is(err, mdembed.ErrInvalidEngine) ||
		errors.Is(err, mdembed.ErrOutputIsInput) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, mdembed.ErrReadInput) ||
		errors.Is(err, mdembed.ErrOutputDir) ||
		errors.Is(err, mdembed.ErrWriteOutput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
