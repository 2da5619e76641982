package mdembed

import "errors"

// Sentinel errors for library operations.
var (
	ErrReadInput         = errors.New("failed to read input")
	ErrOutputDir         = errors.New("failed to create output directory")
	ErrWriteOutput       = errors.New("failed to write output")
	ErrOutputIsInput     = errors.New("output path would overwrite the input file")
	ErrConversion        = errors.New("document conversion failed")
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidEngine     = errors.New("invalid engine")
	ErrPandocNotFound    = errors.New("pandoc executable not found")
	ErrUnsupportedFormat = errors.New("format not supported by the builtin engine")

	// Headless Chrome errors (builtin pdf output).
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)
