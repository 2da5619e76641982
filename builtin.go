package mdembed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-mdembed/internal/pipeline"
)

// BuiltinFormats lists the formats the builtin engine produces.
var BuiltinFormats = []string{"html", "html5", "pdf"}

// BuiltinDriver converts Markdown without external tools: Goldmark renders
// a standalone HTML5 page with the same presentation choices as the pandoc
// driver (MathJax, pygments highlighting), and headless Chrome prints it for
// pdf output.
type BuiltinDriver struct {
	html pipeline.HTMLConverter

	pdfOnce    sync.Once
	newPDF     func() pdfConverter
	pdf        pdfConverter
	pdfTimeout time.Duration
}

// NewBuiltinDriver creates a BuiltinDriver. Chrome is only started on the
// first pdf conversion.
func NewBuiltinDriver(timeout time.Duration) *BuiltinDriver {
	d := &BuiltinDriver{
		html:       pipeline.NewGoldmarkConverter(),
		pdfTimeout: timeout,
	}
	d.newPDF = func() pdfConverter { return newRodConverter(d.pdfTimeout) }
	return d
}

// Convert renders doc.Markdown as html, html5 or pdf.
func (d *BuiltinDriver) Convert(ctx context.Context, doc Document) ([]byte, error) {
	format := strings.ToLower(doc.Format)
	switch format {
	case "html", "html5", "pdf":
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, doc.Format, strings.Join(BuiltinFormats, ", "))
	}

	htmlContent, err := d.html.ToHTML(ctx, doc.Markdown)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	if format != "pdf" {
		return []byte(htmlContent), nil
	}

	// The page is printed from a temp file, so relative references would
	// resolve against the temp directory.
	if doc.BaseDir != "" {
		htmlContent, err = pipeline.AbsolutizeLocalURLs(htmlContent, doc.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConversion, err)
		}
	}

	d.pdfOnce.Do(func() { d.pdf = d.newPDF() })
	out, err := d.pdf.ToPDF(ctx, htmlContent)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return out, nil
}

// Close stops the browser if one was started.
func (d *BuiltinDriver) Close() error {
	if d.pdf != nil {
		return d.pdf.Close()
	}
	return nil
}
