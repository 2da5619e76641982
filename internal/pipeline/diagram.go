package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/alnah/go-mdembed/internal/fileutil"
	"github.com/alnah/go-mdembed/internal/process"
)

// ErrDiagramWorkspace indicates the scoped render directory could not be created.
var ErrDiagramWorkspace = errors.New("failed to create diagram workspace")

// DefaultDiagramTool is the draw.io desktop executable name.
const DefaultDiagramTool = "drawio"

// DiagramRenderer renders draw.io diagrams to PNG with the external draw.io
// CLI and inlines the result through an AssetEncoder.
type DiagramRenderer struct {
	Runner    process.Runner
	Tool      string   // executable name or path (default: drawio)
	ExtraArgs []string // inserted before the input path, e.g. --no-sandbox
	Encoder   *AssetEncoder
	Logger    *zap.SugaredLogger
}

// NewDiagramRenderer creates a DiagramRenderer that runs the real tool.
func NewDiagramRenderer(encoder *AssetEncoder, logger *zap.SugaredLogger) *DiagramRenderer {
	return &DiagramRenderer{
		Runner:  &process.ExecRunner{},
		Tool:    DefaultDiagramTool,
		Encoder: encoder,
		Logger:  logger,
	}
}

// Render exports the diagram referenced by target (resolved against baseDir)
// into a scoped temporary directory and encodes the PNG. The directory is
// removed before Render returns, whatever the outcome.
//
// The tool's exit status is logged but not acted on: a failed export shows up
// as ErrAssetNotFound when the expected PNG is missing. The returned asset is
// keyed by the original .drawio target.
func (d *DiagramRenderer) Render(ctx context.Context, target, baseDir string) (*ResolvedAsset, error) {
	fs := d.Encoder.fs()

	tmpDir, err := afero.TempDir(fs, "", "mdembed-drawio-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramWorkspace, err)
	}
	defer func() {
		if rmErr := fs.RemoveAll(tmpDir); rmErr != nil {
			d.logger().Warnw("could not remove diagram workspace", "dir", tmpDir, "error", rmErr)
		}
	}()

	input := ResolvePath(unescapeTarget(target), baseDir)
	output := filepath.Join(tmpDir, fileutil.Stem(input)+".png")

	args := []string{"--export", "--format", "png", "--output", output}
	args = append(args, d.ExtraArgs...)
	args = append(args, input)

	_, stderr, runErr := d.Runner.Run(ctx, d.tool(), args...)
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d.logger().Warnw("diagram tool reported an error",
			"tool", d.tool(),
			"target", target,
			"stderr", strings.TrimSpace(stderr),
			"error", runErr,
		)
	}

	return d.Encoder.Encode(target, output)
}

func (d *DiagramRenderer) tool() string {
	if d.Tool == "" {
		return DefaultDiagramTool
	}
	return d.Tool
}

func (d *DiagramRenderer) logger() *zap.SugaredLogger {
	if d.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return d.Logger
}
