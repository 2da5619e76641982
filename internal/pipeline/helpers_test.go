package pipeline

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// tenBytes is a fixed 10-byte payload starting with the PNG signature.
var tenBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x01}

// fakeRunner stands in for the draw.io CLI. When png is set it writes the
// bytes to the --output path on fs, like a successful export.
type fakeRunner struct {
	fs       afero.Fs
	png      []byte
	stderr   string
	err      error
	panicMsg string
	calls    [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.png != nil {
		if err := afero.WriteFile(f.fs, f.outputArg(), f.png, 0o644); err != nil {
			return "", "", err
		}
	}
	return "", f.stderr, f.err
}

// outputArg returns the --output value of the last call.
func (f *fakeRunner) outputArg() string {
	if len(f.calls) == 0 {
		return ""
	}
	last := f.calls[len(f.calls)-1]
	for i, a := range last {
		if a == "--output" && i+1 < len(last) {
			return last[i+1]
		}
	}
	return ""
}

// newObservedLogger returns a debug-level logger and its captured entries.
func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

// newTestRewriter wires a Rewriter over an in-memory filesystem.
func newTestRewriter(t *testing.T, fs afero.Fs, runner *fakeRunner) (*Rewriter, *observer.ObservedLogs) {
	t.Helper()

	logger, logs := newObservedLogger()
	encoder := &AssetEncoder{Fs: fs}
	if runner == nil {
		runner = &fakeRunner{fs: fs}
	}
	return &Rewriter{
		Registry: DefaultRegistry(),
		Encoder:  encoder,
		Renderer: &DiagramRenderer{Runner: runner, Encoder: encoder, Logger: logger},
		Logger:   logger,
	}, logs
}

func mustWrite(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
