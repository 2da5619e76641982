package mdembed

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// pngBytes is a short payload starting with the PNG signature.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00, 0x00, 0x0d}

// scriptedRunner stands in for both external tools. draw.io exports are
// written to fs; pandoc output goes to the real filesystem because the
// pandoc driver works in an OS temp directory.
type scriptedRunner struct {
	mu sync.Mutex

	fs           afero.Fs
	pandocOut    []byte
	pandocStderr string
	pandocErr    error
	calls        [][]string
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) (string, string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()

	if filepath.Base(name) == "drawio" {
		return "", "", afero.WriteFile(r.fs, argAfter(args, "--output"), pngBytes, 0o644)
	}

	if r.pandocErr != nil {
		return "", r.pandocStderr, r.pandocErr
	}
	if err := os.WriteFile(argAfter(args, "-o"), r.pandocOut, 0o600); err != nil {
		return "", "", err
	}
	return "", r.pandocStderr, nil
}

func (r *scriptedRunner) lastCall() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// recordingDriver captures the document it receives.
type recordingDriver struct {
	got      Document
	calls    int
	output   []byte
	err      error
	panicMsg string
}

func (d *recordingDriver) Convert(_ context.Context, doc Document) ([]byte, error) {
	d.calls++
	d.got = doc
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	if d.err != nil {
		return nil, d.err
	}
	if d.output != nil {
		return d.output, nil
	}
	return []byte("<html>" + doc.Markdown + "</html>"), nil
}

// newObservedLogger returns a debug-level logger and its captured entries.
func newObservedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}
