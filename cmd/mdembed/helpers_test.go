package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	mdembed "github.com/alnah/go-mdembed"
)

// pngBytes is enough of a PNG for the encoder, which never decodes images.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// stubDriver records the documents it receives and returns canned output.
type stubDriver struct {
	mu   sync.Mutex
	docs []mdembed.Document
	out  []byte
	err  error
}

func (d *stubDriver) Convert(_ context.Context, doc mdembed.Document) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs = append(d.docs, doc)
	if d.err != nil {
		return nil, d.err
	}
	return d.out, nil
}

func (d *stubDriver) calls() []mdembed.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]mdembed.Document(nil), d.docs...)
}

// testEnv returns an Environment writing to buffers, with opts appended to
// the converter options.
func testEnv(opts ...mdembed.Option) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{Stdout: &stdout, Stderr: &stderr, Options: opts}, &stdout, &stderr
}

// setupTestDir creates a temp directory with the given file structure.
// Files map paths to content. Returns the temp directory path.
func setupTestDir(t *testing.T, files map[string][]byte) string {
	t.Helper()
	tempDir := t.TempDir()

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, content, 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return tempDir
}
