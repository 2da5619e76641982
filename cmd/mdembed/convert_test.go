package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdembed "github.com/alnah/go-mdembed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docWithLogo = "# Notes\n\n![logo](img/logo.png)\n"

// ---------------------------------------------------------------------------
// TestConvert_DefaultOutput - "-i doc.md" writes <dir>/doc_html/doc.html
// ---------------------------------------------------------------------------

func TestConvert_DefaultOutput(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string][]byte{
		"doc.md":       []byte(docWithLogo),
		"img/logo.png": pngBytes,
	})
	driver := &stubDriver{out: []byte("<html>ok</html>")}
	env, stdout, stderr := testEnv(mdembed.WithDriver(driver))

	code := runMain([]string{"mdembed", "-i", filepath.Join(dir, "doc.md")}, env)
	require.Equal(t, ExitSuccess, code, "stderr: %s", stderr.String())

	outPath := filepath.Join(dir, "doc_html", "doc.html")
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(got))

	calls := driver.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "html", calls[0].Format)
	assert.Equal(t, dir, calls[0].BaseDir)
	assert.Contains(t, calls[0].Markdown, "![logo](data:image/png;base64,")

	assert.Contains(t, stdout.String(), outPath)
	assert.Contains(t, stdout.String(), "(1 inlined, 0 skipped, 0 failed)")
}

// ---------------------------------------------------------------------------
// TestConvert_OutputDirAndFormat - Explicit -o and -f
// ---------------------------------------------------------------------------

func TestConvert_OutputDirAndFormat(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string][]byte{"doc.md": []byte("plain text\n")})
	outDir := filepath.Join(dir, "build", "docs")
	driver := &stubDriver{out: []byte("docx-bytes")}
	env, _, stderr := testEnv(mdembed.WithDriver(driver))

	code := runMain([]string{"mdembed", "convert", "-i", filepath.Join(dir, "doc.md"), "-o", outDir, "-f", "docx", "-q"}, env)
	require.Equal(t, ExitSuccess, code, "stderr: %s", stderr.String())

	got, err := os.ReadFile(filepath.Join(outDir, "doc.docx"))
	require.NoError(t, err)
	assert.Equal(t, "docx-bytes", string(got))
	assert.Equal(t, "docx", driver.calls()[0].Format)
}

// ---------------------------------------------------------------------------
// TestConvert_MarkdownOnly - Rewritten markdown, no converter
// ---------------------------------------------------------------------------

func TestConvert_MarkdownOnly(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string][]byte{
		"doc.md":       []byte(docWithLogo),
		"img/logo.png": pngBytes,
	})
	driver := &stubDriver{}
	env, _, stderr := testEnv(mdembed.WithDriver(driver))

	code := runMain([]string{"mdembed", "-i", filepath.Join(dir, "doc.md"), "--markdown-only"}, env)
	require.Equal(t, ExitSuccess, code, "stderr: %s", stderr.String())

	got, err := os.ReadFile(filepath.Join(dir, "doc_md", "doc.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "# Notes\n\n![logo](data:image/png;base64,"))
	assert.Empty(t, driver.calls(), "converter must not run")
}

// ---------------------------------------------------------------------------
// TestConvert_BuiltinEngine - Real goldmark rendering
// ---------------------------------------------------------------------------

func TestConvert_BuiltinEngine(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string][]byte{
		"doc.md":       []byte(docWithLogo),
		"img/logo.png": pngBytes,
	})
	env, _, stderr := testEnv()

	code := runMain([]string{"mdembed", "-i", filepath.Join(dir, "doc.md"), "-e", "builtin", "-q"}, env)
	require.Equal(t, ExitSuccess, code, "stderr: %s", stderr.String())

	got, err := os.ReadFile(filepath.Join(dir, "doc_html", "doc.html"))
	require.NoError(t, err)
	assert.Contains(t, string(got), `src="data:image/png;base64,`)
	assert.Contains(t, string(got), "<title>Notes</title>")
}

// ---------------------------------------------------------------------------
// TestConvert_Failures - Fatal and non-fatal outcomes
// ---------------------------------------------------------------------------

func TestConvert_DriverFailure(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string][]byte{"doc.md": []byte("text\n")})
	driver := &stubDriver{err: errors.Join(mdembed.ErrConversion, errors.New("pandoc: bad reader"))}
	env, _, stderr := testEnv(mdembed.WithDriver(driver))

	code := runMain([]string{"mdembed", "-i", filepath.Join(dir, "doc.md")}, env)

	assert.Equal(t, ExitConverter, code)
	assert.Contains(t, stderr.String(), "bad reader")
	_, err := os.Stat(filepath.Join(dir, "doc_html", "doc.html"))
	assert.True(t, os.IsNotExist(err), "no output file after a failed conversion")
}

func TestConvert_BuiltinRejectsFormat(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string][]byte{"doc.md": []byte("text\n")})
	env, _, stderr := testEnv()

	code := runMain([]string{"mdembed", "-i", filepath.Join(dir, "doc.md"), "-e", "builtin", "-f", "docx"}, env)

	assert.Equal(t, ExitConverter, code)
	assert.Contains(t, stderr.String(), "the builtin engine supports html, html5, pdf")
}

func TestConvert_DiagramFailureIsReported(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string][]byte{
		"doc.md":       []byte("![flow](flow.drawio)\n![logo](img/logo.png)\n"),
		"flow.drawio":  []byte("<mxfile/>"),
		"img/logo.png": pngBytes,
	})
	driver := &stubDriver{out: []byte("ok")}
	env, stdout, stderr := testEnv(mdembed.WithDriver(driver))

	code := runMain([]string{
		"mdembed", "-i", filepath.Join(dir, "doc.md"),
		"--drawio", filepath.Join(dir, "no-such-drawio"),
	}, env)

	require.Equal(t, ExitSuccess, code, "per-asset failures are not fatal; stderr: %s", stderr.String())
	assert.Contains(t, stdout.String(), "(1 inlined, 0 skipped, 1 failed)")
	assert.Contains(t, stderr.String(), "flow.drawio")
	assert.Contains(t, stderr.String(), "install draw.io")
	assert.Contains(t, driver.calls()[0].Markdown, "![flow](flow.drawio)")
}

// ---------------------------------------------------------------------------
// TestConvert_ConfigPrecedence - file < env < flags
// ---------------------------------------------------------------------------

func TestConvert_ConfigPrecedence(t *testing.T) {
	// Not parallel: uses t.Setenv.
	dir := setupTestDir(t, map[string][]byte{
		"doc.md":       []byte(docWithLogo),
		"img/logo.png": pngBytes,
		"team.yaml":    []byte("output:\n  format: docx\nassets:\n  substitution: first-occurrence\n"),
	})
	cfgPath := filepath.Join(dir, "team.yaml")
	input := filepath.Join(dir, "doc.md")

	t.Run("config file", func(t *testing.T) {
		driver := &stubDriver{out: []byte("x")}
		env, _, stderr := testEnv(mdembed.WithDriver(driver))

		code := runMain([]string{"mdembed", "-i", input, "-c", cfgPath, "-q"}, env)
		require.Equal(t, ExitSuccess, code, "stderr: %s", stderr.String())
		assert.FileExists(t, filepath.Join(dir, "doc_docx", "doc.docx"))
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("MDEMBED_CONFIG", cfgPath)
		t.Setenv("MDEMBED_FORMAT", "odt")

		driver := &stubDriver{out: []byte("x")}
		env, _, stderr := testEnv(mdembed.WithDriver(driver))

		code := runMain([]string{"mdembed", "-i", input, "-q"}, env)
		require.Equal(t, ExitSuccess, code, "stderr: %s", stderr.String())
		assert.FileExists(t, filepath.Join(dir, "doc_odt", "doc.odt"))
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("MDEMBED_FORMAT", "odt")

		driver := &stubDriver{out: []byte("x")}
		env, _, stderr := testEnv(mdembed.WithDriver(driver))

		code := runMain([]string{"mdembed", "-i", input, "-f", "rst", "-q"}, env)
		require.Equal(t, ExitSuccess, code, "stderr: %s", stderr.String())
		assert.FileExists(t, filepath.Join(dir, "doc_rst", "doc.rst"))
	})
}
