package main

import (
	"errors"
	"testing"

	"github.com/alnah/go-mdembed/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseConvertFlags - Flag parsing and validation
// ---------------------------------------------------------------------------

func TestParseConvertFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
		check   func(t *testing.T, f *convertFlags)
	}{
		{
			name: "short flags",
			args: []string{"-i", "doc.md", "-o", "out", "-f", "pdf", "-e", "builtin", "-t", "90s"},
			check: func(t *testing.T, f *convertFlags) {
				if f.input != "doc.md" || f.output != "out" || f.format != "pdf" || f.engine != "builtin" || f.timeout != "90s" {
					t.Errorf("unexpected flags: %+v", f)
				}
			},
		},
		{
			name: "format defaults to html but is not marked changed",
			args: []string{"--input", "doc.md"},
			check: func(t *testing.T, f *convertFlags) {
				if f.format != "html" {
					t.Errorf("format = %q, want html", f.format)
				}
				if f.changed("format") {
					t.Error("format reported as changed")
				}
			},
		},
		{
			name: "asset switches",
			args: []string{"-i", "doc.md", "--detect-mime", "--fold-ext-case", "--first-occurrence", "--markdown-only"},
			check: func(t *testing.T, f *convertFlags) {
				if !f.detectMIME || !f.foldExtCase || !f.firstOccurrence || !f.markdownOnly {
					t.Errorf("switches not set: %+v", f)
				}
			},
		},
		{
			name: "help skips input check",
			args: []string{"--help"},
			check: func(t *testing.T, f *convertFlags) {
				if !f.help {
					t.Error("help = false")
				}
			},
		},
		{name: "missing input", args: []string{"-f", "pdf"}, wantErr: ErrNoInput},
		{name: "unknown flag", args: []string{"-i", "doc.md", "--workers", "2"}, wantErr: ErrUsage},
		{name: "positional argument", args: []string{"-i", "doc.md", "other.md"}, wantErr: ErrUsage},
		{name: "quiet and verbose", args: []string{"-i", "doc.md", "--quiet", "--verbose"}, wantErr: ErrConflictingFlags},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := parseConvertFlags(tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, f)
		})
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Only explicit flags override config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config values", func(t *testing.T) {
		t.Parallel()

		f, err := parseConvertFlags([]string{"-i", "doc.md"})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Output.Format = "docx"
		cfg.Converter.Engine = "pandoc"

		mergeFlags(f, cfg)

		if cfg.Output.Format != "docx" {
			t.Errorf("Output.Format = %q, want docx", cfg.Output.Format)
		}
		if cfg.Converter.Engine != "pandoc" {
			t.Errorf("Converter.Engine = %q, want pandoc", cfg.Converter.Engine)
		}
		if cfg.Logging.Level != "warn" {
			t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		f, err := parseConvertFlags([]string{
			"-i", "doc.md", "-f", "html", "-o", "out", "--pandoc", "/opt/pandoc",
			"--drawio", "draw.io", "--first-occurrence", "--detect-mime", "-v", "--log-format", "json",
		})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Output.Format = "docx"

		mergeFlags(f, cfg)

		if cfg.Output.Format != "html" {
			t.Errorf("Output.Format = %q, want html", cfg.Output.Format)
		}
		if cfg.Output.DefaultDir != "out" {
			t.Errorf("Output.DefaultDir = %q, want out", cfg.Output.DefaultDir)
		}
		if cfg.Converter.PandocPath != "/opt/pandoc" {
			t.Errorf("Converter.PandocPath = %q", cfg.Converter.PandocPath)
		}
		if cfg.Diagrams.Tool != "draw.io" {
			t.Errorf("Diagrams.Tool = %q", cfg.Diagrams.Tool)
		}
		if cfg.Assets.Substitution != "first-occurrence" || !cfg.Assets.DetectMediaType {
			t.Errorf("Assets = %+v", cfg.Assets)
		}
		if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
			t.Errorf("Logging = %+v", cfg.Logging)
		}
	})

	t.Run("quiet raises the level to error", func(t *testing.T) {
		t.Parallel()

		f, err := parseConvertFlags([]string{"-i", "doc.md", "-q"})
		if err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		mergeFlags(f, cfg)
		if cfg.Logging.Level != "error" {
			t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
		}
	})
}
