// Package config loads and validates go-mdembed configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdembed/internal/fileutil"
	"github.com/alnah/go-mdembed/internal/pipeline"
	"github.com/alnah/go-mdembed/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDirName is the directory searched under the user config directory.
const appDirName = "go-mdembed"

// Field limits.
const (
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxFormatLength = 32   // "html5", "docx", "gfm+smart"
	MaxToolArgs     = 32
	MaxArgLength    = 256
)

// Config holds all configuration for one conversion run.
type Config struct {
	Output    OutputConfig    `yaml:"output"`
	Converter ConverterConfig `yaml:"converter"`
	Diagrams  DiagramsConfig  `yaml:"diagrams"`
	Assets    AssetsConfig    `yaml:"assets"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Format     string `yaml:"format"`     // converter target token (default: html)
	DefaultDir string `yaml:"defaultDir"` // empty = "<input dir>/<stem>_<format>"
}

// ConverterConfig selects and tunes the document converter.
type ConverterConfig struct {
	Engine     string `yaml:"engine"`     // "auto", "pandoc", "builtin" (default: auto)
	PandocPath string `yaml:"pandocPath"` // name or path; empty = search
	Timeout    string `yaml:"timeout"`    // Go duration, e.g. "90s"
}

// DiagramsConfig configures the draw.io export step.
type DiagramsConfig struct {
	Tool string   `yaml:"tool"` // executable name or path (default: drawio)
	Args []string `yaml:"args"` // extra arguments, e.g. ["--no-sandbox"]
}

// AssetsConfig controls how references are inlined.
type AssetsConfig struct {
	DetectMediaType   bool   `yaml:"detectMediaType"`   // sniff image type instead of image/png
	FoldExtensionCase bool   `yaml:"foldExtensionCase"` // match PNG like png
	Substitution      string `yaml:"substitution"`      // "offsets" or "first-occurrence"
}

// LoggingConfig configures diagnostics on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error" (default: warn)
	Format string `yaml:"format"` // "console" or "json" (default: console)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output:    OutputConfig{Format: "html"},
		Converter: ConverterConfig{Engine: "auto"},
		Diagrams:  DiagramsConfig{Tool: pipeline.DefaultDiagramTool},
		Assets:    AssetsConfig{Substitution: pipeline.SubstituteOffsets.String()},
		Logging:   LoggingConfig{Level: "warn", Format: "console"},
	}
}

// TimeoutDuration parses Converter.Timeout. Empty means zero (use the
// library default).
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Converter.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Converter.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: converter.timeout: %v", ErrInvalidValue, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: converter.timeout: must not be negative, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks enums, durations and field lengths.
// Called automatically by LoadConfig, but available for callers that
// build or override a Config in code.
func (c *Config) Validate() error {
	if c.Output.Format != "" {
		if err := validateFieldLength("output.format", c.Output.Format, MaxFormatLength); err != nil {
			return err
		}
		if err := fileutil.ValidateExtension(c.Output.Format); err != nil {
			return fmt.Errorf("%w: output.format: %v", ErrInvalidValue, err)
		}
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if err := validateEnum("converter.engine", c.Converter.Engine, "auto", "pandoc", "builtin"); err != nil {
		return err
	}
	if err := validateFieldLength("converter.pandocPath", c.Converter.PandocPath, MaxPathLength); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	if err := validateFieldLength("diagrams.tool", c.Diagrams.Tool, MaxPathLength); err != nil {
		return err
	}
	if len(c.Diagrams.Args) > MaxToolArgs {
		return fmt.Errorf("%w: diagrams.args: %d arguments (max %d)", ErrInvalidValue, len(c.Diagrams.Args), MaxToolArgs)
	}
	for i, arg := range c.Diagrams.Args {
		if err := validateFieldLength(fmt.Sprintf("diagrams.args[%d]", i), arg, MaxArgLength); err != nil {
			return err
		}
	}

	if _, err := pipeline.ParseSubstitutionMode(c.Assets.Substitution); err != nil {
		return fmt.Errorf("%w: assets.substitution: %v", ErrInvalidValue, err)
	}

	if err := validateEnum("logging.level", c.Logging.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return validateEnum("logging.format", c.Logging.Format, "console", "json")
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts empty (use default) or one of allowed, case-insensitively.
func validateEnum(fieldName, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-mdembed/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
