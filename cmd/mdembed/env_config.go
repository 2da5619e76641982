package main

import (
	"os"
	"strings"
	"time"

	mdembed "github.com/alnah/go-mdembed"
	"github.com/alnah/go-mdembed/internal/config"
	"go.uber.org/zap"
)

// envPrefix marks the variables read by loadEnvConfig.
const envPrefix = "MDEMBED_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDEMBED_CONFIG: config name or path
	Format     string        // MDEMBED_FORMAT: output format
	OutputDir  string        // MDEMBED_OUTPUT_DIR: output directory
	Engine     string        // MDEMBED_ENGINE: auto, pandoc, builtin
	PandocBin  string        // MDEMBED_PANDOC_BIN: pandoc name or path
	DrawioBin  string        // MDEMBED_DRAWIO_BIN: draw.io name or path
	Timeout    time.Duration // MDEMBED_TIMEOUT: conversion timeout
	LogFormat  string        // MDEMBED_LOG_FORMAT: console or json
	LogLevel   string        // MDEMBED_LOG_LEVEL: debug, info, warn, error

	// Invalid lists variables that were set but could not be parsed.
	Invalid []string
}

// knownEnvVars lists valid MDEMBED_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDEMBED_CONFIG":     true,
	"MDEMBED_FORMAT":     true,
	"MDEMBED_OUTPUT_DIR": true,
	"MDEMBED_ENGINE":     true,
	mdembed.PandocBinEnv: true,
	"MDEMBED_DRAWIO_BIN": true,
	"MDEMBED_TIMEOUT":    true,
	"MDEMBED_LOG_FORMAT": true,
	"MDEMBED_LOG_LEVEL":  true,
	"MDEMBED_CONTAINER":  true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDEMBED_CONFIG"),
		Format:     os.Getenv("MDEMBED_FORMAT"),
		OutputDir:  os.Getenv("MDEMBED_OUTPUT_DIR"),
		Engine:     os.Getenv("MDEMBED_ENGINE"),
		PandocBin:  os.Getenv(mdembed.PandocBinEnv),
		DrawioBin:  os.Getenv("MDEMBED_DRAWIO_BIN"),
		LogFormat:  os.Getenv("MDEMBED_LOG_FORMAT"),
		LogLevel:   os.Getenv("MDEMBED_LOG_LEVEL"),
	}

	if timeout := os.Getenv("MDEMBED_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			cfg.Invalid = append(cfg.Invalid, "MDEMBED_TIMEOUT")
		}
	}

	return cfg
}

// warnEnv logs unrecognized MDEMBED_* variables (typos like MDEMBED_FORMATS)
// and variables whose values were ignored.
func warnEnv(env *envConfig, logger *zap.SugaredLogger) {
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			logger.Warnw("unknown environment variable (typo?)", "name", name)
		}
	}
	for _, name := range env.Invalid {
		logger.Warnw("ignoring invalid environment variable", "name", name, "value", os.Getenv(name))
	}
}

// applyEnvConfig overlays set environment variables on cfg. Environment
// values win over the config file; flags are applied afterwards by
// mergeFlags, giving: flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Format != "" {
		cfg.Output.Format = env.Format
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Engine != "" {
		cfg.Converter.Engine = env.Engine
	}
	if env.PandocBin != "" {
		cfg.Converter.PandocPath = env.PandocBin
	}
	if env.Timeout > 0 {
		cfg.Converter.Timeout = env.Timeout.String()
	}
	if env.DrawioBin != "" {
		cfg.Diagrams.Tool = env.DrawioBin
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = env.LogFormat
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
}
