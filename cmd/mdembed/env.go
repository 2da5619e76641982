package main

import (
	"io"
	"os"

	mdembed "github.com/alnah/go-mdembed"
	"go.uber.org/zap"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// Options are appended after the options derived from configuration.
	// Tests use them to swap the document driver or the process runner.
	Options []mdembed.Option

	// Tune runs once the logger exists. Production sets GOMAXPROCS here.
	Tune func(logger *zap.SugaredLogger)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Tune:   setMaxProcs,
	}
}
