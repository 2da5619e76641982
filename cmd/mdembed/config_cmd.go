package main

import (
	"fmt"
	"io"

	"github.com/alnah/go-mdembed/internal/config"
	"github.com/alnah/go-mdembed/internal/yamlutil"
	flag "github.com/spf13/pflag"
)

// runConfigCmd prints the effective configuration (file + environment).
func runConfigCmd(args []string, env *Environment) int {
	var name string
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&name, "config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		err = fmt.Errorf("%w: %v", ErrUsage, err)
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	envCfg := loadEnvConfig()
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			err = fmt.Errorf("loading config: %w", err)
			printError(env.Stderr, err, name)
			return exitCodeFor(err)
		}
		cfg = loaded
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		printError(env.Stderr, err, name)
		return exitCodeFor(err)
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		printError(env.Stderr, err, "")
		return ExitGeneral
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}
