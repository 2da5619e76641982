package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	mdembed "github.com/alnah/go-mdembed"
	"github.com/alnah/go-mdembed/internal/config"
	"github.com/alnah/go-mdembed/internal/hints"
	"github.com/alnah/go-mdembed/internal/pipeline"
	"go.uber.org/zap"
)

// runConvertCmd parses flags, resolves configuration and converts one file.
func runConvertCmd(args []string, env *Environment) int {
	flags, err := parseConvertFlags(args)
	if err != nil {
		printError(env.Stderr, err, "")
		fmt.Fprintln(env.Stderr, "Run 'mdembed help' for usage.")
		return exitCodeFor(err)
	}
	if flags.help {
		printConvertUsage(env.Stdout)
		return ExitSuccess
	}

	envCfg := loadEnvConfig()
	cfg, err := resolveConfig(flags, envCfg)
	if err != nil {
		printError(env.Stderr, err, configName(flags, envCfg))
		return exitCodeFor(err)
	}

	logger, err := newLogger(env.Stderr, cfg.Logging)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	defer func() { _ = logger.Sync() }()

	if env.Tune != nil {
		env.Tune(logger)
	}
	warnEnv(envCfg, logger)

	ctx, stop := notifyContext(context.Background())
	defer stop()

	res, err := convert(ctx, flags, cfg, env, logger)
	if err != nil {
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}

	if !flags.quiet {
		printResult(env.Stdout, env.Stderr, res)
	}
	return ExitSuccess
}

// resolveConfig layers defaults, the config file, the environment and flags.
func resolveConfig(flags *convertFlags, envCfg *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name := configName(flags, envCfg); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configName returns the --config flag, falling back to MDEMBED_CONFIG.
func configName(flags *convertFlags, envCfg *envConfig) string {
	if flags != nil && flags.config != "" {
		return flags.config
	}
	if envCfg != nil {
		return envCfg.ConfigPath
	}
	return ""
}

// converterOptions translates a validated config into library options.
func converterOptions(cfg *config.Config, logger *zap.SugaredLogger) ([]mdembed.Option, error) {
	engine, err := mdembed.ParseEngine(cfg.Converter.Engine)
	if err != nil {
		return nil, err
	}
	mode, err := pipeline.ParseSubstitutionMode(cfg.Assets.Substitution)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []mdembed.Option{
		mdembed.WithLogger(logger),
		mdembed.WithEngine(engine),
		mdembed.WithPandocPath(cfg.Converter.PandocPath),
		mdembed.WithDiagramTool(cfg.Diagrams.Tool, cfg.Diagrams.Args...),
		mdembed.WithSubstitution(mode),
		mdembed.WithDetectMediaType(cfg.Assets.DetectMediaType),
		mdembed.WithFoldExtensionCase(cfg.Assets.FoldExtensionCase),
	}
	if timeout > 0 {
		opts = append(opts, mdembed.WithTimeout(timeout))
	}
	return opts, nil
}

// convert builds the converter and processes the input file.
func convert(ctx context.Context, flags *convertFlags, cfg *config.Config, env *Environment, logger *zap.SugaredLogger) (*mdembed.Result, error) {
	opts, err := converterOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts = append(opts, env.Options...)

	conv, err := mdembed.NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conv.Close(); cerr != nil {
			logger.Warnw("closing converter", "error", cerr)
		}
	}()

	logger.Debugw("converting",
		"input", flags.input,
		"format", cfg.Output.Format,
		"engine", cfg.Converter.Engine,
		"markdownOnly", flags.markdownOnly,
	)

	return conv.ConvertFile(ctx, mdembed.RunConfig{
		InputPath:    flags.input,
		OutputDir:    cfg.Output.DefaultDir,
		Format:       cfg.Output.Format,
		MarkdownOnly: flags.markdownOnly,
	})
}

// printResult reports the written file and a one-line asset summary.
func printResult(stdout, stderr io.Writer, res *mdembed.Result) {
	r := res.Report
	fmt.Fprintf(stdout, "%s %s (%d inlined, %d skipped, %d failed)\n",
		okTag(), res.OutputPath, len(r.Resolved), len(r.Skipped), len(r.Failed))

	diagramFailed := false
	for _, f := range r.Failed {
		fmt.Fprintf(stderr, "%s %s: %v\n", warnTag(), f.Target, f.Err)
		if f.Handler == pipeline.HandlerRenderDiagram.String() {
			diagramFailed = true
		}
	}
	if diagramFailed {
		fmt.Fprintln(stderr, hints.ForDiagramTool())
	}
}

// printError writes err followed by any hint that applies to it.
func printError(w io.Writer, err error, cfgName string) {
	fmt.Fprintf(w, "%s %v%s\n", errorTag(), err, hintFor(err, cfgName))
}

// hintFor returns the actionable hint for err, or "".
func hintFor(err error, cfgName string) string {
	switch {
	case mdembed.IsPandocNotFound(err):
		return hints.ForPandocNotFound()
	case errors.Is(err, mdembed.ErrUnsupportedFormat):
		return hints.ForUnsupportedFormat(mdembed.BuiltinFormats)
	case errors.Is(err, mdembed.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(configSearchPaths(cfgName))
	case errors.Is(err, mdembed.ErrOutputDir):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}

// configSearchPaths lists where a config name would be looked up, for hints.
func configSearchPaths(name string) []string {
	if name == "" {
		return nil
	}
	paths := []string{name + ".yaml", name + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "go-mdembed", name+".yaml"))
	}
	return paths
}
