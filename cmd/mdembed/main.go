// Command mdembed converts a markdown file into a self-contained document by
// inlining local images and draw.io diagrams before conversion.
package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches subcommands and returns the process exit code.
// Anything that is not a known subcommand is parsed as conversion flags,
// so "mdembed -i doc.md" and "mdembed convert -i doc.md" are equivalent.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "convert":
		return runConvertCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdembed %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		return runConfigCmd(rest, env)
	}

	if strings.HasPrefix(cmd, "-") {
		return runConvertCmd(args[1:], env)
	}
	fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
	printUsage(env.Stderr)
	return ExitUsage
}

// setMaxProcs configures GOMAXPROCS for container CPU quotas and reports the
// decision at debug level.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(logger *zap.SugaredLogger) {
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Debugf))
}
