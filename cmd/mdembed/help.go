package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdembed [convert] -i <file.md> [flags]")
	fmt.Fprintln(w, "       mdembed <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Inline assets and convert a markdown file (default)")
	fmt.Fprintln(w, "  doctor     Check pandoc, draw.io, Chrome and the temp directory")
	fmt.Fprintln(w, "  config     Print the effective configuration as YAML")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdembed help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdembed [convert] -i <file.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Inline local images and draw.io diagrams as data URIs, then convert.")
	fmt.Fprintln(w, "Output goes to <output dir>/<stem>.<format>; the default output")
	fmt.Fprintln(w, "directory is <input dir>/<stem>_<format>.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -i, --input <path>        Markdown file (required)")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: html, pdf, docx, ... (default html)")
	fmt.Fprintln(w, "      --markdown-only       Write the rewritten markdown to <stem>_md/<stem>.md")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Converter:")
	fmt.Fprintln(w, "  -e, --engine <s>          auto, pandoc, builtin (default auto)")
	fmt.Fprintln(w, "      --pandoc <path>       pandoc executable name or path")
	fmt.Fprintln(w, "  -t, --timeout <d>         Conversion timeout (default 5m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --drawio <path>       draw.io executable name or path")
	fmt.Fprintln(w, "      --detect-mime         Detect image media types from content")
	fmt.Fprintln(w, "      --fold-ext-case       Match extensions case-insensitively (PNG = png)")
	fmt.Fprintln(w, "      --first-occurrence    Substitute the first textual occurrence of a target")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output control:")
	fmt.Fprintln(w, "  -q, --quiet               Only print errors")
	fmt.Fprintln(w, "  -v, --verbose             Print debug diagnostics")
	fmt.Fprintln(w, "      --log-format <s>      console or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDEMBED_CONFIG, MDEMBED_FORMAT, MDEMBED_OUTPUT_DIR, MDEMBED_ENGINE,")
	fmt.Fprintln(w, "  MDEMBED_PANDOC_BIN, MDEMBED_DRAWIO_BIN, MDEMBED_TIMEOUT,")
	fmt.Fprintln(w, "  MDEMBED_LOG_FORMAT, MDEMBED_LOG_LEVEL")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mdembed -i notes.md")
	fmt.Fprintln(w, "  mdembed -i notes.md -f pdf -e builtin")
	fmt.Fprintln(w, "  mdembed -i notes.md -f docx -o out/ --drawio /opt/drawio/drawio")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdembed doctor [--json] [--pandoc <path>] [--drawio <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the external tools used for conversion are available.")
	fmt.Fprintln(w, "Exits 1 when a blocking problem is found.")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdembed config [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after applying the config file and MDEMBED_*")
	fmt.Fprintln(w, "environment variables.")
}

// runHelp prints help for a command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdembed version")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdembed help [command]")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
