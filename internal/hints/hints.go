// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdembed/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a common CI environment variable is set.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForPandocNotFound returns hints for a missing pandoc executable.
func ForPandocNotFound() string {
	hints := []string{"install pandoc (https://pandoc.org/installing.html)"}
	if os.Getenv("MDEMBED_PANDOC_BIN") == "" {
		hints = append(hints, "or point --pandoc / MDEMBED_PANDOC_BIN at it")
	}
	hints = append(hints, "or use --engine builtin for html and pdf")
	return formatHints(hints)
}

// ForUnsupportedFormat lists what the builtin engine can produce.
func ForUnsupportedFormat(builtin []string) string {
	return format("the builtin engine supports " + strings.Join(builtin, ", ") + "; install pandoc for other formats")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		if inCI() || IsInContainer() {
			hints = append(hints, "set ROD_BROWSER_BIN to a system Chrome, which also disables the sandbox")
		} else {
			hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
		}
	}

	return formatHints(hints)
}

// ForDiagramTool returns hints shown when draw.io exports keep failing.
func ForDiagramTool() string {
	hints := []string{"install draw.io desktop or set --drawio / MDEMBED_DRAWIO_BIN"}
	if inCI() || IsInContainer() {
		hints = append(hints, `add "--no-sandbox" to diagrams.args and run under xvfb-run`)
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents or many diagrams, use --timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mdembed") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
