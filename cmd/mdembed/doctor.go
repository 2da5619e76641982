package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	mdembed "github.com/alnah/go-mdembed"
	"github.com/alnah/go-mdembed/internal/fileutil"
	"github.com/alnah/go-mdembed/internal/hints"
	"github.com/alnah/go-mdembed/internal/pipeline"
	"github.com/alnah/go-mdembed/internal/process"
	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"
)

// versionProbeTimeout bounds "pandoc --version".
const versionProbeTimeout = 10 * time.Second

// doctorRunner runs version probes.
var doctorRunner process.Runner = &process.ExecRunner{}

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string          `json:"status"` // "ready", "warnings", "errors"
	Pandoc     toolInfo        `json:"pandoc"`
	Drawio     toolInfo        `json:"drawio"`
	Chrome     toolInfo        `json:"chrome"`
	Env        envInfo         `json:"environment"`
	System     systemInfo      `json:"system"`
	Extensions []extensionInfo `json:"extensions"`
	Warnings   []string        `json:"warnings,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

// toolInfo holds the detection result for one external executable.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// extensionInfo describes one registered image extension.
type extensionInfo struct {
	Extension string `json:"extension"`
	Handler   string `json:"handler"`
}

// doctorOptions are the tool locations to check.
type doctorOptions struct {
	pandoc string
	drawio string
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	var jsonOutput bool
	opts := doctorOptions{}

	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&jsonOutput, "json", false, "print JSON")
	fs.StringVar(&opts.pandoc, "pandoc", "", "pandoc executable name or path")
	fs.StringVar(&opts.drawio, "drawio", "", "draw.io executable name or path")
	if err := fs.Parse(args); err != nil {
		err = fmt.Errorf("%w: %v", ErrUsage, err)
		printError(env.Stderr, err, "")
		return exitCodeFor(err)
	}
	if opts.drawio == "" {
		opts.drawio = os.Getenv("MDEMBED_DRAWIO_BIN")
	}

	result := runDoctor(opts)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(opts doctorOptions) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			BrowserBin: os.Getenv(mdembed.BrowserBinEnv),
		},
	}

	checkPandoc(result, opts.pandoc)
	checkDrawio(result, opts.drawio)
	checkChrome(result)
	checkEnvironment(result)
	checkSystem(result)
	listExtensions(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkPandoc locates pandoc the way the converter does and reads its version.
func checkPandoc(result *doctorResult, configured string) {
	path, err := mdembed.LocatePandoc(configured)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("pandoc not found; only %s output is available (builtin engine)",
				strings.Join(mdembed.BuiltinFormats, ", ")))
		return
	}
	result.Pandoc.Found = true
	result.Pandoc.Path = path

	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()
	out, _, err := doctorRunner.Run(ctx, path, "--version")
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not get pandoc version: %v", err))
		return
	}
	result.Pandoc.Version, _, _ = strings.Cut(strings.TrimSpace(out), "\n")
}

// checkDrawio looks up the diagram tool. Its version is not probed: the
// desktop app may need a display just to print it.
func checkDrawio(result *doctorResult, tool string) {
	if tool == "" {
		tool = pipeline.DefaultDiagramTool
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("draw.io (%s) not found; .drawio references will be left as-is", tool))
		return
	}
	result.Drawio.Found = true
	result.Drawio.Path = path
}

// checkChrome detects the browser used for builtin pdf output.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; builtin pdf output is unavailable (set "+mdembed.BrowserBinEnv+")")
			return
		}
	}

	if !fileutil.FileExists(chromePath) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}
	result.Chrome.Found = true
	result.Chrome.Path = chromePath
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Drawio.Found {
		result.Warnings = append(result.Warnings,
			`container/CI detected: draw.io usually needs "--no-sandbox" in diagrams.args and a virtual display`)
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MDEMBED_CONTAINER") == "1" {
		return true, "MDEMBED_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for pandoc and diagram
// workspaces is writable.
func checkSystem(result *doctorResult) {
	_, cleanup, err := fileutil.WriteTempFile("doctor", "txt")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("temp directory not writable: %s", os.TempDir()))
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// listExtensions reports the extension table used by the rewriter.
func listExtensions(result *doctorResult) {
	reg := pipeline.DefaultRegistry()
	for _, ext := range reg.Extensions() {
		h, _ := reg.Lookup(ext)
		result.Extensions = append(result.Extensions, extensionInfo{Extension: ext, Handler: h.String()})
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdembed doctor")
	fmt.Fprintln(w)

	printTool(w, "pandoc", r.Pandoc)
	printTool(w, "draw.io", r.Drawio)
	printTool(w, "Chrome/Chromium", r.Chrome)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", okTag(), r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  %s Container: detected (%s)\n", okTag(), r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintf(w, "  %s CI: detected\n", okTag())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  %s Temp directory: writable\n", okTag())
	} else {
		fmt.Fprintf(w, "  %s Temp directory: not writable\n", errorTag())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Extensions")
	for _, e := range r.Extensions {
		fmt.Fprintf(w, "  .%-8s %s\n", e.Extension, e.Handler)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warnTag(), warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", errorTag(), err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

func printTool(w io.Writer, name string, t toolInfo) {
	fmt.Fprintln(w, name)
	if !t.Found {
		fmt.Fprintf(w, "  %s Not found\n", warnTag())
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "  %s Found at %s\n", okTag(), t.Path)
	if t.Version != "" {
		fmt.Fprintf(w, "  %s Version: %s\n", okTag(), t.Version)
	}
	fmt.Fprintln(w)
}
