package diagnostics

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"anim-studio/internal/domain"
)

const versionTimeout = 5 * time.Second

// latexVariants lists the distributions probed in order. The first one
// found on PATH wins.
var latexVariants = []struct {
	binary  string
	display string
}{
	{"pdflatex", "pdfLaTeX (MiKTeX)"},
	{"xelatex", "XeLaTeX"},
	{"lualatex", "LuaLaTeX"},
	{"latex", "LaTeX"},
}

// pythonVariants lists interpreter names probed in order.
var pythonVariants = []string{"python3", "python"}

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath      func(string) (string, error)
	commandOutput func(name string, arg ...string) ([]byte, error)
	mkdirAll      func(string, os.FileMode) error
	createTemp    func(string, string) (*os.File, error)
	remove        func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath: exec.LookPath,
		commandOutput: func(name string, arg ...string) ([]byte, error) {
			ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
			defer cancel()
			return exec.CommandContext(ctx, name, arg...).CombinedOutput()
		},
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report. A missing
// LaTeX distribution is reported as a warning, not a failure.
func (c *Checker) Run(settings domain.Settings, assetsDir string) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkPython(),
		c.checkManim(),
		c.checkFfmpeg(),
		c.checkLatex(),
		c.checkWritableDir("assets_dir", "Asset library", assetsDir,
			"Choose a writable asset directory or adjust filesystem permissions."),
		c.checkWritableDir("save_location", "Save location", settings.DefaultSaveLocation,
			"Pick a writable default save location in settings."),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkPython probes the interpreter names in order and reports the first
// one found.
func (c *Checker) checkPython() domain.DiagnosticItem {
	for _, name := range pythonVariants {
		path, err := c.lookPath(name)
		if err != nil {
			continue
		}
		return domain.DiagnosticItem{
			ID:      "tool_python",
			Name:    "Python",
			Status:  domain.DiagnosticStatusPass,
			Message: foundMessage(path, c.toolVersion(path)),
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_python",
		Name:    "Python",
		Status:  domain.DiagnosticStatusFail,
		Message: "No Python interpreter found in PATH.",
		Hint:    "Install Python 3.8 or newer; rendering runs through it.",
	}
}

// checkManim verifies the renderer CLI is on PATH.
func (c *Checker) checkManim() domain.DiagnosticItem {
	path, err := c.lookPath("manim")
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_manim",
			Name:    "Manim",
			Status:  domain.DiagnosticStatusFail,
			Message: "Tool not found in PATH: manim",
			Hint:    "Install it with pip install manim and ensure the binary is available on PATH.",
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_manim",
		Name:    "Manim",
		Status:  domain.DiagnosticStatusPass,
		Message: foundMessage(path, c.toolVersion(path)),
	}
}

// checkFfmpeg verifies the video assembler is on PATH.
func (c *Checker) checkFfmpeg() domain.DiagnosticItem {
	path, err := c.lookPath("ffmpeg")
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_ffmpeg",
			Name:    "ffmpeg",
			Status:  domain.DiagnosticStatusFail,
			Message: "Tool not found in PATH: ffmpeg",
			Hint:    "Install it and ensure the binary is available on PATH; rendered videos are assembled with it.",
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_ffmpeg",
		Name:    "ffmpeg",
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkLatex probes the known distributions in order. LaTeX is only needed
// for Tex and MathTex objects, so a miss is a warning.
func (c *Checker) checkLatex() domain.DiagnosticItem {
	for _, variant := range latexVariants {
		path, err := c.lookPath(variant.binary)
		if err != nil {
			continue
		}
		return domain.DiagnosticItem{
			ID:      "tool_latex",
			Name:    variant.display,
			Status:  domain.DiagnosticStatusPass,
			Message: fmt.Sprintf("Found at %s", path),
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_latex",
		Name:    "LaTeX",
		Status:  domain.DiagnosticStatusWarn,
		Message: "No LaTeX distribution found in PATH.",
		Hint:    "Install MiKTeX or TeX Live to render Tex and MathTex objects.",
	}
}

// checkWritableDir validates directory existence and write access.
func (c *Checker) checkWritableDir(id, name, dir, hint string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: name,
	}

	if strings.TrimSpace(dir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Directory is not configured."
		item.Hint = hint
		return item
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = hint
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = hint
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// toolVersion captures the first line of --version output, or an empty
// string when the probe fails.
func (c *Checker) toolVersion(path string) string {
	out, err := c.commandOutput(path, "--version")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
}

// foundMessage formats a pass message with an optional version suffix.
func foundMessage(path, version string) string {
	if version == "" {
		return fmt.Sprintf("Found at %s", path)
	}
	return fmt.Sprintf("Found at %s (%s)", path, version)
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	commandOutput func(name string, arg ...string) ([]byte, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:      lookPath,
		commandOutput: commandOutput,
		mkdirAll:      mkdirAll,
		createTemp:    createTemp,
		remove:        remove,
	}
}
