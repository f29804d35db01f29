package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Request contains scene code and execution callbacks for one run.
type Request struct {
	Code      string
	SceneName string
	Quality   string
	FPS       int
	Format    string
	UseGPU    bool
	MediaDir  string
	OnStage   func(stage string)
	OnLog     func(log CommandLog)
}

// Result contains the rendered artifact path and command logs.
type Result struct {
	SceneName  string
	ScenePath  string
	OutputPath string
	Logs       []CommandLog
	tempDir    string
}

// Cleanup removes the temporary scene workspace created by Run.
func (r *Result) Cleanup() error {
	if r == nil || r.tempDir == "" {
		return nil
	}

	if err := os.RemoveAll(r.tempDir); err != nil {
		return err
	}
	r.tempDir = ""
	return nil
}

// CommandLog captures one external command invocation result.
type CommandLog struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
}

// PipelineError is a stage-aware error with optional command context.
type PipelineError struct {
	Stage      string     `json:"stage"`
	Message    string     `json:"message"`
	CommandLog CommandLog `json:"commandLog"`
	Err        error      `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	if e.CommandLog.Command == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}

	return fmt.Sprintf(
		"%s: %s (cmd=%s exit=%d)",
		e.Stage,
		e.Message,
		e.CommandLog.Command,
		e.CommandLog.ExitCode,
	)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// commandResult is an internal process execution response.
type commandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}

	return result, nil
}

// Pipeline orchestrates scene file creation and manim execution.
type Pipeline struct {
	manimPath string
	runner    commandRunner
	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	stat      func(name string) (os.FileInfo, error)
	mkdirAll  func(path string, perm os.FileMode) error
	writeFile func(name string, data []byte, perm os.FileMode) error
	readDir   func(name string) ([]os.DirEntry, error)
}

// NewPipeline constructs the production pipeline with OS dependencies.
func NewPipeline() *Pipeline {
	return &Pipeline{
		manimPath: "manim",
		runner:    &execRunner{},
		mkdirTemp: os.MkdirTemp,
		removeAll: os.RemoveAll,
		stat:      os.Stat,
		mkdirAll:  os.MkdirAll,
		writeFile: os.WriteFile,
		readDir:   os.ReadDir,
	}
}

// Run writes the scene to a temporary file, renders it with manim, and
// locates the final artifact under the media directory.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Code) == "" {
		return Result{}, &PipelineError{
			Stage:   "preparing",
			Message: "scene code is required",
		}
	}

	sceneName := strings.TrimSpace(req.SceneName)
	if sceneName == "" {
		sceneName = ExtractSceneName(req.Code)
	}
	if sceneName == "" {
		return Result{}, &PipelineError{
			Stage:   "preparing",
			Message: "no scene class found in code",
		}
	}

	if strings.TrimSpace(req.MediaDir) == "" {
		return Result{}, &PipelineError{
			Stage:   "preparing",
			Message: "media directory is required",
		}
	}
	if err := p.mkdirAll(req.MediaDir, 0o755); err != nil {
		return Result{}, &PipelineError{
			Stage:   "preparing",
			Message: fmt.Sprintf("cannot create media directory: %s", req.MediaDir),
			Err:     err,
		}
	}

	emitStage(req.OnStage, "preparing")
	tempDir, err := p.mkdirTemp("", "anim-studio-*")
	if err != nil {
		return Result{}, &PipelineError{
			Stage:   "preparing",
			Message: "failed to create temporary workspace",
			Err:     err,
		}
	}

	scenePath := filepath.Join(tempDir, "scene.py")
	if err := p.writeFile(scenePath, []byte(req.Code), 0o644); err != nil {
		_ = p.removeAll(tempDir)
		return Result{}, &PipelineError{
			Stage:   "preparing",
			Message: fmt.Sprintf("failed to write scene file: %s", scenePath),
			Err:     err,
		}
	}
	if _, err := p.stat(scenePath); err != nil {
		_ = p.removeAll(tempDir)
		return Result{}, &PipelineError{
			Stage:   "preparing",
			Message: fmt.Sprintf("scene file was not created: %s", scenePath),
			Err:     err,
		}
	}

	emitStage(req.OnStage, "rendering")
	args := buildManimArgs(scenePath, sceneName, req)

	cmdResult, runErr := p.runner.Run(ctx, p.manimPath, args...)
	log := CommandLog{
		Command:  p.manimPath,
		Args:     args,
		ExitCode: cmdResult.ExitCode,
		Stdout:   cmdResult.Stdout,
		Stderr:   cmdResult.Stderr,
	}
	emitLog(req.OnLog, log)
	if runErr != nil {
		_ = p.removeAll(tempDir)
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		message := "manim render failed"
		if summary := ExtractErrorSummary(cmdResult.Stdout + "\n" + cmdResult.Stderr); summary != "" {
			message = summary
		}
		return Result{}, &PipelineError{
			Stage:      "rendering",
			Message:    message,
			CommandLog: log,
			Err:        runErr,
		}
	}

	outputPath, err := p.findRenderedOutput(req.MediaDir, outputExtension(req.Format))
	if err != nil {
		_ = p.removeAll(tempDir)
		return Result{}, &PipelineError{
			Stage:      "rendering",
			Message:    "manim completed but no output file was found",
			CommandLog: log,
			Err:        err,
		}
	}

	return Result{
		SceneName:  sceneName,
		ScenePath:  scenePath,
		OutputPath: outputPath,
		Logs:       []CommandLog{log},
		tempDir:    tempDir,
	}, nil
}

// emitStage forwards stage updates when callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}

// emitLog forwards command logs when callback is configured.
func emitLog(cb func(log CommandLog), log CommandLog) {
	if cb != nil {
		cb(log)
	}
}

// findRenderedOutput returns the newest file with the wanted extension
// under dir, skipping manim's partial movie caches.
func (p *Pipeline) findRenderedOutput(dir, ext string) (string, error) {
	var newestPath string
	var newestTime time.Time

	var walk func(current string) error
	walk = func(current string) error {
		entries, err := p.readDir(current)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			path := filepath.Join(current, entry.Name())
			if entry.IsDir() {
				if entry.Name() == "partial_movie_files" {
					continue
				}
				if err := walk(path); err != nil {
					return err
				}
				continue
			}

			if !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if newestPath == "" || info.ModTime().After(newestTime) {
				newestPath = path
				newestTime = info.ModTime()
			}
		}
		return nil
	}

	if err := walk(dir); err != nil {
		return "", err
	}
	if newestPath == "" {
		return "", fmt.Errorf("no %s output found under: %s", ext, dir)
	}
	return newestPath, nil
}

// buildManimArgs builds the manim CLI invocation for one scene render.
func buildManimArgs(scenePath, sceneName string, req Request) []string {
	fps := req.FPS
	if fps <= 0 {
		fps = 60
	}

	args := []string{scenePath, sceneName, QualityFlag(req.Quality)}
	args = append(args, "--media_dir", req.MediaDir)
	args = append(args, "--frame_rate", strconv.Itoa(fps))

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != "" && format != "mp4" {
		args = append(args, "--format", format)
	}

	args = append(args, "--disable_caching")
	args = append(args, "--progress_bar", "display")

	if req.UseGPU {
		args = append(args, "--renderer=opengl")
	}

	return args
}

// outputExtension maps the requested output format to a file extension.
func outputExtension(format string) string {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		return ".mp4"
	}
	return "." + normalized
}

// NewPipelineForTests constructs a pipeline with injectable dependencies.
func NewPipelineForTests(
	manimPath string,
	runner commandRunner,
	mkdirTemp func(dir, pattern string) (string, error),
	removeAll func(path string) error,
	stat func(name string) (os.FileInfo, error),
) *Pipeline {
	return &Pipeline{
		manimPath: manimPath,
		runner:    runner,
		mkdirTemp: mkdirTemp,
		removeAll: removeAll,
		stat:      stat,
		mkdirAll:  os.MkdirAll,
		writeFile: os.WriteFile,
		readDir:   os.ReadDir,
	}
}
