package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner simulates command execution order and outcomes.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (commandResult, error)
}

// Run delegates to injected behavior.
func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

// TestPipelineRunSuccess checks the full happy path with an explicit scene.
func TestPipelineRunSuccess(t *testing.T) {
	root := t.TempDir()
	mediaDir := filepath.Join(root, "media")

	var stages []string
	var manimArgs []string
	call := 0
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			call++
			if name != "manim-custom" {
				t.Fatalf("command name = %q, want manim-custom", name)
			}
			manimArgs = append([]string{}, args...)
			outPath := filepath.Join(argValue(args, "--media_dir"), "videos", "scene", "1080p60", "SquareToCircle.mp4")
			mustWriteFile(t, outPath, "video")
			return commandResult{Stdout: "manim ok", ExitCode: 0}, nil
		},
	}

	pipeline := NewPipelineForTests("manim-custom", runner, os.MkdirTemp, os.RemoveAll, os.Stat)
	result, err := pipeline.Run(context.Background(), Request{
		Code:      "from manim import *\nclass SquareToCircle(Scene):\n    pass\n",
		SceneName: "SquareToCircle",
		Quality:   "1080p",
		FPS:       60,
		Format:    "mp4",
		MediaDir:  mediaDir,
		OnStage:   func(stage string) { stages = append(stages, stage) },
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if call != 1 {
		t.Fatalf("command calls = %d, want 1", call)
	}
	if len(result.Logs) != 1 {
		t.Fatalf("logs count = %d, want 1", len(result.Logs))
	}
	if result.SceneName != "SquareToCircle" {
		t.Fatalf("scene name = %q, want SquareToCircle", result.SceneName)
	}
	want := filepath.Join(mediaDir, "videos", "scene", "1080p60", "SquareToCircle.mp4")
	if result.OutputPath != want {
		t.Fatalf("output path = %q, want %q", result.OutputPath, want)
	}
	if len(stages) != 2 || stages[0] != "preparing" || stages[1] != "rendering" {
		t.Fatalf("stages = %v, want [preparing rendering]", stages)
	}
	if manimArgs[1] != "SquareToCircle" {
		t.Fatalf("scene arg = %q, want SquareToCircle", manimArgs[1])
	}
	if hasArg(manimArgs, "--format") {
		t.Fatalf("mp4 should not pass --format, args=%v", manimArgs)
	}

	if err := result.Cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(result.ScenePath)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp dir cleanup, stat err = %v", err)
	}
}

// TestPipelineRunExtractsSceneName checks scene discovery from code.
func TestPipelineRunExtractsSceneName(t *testing.T) {
	root := t.TempDir()
	mediaDir := filepath.Join(root, "media")

	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			if args[1] != "Intro" {
				t.Fatalf("scene arg = %q, want Intro", args[1])
			}
			mustWriteFile(t, filepath.Join(argValue(args, "--media_dir"), "videos", "Intro.mp4"), "video")
			return commandResult{ExitCode: 0}, nil
		},
	}

	pipeline := NewPipelineForTests("manim", runner, os.MkdirTemp, os.RemoveAll, os.Stat)
	result, err := pipeline.Run(context.Background(), Request{
		Code:     "class Intro(Scene):\n    def construct(self):\n        pass\n",
		Quality:  "720p",
		FPS:      30,
		MediaDir: mediaDir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.SceneName != "Intro" {
		t.Fatalf("scene name = %q, want Intro", result.SceneName)
	}
	if err := result.Cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
}

// TestPipelineRunManimFailureReturnsRenderingError checks failure mapping.
func TestPipelineRunManimFailureReturnsRenderingError(t *testing.T) {
	root := t.TempDir()
	mediaDir := filepath.Join(root, "media")

	var cleaned string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{
				Stderr:   "NameError: name 'Circl' is not defined\n  did you mean Circle?",
				ExitCode: 1,
			}, errors.New("exit status 1")
		},
	}

	pipeline := NewPipelineForTests(
		"manim",
		runner,
		os.MkdirTemp,
		func(path string) error {
			cleaned = path
			return os.RemoveAll(path)
		},
		os.Stat,
	)

	_, err := pipeline.Run(context.Background(), Request{
		Code:     "class Bad(Scene):\n    pass\n",
		Quality:  "480p",
		FPS:      15,
		MediaDir: mediaDir,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *PipelineError", err)
	}
	if pErr.Stage != "rendering" {
		t.Fatalf("stage = %s, want rendering", pErr.Stage)
	}
	if pErr.CommandLog.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", pErr.CommandLog.ExitCode)
	}
	if !strings.Contains(pErr.Message, "NameError") {
		t.Fatalf("message = %q, want NameError summary", pErr.Message)
	}
	if strings.TrimSpace(cleaned) == "" {
		t.Fatal("expected temporary directory cleanup")
	}
}

// TestPipelineRunRequiresSceneClass checks validation of scene-less code.
func TestPipelineRunRequiresSceneClass(t *testing.T) {
	pipeline := NewPipelineForTests("manim", &fakeRunner{}, os.MkdirTemp, os.RemoveAll, os.Stat)
	_, err := pipeline.Run(context.Background(), Request{
		Code:     "print('no scene here')",
		MediaDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *PipelineError", err)
	}
	if pErr.Stage != "preparing" {
		t.Fatalf("stage = %s, want preparing", pErr.Stage)
	}
}

// TestPipelineRunMissingOutputFails checks artifact discovery failure.
func TestPipelineRunMissingOutputFails(t *testing.T) {
	root := t.TempDir()
	mediaDir := filepath.Join(root, "media")

	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			return commandResult{Stdout: "manim ok", ExitCode: 0}, nil
		},
	}

	pipeline := NewPipelineForTests("manim", runner, os.MkdirTemp, os.RemoveAll, os.Stat)
	_, err := pipeline.Run(context.Background(), Request{
		Code:     "class Empty(Scene):\n    pass\n",
		MediaDir: mediaDir,
	})
	if err == nil {
		t.Fatal("expected error")
	}

	var pErr *PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *PipelineError", err)
	}
	if pErr.Stage != "rendering" {
		t.Fatalf("stage = %s, want rendering", pErr.Stage)
	}
	if !strings.Contains(pErr.Message, "output") {
		t.Fatalf("message = %q, want output discovery failure", pErr.Message)
	}
}

// TestPipelineRunSkipsPartialMovieFiles checks cache directories are ignored.
func TestPipelineRunSkipsPartialMovieFiles(t *testing.T) {
	root := t.TempDir()
	mediaDir := filepath.Join(root, "media")

	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
			dir := argValue(args, "--media_dir")
			mustWriteFile(t, filepath.Join(dir, "videos", "partial_movie_files", "chunk0.mp4"), "partial")
			mustWriteFile(t, filepath.Join(dir, "videos", "Final.mp4"), "final")
			return commandResult{ExitCode: 0}, nil
		},
	}

	pipeline := NewPipelineForTests("manim", runner, os.MkdirTemp, os.RemoveAll, os.Stat)
	result, err := pipeline.Run(context.Background(), Request{
		Code:     "class Final(Scene):\n    pass\n",
		MediaDir: mediaDir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := filepath.Join(mediaDir, "videos", "Final.mp4")
	if result.OutputPath != want {
		t.Fatalf("output path = %q, want %q", result.OutputPath, want)
	}
	if err := result.Cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
}

// TestBuildManimArgs verifies deterministic manim command arguments.
func TestBuildManimArgs(t *testing.T) {
	args := buildManimArgs("/tmp/scene.py", "Demo", Request{
		Quality:  "1080p",
		FPS:      30,
		Format:   "gif",
		UseGPU:   true,
		MediaDir: "/out/media",
	})
	want := []string{
		"/tmp/scene.py", "Demo", "-qh",
		"--media_dir", "/out/media",
		"--frame_rate", "30",
		"--format", "gif",
		"--disable_caching",
		"--progress_bar", "display",
		"--renderer=opengl",
	}

	if len(args) != len(want) {
		t.Fatalf("args len = %d, want %d (%v)", len(args), len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

// TestBuildManimArgsDefaults verifies mp4 omits --format and zero fps is
// replaced with 60.
func TestBuildManimArgsDefaults(t *testing.T) {
	args := buildManimArgs("/tmp/scene.py", "Demo", Request{
		Quality:  "720p",
		Format:   "mp4",
		MediaDir: "/out",
	})
	if hasArg(args, "--format") {
		t.Fatalf("did not expect --format in args: %v", args)
	}
	if hasArg(args, "--renderer=opengl") {
		t.Fatalf("did not expect opengl renderer in args: %v", args)
	}
	if got := argValue(args, "--frame_rate"); got != "60" {
		t.Fatalf("frame rate = %q, want 60", got)
	}
}

// mustWriteFile creates parent directory and writes file content.
func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// argValue returns value for key-style CLI args.
func argValue(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

// hasArg reports whether args include the target flag.
func hasArg(args []string, key string) bool {
	for _, arg := range args {
		if arg == key {
			return true
		}
	}
	return false
}
