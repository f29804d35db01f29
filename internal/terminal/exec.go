package terminal

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"

	"anim-studio/internal/domain"
)

// shellArgs builds the interpreter invocation for one-shot commands.
func shellArgs(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd.exe", []string{"/C", command}
	}
	return "/bin/sh", []string{"-c", command}
}

// RunCommand executes one shell command to completion and captures its
// output. A non-zero exit is reported through ExitCode, not an error.
func RunCommand(ctx context.Context, command string) (domain.CommandResult, error) {
	if strings.TrimSpace(command) == "" {
		return domain.CommandResult{}, errors.New("command is required")
	}

	name, args := shellArgs(command)
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := domain.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
