// Package executor runs the external tools the pipeline delegates to
// (yt-dlp, ffmpeg, ffprobe) and resolves their binaries.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes external commands. Implementations must be safe for
// sequential reuse; the pipeline never runs two commands concurrently.
type Runner interface {
	// Output runs the command and returns its stdout. A non-zero exit is
	// reported as an error that includes trimmed stderr for diagnostics.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// CombinedOutput runs the command and returns stdout and stderr
	// interleaved, along with the command error if any.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSRunner implements Runner using exec.CommandContext.
type OSRunner struct{}

// Compile-time interface compliance check.
var _ Runner = OSRunner{}

func (OSRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	// #nosec G204 -- name and args are controlled by the pipeline, not user input
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("command %q failed: %w\nstderr: %s", name, err, msg)
		}
		return "", fmt.Errorf("command %q failed: %w", name, err)
	}

	return stdout.String(), nil
}

func (OSRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- name and args are controlled by the pipeline, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Environment variable overrides for tool locations.
const (
	EnvFFmpegPath  = "FFMPEG_PATH"
	EnvFFprobePath = "FFPROBE_PATH"
	EnvYtDlpPath   = "YTDLP_PATH"
)

// envOverrides maps tool names to their path override variables.
var envOverrides = map[string]string{
	"ffmpeg":  EnvFFmpegPath,
	"ffprobe": EnvFFprobePath,
	"yt-dlp":  EnvYtDlpPath,
}

// ResolveTool locates an external tool binary.
// Precedence: the tool's path override environment variable (error if set but
// invalid), then the system PATH.
func ResolveTool(name string) (string, error) {
	if envVar, ok := envOverrides[name]; ok {
		if envPath := os.Getenv(envVar); envPath != "" {
			if _, err := os.Stat(envPath); err != nil {
				return "", fmt.Errorf("%w: %s is set to %q but binary not found",
					ErrToolNotFound, envVar, envPath)
			}
			return envPath, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not installed or not on PATH", ErrToolNotFound, name)
	}
	return path, nil
}
