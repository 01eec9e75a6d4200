package textract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

// Runner executes the conversion tool. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// maxStderr bounds what a failing tool can put into the logs.
const maxStderr = 4 << 10

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		r.logger.Warn("textract.tool.failed",
			"tool", name,
			"exit_code", exitCode,
			"elapsed_ms", elapsed,
			"stderr", clip(stderr.String(), maxStderr),
			"error", err,
		)
		return stdout.Bytes(), stderr.Bytes(), err
	}
	r.logger.Debug("textract.tool.done", "tool", name, "elapsed_ms", elapsed, "stdout_bytes", stdout.Len())
	return stdout.Bytes(), stderr.Bytes(), nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
