package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Result holds the captured output streams of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes an external command with a discrete argument vector.
// Implementations must never pass the arguments through a shell.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner spawns one OS process per call.
type ExecRunner struct {
	// Timeout bounds each invocation. Zero disables the limit.
	Timeout time.Duration
	Logger  *logrus.Logger
}

// NewExecRunner creates an ExecRunner. A nil logger discards output.
func NewExecRunner(timeout time.Duration, logger *logrus.Logger) *ExecRunner {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &ExecRunner{Timeout: timeout, Logger: logger}
}

// Run starts name with args and waits for it. On a non-zero exit, a start
// failure or a timeout it returns *ExternalToolError together with whatever
// output was captured.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	entry := r.Logger.WithFields(logrus.Fields{
		"tool": filepath.Base(name),
		"args": args,
	})
	entry.Debug("Starting external command")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		toolErr := &ExternalToolError{
			Tool:     filepath.Base(name),
			Args:     args,
			ExitCode: -1,
			Stderr:   res.Stderr,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			toolErr.Err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		entry.WithFields(logrus.Fields{
			"exit_code":  toolErr.ExitCode,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		}).Error("External command failed")
		return res, toolErr
	}

	entry.WithField("elapsed_ms", elapsed.Milliseconds()).Info("External command finished")
	return res, nil
}
