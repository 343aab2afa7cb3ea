package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// LocalRunner runs snippets with the host interpreter as "<interpreter> -c
// <code>". It runs with the server's privileges and has no resource limits.
type LocalRunner struct {
	interpreter string
	timeout     time.Duration
}

// NewLocalRunner returns a runner for interpreter. A zero timeout means none.
func NewLocalRunner(interpreter string, timeout time.Duration) *LocalRunner {
	return &LocalRunner{interpreter: interpreter, timeout: timeout}
}

func (r *LocalRunner) Run(parent context.Context, code string) (string, error) {
	ctx, cancel := withTimeout(parent, r.timeout)
	defer cancel()

	return captureOutput(func(stdout *bytes.Buffer) error {
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, r.interpreter, "-c", code)
		cmd.Stdout = stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		if err == nil {
			return nil
		}

		if stopped := interrupted(parent, ctx, r.timeout); stopped != nil {
			return stopped
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := lastLine(stderr.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			return &ExecutionError{Message: msg, Err: err}
		}

		return fmt.Errorf("failed to start %s: %w", r.interpreter, err)
	})
}
