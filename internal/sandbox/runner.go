package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrExecution matches any *ExecutionError via errors.Is.
var ErrExecution = errors.New("code execution error")

// Runner executes a snippet and returns what it printed. It is the only place
// snippet code is run.
type Runner interface {
	Run(ctx context.Context, code string) (string, error)
}

// ExecutionError is a snippet that ran and failed. Message is the exception
// text the snippet raised, e.g. "ZeroDivisionError: division by zero".
type ExecutionError struct {
	Message string
	Err     error
}

func (e *ExecutionError) Error() string { return e.Message }

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

// captureMu makes output capture process-wide exclusive.
var captureMu sync.Mutex

// captureOutput holds the capture for the duration of fn and returns what fn
// wrote. The capture is released on every exit path, panics included. When
// fn fails the buffered output is dropped.
func captureOutput(fn func(stdout *bytes.Buffer) error) (string, error) {
	captureMu.Lock()
	defer captureMu.Unlock()

	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// lastLine returns the last non-blank line of a traceback.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n\t "), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// interrupted explains why a run stopped early, or returns nil if neither
// context is done. Only the runner's own deadline counts as a snippet
// failure; the caller going away is returned as its context error.
func interrupted(parent, ctx context.Context, timeout time.Duration) error {
	if err := parent.Err(); err != nil {
		return fmt.Errorf("sandbox run aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return &ExecutionError{
			Message: fmt.Sprintf("TimeoutError: execution exceeded %s", timeout),
			Err:     err,
		}
	}
	return nil
}

// NewRunner builds the runner for backend ("local" or "docker"). The returned
// func releases its resources.
func NewRunner(backend, interpreter, image string, timeout time.Duration) (Runner, func() error, error) {
	switch backend {
	case "", "local":
		return NewLocalRunner(interpreter, timeout), func() error { return nil }, nil
	case "docker":
		r, err := NewDockerRunner(image, timeout)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown sandbox backend %q", backend)
	}
}
