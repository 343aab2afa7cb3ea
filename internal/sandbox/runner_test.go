package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
}

func TestLocalRunner_CapturesOutput(t *testing.T) {
	requirePython(t)
	stdout := os.Stdout

	r := NewLocalRunner("python3", 0)
	out, err := r.Run(context.Background(), "print(1+1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("expected %q, got %q", "2", out)
	}
	if os.Stdout != stdout {
		t.Fatal("process stdout was replaced")
	}

	// A following run gets only its own output.
	out, err = r.Run(context.Background(), "print('second')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "second" {
		t.Fatalf("expected %q, got %q", "second", out)
	}
}

func TestLocalRunner_FailureDiscardsOutput(t *testing.T) {
	requirePython(t)

	r := NewLocalRunner("python3", 0)
	out, err := r.Run(context.Background(), "print('partial')\n1/0")

	if out != "" {
		t.Errorf("expected no output on failure, got %q", out)
	}
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
	if execErr.Message != "ZeroDivisionError: division by zero" {
		t.Errorf("unexpected message %q", execErr.Message)
	}
	if !errors.Is(err, ErrExecution) {
		t.Error("expected errors.Is(err, ErrExecution)")
	}

	// The capture was released.
	out, err = r.Run(context.Background(), "print(3)")
	if err != nil || strings.TrimSpace(out) != "3" {
		t.Fatalf("expected follow-up run to succeed, got %q, %v", out, err)
	}
}

func TestLocalRunner_Timeout(t *testing.T) {
	requirePython(t)

	r := NewLocalRunner("python3", 200*time.Millisecond)
	_, err := r.Run(context.Background(), "import time\ntime.sleep(5)")

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline cause, got %v", execErr.Err)
	}
}

func TestLocalRunner_CallerCancelIsNotSnippetFailure(t *testing.T) {
	requirePython(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	r := NewLocalRunner("python3", 0)
	_, err := r.Run(ctx, "import time\ntime.sleep(5)")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrExecution) {
		t.Fatalf("cancellation reported as snippet failure: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInterrupted(t *testing.T) {
	live := context.Background()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	tests := []struct {
		name      string
		parent    context.Context
		ctx       context.Context
		execution bool
		cause     error
	}{
		{"still running", live, live, false, nil},
		{"own timeout", live, expired, true, context.DeadlineExceeded},
		{"caller cancelled", cancelled, cancelled, false, context.Canceled},
		{"caller deadline", expired, expired, false, context.DeadlineExceeded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := interrupted(tc.parent, tc.ctx, time.Second)
			if tc.cause == nil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.cause) {
				t.Errorf("expected cause %v, got %v", tc.cause, err)
			}
			if errors.Is(err, ErrExecution) != tc.execution {
				t.Errorf("expected snippet failure=%v, got %v", tc.execution, err)
			}
		})
	}

	err := interrupted(live, expired, time.Second)
	if err.Error() != "TimeoutError: execution exceeded 1s" {
		t.Errorf("unexpected timeout message %q", err.Error())
	}
}

func TestLocalRunner_MissingInterpreter(t *testing.T) {
	r := NewLocalRunner("definitely-not-an-interpreter", 0)
	_, err := r.Run(context.Background(), "print(1)")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrExecution) {
		t.Error("a missing interpreter is not a snippet failure")
	}
}

func TestCaptureOutput_ReleasedOnPanic(t *testing.T) {
	func() {
		defer func() { recover() }()
		captureOutput(func(stdout *bytes.Buffer) error {
			stdout.WriteString("lost")
			panic("boom")
		})
	}()

	done := make(chan string)
	go func() {
		out, _ := captureOutput(func(stdout *bytes.Buffer) error {
			stdout.WriteString("fresh")
			return nil
		})
		done <- out
	}()

	select {
	case out := <-done:
		if out != "fresh" {
			t.Fatalf("expected fresh buffer, got %q", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("capture was not released after panic")
	}
}

func TestCaptureOutput_ErrorDropsBuffer(t *testing.T) {
	cause := errors.New("failed")
	out, err := captureOutput(func(stdout *bytes.Buffer) error {
		stdout.WriteString("partial")
		return cause
	})
	if out != "" || !errors.Is(err, cause) {
		t.Fatalf("expected dropped output and cause, got %q, %v", out, err)
	}
}

func TestLastLine(t *testing.T) {
	tb := "Traceback (most recent call last):\n  File \"<string>\", line 1, in <module>\nNameError: name 'x' is not defined\n\n"
	if got := lastLine(tb); got != "NameError: name 'x' is not defined" {
		t.Fatalf("unexpected line %q", got)
	}
	if got := lastLine(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestContainerConfig(t *testing.T) {
	config, host := containerConfig("python:3.12-alpine", "print(1)")

	if config.Image != "python:3.12-alpine" {
		t.Errorf("unexpected image %q", config.Image)
	}
	if len(config.Cmd) != 3 || config.Cmd[2] != "print(1)" {
		t.Errorf("unexpected cmd %q", config.Cmd)
	}
	if !config.NetworkDisabled || host.NetworkMode != "none" {
		t.Error("expected networking disabled")
	}
	if host.Resources.Memory != memoryLimitBytes {
		t.Errorf("unexpected memory limit %d", host.Resources.Memory)
	}
}
