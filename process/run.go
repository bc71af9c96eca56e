package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Handle is a started subprocess whose stdout is being consumed as a
// stream. The caller drains Stdout and then calls Wait; Terminate stops
// the process early when the consumer abandons the output. Stderr is
// captured whole and surfaces on the Result.
type Handle struct {
	cmd       *exec.Cmd
	parentCtx context.Context
	cancel    context.CancelFunc
	stdout    io.ReadCloser
	stderr    bytes.Buffer
	start     time.Time

	waitOnce sync.Once
	result   *Result
	waitErr  error
}

// Start launches a subprocess with stdout piped. If the context is
// canceled, or Terminate is called, SIGTERM is sent to the process
// group first, then SIGKILL after GracePeriod.
func Start(ctx context.Context, cmd Command) (*Handle, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	runCtx, cancel := context.WithCancel(ctx)

	c := exec.CommandContext(runCtx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	// nil Env inherits the parent environment.
	c.Env = cmd.Env

	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	h := &Handle{cmd: c, parentCtx: ctx, cancel: cancel}
	c.Stderr = &h.stderr

	// Use process group so we can kill the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	stdout, err := c.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("process: stdout pipe: %w", err)
	}
	h.stdout = stdout

	h.start = time.Now()
	if err := c.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}
	return h, nil
}

// Stdout returns the process's standard output. It must be drained
// before Wait, which closes the pipe.
func (h *Handle) Stdout() io.Reader {
	return h.stdout
}

// Terminate begins shutdown: SIGTERM to the process group, escalating
// to SIGKILL after the grace period. Wait still must be called.
func (h *Handle) Terminate() {
	h.cancel()
}

// Wait blocks until the process exits and returns its Result. The
// Result is populated even when the error is non-nil, so callers can
// read the exit code and captured stderr of a failed command. Wait is
// idempotent.
func (h *Handle) Wait() (*Result, error) {
	h.waitOnce.Do(func() {
		err := h.cmd.Wait()
		h.cancel()

		h.result = &Result{
			Stderr:   h.stderr.Bytes(),
			ExitCode: h.cmd.ProcessState.ExitCode(),
			Duration: time.Since(h.start),
		}
		if err != nil {
			// Context cancellation is the expected way to kill a process
			if h.parentCtx.Err() != nil {
				h.waitErr = fmt.Errorf("process: killed by context: %w", h.parentCtx.Err())
				return
			}
			h.waitErr = fmt.Errorf("process: exit code %d: %w", h.result.ExitCode, err)
		}
	})
	return h.result, h.waitErr
}

// Run executes a subprocess and waits for it to complete, capturing
// stdout whole. If the context is canceled, SIGTERM is sent first, then
// SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	h, err := Start(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	_, copyErr := io.Copy(&stdout, h.Stdout())

	result, waitErr := h.Wait()
	result.Stdout = stdout.Bytes()
	if waitErr != nil {
		return result, waitErr
	}
	if copyErr != nil {
		return result, fmt.Errorf("process: read stdout: %w", copyErr)
	}
	return result, nil
}
