package exiftool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"geotag/internal/faults"
)

const (
	stderrLimit = 4096
	waitDelay   = 2 * time.Second
)

// ExitError reports a nonzero ExifTool exit status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("exit status %d: %s", e.Code, e.Stderr)
}

func (e *ExitError) Unwrap() error { return faults.ErrNonzeroExit }

type commandExecutor struct{}

// Run starts binary in its own process group so cancellation also reaps any
// helpers ExifTool forks.
func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return faults.Wrap(faults.ErrLaunchFailed, "start exiftool", binary, err)
	}

	var (
		wg      sync.WaitGroup
		scanErr error
		once    sync.Once
		errBuf  tailBuffer
	)
	scan := func(r io.Reader, forward func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, errBuf.add)
	wg.Wait()

	waitErr := cmd.Wait()
	if scanErr != nil && waitErr == nil {
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if waitErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && ctx.Err() == nil {
		return &ExitError{Code: exitErr.ExitCode(), Stderr: errBuf.String()}
	}
	return fmt.Errorf("wait exiftool: %w", waitErr)
}

// tailBuffer keeps the last stderrLimit bytes of diagnostic output.
type tailBuffer struct {
	lines []string
	size  int
}

func (b *tailBuffer) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	b.lines = append(b.lines, line)
	b.size += len(line) + 1
	for b.size > stderrLimit && len(b.lines) > 1 {
		b.size -= len(b.lines[0]) + 1
		b.lines = b.lines[1:]
	}
}

func (b *tailBuffer) String() string {
	return strings.Join(b.lines, "; ")
}
