package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CommandError describes a subprocess that could not be started or exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	if e.Output == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d\n%s", e.Command, e.ExitCode, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// RunCommand runs name with args and returns its stdout. On failure the
// returned *CommandError carries stdout and stderr joined together.
func RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return outBuf.String(), commandError(name, err, outBuf.String(), errBuf.String())
	}
	return outBuf.String(), nil
}

// StreamCommand runs name with its output attached to stdout and stderr.
func StreamCommand(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return commandError(name, err, "", "")
	}
	return nil
}

func commandError(name string, err error, stdout, stderr string) error {
	var output []string
	for _, s := range []string{stdout, stderr} {
		if s = strings.TrimRight(s, "\n"); s != "" {
			output = append(output, s)
		}
	}

	cerr := &CommandError{
		Command:  name,
		ExitCode: -1,
		Output:   strings.Join(output, "\n"),
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
	}
	return cerr
}
