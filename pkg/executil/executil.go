// Package executil runs the external programs pipis drives (the base
// interpreter and each environment's pip).
package executil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/logging"
	"github.com/rs/zerolog"
)

// Command is a program invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one
	Dir string
	// Env is added to the inherited environment
	Env map[string]string
}

// With returns a copy of c with args appended
func (c Command) With(args ...string) Command {
	out := c
	out.Args = append(append([]string{}, c.Args...), args...)
	return out
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands. Implementations must honour ctx cancellation.
type Runner interface {
	// Run executes cmd, streaming its output
	Run(ctx context.Context, cmd Command) error
	// Output executes cmd and returns its standard output
	Output(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands as subprocesses
type ExecRunner struct {
	logger zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewExecRunner creates a runner streaming subprocess output to stdout and stderr
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &ExecRunner{
		logger: logging.GetLogger("executil"),
		stdout: stdout,
		stderr: stderr,
	}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	_, err := r.run(ctx, c, r.stdout)
	return err
}

func (r *ExecRunner) Output(ctx context.Context, c Command) (string, error) {
	var stdout bytes.Buffer
	_, err := r.run(ctx, c, &stdout)
	return stdout.String(), err
}

func (r *ExecRunner) run(ctx context.Context, c Command, stdout io.Writer) (int, error) {
	logging.LogCommand(r.logger, c.Name, c.Args)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = os.Environ()
		keys := make([]string, 0, len(c.Env))
		for k := range c.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, c.Env[k]))
		}
	}

	// stderr is kept so a failure can report it
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(r.stderr, &stderr)

	err := cmd.Run()
	if err == nil {
		r.logger.Debug().Str("command", c.Name).Msg("Command completed")
		return 0, nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		err = ctx.Err()
	}

	r.logger.Debug().
		Str("command", c.Name).
		Int("exitCode", exitCode).
		Str("stderr", stderr.String()).
		Err(err).
		Msg("Command failed")

	return exitCode, errors.Wrapf(err, errors.ErrCommandFailed, "command failed: %s", c).
		WithDetail("exitCode", exitCode).
		WithDetail("stderr", strings.TrimSpace(stderr.String()))
}
