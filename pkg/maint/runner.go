package maint

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Command describes one external tool invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Stdin is piped to the process when non-empty.
	Stdin string
	// Capture returns stdout to the caller instead of streaming it.
	Capture bool
}

// Cmd is shorthand for a streaming Command
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// In returns a copy of c that runs in dir
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// WithStdin returns a copy of c that receives input on stdin
func (c Command) WithStdin(input string) Command {
	c.Stdin = input
	return c
}

// Captured returns a copy of c whose stdout is captured
func (c Command) Captured() Command {
	c.Capture = true
	return c
}

// String renders the command as a copy-pasteable shell line
func (c Command) String() string {
	words := append([]string{c.Name}, c.Args...)
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			q = w
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " ")
}

// Runner executes external commands, blocking until they exit
type Runner interface {
	// Run executes cmd and returns its stdout when cmd.Capture is set.
	// A non-zero exit is reported as *ErrCommandFailed.
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger Logger
	DryRun bool
}

// NewExecRunner creates a runner attached to the process stdio
func NewExecRunner(logger Logger, dryRun bool) *ExecRunner {
	if logger == nil {
		logger = nopLogger{}
	}
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
		DryRun: dryRun,
	}
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	if r.DryRun {
		r.Logger.Info("would run", "cmd", c.String(), "dir", c.Dir)
		return "", nil
	}
	r.Logger.Debug("run", "cmd", c.String(), "dir", c.Dir)

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stderr = r.Stderr

	switch {
	case c.Stdin != "":
		cmd.Stdin = strings.NewReader(c.Stdin)
	case !c.Capture:
		cmd.Stdin = r.Stdin
	}

	var out bytes.Buffer
	if c.Capture {
		cmd.Stdout = &out
	} else {
		cmd.Stdout = r.Stdout
	}

	if err := cmd.Run(); err != nil {
		code := 0
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return out.String(), &ErrCommandFailed{Command: c, Code: code, Err: err}
	}
	return out.String(), nil
}
