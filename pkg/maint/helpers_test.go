package maint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner records every command and simulates the tools' side effects
type fakeRunner struct {
	calls   []Command
	outputs map[string]string
	// failures maps a command line prefix to the exit code it fails with
	failures map[string]int
	effects  func(c Command) error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs:  make(map[string]string),
		failures: make(map[string]int),
	}
}

func (f *fakeRunner) Run(ctx context.Context, c Command) (string, error) {
	f.calls = append(f.calls, c)
	line := commandLine(c)
	for prefix, code := range f.failures {
		if strings.HasPrefix(line, prefix) {
			return "", &ErrCommandFailed{Command: c, Code: code, Err: fmt.Errorf("exit status %d", code)}
		}
	}
	if f.effects != nil {
		if err := f.effects(c); err != nil {
			return "", err
		}
	}
	if c.Capture {
		return f.outputs[c.Name], nil
	}
	return "", nil
}

// lines returns the recorded commands as plain space-joined strings
func (f *fakeRunner) lines() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, commandLine(c))
	}
	return out
}

// find returns the recorded commands whose line starts with prefix
func (f *fakeRunner) find(prefix string) []Command {
	var out []Command
	for _, c := range f.calls {
		if strings.HasPrefix(commandLine(c), prefix) {
			out = append(out, c)
		}
	}
	return out
}

func commandLine(c Command) string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type fakeRepo struct {
	head string
	tags map[string]bool
}

func (r *fakeRepo) Head(ctx context.Context) (string, error) {
	return r.head, nil
}

func (r *fakeRepo) TagExists(ctx context.Context, name string) (bool, error) {
	return r.tags[name], nil
}

func newTestEnv(t *testing.T, dir string, runner Runner, repo Repository) *Env {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dir = dir
	if repo == nil {
		repo = &fakeRepo{head: "0123456789abcdef0123456789abcdef01234567"}
	}
	env, err := NewEnv(cfg, WithRunner(runner), WithLogger(nopLogger{}), WithRepository(repo))
	require.NoError(t, err)
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const testCMakeLists = `cmake_minimum_required(VERSION 3.13)
project(femtolog VERSION 1.0.0)

add_library(femtolog src/femtolog.c)
`
