// Package maint implements the femtolog maintainer workflows: build, clean,
// set-version, release and release-signatures, each a sequence of external
// tool invocations that aborts on the first failure.
package maint

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Workflow is one maintainer command: build, clean, release,
// release-signatures or set-version
type Workflow interface {
	Name() string
	Run(ctx context.Context, env *Env) error
}

// Env carries everything a workflow needs to do its work
type Env struct {
	Config  *Config
	Runner  Runner
	Logger  Logger
	Repo    Repository
	Metrics *StepMetrics
}

// EnvOption defines a function type for configuring Env
type EnvOption func(*Env)

// WithRunner sets the runner used for external commands
func WithRunner(r Runner) EnvOption {
	return func(e *Env) {
		if r != nil {
			e.Runner = r
		}
	}
}

// WithLogger sets an external logger implementation
func WithLogger(l Logger) EnvOption {
	return func(e *Env) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithRepository sets the git repository accessor
func WithRepository(r Repository) EnvOption {
	return func(e *Env) {
		if r != nil {
			e.Repo = r
		}
	}
}

// NewEnv validates config and fills in default collaborators
func NewEnv(config *Config, opts ...EnvOption) (*Env, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, _ := ParseLogLevel(config.LogLevel)
	e := &Env{
		Config:  config,
		Logger:  NewDefaultLogger(os.Stderr, level),
		Metrics: NewStepMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.Runner == nil {
		e.Runner = NewExecRunner(e.Logger, config.DryRun)
	}
	if e.Repo == nil {
		e.Repo = NewGitRepository(config.Dir)
	}
	return e, nil
}

// Dispatch runs w and logs a timing summary once it finishes
func Dispatch(ctx context.Context, env *Env, w Workflow) error {
	env.Metrics.Reset()
	env.Logger.Debug("workflow started", "workflow", w.Name(), "dir", env.Config.Dir)

	err := w.Run(ctx, env)

	for _, s := range env.Metrics.Snapshot() {
		env.Logger.Debug("step", "name", s.Name, "count", s.Count, "time", s.TotalTime.Round(time.Millisecond))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", w.Name(), err)
	}
	env.Logger.Info("done", "workflow", w.Name(), "time", env.Metrics.Total().Round(time.Millisecond))
	return nil
}

// run executes an external command as a named, timed step
func (e *Env) run(ctx context.Context, step string, c Command) (string, error) {
	start := time.Now()
	out, err := e.Runner.Run(ctx, c)
	e.Metrics.Record(step, time.Since(start), err != nil)
	if err != nil {
		return out, fmt.Errorf("%s: %w", step, err)
	}
	return out, nil
}

// mutate performs a native file-system change as a named, timed step.
// In dry-run mode the change is only logged.
func (e *Env) mutate(step string, fn func() error) error {
	if e.Config.DryRun {
		e.Logger.Info("would " + step)
		return nil
	}
	e.Logger.Debug(step)

	start := time.Now()
	err := fn()
	e.Metrics.Record(step, time.Since(start), err != nil)
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}

func tagName(version string) string {
	return "v" + version
}

func (e *Env) releaseTitle(version string) string {
	return fmt.Sprintf("%s v%s", e.Config.ProjectName, version)
}
