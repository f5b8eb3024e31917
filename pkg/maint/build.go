package maint

import (
	"context"
	"path/filepath"
)

// Build configures and compiles the project, optionally building docs and linting
type Build struct {
	Docs bool
	Lint bool
}

func (b Build) Name() string { return "build" }

// Run implements Workflow
func (b Build) Run(ctx context.Context, env *Env) error {
	cfg := env.Config
	build := cfg.BuildDir
	compileDB := filepath.Join(build, "compile_commands.json")

	steps := []struct {
		name string
		cmd  Command
		when bool
	}{
		{"configure", Cmd("cmake", "-DCMAKE_EXPORT_COMPILE_COMMANDS=ON", "-B", build, "."), true},
		{"compile", Cmd("cmake", "--build", build), true},
		{"docs", Cmd("cmake", "--build", build, "-t", "docs"), b.Docs},
		{"clang-tidy", Cmd("clang-tidy", append([]string{
			"--checks=-clang-analyzer-security.insecureAPI.DeprecatedOrUnsafeBufferHandling",
			"-p", compileDB,
		}, cfg.LintSources...)...), b.Lint},
		{"cppcheck", Cmd("cppcheck",
			"--enable=all",
			"--suppress=missingIncludeSystem",
			"--suppress=unusedFunction",
			"--inline-suppr",
			"--project="+compileDB,
		), b.Lint},
	}

	for _, s := range steps {
		if !s.when {
			continue
		}
		env.Logger.Info(s.name)
		if _, err := env.run(ctx, s.name, s.cmd.In(cfg.Dir)); err != nil {
			return err
		}
	}
	return nil
}
