package maint

import (
	"context"
	"os"
)

// Clean removes the build output directory
type Clean struct{}

func (Clean) Name() string { return "clean" }

// Run implements Workflow. A missing build directory is not an error.
func (Clean) Run(ctx context.Context, env *Env) error {
	dir := env.Config.Path(env.Config.BuildDir)
	if _, err := os.Lstat(dir); os.IsNotExist(err) {
		env.Logger.Debug("nothing to clean", "dir", dir)
		return nil
	}
	return env.mutate("remove "+dir, func() error {
		return os.RemoveAll(dir)
	})
}
