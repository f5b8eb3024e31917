package maint

import (
	"context"
)

// Forge is a code hosting service a release is pushed and published to
type Forge struct {
	Name string
	ForgeConfig
}

// forges returns the enabled forges in publishing order: GitLab, then GitHub
func (e *Env) forges(noGitLab, noGitHub bool) []Forge {
	var out []Forge
	if gl := e.Config.Forges.GitLab; gl.Enabled && !noGitLab {
		out = append(out, Forge{Name: "gitlab", ForgeConfig: gl})
	}
	if gh := e.Config.Forges.GitHub; gh.Enabled && !noGitHub {
		out = append(out, Forge{Name: "github", ForgeConfig: gh})
	}
	return out
}

// push sends the default branch, the release branch pointer and the tag to the forge remote
func (f Forge) push(ctx context.Context, env *Env, commit, tag string) error {
	cfg := env.Config
	pushes := []Command{
		Cmd("git", "push", f.Remote),
		Cmd("git", "push", f.Remote, commit+":refs/heads/"+cfg.ReleaseBranch),
		Cmd("git", "push", f.Remote, tag),
	}
	for _, c := range pushes {
		if _, err := env.run(ctx, f.Name+" push", c.In(cfg.Dir)); err != nil {
			return err
		}
	}
	return nil
}

// createRelease creates the forge release object, uploading files from the release dir.
// notes become the release description.
func (f Forge) createRelease(ctx context.Context, env *Env, tag, title, notes string, files []string) error {
	args := append([]string{"release", "create", tag, f.TitleFlag, title, "-F-"}, files...)
	c := Cmd(f.CLI, args...).In(env.Config.Path(env.Config.ReleaseDir)).WithStdin(notes)
	_, err := env.run(ctx, f.Name+" release", c)
	return err
}

// upload attaches files from the release dir to an existing forge release
func (f Forge) upload(ctx context.Context, env *Env, tag string, files []string) error {
	args := append([]string{"release", "upload", tag}, files...)
	c := Cmd(f.CLI, args...).In(env.Config.Path(env.Config.ReleaseDir))
	_, err := env.run(ctx, f.Name+" upload", c)
	return err
}
