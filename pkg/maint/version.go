package maint

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// SetVersion rewrites the project version marker and commits the change
type SetVersion struct {
	Version string
	// Release selects the "Release <v>" commit message.
	Release bool
}

func (s SetVersion) Name() string { return "set-version" }

// Run implements Workflow
func (s SetVersion) Run(ctx context.Context, env *Env) error {
	if s.Version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if _, err := semver.StrictNewVersion(s.Version); err != nil {
		env.Logger.Warn("version is not a semantic version", "version", s.Version)
	}

	cfg := env.Config
	path := cfg.Path(cfg.BuildFile)
	content, mode, err := versionedContent(path, cfg.ProjectName, s.Version)
	if err != nil {
		return err
	}
	err = env.mutate("set version in "+path, func() error {
		return os.WriteFile(path, content, mode)
	})
	if err != nil {
		return err
	}

	msg := "Bump version to " + s.Version
	if s.Release {
		msg = "Release " + s.Version
	}
	env.Logger.Info("commit", "message", msg)
	_, err = env.run(ctx, "commit", Cmd("git", "commit", "-asm", msg).In(cfg.Dir))
	return err
}

func versionMarker(project string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^([ \t]*project\(` + regexp.QuoteMeta(project) + ` VERSION)[^\n]*(\n|$)`)
}

// ReplaceVersion substitutes version into every line that starts with "project(<project> VERSION ...)".
// The rest of the line after VERSION is replaced; every other byte is kept.
// ok is false when no marker line matched, in which case text is returned as is.
func ReplaceVersion(text []byte, project, version string) (out []byte, ok bool) {
	re := versionMarker(project)
	if !re.Match(text) {
		return text, false
	}
	out = re.ReplaceAllFunc(text, func(line []byte) []byte {
		m := re.FindSubmatch(line)
		repl := make([]byte, 0, len(m[1])+len(version)+3)
		repl = append(repl, m[1]...)
		repl = append(repl, ' ')
		repl = append(repl, version...)
		repl = append(repl, ')')
		return append(repl, m[2]...)
	})
	return out, true
}

// RewriteVersionFile applies ReplaceVersion to the file at path.
// The file is left untouched and *ErrMarkerNotFound returned if it has no marker.
func RewriteVersionFile(path, project, version string) error {
	content, mode, err := versionedContent(path, project, version)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, mode)
}

func versionedContent(path, project, version string) ([]byte, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	out, ok := ReplaceVersion(text, project, version)
	if !ok {
		return nil, 0, &ErrMarkerNotFound{Path: path, Project: project}
	}
	return out, info.Mode().Perm(), nil
}
