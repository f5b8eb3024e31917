package maint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Release cuts a new version: bump, build, package, checksum, optionally sign,
// tag and publish to each enabled forge.
//
// There is no rollback. A failure after the commit, the tag or a push leaves
// those in place and the remaining steps must be finished by hand.
type Release struct {
	Version  string
	Sign     bool
	NoGitLab bool
	NoGitHub bool
}

func (r Release) Name() string { return "release" }

// Run implements Workflow
func (r Release) Run(ctx context.Context, env *Env) error {
	if r.Version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	cfg := env.Config
	tag := tagName(r.Version)
	title := env.releaseTitle(r.Version)
	artifacts := NewArtifacts(cfg.ProjectName, r.Version)
	releaseDir := cfg.Path(cfg.ReleaseDir)

	exists, err := env.Repo.TagExists(ctx, tag)
	if err != nil {
		return err
	}
	if exists {
		return &ErrTagExists{Tag: tag}
	}

	if err := (Clean{}).Run(ctx, env); err != nil {
		return err
	}
	if err := (SetVersion{Version: r.Version, Release: true}).Run(ctx, env); err != nil {
		return err
	}
	commit, err := env.Repo.Head(ctx)
	if err != nil {
		return err
	}
	env.Logger.Info("release commit", "commit", commit)

	if err := (Build{Docs: true}).Run(ctx, env); err != nil {
		return err
	}

	err = env.mutate("recreate "+releaseDir, func() error {
		if err := os.RemoveAll(releaseDir); err != nil {
			return err
		}
		return os.MkdirAll(releaseDir, 0o755)
	})
	if err != nil {
		return err
	}

	docsDst := filepath.Join(releaseDir, artifacts.Docs)
	err = env.mutate("archive docs to "+docsDst, func() error {
		prefix := fmt.Sprintf("%s-html-docs-%s", cfg.ProjectName, r.Version)
		return WriteTarGz(docsDst, cfg.Path(cfg.BuildDir, cfg.DocsDir), prefix)
	})
	if err != nil {
		return err
	}

	archive := Cmd("git", "archive",
		"-o", filepath.Join(cfg.ReleaseDir, artifacts.Source),
		fmt.Sprintf("--prefix=%s-%s/", cfg.ProjectName, r.Version),
		commit,
	)
	if _, err := env.run(ctx, "archive source", archive.In(cfg.Dir)); err != nil {
		return err
	}

	notes, err := ExtractNotes(ctx, env, r.Version)
	if err != nil {
		return err
	}
	notesDst := filepath.Join(releaseDir, artifacts.Notes)
	err = env.mutate("write "+notesDst, func() error {
		return os.WriteFile(notesDst, []byte(notesDocument(cfg.ProjectName, r.Version, notes)), 0o644)
	})
	if err != nil {
		return err
	}

	if err := writeChecksums(ctx, env, artifacts.Digested()); err != nil {
		return err
	}

	if r.Sign {
		for _, sums := range artifacts.Sums {
			c := Cmd("gpg", "--detach-sign", "-a", filepath.Join(cfg.ReleaseDir, sums))
			if _, err := env.run(ctx, "sign", c.In(cfg.Dir)); err != nil {
				return err
			}
		}
	}

	env.Logger.Info("tag", "tag", tag, "commit", commit)
	if _, err := env.run(ctx, "tag", Cmd("git", "tag", "-m", title, tag, commit).In(cfg.Dir)); err != nil {
		return err
	}

	files := artifacts.Upload(r.Sign)
	for _, f := range env.forges(r.NoGitLab, r.NoGitHub) {
		env.Logger.Info("publish", "forge", f.Name, "remote", f.Remote)
		if err := f.push(ctx, env, commit, tag); err != nil {
			return err
		}
		if err := f.createRelease(ctx, env, tag, title, notes, files); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseSignatures uploads detached signatures of an already published release
type ReleaseSignatures struct {
	Version  string
	NoGitLab bool
	NoGitHub bool
}

func (r ReleaseSignatures) Name() string { return "release-signatures" }

// Run implements Workflow
func (r ReleaseSignatures) Run(ctx context.Context, env *Env) error {
	if r.Version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	signatures := NewArtifacts(env.Config.ProjectName, r.Version).Signatures
	if err := requireFiles(env.Config.Path(env.Config.ReleaseDir), signatures); err != nil {
		return err
	}

	tag := tagName(r.Version)
	for _, f := range env.forges(r.NoGitLab, r.NoGitHub) {
		env.Logger.Info("upload signatures", "forge", f.Name, "tag", tag)
		if err := f.upload(ctx, env, tag, signatures); err != nil {
			return err
		}
	}
	return nil
}
