package maint

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository gives read access to the project's git repository.
// Commits, tags and pushes go through the git CLI so user config applies.
type Repository interface {
	// Head returns the full hash of the commit HEAD points at.
	Head(ctx context.Context) (string, error)
	// TagExists reports whether refs/tags/<name> exists locally.
	TagExists(ctx context.Context, name string) (bool, error)
}

// GitRepository is a go-git backed Repository opened lazily from a directory
type GitRepository struct {
	dir  string
	once sync.Once
	repo *git.Repository
	err  error
}

// NewGitRepository returns a Repository for the work tree containing dir
func NewGitRepository(dir string) *GitRepository {
	return &GitRepository{dir: dir}
}

func (r *GitRepository) open() (*git.Repository, error) {
	r.once.Do(func() {
		r.repo, r.err = git.PlainOpenWithOptions(r.dir, &git.PlainOpenOptions{DetectDotGit: true})
		if r.err != nil {
			r.err = fmt.Errorf("failed to open git repository at %s: %w", r.dir, r.err)
		}
	})
	return r.repo, r.err
}

// Head implements Repository
func (r *GitRepository) Head(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// TagExists implements Repository
func (r *GitRepository) TagExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	repo, err := r.open()
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewTagReferenceName(name), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	return true, nil
}
