package maint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Watch runs Build once and again whenever a watched path changes, until ctx is done.
// Failed builds are logged and watching continues.
type Watch struct {
	Build Build
}

func (w Watch) Name() string { return "watch" }

// Run implements Workflow
func (w Watch) Run(ctx context.Context, env *Env) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	set, err := addWatchPaths(watcher, env)
	if err != nil {
		return err
	}
	if set.empty() {
		return fmt.Errorf("none of the watch paths %v exist", env.Config.Watch.Paths)
	}

	w.rebuild(ctx, env)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return w.loop(ctx, env, watcher, set)
	})
	return eg.Wait()
}

func (w Watch) rebuild(ctx context.Context, env *Env) {
	if err := w.Build.Run(ctx, env); err != nil {
		if ctx.Err() != nil {
			return
		}
		env.Logger.Error("build failed", "error", err)
		return
	}
	env.Logger.Info("build ok, watching for changes")
}

func (w Watch) loop(ctx context.Context, env *Env, watcher *fsnotify.Watcher, set *watchSet) error {
	defer func() {
		if r := recover(); r != nil {
			env.Logger.Error("panic in watch loop", "error", r)
		}
	}()

	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(env, set, event) {
				continue
			}
			env.Logger.Debug("change", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) && set.underTree(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						env.Logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			fire = time.After(env.Config.Watch.Debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			env.Logger.Error("watcher error", "error", err)
		case <-fire:
			fire = nil
			w.rebuild(ctx, env)
		case <-ctx.Done():
			return nil
		}
	}
}

// watchSet records what was registered with the watcher. Trees are watched
// recursively. Single files are watched through their parent directory so an
// editor replacing the file by rename does not drop the watch.
type watchSet struct {
	trees []string
	files map[string]bool
}

func newWatchSet() *watchSet {
	return &watchSet{files: make(map[string]bool)}
}

func (s *watchSet) empty() bool {
	return len(s.trees) == 0 && len(s.files) == 0
}

func (s *watchSet) underTree(name string) bool {
	name = filepath.Clean(name)
	for _, root := range s.trees {
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (s *watchSet) matches(name string) bool {
	return s.files[filepath.Clean(name)] || s.underTree(name)
}

// relevant filters out attribute-only changes, anything in the output
// directories and siblings of watched files
func (w Watch) relevant(env *Env, set *watchSet, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	for _, out := range []string{env.Config.BuildDir, env.Config.ReleaseDir} {
		dir := filepath.Clean(env.Config.Path(out))
		if event.Name == dir || strings.HasPrefix(event.Name, dir+string(filepath.Separator)) {
			return false
		}
	}
	return set.matches(event.Name)
}

// addWatchPaths registers each configured path, descending into directories
// since fsnotify watches are not recursive
func addWatchPaths(watcher *fsnotify.Watcher, env *Env) (*watchSet, error) {
	set := newWatchSet()
	watchedDirs := make(map[string]bool)
	addDir := func(dir string) error {
		if watchedDirs[dir] {
			return nil
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watchedDirs[dir] = true
		return nil
	}

	for _, p := range env.Config.Watch.Paths {
		root := filepath.Clean(env.Config.Path(p))
		info, err := os.Stat(root)
		if os.IsNotExist(err) {
			env.Logger.Warn("watch path does not exist", "path", root)
			continue
		}
		if err != nil {
			return set, err
		}
		if !info.IsDir() {
			if err := addDir(filepath.Dir(root)); err != nil {
				return set, err
			}
			set.files[root] = true
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			return addDir(path)
		})
		if err != nil {
			return set, err
		}
		set.trees = append(set.trees, root)
	}
	return set, nil
}
