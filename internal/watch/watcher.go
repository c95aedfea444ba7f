// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce applies when Config.Debounce is zero or negative.
const defaultDebounce = 300 * time.Millisecond

// DefaultPatterns are the base names reported when Config.Patterns is empty.
var DefaultPatterns = []string{"package.json", ".scriptree.toml"}

// defaultIgnores are matched against slash-separated absolute paths without
// the leading slash. Folders
// under them are never watched and files under them never reported.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Dirs are the folders to watch, typically every workspace folder
		// holding a manifest. Relative paths are resolved against the working
		// directory.
		Dirs []string

		// Patterns are doublestar globs matched against the base name of a
		// changed file. Empty means DefaultPatterns.
		Patterns []string

		// Ignore are extra doublestar globs matched against the slash-separated
		// absolute path, leading slash removed. They are merged with the
		// built-in ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires.
		Debounce time.Duration

		// OnChange receives the sorted, deduplicated absolute paths that
		// changed. Errors are logged and do not stop the watcher.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives diagnostics. nil discards them.
		Logger *log.Logger
	}

	// Watcher reports debounced manifest changes. Run must be called exactly
	// once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		patterns []string
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool

		mu      sync.Mutex
		watched map[string]struct{}
	}
)

// New creates a Watcher and registers cfg.Dirs. Folders that do not exist are
// skipped with a warning so a vanished workspace does not prevent watching the
// others.
func New(cfg Config) (*Watcher, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if err := validatePatterns(patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		patterns: slices.Clone(patterns),
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		logger:   logger,
		watched:  make(map[string]struct{}),
	}

	if err := w.Sync(cfg.Dirs); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Sync makes the watched folder set equal to dirs: new folders are added and
// folders no longer listed are removed. It is safe to call while Run is
// active, e.g. after a refresh discovered new workspace folders.
func (w *Watcher) Sync(dirs []string) error {
	want := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return fmt.Errorf("watch: resolve %q: %w", d, err)
		}
		if w.isIgnored(abs) {
			continue
		}
		want[abs] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for dir := range w.watched {
		if _, ok := want[dir]; ok {
			continue
		}
		if err := w.fsw.Remove(dir); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
			w.logger.Debug("remove watch", "dir", dir, "err", err)
		}
		delete(w.watched, dir)
	}

	for _, dir := range slices.Sorted(maps.Keys(want)) {
		if _, ok := w.watched[dir]; ok {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			w.logger.Warn("skipping folder that cannot be watched", "dir", dir, "err", err)
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: add %q: %w", dir, err)
			}
			w.logger.Warn("skipping folder that cannot be watched", "dir", dir, "err", err)
			continue
		}
		w.watched[dir] = struct{}{}
	}
	return nil
}

// Dirs returns the folders currently watched, sorted.
func (w *Watcher) Dirs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.watched))
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks for good.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after cancellation because it is scheduled by
	// time.AfterFunc; OnChange receives ctx and must honour it.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			// Retry later so the pending set is not lost.
			w.logger.Debug("previous refresh still running, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Debug("manifests changed", "paths", changed)
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("change callback failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if !w.relevant(evt.Name) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			// isFatalFsnotifyError is platform-specific (see watcher_fatal_*.go).
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// relevant reports whether a changed path should trigger a callback.
func (w *Watcher) relevant(path string) bool {
	return w.matchesPatterns(filepath.Base(path)) && !w.isIgnored(path)
}

func (w *Watcher) isIgnored(path string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
		// A folder matches a "**/dir/**" pattern only with a trailing slash.
		if matched, err := doublestar.Match(pat, normalized+"/"); err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Watcher) matchesPatterns(base string) bool {
	for _, pat := range w.patterns {
		if matched, err := doublestar.Match(pat, base); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// validatePatterns checks that every pattern is a valid doublestar glob.
func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
