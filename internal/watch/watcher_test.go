// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

// startWatcher runs w in the background and returns a stop function that
// cancels it and reports Run's error.
func startWatcher(t *testing.T, w *Watcher) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Give the event loop a moment to start reading.
	time.Sleep(20 * time.Millisecond)
	return func() error {
		cancel()
		return <-errCh
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	for _, content := range []string{`{}`, `{"scripts":{}}`, `{"scripts":{"a":"b"}}`} {
		mustWrite(t, filepath.Join(dir, "package.json"), content)
		time.Sleep(10 * time.Millisecond)
	}
	mustWrite(t, filepath.Join(dir, ".scriptree.toml"), `separator = "/"`)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, name := range []string{"package.json", ".scriptree.toml"} {
		if !slices.Contains(collected, filepath.Join(dir, name)) {
			t.Errorf("expected %s in changed paths, got %v", name, collected)
		}
	}
}

func TestWatcherPatternFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer func() { _ = stop() }()

	mustWrite(t, filepath.Join(dir, "index.js"), "console.log(1)")
	mustWrite(t, filepath.Join(dir, "package-lock.json"), "{}")

	select {
	case changed := <-fired:
		t.Fatalf("unexpected callback for non-manifest files: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	mustWrite(t, filepath.Join(dir, "package.json"), "{}")
	select {
	case changed := <-fired:
		if !slices.Equal(changed, []string{filepath.Join(dir, "package.json")}) {
			t.Errorf("changed = %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for manifest callback")
	}
}

func TestWatcherSync(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	modules := filepath.Join(root, "node_modules", "dep")
	for _, d := range []string{a, b, modules} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New(Config{Dirs: []string{a, filepath.Join(root, "missing"), modules}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := w.Dirs(); !slices.Equal(got, []string{a}) {
		t.Errorf("Dirs() = %v, want [%s]", got, a)
	}

	if err := w.Sync([]string{b, a}); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if got := w.Dirs(); !slices.Equal(got, []string{a, b}) {
		t.Errorf("Dirs() after add = %v", got)
	}

	if err := w.Sync([]string{b}); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if got := w.Dirs(); !slices.Equal(got, []string{b}) {
		t.Errorf("Dirs() after remove = %v", got)
	}
	if err := w.fsw.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	release := make(chan struct{})
	started := make(chan struct{}, 4)

	var (
		mu    sync.Mutex
		calls int
	)

	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 30 * time.Millisecond,
		OnChange: func(ctx context.Context, _ []string) error {
			mu.Lock()
			calls++
			mu.Unlock()
			started <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	mustWrite(t, filepath.Join(dir, "package.json"), "{}")
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}

	// A change while the callback is blocked must be deferred, not dropped.
	mustWrite(t, filepath.Join(dir, "package.json"), `{"scripts":{}}`)
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	if calls != 1 {
		t.Errorf("callback ran %d times while busy, want 1", calls)
	}
	mu.Unlock()

	close(release)
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("deferred change was never delivered")
	}

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherCallbackErrorDoesNotStop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan struct{}, 4)

	w, err := New(Config{
		Dirs:     []string{dir},
		Debounce: 30 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			fired <- struct{}{}
			return errors.New("refresh failed")
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	for i := range 2 {
		mustWrite(t, filepath.Join(dir, "package.json"), "{}")
		select {
		case <-fired:
		case <-time.After(5 * time.Second):
			t.Fatalf("callback %d not delivered", i+1)
		}
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dirs: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	if err := stop(); err != nil {
		t.Fatalf("Run() error on cancel: %v", err)
	}
}

func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Dirs: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer func() { _ = stop() }()

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("New() accepted an invalid watch pattern")
	}
	if _, err := New(Config{Ignore: []string{"{a,b"}}); err == nil {
		t.Error("New() accepted an invalid ignore pattern")
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores(), patterns: DefaultPatterns}

	tests := []struct {
		path string
		want bool
	}{
		{"/repo/node_modules/pkg", true},
		{"/repo/node_modules/pkg/package.json", true},
		{"/repo/.git/HEAD", true},
		{"/repo/package.json.swp", true},
		{"/repo/package.json", false},
		{"/repo/packages/web", false},
	}
	for _, tt := range tests {
		if got := w.isIgnored(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if !w.relevant(filepath.FromSlash("/repo/package.json")) {
		t.Error("package.json should be relevant")
	}
	if w.relevant(filepath.FromSlash("/repo/node_modules/x/package.json")) {
		t.Error("package.json under node_modules should not be relevant")
	}

	// The returned slice is a copy.
	got := DefaultIgnores()
	got[0] = "changed"
	if defaultIgnores[0] == "changed" {
		t.Error("DefaultIgnores() returned the package slice")
	}
}
