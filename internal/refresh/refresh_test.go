// SPDX-License-Identifier: MPL-2.0

package refresh

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

func staticLoader(projects ...workspace.Project) LoaderFunc {
	return func(context.Context) ([]workspace.Project, scripttree.Separator, error) {
		return projects, scripttree.DefaultSeparator, nil
	}
}

func TestPublisher_RefreshNotifiesInOrder(t *testing.T) {
	t.Parallel()

	p := NewPublisher(staticLoader(workspace.Project{Folder: workspace.Folder{Name: "a"}}), nil)
	if p.Current() != nil {
		t.Fatal("Current() before Refresh should be nil")
	}

	var order []string
	p.Subscribe(func(*Snapshot) { order = append(order, "first") })
	p.Subscribe(func(*Snapshot) { order = append(order, "second") })

	snap, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if snap.Seq != 1 || p.Current() != snap {
		t.Errorf("snapshot seq = %d, current = %p, want 1 and %p", snap.Seq, p.Current(), snap)
	}
	if !slices.Equal(order, []string{"first", "second"}) {
		t.Errorf("notification order = %v", order)
	}
	if got := snap.Folders(); len(got) != 1 || got[0].Name != "a" {
		t.Errorf("Folders() = %v", got)
	}
}

func TestPublisher_Unsubscribe(t *testing.T) {
	t.Parallel()

	p := NewPublisher(staticLoader(), nil)

	var calls int
	unsubscribe := p.Subscribe(func(*Snapshot) { calls++ })

	if _, err := p.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	unsubscribe()
	unsubscribe()
	if _, err := p.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("subscriber called %d times, want 1", calls)
	}
	if p.Current().Seq != 2 {
		t.Errorf("Seq = %d, want 2", p.Current().Seq)
	}
}

func TestPublisher_LoaderErrorKeepsSnapshot(t *testing.T) {
	t.Parallel()

	fail := false
	boom := errors.New("boom")
	p := NewPublisher(LoaderFunc(func(context.Context) ([]workspace.Project, scripttree.Separator, error) {
		if fail {
			return nil, "", boom
		}
		return nil, ":", nil
	}), nil)

	first, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	notified := false
	p.Subscribe(func(*Snapshot) { notified = true })
	fail = true
	if _, err := p.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Refresh() error = %v, want %v", err, boom)
	}
	if p.Current() != first {
		t.Error("failed refresh replaced the snapshot")
	}
	if notified {
		t.Error("subscribers notified after a failed refresh")
	}
}

func TestPublisher_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPublisher(staticLoader(), nil)
	if _, err := p.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Refresh() error = %v, want context.Canceled", err)
	}
}

func TestPublisher_ConcurrentRefresh(t *testing.T) {
	t.Parallel()

	p := NewPublisher(staticLoader(), nil)

	var (
		mu   sync.Mutex
		seqs []uint64
	)
	p.Subscribe(func(s *Snapshot) {
		mu.Lock()
		seqs = append(seqs, s.Seq)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Refresh(context.Background())
		}()
	}
	wg.Wait()

	if !slices.IsSorted(seqs) || len(seqs) != 10 {
		t.Errorf("snapshots published out of order: %v", seqs)
	}
}

func TestWorkspaceLoader(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	root := filepath.FromSlash("/repo")
	if err := afero.WriteFile(fsys, filepath.Join(root, "package.json"),
		[]byte(`{"scripts":{"lint/fix":"a","lint/all":"b"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	sep := scripttree.Separator(":")
	loader := WorkspaceLoader{
		Fs: fsys,
		Options: func(context.Context) (workspace.Options, scripttree.Separator, error) {
			return workspace.Options{Root: root}, sep, nil
		},
	}
	p := NewPublisher(loader, nil)

	snap, err := p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got := len(snap.Projects[0].Tree); got != 2 {
		t.Errorf("with ':' the tree has %d roots, want 2", got)
	}

	// A separator change applies on the next refresh.
	sep = "/"
	snap, err = p.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if got := len(snap.Projects[0].Tree); got != 1 || snap.Separator != "/" {
		t.Errorf("with '/' the tree has %d roots (sep %q), want 1", got, snap.Separator)
	}
}
