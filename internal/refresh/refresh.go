// SPDX-License-Identifier: MPL-2.0

package refresh

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"scriptree-cli/internal/workspace"
	"scriptree-cli/pkg/scripttree"
)

type (
	// Snapshot is one complete, immutable view of every project folder.
	Snapshot struct {
		// Seq increases by one with every published snapshot, starting at 1.
		Seq       uint64
		Projects  []workspace.Project
		Separator scripttree.Separator
		LoadedAt  time.Time
	}

	// Loader builds the project list for a snapshot.
	Loader interface {
		Load(ctx context.Context) ([]workspace.Project, scripttree.Separator, error)
	}

	// LoaderFunc adapts a function to Loader.
	LoaderFunc func(ctx context.Context) ([]workspace.Project, scripttree.Separator, error)

	// Subscriber is notified after each published snapshot.
	Subscriber func(*Snapshot)

	// Publisher holds the latest snapshot and its subscribers.
	// It is safe for concurrent use.
	Publisher struct {
		loader Loader
		logger *log.Logger
		now    func() time.Time

		current atomic.Pointer[Snapshot]
		seq     atomic.Uint64

		// refreshMu serializes Refresh so that snapshots are published in
		// Seq order.
		refreshMu sync.Mutex

		subsMu sync.Mutex
		nextID int
		subs   []subscription
	}

	subscription struct {
		id int
		fn Subscriber
	}
)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) ([]workspace.Project, scripttree.Separator, error) {
	return f(ctx)
}

// NewPublisher creates a Publisher. A nil logger discards diagnostics.
func NewPublisher(loader Loader, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Publisher{loader: loader, logger: logger, now: time.Now}
}

// Current returns the latest snapshot, or nil before the first Refresh.
func (p *Publisher) Current() *Snapshot {
	return p.current.Load()
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (p *Publisher) Subscribe(fn Subscriber) (unsubscribe func()) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()

	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscription{id: id, fn: fn})

	return func() {
		p.subsMu.Lock()
		defer p.subsMu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// Refresh rebuilds the snapshot and notifies subscribers. On a loader error
// the previous snapshot stays current and no one is notified.
func (p *Publisher) Refresh(ctx context.Context) (*Snapshot, error) {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	projects, sep, err := p.loader.Load(ctx)
	if err != nil {
		p.logger.Error("refresh failed", "err", err)
		return nil, fmt.Errorf("refresh: %w", err)
	}

	snap := &Snapshot{
		Seq:       p.seq.Add(1),
		Projects:  projects,
		Separator: sep,
		LoadedAt:  p.now(),
	}
	p.current.Store(snap)
	p.logger.Debug("published snapshot", "seq", snap.Seq, "projects", len(projects))

	p.subsMu.Lock()
	subs := make([]subscription, len(p.subs))
	copy(subs, p.subs)
	p.subsMu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
	return snap, nil
}

// WorkspaceLoader discovers folders and loads their manifests on every call.
// Options is read through a function so configuration changes (for example a
// new separator in .scriptree.toml) apply to the next refresh.
type WorkspaceLoader struct {
	Fs      afero.Fs
	Options func(ctx context.Context) (workspace.Options, scripttree.Separator, error)
}

// Load implements Loader.
func (l WorkspaceLoader) Load(ctx context.Context) ([]workspace.Project, scripttree.Separator, error) {
	opts, sep, err := l.Options(ctx)
	if err != nil {
		return nil, "", err
	}
	folders, err := workspace.Discover(l.Fs, opts)
	if err != nil {
		return nil, "", err
	}
	return workspace.LoadAll(l.Fs, folders, sep), sep, nil
}

// Folders returns the folder of every project in s.
func (s *Snapshot) Folders() []workspace.Folder {
	out := make([]workspace.Folder, len(s.Projects))
	for i, p := range s.Projects {
		out[i] = p.Folder
	}
	return out
}
