// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrSessionBusy is returned when a script is started while its previous run
// in the same folder is still going.
var ErrSessionBusy = errors.New("script is already running")

type (
	// Clock supplies timestamps for session bookkeeping.
	Clock interface {
		Now() time.Time
	}

	// Session records the runs of one script in one folder.
	Session struct {
		Name       string
		Running    bool
		Runs       int
		LastExit   ExitCode
		LastError  error
		StartedAt  time.Time
		FinishedAt time.Time
	}

	// Sessions tracks script runs by session name. At most one run per
	// name is active at a time. It is safe for concurrent use.
	Sessions struct {
		mu       sync.Mutex
		clock    Clock
		sessions map[string]*Session
	}

	systemClock struct{}
)

func (systemClock) Now() time.Time { return time.Now() }

// SessionName returns "<folder> - <script>".
func SessionName(folder, script string) string {
	return fmt.Sprintf("%s - %s", folder, script)
}

// NewSessions creates an empty tracker. A nil clock uses the system time.
func NewSessions(clock Clock) *Sessions {
	if clock == nil {
		clock = systemClock{}
	}
	return &Sessions{clock: clock, sessions: make(map[string]*Session)}
}

// Begin marks name as running. The returned finish func records the outcome
// and must be called exactly once; later calls are ignored.
func (s *Sessions) Begin(name string) (finish func(Result), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[name]
	if !ok {
		sess = &Session{Name: name}
		s.sessions[name] = sess
	}
	if sess.Running {
		return nil, fmt.Errorf("%s: %w", name, ErrSessionBusy)
	}
	sess.Running = true
	sess.Runs++
	sess.StartedAt = s.clock.Now()

	var once sync.Once
	return func(res Result) {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			sess.Running = false
			sess.LastExit = res.ExitCode
			sess.LastError = res.Error
			sess.FinishedAt = s.clock.Now()
		})
	}, nil
}

// Get returns a copy of the session called name.
func (s *Sessions) Get(name string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[name]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// List returns copies of all sessions sorted by name.
func (s *Sessions) List() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
