package handler

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/philharmonic-console/internal/obs"
	"github.com/iliyamo/philharmonic-console/internal/shell"
)

// Factory builds the shell of a new console session.
type Factory func() (*shell.Shell, error)

// Sessions holds one shell per console session id.  Sessions idle for
// longer than the idle TTL are dropped by Sweep.
type Sessions struct {
	mu    sync.Mutex
	idle  time.Duration
	now   func() time.Time
	build Factory
	items map[string]*sessionEntry
}

type sessionEntry struct {
	shell *shell.Shell
	seen  time.Time
	boot  sync.Once
}

func NewSessions(idle time.Duration, build Factory) *Sessions {
	return &Sessions{idle: idle, now: time.Now, build: build, items: map[string]*sessionEntry{}}
}

// Get returns the booted shell of session id, creating it on first use.
func (s *Sessions) Get(ctx context.Context, id string) (*shell.Shell, error) {
	s.mu.Lock()
	e, ok := s.items[id]
	if !ok {
		sh, err := s.build()
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		e = &sessionEntry{shell: sh}
		s.items[id] = e
		obs.SetSessions(len(s.items))
	}
	e.seen = s.now()
	s.mu.Unlock()

	e.boot.Do(func() { e.shell.Boot(ctx) })
	return e.shell, nil
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep drops idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.items {
		if now.Sub(e.seen) > s.idle {
			delete(s.items, id)
			n++
		}
	}
	obs.SetSessions(len(s.items))
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
