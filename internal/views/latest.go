package views

import (
	"context"
	"sync"
)

// Latest tracks one in-flight fetch per key. Starting a fetch cancels the
// previous one for the same key, and only the newest fetch may commit.
type Latest struct {
	mu      sync.Mutex
	entries map[string]*Fetch
	gen     uint64
}

func NewLatest() *Latest {
	return &Latest{entries: make(map[string]*Fetch)}
}

type Fetch struct {
	ctx    context.Context
	cancel context.CancelFunc
	owner  *Latest
	key    string
	gen    uint64
}

// Start begins a fetch for key derived from parent and supersedes the
// previous one.
func (l *Latest) Start(parent context.Context, key string) *Fetch {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if prev, ok := l.entries[key]; ok {
		prev.cancel()
	}
	f := &Fetch{ctx: ctx, cancel: cancel, owner: l, key: key, gen: l.gen}
	l.entries[key] = f
	return f
}

func (f *Fetch) Context() context.Context {
	return f.ctx
}

// Commit runs fn only when this fetch is still the latest for its key and was
// not cancelled. It reports whether fn ran.
func (f *Fetch) Commit(fn func()) bool {
	f.owner.mu.Lock()
	defer f.owner.mu.Unlock()
	current, ok := f.owner.entries[f.key]
	if !ok || current.gen != f.gen || f.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Release ends the fetch. Safe to call more than once.
func (f *Fetch) Release() {
	f.cancel()
	f.owner.mu.Lock()
	defer f.owner.mu.Unlock()
	if current, ok := f.owner.entries[f.key]; ok && current.gen == f.gen {
		delete(f.owner.entries, f.key)
	}
}

// InFlight returns the number of keys with a live fetch.
func (l *Latest) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
