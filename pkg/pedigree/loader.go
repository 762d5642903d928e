package pedigree

import (
	"context"
	stderrors "errors"
	"sync"
)

// ErrSuperseded is returned by Loader.Load when a newer load started before
// this one finished. The result is discarded.
var ErrSuperseded = stderrors.New("pedigree: load superseded by a newer request")

// Loader tracks the tree a single session is currently displaying.
//
// Every Load takes a ticket. Only the holder of the most recent ticket may
// install its result, so a slow resolution can never overwrite a newer one.
// A failed latest load clears the current tree but remembers the root so
// Reload can retry it.
type Loader struct {
	resolver *Resolver

	mu          sync.Mutex
	seq         uint64
	current     *Node
	rootID      string
	generations int
}

// NewLoader returns a loader with no tree.
func NewLoader(r *Resolver) *Loader {
	return &Loader{resolver: r}
}

// Load resolves rootID and installs the result as the current tree.
func (l *Loader) Load(ctx context.Context, rootID string, generations int) (*Node, error) {
	l.mu.Lock()
	l.seq++
	ticket := l.seq
	l.mu.Unlock()

	tree, err := l.resolver.Resolve(ctx, rootID, generations)

	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.seq {
		return nil, ErrSuperseded
	}
	l.rootID = rootID
	if err != nil {
		l.current = nil
		return nil, err
	}
	l.current = tree
	l.generations = ClampGenerations(generations)
	return tree, nil
}

// Reload resolves the current root again with a new generation count.
// It behaves like Load and returns nil, nil when nothing is loaded.
func (l *Loader) Reload(ctx context.Context, generations int) (*Node, error) {
	l.mu.Lock()
	rootID := l.rootID
	l.mu.Unlock()
	if rootID == "" {
		return nil, nil
	}
	return l.Load(ctx, rootID, generations)
}

// Current returns the installed tree, or nil.
func (l *Loader) Current() *Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Generations returns the clamped generation count of the current tree.
func (l *Loader) Generations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generations
}

// Clear drops the current tree and supersedes any load in flight.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.current = nil
	l.rootID = ""
	l.generations = 0
}
