// Package listing keeps a locally rendered collection in sync with the remote store.
// Every refresh replaces the whole collection, there is no incremental diffing.
package listing

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc reads the whole collection for a filter
type FetchFunc[T, F any] func(ctx context.Context, filter F) ([]T, error)

// Snapshot is the collection as last fetched successfully
type Snapshot[T, F any] struct {
	Items      []T
	Filter     F
	Generation int64 // incremented on every successful replace
	Loaded     bool  // false until the first successful fetch
}

// Empty reports whether the snapshot has no items, such a snapshot renders as a single empty-state placeholder
func (s Snapshot[T, F]) Empty() bool {
	return len(s.Items) == 0
}

// Synchronizer holds the current snapshot of one remote collection.
// A failed fetch leaves the previous snapshot in place, a stale but consistent view
// is preferred over a cleared one.
type Synchronizer[T, F any] struct {
	name    string
	fetch   FetchFunc[T, F]
	keyFn   func(F) string
	group   singleflight.Group
	mu      sync.RWMutex
	current Snapshot[T, F]
	hooks   []func(Snapshot[T, F])
}

// New makes a synchronizer. name is used in logs, key turns a filter into a coalescing key,
// concurrent refreshes with the same key share one fetch.
func New[T, F any](name string, fetch FetchFunc[T, F], key func(F) string) *Synchronizer[T, F] {
	if key == nil {
		key = func(f F) string { return fmt.Sprintf("%+v", f) }
	}
	return &Synchronizer[T, F]{name: name, fetch: fetch, keyFn: key}
}

// OnReplace registers a hook called after every successful replace, outside the lock
func (s *Synchronizer[T, F]) OnReplace(fn func(Snapshot[T, F])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Refresh fetches the collection and replaces the snapshot wholesale.
// On failure the error is logged and returned together with the untouched previous snapshot.
// The shared fetch is not canceled with the caller's ctx, other callers may be waiting on it.
func (s *Synchronizer[T, F]) Refresh(ctx context.Context, filter F) (Snapshot[T, F], error) {
	fetchCtx := context.WithoutCancel(ctx)
	res, err, _ := s.group.Do(s.keyFn(filter), func() (any, error) {
		items, err := s.fetch(fetchCtx, filter)
		if err != nil {
			return nil, err
		}
		return s.replace(items, filter), nil
	})
	if err != nil {
		log.Printf("[WARN] can't refresh %s, keeping previous list: %v", s.name, err)
		return s.Snapshot(), err
	}
	return res.(Snapshot[T, F]), nil
}

// Reload refreshes with the filter of the last successful fetch
func (s *Synchronizer[T, F]) Reload(ctx context.Context) (Snapshot[T, F], error) {
	return s.Refresh(ctx, s.Snapshot().Filter)
}

// Snapshot returns the current snapshot. Items must not be modified by the caller.
func (s *Synchronizer[T, F]) Snapshot() Snapshot[T, F] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Find returns the first item of the current snapshot matching the predicate
func (s *Synchronizer[T, F]) Find(match func(T) bool) (T, bool) {
	snap := s.Snapshot()
	for _, item := range snap.Items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Patch applies fn to the first item of the current snapshot matching the predicate.
// It is meant for local writes the store already accepted, the generation is kept and hooks
// are not called. Returns false if nothing matched.
func (s *Synchronizer[T, F]) Patch(match func(T) bool, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.current.Items {
		if !match(item) {
			continue
		}
		fresh := make([]T, len(s.current.Items))
		copy(fresh, s.current.Items)
		fn(&fresh[i])
		s.current.Items = fresh
		return true
	}
	return false
}

func (s *Synchronizer[T, F]) replace(items []T, filter F) Snapshot[T, F] {
	fresh := make([]T, len(items))
	copy(fresh, items)

	s.mu.Lock()
	s.current = Snapshot[T, F]{
		Items:      fresh,
		Filter:     filter,
		Generation: s.current.Generation + 1,
		Loaded:     true,
	}
	snap := s.current
	hooks := make([]func(Snapshot[T, F]), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, h := range hooks {
		h(snap)
	}
	log.Printf("[DEBUG] %s refreshed, %d items, generation %d", s.name, len(snap.Items), snap.Generation)
	return snap
}
