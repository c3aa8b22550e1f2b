// Package registry provides an explicit, tag-queryable registry of named
// values. Components are registered at initialization and discovered at
// runtime by name or by tag set, with no reflection or import side
// effects involved.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrEmptyName = errors.New("registry: empty name")
	ErrDuplicate = errors.New("registry: name already registered")
)

// Registry stores values of one concrete type by stable name. Each entry
// optionally carries tags for Find queries. A Registry is safe for
// concurrent use.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
}

type entry[T any] struct {
	value T
	tags  map[string]struct{}
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]entry[T])}
}

// Register adds value under name with the given tags. It fails with
// ErrEmptyName or ErrDuplicate; the error wraps the sentinel and names
// the offender.
func (r *Registry[T]) Register(name string, value T, tags ...string) error {
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}

	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}
	r.entries[name] = entry[T]{value: value, tags: tagSet}
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *Registry[T]) MustRegister(name string, value T, tags ...string) {
	if err := r.Register(name, value, tags...); err != nil {
		panic(err)
	}
}

// Get returns the value registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e.value, ok
}

// Deregister removes name and reports whether it was present.
func (r *Registry[T]) Deregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Find returns the values whose tag set contains every query tag,
// ordered by name. An empty query matches every entry.
func (r *Registry[T]) Find(tags ...string) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name, e := range r.entries {
		if hasAll(e.tags, tags) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]T, 0, len(names))
	for _, name := range names {
		out = append(out, r.entries[name].value)
	}
	return out
}

func hasAll(set map[string]struct{}, tags []string) bool {
	for _, t := range tags {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
