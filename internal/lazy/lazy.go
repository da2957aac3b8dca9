// Package lazy holds a value that is resolved on first use and can be
// invalidated explicitly.
package lazy

import (
	"context"
	"sync"
)

// Cell caches the result of a one-shot initializer. A failed initialization
// is not cached, so the next Get runs the initializer again. Reset clears the
// cached value without re-running the initializer.
type Cell[T any] struct {
	mu    sync.Mutex
	init  func(context.Context) (T, error)
	value T
	set   bool
}

// New returns a Cell that resolves its value with init.
func New[T any](init func(context.Context) (T, error)) *Cell[T] {
	return &Cell[T]{init: init}
}

// Get returns the cached value, running the initializer if the cell is empty.
// Concurrent callers share a single initializer run.
func (c *Cell[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set {
		return c.value, nil
	}
	v, err := c.init(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = v
	c.set = true
	return v, nil
}

// Set stores v as the resolved value.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.set = true
	c.mu.Unlock()
}

// Reset empties the cell.
func (c *Cell[T]) Reset() {
	c.mu.Lock()
	var zero T
	c.value = zero
	c.set = false
	c.mu.Unlock()
}
