package finder

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory finder for tests and fixtures.
type Memory struct {
	roots map[string]map[string][]byte
	mu    sync.RWMutex
}

// NewMemory creates an empty in-memory finder.
func NewMemory() *Memory {
	return &Memory{
		roots: make(map[string]map[string][]byte),
	}
}

// Add stores template content under a root, creating the root if
// needed.
func (f *Memory) Add(root, name string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.roots[root] == nil {
		f.roots[root] = make(map[string][]byte)
	}
	f.roots[root][name] = content
}

// Remove deletes a template from a root if present.
func (f *Memory) Remove(root, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.roots[root], name)
}

func (f *Memory) Exists(ctx context.Context, root, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.roots[root][name]
	return ok, nil
}

func (f *Memory) Read(ctx context.Context, root, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, ok := f.roots[root][name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrNotFound, name, root)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
