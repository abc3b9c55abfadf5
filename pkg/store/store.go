// Package store defines the narrow data I/O interface the rest of the
// engine is built on, plus a small registry so the filesystem
// implementation can be swapped for another backend (e.g. a future cloud
// object store) without touching callers.
package store

import (
	"context"
	"fmt"
	"sync"
)

// Store is the single interface every other component uses to touch disk.
// Paths are virtual: callers pass paths relative to nothing in particular
// other than what the underlying implementation chooses to root at.
type Store interface {
	// ReadJSON decodes the file at path into v. Returns a NotFound *errors.Error
	// (via the errors package) if the file is absent.
	ReadJSON(ctx context.Context, path string, v interface{}) error
	// WriteJSON atomically writes v to path as indented JSON.
	WriteJSON(ctx context.Context, path string, v interface{}) error
	// ReadYAML decodes the file at path into v.
	ReadYAML(ctx context.Context, path string, v interface{}) error
	// WriteYAML atomically writes v to path as YAML.
	WriteYAML(ctx context.Context, path string, v interface{}) error

	// CopyDirectory recursively copies src to dst, creating dst's parents.
	CopyDirectory(ctx context.Context, src, dst string) error
	// RemoveDirectory removes path and everything under it. Idempotent.
	RemoveDirectory(ctx context.Context, path string) error
	// CreateDirectory ensures path (and its parents) exist.
	CreateDirectory(ctx context.Context, path string) error
	// Exists reports whether path exists (file or directory).
	Exists(ctx context.Context, path string) (bool, error)
	// ListDirectories lists the immediate subdirectory names of path.
	ListDirectories(ctx context.Context, path string) ([]string, error)
}

// Factory constructs a Store from a config map, mirroring the teacher's
// backend.Register/backend.Create pattern.
type Factory func(config map[string]string) (Store, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register registers a Store factory under name. Called from the
// implementation package's init().
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// New constructs a Store by name using the registered factory.
func New(name string, config map[string]string) (Store, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: no backend registered with name %q", name)
	}
	return factory(config)
}
