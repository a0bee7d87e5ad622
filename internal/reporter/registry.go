package reporter

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/seqgap/internal/core"
)

// Factory creates an uninitialized reporter.
type Factory func() Reporter

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a reporter type available by name.
func Register(name string, f Factory) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		return fmt.Errorf("reporter %q already registered", name)
	}
	factories[name] = f
	return nil
}

// New creates and initializes a registered reporter.
func New(name string, options map[string]any) (Reporter, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrReporterNotFound, name)
	}

	r := f()
	if err := r.Init(options); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrReporterInitFailed, name, err)
	}
	return r, nil
}

// Names lists the registered reporter types.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
