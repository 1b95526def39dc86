package catalog

import (
	"context"
	"sync"
)

// InMemoryLister is a schema lister backed by a plain map, used in tests and
// the demo environment.
type InMemoryLister struct {
	mu      sync.RWMutex
	schemas map[string]struct{}
	err     error
}

// NewInMemoryLister creates a lister seeded with the given schema names.
func NewInMemoryLister(schemas ...string) *InMemoryLister {
	set := make(map[string]struct{}, len(schemas))
	for _, s := range schemas {
		set[s] = struct{}{}
	}
	return &InMemoryLister{schemas: set}
}

// FailWith makes every call return err, simulating a backing-store outage.
func (l *InMemoryLister) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

// ListSchemas returns the seeded schema names.
func (l *InMemoryLister) ListSchemas(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.err != nil {
		return nil, l.err
	}
	out := make([]string, 0, len(l.schemas))
	for s := range l.schemas {
		out = append(out, s)
	}
	return out, nil
}

// SchemaExists reports whether the schema was seeded.
func (l *InMemoryLister) SchemaExists(_ context.Context, schemaName string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.err != nil {
		return false, l.err
	}
	_, ok := l.schemas[schemaName]
	return ok, nil
}
