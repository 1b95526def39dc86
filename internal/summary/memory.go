package summary

import (
	"context"
	"fmt"
	"sync"
)

// TenantFixture seeds one tenant's metadata in the in-memory store.
type TenantFixture struct {
	Options        map[OptionKey]string
	Users          int
	PublishedPosts int
	PublishedPages int
	SizeMB         float64
}

// InMemoryStore is a MetadataStore backed by fixtures, used in tests and the
// demo environment.
type InMemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]TenantFixture
	err     error
}

// NewInMemoryStore creates an empty in-memory metadata store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tenants: make(map[string]TenantFixture)}
}

// Seed registers a tenant fixture keyed by schema name.
func (s *InMemoryStore) Seed(schemaName string, fixture TenantFixture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[schemaName] = fixture
}

// FailWith makes every call return err, simulating a store outage.
func (s *InMemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemoryStore) fixture(schemaName string) (TenantFixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return TenantFixture{}, s.err
	}
	f, ok := s.tenants[schemaName]
	if !ok {
		return TenantFixture{}, fmt.Errorf("unknown schema %s", schemaName)
	}
	return f, nil
}

// ReadOptions implements MetadataStore.
func (s *InMemoryStore) ReadOptions(_ context.Context, schemaName string, keys []OptionKey) (map[OptionKey]string, error) {
	f, err := s.fixture(schemaName)
	if err != nil {
		return nil, err
	}
	out := make(map[OptionKey]string, len(keys))
	for _, k := range keys {
		if v, ok := f.Options[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// CountUsers implements MetadataStore.
func (s *InMemoryStore) CountUsers(_ context.Context, schemaName string) (int, error) {
	f, err := s.fixture(schemaName)
	if err != nil {
		return 0, err
	}
	return f.Users, nil
}

// CountPublished implements MetadataStore.
func (s *InMemoryStore) CountPublished(_ context.Context, schemaName, postType string) (int, error) {
	f, err := s.fixture(schemaName)
	if err != nil {
		return 0, err
	}
	switch postType {
	case postTypePost:
		return f.PublishedPosts, nil
	case postTypePage:
		return f.PublishedPages, nil
	}
	return 0, fmt.Errorf("unknown post type %s", postType)
}

// SchemaSizeMB implements MetadataStore.
func (s *InMemoryStore) SchemaSizeMB(_ context.Context, schemaName string) (float64, error) {
	f, err := s.fixture(schemaName)
	if err != nil {
		return 0, err
	}
	return f.SizeMB, nil
}
