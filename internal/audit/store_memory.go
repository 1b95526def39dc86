package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps appended records in order. Test double.
type InMemoryStore struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// FailWith makes every subsequent Append return err.
func (s *InMemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemoryStore) Append(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

// Records returns a copy of everything appended so far, in append order.
func (s *InMemoryStore) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}
