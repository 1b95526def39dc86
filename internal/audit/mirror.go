package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Mirror asynchronously copies records to a secondary sink after the primary
// append has succeeded. Ordering and failure semantics belong to the primary;
// a mirror that falls behind drops records rather than slowing requests down.
type Mirror struct {
	secondary Store
	records   chan Record
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// NewMirror starts the mirror worker with the given buffer size.
func NewMirror(secondary Store, bufferSize int, logger *slog.Logger) *Mirror {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	m := &Mirror{
		secondary: secondary,
		records:   make(chan Record, bufferSize),
		logger:    logger,
	}
	m.wg.Add(1)
	go m.drain()
	return m
}

func (m *Mirror) drain() {
	defer m.wg.Done()
	for record := range m.records {
		if err := m.secondary.Append(context.Background(), record); err != nil {
			m.logger.Error("audit mirror append failed",
				"action", record.Action,
				"actor", record.ActorUsername,
				"error", err,
			)
		}
	}
}

// Enqueue hands a record to the mirror without blocking. A full buffer drops
// the record with a warning; the primary copy is already durable.
func (m *Mirror) Enqueue(record Record) {
	select {
	case m.records <- record:
	default:
		m.logger.Warn("audit mirror buffer full, record dropped",
			"action", record.Action,
			"actor", record.ActorUsername,
		)
	}
}

// Close stops accepting records and waits for the buffer to drain.
func (m *Mirror) Close() {
	close(m.records)
	m.wg.Wait()
}

// MirroredStore appends to the primary sink and, on success, enqueues the
// record on the mirror.
type MirroredStore struct {
	primary Store
	mirror  *Mirror
}

func NewMirroredStore(primary Store, mirror *Mirror) *MirroredStore {
	return &MirroredStore{primary: primary, mirror: mirror}
}

func (s *MirroredStore) Append(ctx context.Context, record Record) error {
	if err := s.primary.Append(ctx, record); err != nil {
		return err
	}
	s.mirror.Enqueue(record)
	return nil
}
