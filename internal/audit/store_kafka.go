package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"farmgate/internal/platform/kafka/producer"
)

// KafkaStore publishes audit records to a Kafka topic. Records for the
// same tenant share a partition key so per-tenant ordering holds.
type KafkaStore struct {
	producer *producer.Producer
	topic    string
}

func NewKafkaStore(p *producer.Producer, topic string) *KafkaStore {
	return &KafkaStore{producer: p, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, record Record) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}

	key := []byte(record.TenantID)
	if len(key) == 0 {
		key = []byte(record.ActorUsername)
	}

	if err := s.producer.Produce(ctx, s.topic, key, value); err != nil {
		return fmt.Errorf("publishing audit record: %w", err)
	}
	return nil
}
