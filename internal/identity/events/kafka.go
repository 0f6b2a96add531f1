package events

import (
	"context"
	"encoding/json"
	"fmt"

	"warden/internal/platform/kafka/producer"
)

// Producer publishes one message and waits for the acknowledgement.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSubscriber forwards events to a topic keyed by user id. A failed
// produce rejects the event.
type KafkaSubscriber struct {
	producer Producer
	topic    string
}

func NewKafkaSubscriber(p Producer, topic string) *KafkaSubscriber {
	return &KafkaSubscriber{producer: p, topic: topic}
}

func (s *KafkaSubscriber) Name() string { return "kafka:" + s.topic }

func (s *KafkaSubscriber) Handle(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(e.UserID.String()),
		Value: value,
		Headers: map[string]string{
			"event_name": string(e.Name),
			"event_id":   e.ID,
		},
	})
}
