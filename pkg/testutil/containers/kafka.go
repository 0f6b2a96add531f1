//go:build integration

package containers

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kgo"
)

const redpandaImage = "redpandadata/redpanda:v24.2.4"

// KafkaContainer is the broker the event stream subscriber publishes to.
type KafkaContainer struct {
	container *kafka.KafkaContainer
	Brokers   string
}

// NewKafkaContainer starts a Redpanda broker. Topics are created on first produce.
func NewKafkaContainer(t *testing.T) *KafkaContainer {
	t.Helper()
	ctx := context.Background()

	container, err := kafka.Run(ctx, redpandaImage, kafka.WithClusterID("warden"))
	if err != nil {
		t.Fatalf("start kafka: %v", err)
	}
	brokers, err := container.Brokers(ctx)
	if err != nil || len(brokers) == 0 {
		_ = container.Terminate(ctx)
		t.Fatalf("kafka brokers: %v", err)
	}
	return &KafkaContainer{container: container, Brokers: brokers[0]}
}

// Subscribe reads topic from its first offset with a consumer group unique to
// the test. The client is closed when the test ends.
func (k *KafkaContainer) Subscribe(t *testing.T, topic string) *kgo.Client {
	t.Helper()
	client, err := kgo.NewClient(
		kgo.SeedBrokers(k.Brokers),
		kgo.ConsumerGroup("warden-"+t.Name()),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.AllowAutoTopicCreation(),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		t.Fatalf("kafka consumer: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

// RecordWithKey polls until a record keyed key arrives or ctx ends.
func RecordWithKey(ctx context.Context, client *kgo.Client, key []byte) (*kgo.Record, error) {
	for {
		fetches := client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("no record with key %q: %w", key, err)
		}
		if fetches.IsClientClosed() {
			return nil, fmt.Errorf("consumer closed before key %q arrived", key)
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			if r := iter.Next(); bytes.Equal(r.Key, key) {
				return r, nil
			}
		}
	}
}
