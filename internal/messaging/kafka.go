package messaging

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events to a topic, keyed by subject so one patient's
// events stay on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher configures a writer; connections are opened lazily.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}}
}

// Name identifies the broker in logs and metrics.
func (p *KafkaPublisher) Name() string { return "kafka" }

// Publish writes one message.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, body []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: body})
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
