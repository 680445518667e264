// Package messaging publishes domain events: to Kafka in production, to
// the log when no broker is configured.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer is the part of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes JSON-encoded events to one topic.
type KafkaProducer struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaProducer writes to topic on the comma-separated brokers.
func NewKafkaProducer(brokers, topic string, logger *zap.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(splitBrokers(brokers)...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same key, same partition
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}
	return NewKafkaProducerWithWriter(w, logger)
}

// NewKafkaProducerWithWriter injects the writer; tests pass a fake.
func NewKafkaProducerWithWriter(w Writer, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish marshals value to JSON and writes it under key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{Key: []byte(key), Value: b, Time: time.Now()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("kafka write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("kafka write: %w", err)
	}
	p.logger.Debug("event published", zap.String("key", key), zap.Int("bytes", len(b)))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
