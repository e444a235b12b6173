// Package events ships consultation lifecycle events to Kafka.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

const (
	defaultWriteTimeout = 5 * time.Second
	// The writer otherwise waits up to a second to fill a batch on every write.
	defaultBatchTimeout = 10 * time.Millisecond
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: defaultBatchTimeout,
		WriteTimeout: defaultWriteTimeout,
	})
	return &KafkaPublisher{writer: w, timeout: defaultWriteTimeout}, nil
}

// Publish writes one message keyed by key, so all events for a consultation
// land on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
