package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hackgods/carehub/internal/consultation"
)

var _ consultation.Publisher = (*KafkaPublisher)(nil)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewKafkaPublisherRequiresConfig(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "consultations"); !errors.Is(err, ErrNoBrokers) {
		t.Errorf("no brokers error = %v, want ErrNoBrokers", err)
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Error("empty topic accepted")
	}
}

func TestPublishWritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, timeout: time.Second}

	if err := p.Publish(context.Background(), "c-1", []byte(`{"type":"CONSULTATION_REQUESTED"}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "c-1" {
		t.Errorf("key = %q, want c-1", w.msgs[0].Key)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := &KafkaPublisher{writer: &fakeWriter{err: boom}, timeout: time.Second}

	if err := p.Publish(context.Background(), "c-1", nil); !errors.Is(err, boom) {
		t.Errorf("Publish() error = %v, want wrapped %v", err, boom)
	}
}

func TestNewKafkaPublisherUsesShortBatchTimeout(t *testing.T) {
	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "consultations")
	if err != nil {
		t.Fatalf("NewKafkaPublisher() error = %v", err)
	}
	defer p.Close()

	w, ok := p.writer.(*kafka.Writer)
	if !ok {
		t.Fatalf("writer = %T, want *kafka.Writer", p.writer)
	}
	if w.BatchTimeout != defaultBatchTimeout {
		t.Errorf("BatchTimeout = %v, want %v", w.BatchTimeout, defaultBatchTimeout)
	}
	if w.WriteTimeout != defaultWriteTimeout {
		t.Errorf("WriteTimeout = %v, want %v", w.WriteTimeout, defaultWriteTimeout)
	}
}
