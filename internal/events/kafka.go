package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the forwarder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder publishes bus events to a Kafka topic, keyed by user id.
type KafkaForwarder struct {
	writer  MessageWriter
	timeout time.Duration
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
}

func NewKafkaForwarder(writer MessageWriter) *KafkaForwarder {
	return &KafkaForwarder{writer: writer, timeout: 5 * time.Second}
}

// Run forwards events until the channel closes or ctx is done.
func (f *KafkaForwarder) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			err := f.forward(ctx, e)
			if err != nil {
				slog.Error("failed to forward event to kafka", "error", err, "type", e.Type)
			}
		}
	}
}

func (f *KafkaForwarder) forward(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	return f.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(e.UserID),
		Value: payload,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
}

func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}
