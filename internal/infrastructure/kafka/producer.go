package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/segmentio/kafka-go"
)

// EventTypeHeader carries the envelope's event type so consumers can filter
// without decoding the body.
const EventTypeHeader = "event_type"

// messageWriter is the subset of *kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes event envelopes to one topic. Messages are keyed by
// aggregate id, so every event of one order lands on the same partition.
type Producer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, topic, logger)
}

func newProducer(writer messageWriter, topic string, logger *slog.Logger) *Producer {
	return &Producer{
		writer: writer,
		topic:  topic,
		logger: logger.With(slog.String("component", "kafka-producer"), slog.String("topic", topic)),
	}
}

// PublishEvent writes event under its aggregate id
func (p *Producer) PublishEvent(ctx context.Context, event *store.Event) error {
	if event == nil {
		return errors.New("publish: nil event")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.EventType, err)
	}

	msg := kafka.Message{
		Key:     []byte(event.AggregateID),
		Value:   data,
		Time:    event.Timestamp,
		Headers: []kafka.Header{{Key: EventTypeHeader, Value: []byte(event.EventType)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event to %s: %w", event.EventType, p.topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
