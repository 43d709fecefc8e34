package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/essia-shop/internal/infrastructure/store"
	"github.com/example/essia-shop/internal/logging"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func orderEvent(t *testing.T) *store.Event {
	t.Helper()
	event, err := store.NewEvent("order-1", "Order", "OrderIntentRecorded", map[string]string{"order_id": "order-1"})
	require.NoError(t, err)
	return event
}

func TestProducer_PublishEvent(t *testing.T) {
	writer := &recordingWriter{}
	producer := newProducer(writer, "essia.orders", logging.Discard())
	event := orderEvent(t)

	err := producer.PublishEvent(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "order-1", string(msg.Key))
	assert.Equal(t, event.Timestamp, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventTypeHeader, msg.Headers[0].Key)
	assert.Equal(t, "OrderIntentRecorded", string(msg.Headers[0].Value))

	var decoded store.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.JSONEq(t, `{"order_id":"order-1"}`, string(decoded.Data))
}

func TestProducer_PublishEvent_Errors(t *testing.T) {
	t.Run("nil event", func(t *testing.T) {
		writer := &recordingWriter{}
		producer := newProducer(writer, "essia.orders", logging.Discard())

		assert.Error(t, producer.PublishEvent(context.Background(), nil))
		assert.Empty(t, writer.messages)
	})

	t.Run("write failure names the topic", func(t *testing.T) {
		writer := &recordingWriter{err: errors.New("broker down")}
		producer := newProducer(writer, "essia.orders", logging.Discard())

		err := producer.PublishEvent(context.Background(), orderEvent(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "essia.orders")
		assert.Contains(t, err.Error(), "broker down")
	})
}

func TestProducer_Close(t *testing.T) {
	writer := &recordingWriter{}
	producer := newProducer(writer, "essia.orders", logging.Discard())

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}
