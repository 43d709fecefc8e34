package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("order-1", "Order", "OrderIntentRecorded", map[string]any{"total": 42})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "order-1", event.AggregateID)
	assert.Equal(t, "Order", event.AggregateType)
	assert.Equal(t, "OrderIntentRecorded", event.EventType)
	assert.JSONEq(t, `{"total":42}`, string(event.Data))
	assert.False(t, event.Timestamp.IsZero())

	encoded, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.JSONEq(t, string(event.Data), string(decoded.Data))
}

func TestNewEvent_Unmarshalable(t *testing.T) {
	_, err := NewEvent("order-1", "Order", "OrderIntentRecorded", make(chan int))
	assert.Error(t, err)
}
