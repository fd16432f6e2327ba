package outbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contracts "habitledger/contracts/mq"
)

func TestCompletionEvent(t *testing.T) {
	p := contracts.HabitCompletionToggledPayload{
		HabitID:   "h1",
		UserID:    "u1",
		Date:      "2024-06-15",
		Completed: true,
		TraceID:   "abc",
	}

	event, err := completionEvent(p)
	require.NoError(t, err)
	assert.Equal(t, AggregateCompletion, event.AggregateType)
	assert.Equal(t, "u1:h1:2024-06-15", event.AggregateID)
	assert.Equal(t, contracts.RoutingKeyCompletionToggled, event.RoutingKey)
	assert.Equal(t, StatusPending, event.Status)

	var decoded contracts.HabitCompletionToggledPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, p, decoded)
}

func TestCompletionEventRejectsIncompletePayload(t *testing.T) {
	for _, p := range []contracts.HabitCompletionToggledPayload{
		{UserID: "u1", Date: "2024-06-15"},
		{HabitID: "h1", Date: "2024-06-15"},
		{HabitID: "h1", UserID: "u1"},
	} {
		_, err := completionEvent(p)
		assert.Error(t, err, "%+v", p)
	}
}
