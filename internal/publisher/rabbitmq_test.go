package publisher

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorts_factory/internal/domain"
)

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		event  domain.TaskEvent
		want   string
	}{
		{name: "advanced in slot", prefix: "tasks", event: domain.TaskEvent{Kind: domain.EventAdvanced, Slot: "noon"}, want: "tasks.advanced.noon"},
		{name: "no slot", prefix: "tasks", event: domain.TaskEvent{Kind: domain.EventRepaired}, want: "tasks.repaired.none"},
		{name: "dotted slot", prefix: "tasks", event: domain.TaskEvent{Kind: domain.EventUploaded, Slot: "late.night"}, want: "tasks.uploaded.late_night"},
		{name: "no prefix", event: domain.TaskEvent{Kind: domain.EventAdmitted, Slot: "morning"}, want: "admitted.morning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routingKey(tt.prefix, tt.event))
		})
	}
}

func TestBindingKey(t *testing.T) {
	assert.Equal(t, "tasks.#", bindingKey("tasks"))
	assert.Equal(t, "#", bindingKey(""))
}

func TestBuildPublishing(t *testing.T) {
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)

	msg, err := buildPublishing(domain.TaskEvent{
		Kind:   domain.EventAdvanced,
		TaskID: "task-7",
		Slot:   "noon",
		From:   domain.StatusScripted,
		To:     domain.StatusVoiced,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, domain.EventAdvanced, msg.Type)
	assert.Equal(t, "task-7:voiced", msg.MessageId)
	assert.Equal(t, now, msg.Timestamp)
	assert.Equal(t, amqp.Table{"task_id": "task-7", "to": "voiced", "from": "scripted", "slot": "noon"}, msg.Headers)

	var body EventMessage
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "task-7", body.Event.TaskID)
	assert.True(t, now.Equal(body.Timestamp))
}

func TestBuildPublishing_KeepsEventTimestamp(t *testing.T) {
	stamped := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	msg, err := buildPublishing(domain.TaskEvent{Kind: domain.EventAdmitted, TaskID: "t", To: domain.StatusPending, Timestamp: stamped}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, stamped, msg.Timestamp)
	assert.Equal(t, amqp.Table{"task_id": "t", "to": "pending"}, msg.Headers)
}
