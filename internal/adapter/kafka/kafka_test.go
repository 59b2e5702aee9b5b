package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/infection-report-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMapMessageToRawMessage(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("chat-1"),
		Value:     []byte(`{"id":"req-1","kind":"report","text":"lazio"}`),
		Topic:     "chat-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("telegram")},
		},
	}

	raw := mapMessageToRawMessage(msg)

	assert.Equal(t, []byte("chat-1"), raw.Key)
	assert.JSONEq(t, `{"id":"req-1","kind":"report","text":"lazio"}`, string(raw.Value))
	assert.Equal(t, "chat-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "telegram", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestToMessage(t *testing.T) {
	out := domain.OutboundMessage{
		Key:   []byte("chat-1"),
		Value: []byte(`{"text":"ok"}`),
		Headers: map[string]string{
			"request_id": "req-1",
			"failed":     "false",
			"kind":       "report",
		},
	}

	msg := toMessage(out)

	assert.Equal(t, []byte("chat-1"), msg.Key)
	assert.Equal(t, out.Value, msg.Value)
	assert.Equal(t, []kafkago.Header{
		{Key: "failed", Value: []byte("false")},
		{Key: "kind", Value: []byte("report")},
		{Key: "request_id", Value: []byte("req-1")},
	}, msg.Headers)
}
