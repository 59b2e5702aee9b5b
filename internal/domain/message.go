package domain

import (
	"context"
	"time"
)

// RawMessage is a chat request read from the message bus, with the metadata
// needed to acknowledge it.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutboundMessage is a serialized reply destined for the sink topic.
type OutboundMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
