package kafka

import (
	"context"
	"log/slog"
	"sort"

	"github.com/couchcryptid/infection-report-service/internal/config"
	"github.com/couchcryptid/infection-report-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces replies to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes replies in a single WriteMessages call. Replies are
// keyed by chat so that one chat's replies stay ordered on one partition.
func (w *Writer) LoadBatch(ctx context.Context, replies []domain.OutboundMessage) error {
	if len(replies) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(replies))
	for i := range replies {
		msgs[i] = toMessage(replies[i])
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// toMessage converts a reply into a Kafka message with headers in key order.
func toMessage(out domain.OutboundMessage) kafkago.Message {
	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafkago.Header{Key: k, Value: []byte(out.Headers[k])}
	}
	return kafkago.Message{
		Key:     out.Key,
		Value:   out.Value,
		Headers: headers,
	}
}
