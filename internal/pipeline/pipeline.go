package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/infection-report-service/internal/domain"
	"github.com/couchcryptid/infection-report-service/internal/observability"
)

// BatchExtractor reads up to batchSize chat requests from the bus.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Responder answers one chat request.
type Responder interface {
	Respond(ctx context.Context, raw domain.RawMessage) (domain.OutboundMessage, error)
}

// BatchLoader writes replies to the bus.
type BatchLoader interface {
	LoadBatch(ctx context.Context, replies []domain.OutboundMessage) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline bridges the message bus to the bot: extract requests, answer
// them, load the replies, commit.
type Pipeline struct {
	extractor BatchExtractor
	responder Responder
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, r Responder, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		responder: r,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once the bus has been read successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not reached the message bus yet")
	}
	return nil
}

// Run answers requests until the context is cancelled. Bus failures are
// retried with exponential backoff; Run itself only returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := backoff{next: initialBackoff}
	for ctx.Err() == nil {
		if err := p.processBatch(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("batch failed, backing off", "error", err, "backoff", retry.next)
			if !retry.wait(ctx) {
				break
			}
			continue
		}
		retry.reset()
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// processBatch runs one extract-respond-load-commit cycle. An error means
// the bus is failing and nothing was committed.
func (p *Pipeline) processBatch(ctx context.Context) error {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.ready.Store(false)
		}
		return err
	}
	p.ready.Store(true)
	if len(batch) == 0 {
		return nil
	}
	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	replies, answered := p.respondAll(ctx, batch)
	if len(replies) > 0 {
		if err := p.loader.LoadBatch(ctx, replies); err != nil {
			return err
		}
		p.metrics.MessagesProduced.Add(float64(len(replies)))
	}

	for _, raw := range answered {
		p.commit(ctx, raw)
	}
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return nil
}

// respondAll answers every request in batch. Messages that could not be
// answered at all are committed straight away; the rest are returned to be
// committed once their replies are loaded.
func (p *Pipeline) respondAll(ctx context.Context, batch []domain.RawMessage) ([]domain.OutboundMessage, []domain.RawMessage) {
	replies := make([]domain.OutboundMessage, 0, len(batch))
	answered := make([]domain.RawMessage, 0, len(batch))

	for _, raw := range batch {
		out, err := p.respond(ctx, raw)
		if err != nil {
			p.logger.Warn("request could not be answered, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.commit(ctx, raw)
			continue
		}
		replies = append(replies, out)
		answered = append(answered, raw)
	}
	return replies, answered
}

// respond answers raw. A payload that is not a chat request still gets a
// failed reply when the message key says which chat sent it.
func (p *Pipeline) respond(ctx context.Context, raw domain.RawMessage) (domain.OutboundMessage, error) {
	out, err := p.responder.Respond(ctx, raw)
	if err == nil {
		return out, nil
	}
	p.metrics.HandleErrors.Inc()

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.ChatID == "" {
		return domain.OutboundMessage{}, err
	}
	p.logger.Warn("undecodable chat request, replying with a rejection",
		"chat_id", decodeErr.ChatID,
		"offset", raw.Offset,
		"error", decodeErr.Err,
	)
	return rejection(decodeErr)
}

// commit commits the message offset if a commit function is available.
func (p *Pipeline) commit(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoff doubles the wait after every failure, up to maxBackoff.
type backoff struct {
	next time.Duration
}

func (b *backoff) reset() { b.next = initialBackoff }

// wait sleeps for the current delay and returns false if ctx ended first.
func (b *backoff) wait(ctx context.Context) bool {
	timer := time.NewTimer(b.next)
	defer timer.Stop()

	b.next = min(b.next*2, maxBackoff)
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
