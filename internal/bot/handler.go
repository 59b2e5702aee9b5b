// Package bot answers chat requests: it parses the text, runs the report or
// trend, and turns every failure a user can act on into a reply.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/infection-report-service/internal/domain"
	"github.com/couchcryptid/infection-report-service/internal/observability"
	"github.com/couchcryptid/infection-report-service/internal/parse"
	"github.com/couchcryptid/infection-report-service/internal/report"
)

// Kind selects what a request asks for.
type Kind string

const (
	KindReport Kind = "report"
	KindTrend  Kind = "trend"
)

// GenericFailure answers requests that failed because of a bug or an
// unexpected error.
const GenericFailure = "Something went wrong while answering your request. Please try again later."

// Request is one chat message to answer.
type Request struct {
	ID   string
	Kind Kind
	Text string
}

// Reply is the answer to a Request. Image holds a PNG chart for trends.
// Failed is set when Text explains why the request could not be answered.
type Reply struct {
	RequestID string
	Kind      Kind
	Text      string
	Image     []byte
	Failed    bool
}

// Reporter produces report text and trend series.
type Reporter interface {
	Report(ctx context.Context, loc domain.Location, date time.Time) (string, error)
	Trend(ctx context.Context, stat string, loc domain.Location, interval domain.Interval) (report.Series, error)
}

// ChartRenderer draws a trend series.
type ChartRenderer interface {
	Render(s report.Series) ([]byte, error)
}

// Handler answers requests. It is safe for concurrent use.
type Handler struct {
	requests *parse.Requests
	reports  Reporter
	charts   ChartRenderer
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(requests *parse.Requests, reports Reporter, charts ChartRenderer, metrics *observability.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		requests: requests,
		reports:  reports,
		charts:   charts,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle answers req. The reply is always usable; the error is non-nil only
// for failures that are not the user's doing, in which case the reply carries
// GenericFailure.
func (h *Handler) Handle(ctx context.Context, req Request) (Reply, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	reply := Reply{RequestID: req.ID, Kind: req.Kind}
	logger := h.logger.With("request_id", req.ID, "kind", string(req.Kind))

	var (
		outcome string
		err     error
	)
	switch req.Kind {
	case KindReport:
		outcome, err = h.report(ctx, req.Text, &reply)
	case KindTrend:
		outcome, err = h.trend(ctx, req.Text, &reply)
	default:
		reply.Failed = true
		reply.Text = fmt.Sprintf("Unknown request kind %q, use %q or %q.", req.Kind, KindReport, KindTrend)
		h.metrics.Requests.WithLabelValues("unknown", observability.OutcomeInvalid).Inc()
		logger.Warn("unknown request kind")
		return reply, nil
	}

	h.metrics.Requests.WithLabelValues(string(req.Kind), outcome).Inc()
	switch outcome {
	case observability.OutcomeOK:
		logger.Info("request answered")
	case observability.OutcomeError:
		reply.Failed = true
		reply.Text = GenericFailure
		logger.Error("request failed", "text", req.Text, "error", err)
	default:
		logger.Warn("request rejected", "text", req.Text, "outcome", outcome)
	}
	return reply, err
}

func (h *Handler) report(ctx context.Context, text string, reply *Reply) (string, error) {
	p := h.requests.Report()
	if ok, err := p.Parse(text); err != nil {
		return observability.OutcomeError, err
	} else if !ok {
		reply.Failed = true
		reply.Text = p.Message()
		return observability.OutcomeInvalid, nil
	}
	req, err := p.Result()
	if err != nil {
		return observability.OutcomeError, err
	}

	out, err := h.reports.Report(ctx, req.Location, req.Date)
	if err != nil {
		return recovered(err, reply)
	}
	reply.Text = out
	return observability.OutcomeOK, nil
}

func (h *Handler) trend(ctx context.Context, text string, reply *Reply) (string, error) {
	p := h.requests.Trend()
	if ok, err := p.Parse(text); err != nil {
		return observability.OutcomeError, err
	} else if !ok {
		reply.Failed = true
		reply.Text = p.Message()
		return observability.OutcomeInvalid, nil
	}
	req, err := p.Result()
	if err != nil {
		return observability.OutcomeError, err
	}

	series, err := h.reports.Trend(ctx, req.Stat, req.Location, req.Interval)
	if err != nil {
		return recovered(err, reply)
	}

	start := time.Now()
	img, err := h.charts.Render(series)
	h.metrics.ChartRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return observability.OutcomeError, fmt.Errorf("render chart: %w", err)
	}
	reply.Text = series.Title()
	reply.Image = img
	return observability.OutcomeOK, nil
}

// recovered fills reply for failures the user can act on and passes every
// other error through.
func recovered(err error, reply *Reply) (string, error) {
	msg, ok := report.Message(err)
	if !ok {
		return observability.OutcomeError, err
	}
	reply.Failed = true
	reply.Text = msg

	var unavailable *domain.StatUnavailableError
	if errors.As(err, &unavailable) {
		return observability.OutcomeUnknownStat, nil
	}
	return observability.OutcomeUnavailable, nil
}
