package bot_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/infection-report-service/internal/bot"
	"github.com/couchcryptid/infection-report-service/internal/domain"
	"github.com/couchcryptid/infection-report-service/internal/observability"
	"github.com/couchcryptid/infection-report-service/internal/parse"
	"github.com/couchcryptid/infection-report-service/internal/report"
)

// --- mocks ---

var today = time.Date(2020, time.July, 18, 10, 0, 0, 0, time.UTC)

type fakeDates struct{}

func (fakeDates) Resolve(text string) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "today":
		return today, nil
	case "24 february 2020":
		return time.Date(2020, time.February, 24, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, errors.New("unknown date")
}

type fakeReporter struct {
	text      string
	series    report.Series
	err       error
	reports   int
	trends    int
	lastLoc   domain.Location
	lastStat  string
	lastRange domain.Interval
}

func (f *fakeReporter) Report(_ context.Context, loc domain.Location, _ time.Time) (string, error) {
	f.reports++
	f.lastLoc = loc
	return f.text, f.err
}

func (f *fakeReporter) Trend(_ context.Context, stat string, loc domain.Location, iv domain.Interval) (report.Series, error) {
	f.trends++
	f.lastStat, f.lastLoc, f.lastRange = stat, loc, iv
	return f.series, f.err
}

type fakeCharts struct {
	err   error
	calls int
}

func (f *fakeCharts) Render(report.Series) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

func newHandler(t *testing.T, reports *fakeReporter, charts *fakeCharts) *bot.Handler {
	t.Helper()
	ref, err := domain.DefaultReference()
	require.NoError(t, err)
	return bot.NewHandler(
		parse.NewRequests(ref, fakeDates{}),
		reports,
		charts,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

// --- tests ---

func TestHandler_Report(t *testing.T) {
	reports := &fakeReporter{text: "*Lazio* - 18/07/2020:\n"}
	h := newHandler(t, reports, &fakeCharts{})

	reply, err := h.Handle(context.Background(), bot.Request{ID: "req-1", Kind: bot.KindReport, Text: "lazio, today"})
	require.NoError(t, err)
	assert.Equal(t, bot.Reply{RequestID: "req-1", Kind: bot.KindReport, Text: reports.text}, reply)
	assert.Equal(t, domain.NewLocation("lazio", domain.TierRegion), reports.lastLoc)
}

func TestHandler_Report_InvalidPlace(t *testing.T) {
	reports := &fakeReporter{}
	h := newHandler(t, reports, &fakeCharts{})

	reply, err := h.Handle(context.Background(), bot.Request{Kind: bot.KindReport, Text: "atlantis"})
	require.NoError(t, err)
	assert.True(t, reply.Failed)
	assert.Contains(t, reply.Text, "'atlantis' as a valid place")
	assert.Zero(t, reports.reports)
}

func TestHandler_Report_NoData(t *testing.T) {
	loc := domain.NewLocation("lazio", domain.TierRegion)
	reports := &fakeReporter{err: &report.NoDataError{Location: loc, Interval: domain.SingleDay(today), Err: domain.ErrDataUnavailable}}
	h := newHandler(t, reports, &fakeCharts{})

	reply, err := h.Handle(context.Background(), bot.Request{Kind: bot.KindReport, Text: "lazio"})
	require.NoError(t, err)
	assert.True(t, reply.Failed)
	assert.Contains(t, reply.Text, "no data for 'Lazio'")
}

func TestHandler_Report_UnexpectedError(t *testing.T) {
	boom := errors.New("boom")
	h := newHandler(t, &fakeReporter{err: boom}, &fakeCharts{})

	reply, err := h.Handle(context.Background(), bot.Request{Kind: bot.KindReport, Text: "lazio"})
	assert.ErrorIs(t, err, boom)
	assert.True(t, reply.Failed)
	assert.Equal(t, bot.GenericFailure, reply.Text)
}

func TestHandler_Trend(t *testing.T) {
	series := report.Series{
		Location:  domain.NewLocation("sicilia", domain.TierRegion),
		Stat:      "tamponi",
		StatLabel: "Tamponi",
		Dates:     []time.Time{today},
		Values:    []float64{1},
	}
	reports := &fakeReporter{series: series}
	charts := &fakeCharts{}
	h := newHandler(t, reports, charts)

	reply, err := h.Handle(context.Background(), bot.Request{ID: "req-2", Kind: bot.KindTrend, Text: "tamponi, sicilia, 24 february 2020 - today"})
	require.NoError(t, err)
	assert.False(t, reply.Failed)
	assert.Equal(t, "Sicilia: Tamponi", reply.Text)
	assert.Equal(t, []byte("png"), reply.Image)
	assert.Equal(t, 1, charts.calls)
	assert.Equal(t, "tamponi", reports.lastStat)
	assert.True(t, reports.lastRange.Contains(today))
}

func TestHandler_Trend_StatUnavailable(t *testing.T) {
	roma := domain.NewLocation("roma", domain.TierProvince)
	reports := &fakeReporter{err: &domain.StatUnavailableError{Stat: "tamponi", Location: roma, Available: []string{"totale_casi"}}}
	charts := &fakeCharts{}
	h := newHandler(t, reports, charts)

	reply, err := h.Handle(context.Background(), bot.Request{Kind: bot.KindTrend, Text: "tamponi, roma"})
	require.NoError(t, err)
	assert.True(t, reply.Failed)
	assert.Contains(t, reply.Text, "totale casi")
	assert.Zero(t, charts.calls)
}

func TestHandler_Trend_RenderError(t *testing.T) {
	h := newHandler(t, &fakeReporter{}, &fakeCharts{err: errors.New("no font")})

	reply, err := h.Handle(context.Background(), bot.Request{Kind: bot.KindTrend, Text: "tamponi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render chart")
	assert.Equal(t, bot.GenericFailure, reply.Text)
	assert.Nil(t, reply.Image)
}

func TestHandler_Trend_GrammarMismatch(t *testing.T) {
	reports := &fakeReporter{}
	h := newHandler(t, reports, &fakeCharts{})

	reply, err := h.Handle(context.Background(), bot.Request{Kind: bot.KindTrend, Text: "42"})
	require.NoError(t, err)
	assert.True(t, reply.Failed)
	assert.Contains(t, reply.Text, "Send a statistic")
	assert.Zero(t, reports.trends)
}

func TestHandler_UnknownKind(t *testing.T) {
	h := newHandler(t, &fakeReporter{}, &fakeCharts{})

	reply, err := h.Handle(context.Background(), bot.Request{Kind: "forecast", Text: "lazio"})
	require.NoError(t, err)
	assert.True(t, reply.Failed)
	assert.Contains(t, reply.Text, "forecast")
}

func TestHandler_AssignsRequestID(t *testing.T) {
	h := newHandler(t, &fakeReporter{text: "ok"}, &fakeCharts{})

	reply, err := h.Handle(context.Background(), bot.Request{Kind: bot.KindReport, Text: "lazio"})
	require.NoError(t, err)
	_, err = uuid.Parse(reply.RequestID)
	assert.NoError(t, err)
}
