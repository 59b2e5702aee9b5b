// Package report assembles text reports and trend series from datasets and
// translates the failures users can act on into messages.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/infection-report-service/internal/domain"
)

// Series is one statistic of one place over time, ready to be charted.
type Series struct {
	Location  domain.Location
	Stat      string
	StatLabel string
	Dates     []time.Time
	Values    []float64
}

// Title is the chart title, e.g. "Lazio: Terapia intensiva".
func (s Series) Title() string {
	return s.Location.Title() + ": " + s.StatLabel
}

// NoDataError means there is nothing to report for a place and interval.
type NoDataError struct {
	Location domain.Location
	Interval domain.Interval
	Err      error
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data for %s on %s: %v", e.Location, e.Interval, e.Err)
}

func (e *NoDataError) Unwrap() error { return e.Err }

// Service builds reports and trends from a dataset source.
type Service struct {
	source      domain.DatasetSource
	botUsername string
	logger      *slog.Logger
}

// NewService creates a Service. botUsername is credited in report footers.
func NewService(source domain.DatasetSource, botUsername string, logger *slog.Logger) *Service {
	return &Service{source: source, botUsername: botUsername, logger: logger}
}

// Report returns every statistic of loc on date, one per line, sorted by
// field name.
func (s *Service) Report(ctx context.Context, loc domain.Location, date time.Time) (string, error) {
	day := domain.SingleDay(date)
	ds, err := s.download(ctx, loc, day)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* - %s:\n", loc.Title(), date.Format(domain.DisplayDateLayout))
	for _, stat := range ds.Stats() {
		values, err := ds.GetData(stat, day)
		if err != nil {
			return "", err
		}
		number := "n/a"
		if len(values) > 0 {
			number = domain.ReadableNumber(values[0])
		}
		fmt.Fprintf(&b, "  _%s_: %s\n", domain.StatLabel(stat), number)
	}
	fmt.Fprintf(&b, "\nReport generated by %s", s.botUsername)
	return b.String(), nil
}

// Trend returns the series of stat for loc over interval. A statistic the
// location's table does not publish yields a *domain.StatUnavailableError.
func (s *Service) Trend(ctx context.Context, stat string, loc domain.Location, interval domain.Interval) (Series, error) {
	ds, err := s.download(ctx, loc, interval)
	if err != nil {
		return Series{}, err
	}
	values, err := ds.Values(stat)
	if err != nil {
		return Series{}, err
	}
	if !hasValue(values) {
		return Series{}, &NoDataError{Location: loc, Interval: interval, Err: domain.ErrDataUnavailable}
	}
	return Series{
		Location:  loc,
		Stat:      stat,
		StatLabel: domain.StatLabel(stat),
		Dates:     ds.Dates(),
		Values:    values,
	}, nil
}

func (s *Service) download(ctx context.Context, loc domain.Location, interval domain.Interval) (*domain.Dataset, error) {
	ds, err := s.source.Download(ctx, loc, interval)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &NoDataError{Location: loc, Interval: interval, Err: err}
	}
	if ds.Len() == 0 {
		return nil, &NoDataError{Location: loc, Interval: interval, Err: domain.ErrDataUnavailable}
	}
	s.logger.Debug("dataset ready", "location", loc.Name, "interval", interval.String(), "rows", ds.Len())
	return ds, nil
}

func hasValue(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
