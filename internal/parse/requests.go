package parse

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/infection-report-service/internal/domain"
)

const (
	reportUsage = "Send a place and optionally a date, separated by a comma, " +
		"as in 'lazio, yesterday'.\n\nSee /help for more information."
	trendUsage = "Send a statistic, optionally followed by a place and an interval, separated by commas, " +
		"as in 'totale casi, lombardia, 1 march 2020 - today'.\n\nSee /help for more information."
	intervalUsage = "Write the interval as two dates separated by a hyphen, as in '1 march 2020 - today'."
)

// ReportRequest asks for every statistic of a place on one day.
type ReportRequest struct {
	Location domain.Location
	Date     time.Time
}

// TrendRequest asks for one statistic of a place over an interval.
type TrendRequest struct {
	Stat     string
	Location domain.Location
	Interval domain.Interval
}

// Requests builds parsers bound to one reference registry and date resolver.
// It holds no per-request state and is safe to share.
type Requests struct {
	ref   *domain.Reference
	dates DateResolver
}

// NewRequests returns a parser factory.
func NewRequests(ref *domain.Reference, dates DateResolver) *Requests {
	return &Requests{ref: ref, dates: dates}
}

// Date parses a single date phrase.
func (r *Requests) Date() *Parser[time.Time] {
	return New[time.Time]("date", dateConverter{resolver: r.dates})
}

// Location parses a place name.
func (r *Requests) Location() *Parser[domain.Location] {
	return New[domain.Location]("location", locationConverter{ref: r.ref})
}

// Stat parses a statistic name into its dataset field.
func (r *Requests) Stat() *Parser[string] {
	return New[string]("stat", statConverter{ref: r.ref})
}

// Interval parses "<date> - <date>".
func (r *Requests) Interval() *Parser[domain.Interval] {
	return New[domain.Interval]("interval", NewComposed[domain.Interval](
		[]FieldParser{r.dateField, r.dateField},
		splitInterval,
		reduceInterval,
		intervalUsage,
	))
}

// Report parses "<location>[, <date>]".
func (r *Requests) Report() *Parser[ReportRequest] {
	return New[ReportRequest]("report", NewComposed[ReportRequest](
		[]FieldParser{r.locationField, r.dateField},
		splitReport,
		reduceReport,
		reportUsage,
	))
}

// Trend parses "<stat>[, <location>][, <interval>]".
func (r *Requests) Trend() *Parser[TrendRequest] {
	return New[TrendRequest]("trend", NewComposed[TrendRequest](
		[]FieldParser{r.statField, r.locationField, r.intervalField},
		trendSplitter(r.ref.Country(), r.ref.EpidemicStart()),
		reduceTrend,
		trendUsage,
	))
}

func (r *Requests) dateField() SubParser     { return r.Date() }
func (r *Requests) locationField() SubParser { return r.Location() }
func (r *Requests) statField() SubParser     { return r.Stat() }
func (r *Requests) intervalField() SubParser { return r.Interval() }

func reduceInterval(values []any) (domain.Interval, error) {
	start, err := field[time.Time](values, 0)
	if err != nil {
		return domain.Interval{}, err
	}
	end, err := field[time.Time](values, 1)
	if err != nil {
		return domain.Interval{}, err
	}
	iv, err := domain.NewInterval(start, end)
	if errors.Is(err, domain.ErrReversedInterval) {
		return domain.Interval{}, &ConversionError{
			Kind: KindReduce,
			Message: fmt.Sprintf("The interval ends on %s, before it starts on %s. Put the earlier date first.",
				end.Format(domain.DisplayDateLayout), start.Format(domain.DisplayDateLayout)),
			Err: err,
		}
	}
	return iv, err
}

func reduceReport(values []any) (ReportRequest, error) {
	loc, err := field[domain.Location](values, 0)
	if err != nil {
		return ReportRequest{}, err
	}
	date, err := field[time.Time](values, 1)
	if err != nil {
		return ReportRequest{}, err
	}
	return ReportRequest{Location: loc, Date: date}, nil
}

func reduceTrend(values []any) (TrendRequest, error) {
	stat, err := field[string](values, 0)
	if err != nil {
		return TrendRequest{}, err
	}
	loc, err := field[domain.Location](values, 1)
	if err != nil {
		return TrendRequest{}, err
	}
	iv, err := field[domain.Interval](values, 2)
	if err != nil {
		return TrendRequest{}, err
	}
	return TrendRequest{Stat: stat, Location: loc, Interval: iv}, nil
}
