// Package dpc downloads the infection tables published by the Italian Civil
// Protection Department (pcm-dpc/COVID-19) and turns them into datasets.
package dpc

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/infection-report-service/internal/domain"
	"github.com/couchcryptid/infection-report-service/internal/observability"
)

// table describes where a tier's data lives and how rows name their place.
type table struct {
	path        string
	placeColumn string
}

var tables = map[domain.Tier]table{
	domain.TierCountry:  {path: "dati-andamento-nazionale/dpc-covid19-ita-andamento-nazionale"},
	domain.TierRegion:   {path: "dati-regioni/dpc-covid19-ita-regioni", placeColumn: "denominazione_regione"},
	domain.TierProvince: {path: "dati-province/dpc-covid19-ita-province", placeColumn: "denominazione_provincia"},
}

var dateLayouts = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// Client implements domain.DatasetSource over the published CSV files.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ref        *domain.Reference
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a dataset client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, ref *domain.Reference, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		ref:     ref,
		metrics: metrics,
		logger:  logger,
	}
}

// SourceURL returns the CSV address for a tier. Single-day intervals target
// that day's snapshot, anything longer the full history.
func SourceURL(baseURL string, tier domain.Tier, interval domain.Interval) (string, error) {
	t, ok := tables[tier]
	if !ok {
		return "", fmt.Errorf("no table for tier %s", tier)
	}
	u := baseURL + "/" + t.path
	if interval.IsSingleDay() {
		u += "-" + interval.Start.Format("20060102")
	}
	return u + ".csv", nil
}

// Download fetches the table for loc's tier and keeps the rows of loc that
// fall inside interval.
func (c *Client) Download(ctx context.Context, loc domain.Location, interval domain.Interval) (*domain.Dataset, error) {
	u, err := SourceURL(c.baseURL, loc.Tier, interval)
	if err != nil {
		return nil, err
	}
	tier := loc.Tier.String()

	c.logger.Debug("downloading dataset", "location", loc.Name, "tier", tier, "url", u)
	start := time.Now()
	ds, err := c.fetch(ctx, u, loc, interval)
	c.metrics.DownloadDuration.WithLabelValues(tier).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrDataUnavailable):
		c.metrics.Downloads.WithLabelValues(tier, "not_found").Inc()
		c.logger.Info("dataset not published", "location", loc.Name, "tier", tier, "url", u)
		return nil, err
	case err != nil:
		c.metrics.Downloads.WithLabelValues(tier, "error").Inc()
		c.logger.Error("dataset download failed", "location", loc.Name, "tier", tier, "url", u, "error", err)
		return nil, err
	}

	c.metrics.Downloads.WithLabelValues(tier, "success").Inc()
	c.logger.Debug("dataset downloaded", "location", loc.Name, "rows", ds.Len(), "stats", len(ds.Stats()))
	return ds, nil
}

func (c *Client) fetch(ctx context.Context, u string, loc domain.Location, interval domain.Interval) (*domain.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrDataUnavailable, u)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset source error: status %d: %s", resp.StatusCode, body)
	}

	return decode(resp.Body, tables[loc.Tier].placeColumn, loc, interval, c.ref)
}

// decode reads a DPC table, keeping rows of loc inside interval and the
// columns that are known statistics.
func decode(r io.Reader, placeColumn string, loc domain.Location, interval domain.Interval, ref *domain.Reference) (*domain.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, placeIdx := -1, -1
	statIdx := make(map[string]int)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case name == domain.DateField:
			dateIdx = i
		case placeColumn != "" && name == placeColumn:
			placeIdx = i
		case ref.IsStat(name):
			statIdx[name] = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("missing %q column", domain.DateField)
	}
	if placeColumn != "" && placeIdx < 0 {
		return nil, fmt.Errorf("missing %q column", placeColumn)
	}

	dates := make([]time.Time, 0)
	series := make(map[string][]float64, len(statIdx))
	for name := range statIdx {
		series[name] = make([]float64, 0)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		if placeIdx >= 0 && (placeIdx >= len(row) || !strings.EqualFold(strings.TrimSpace(row[placeIdx]), loc.Name)) {
			continue
		}
		if dateIdx >= len(row) {
			continue
		}
		date, err := parseDate(row[dateIdx])
		if err != nil {
			return nil, err
		}
		if !interval.Contains(date) {
			continue
		}

		dates = append(dates, date)
		for name, idx := range statIdx {
			series[name] = append(series[name], parseValue(row, idx))
		}
	}

	return domain.NewDataset(loc, interval, dates, series)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable %s %q", domain.DateField, s)
}

// parseValue returns NaN for missing or non-numeric cells.
func parseValue(row []string, idx int) float64 {
	if idx >= len(row) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
