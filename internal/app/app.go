// Package app wires the request handler shared by every entry point.
package app

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/infection-report-service/internal/adapter/chart"
	"github.com/couchcryptid/infection-report-service/internal/adapter/dpc"
	"github.com/couchcryptid/infection-report-service/internal/bot"
	"github.com/couchcryptid/infection-report-service/internal/config"
	"github.com/couchcryptid/infection-report-service/internal/dateparse"
	"github.com/couchcryptid/infection-report-service/internal/domain"
	"github.com/couchcryptid/infection-report-service/internal/observability"
	"github.com/couchcryptid/infection-report-service/internal/parse"
	"github.com/couchcryptid/infection-report-service/internal/report"
)

// LoadReference returns the reference documents from cfg.ReferenceDir, or the
// embedded ones when it is empty.
func LoadReference(cfg *config.Config) (*domain.Reference, error) {
	if cfg.ReferenceDir == "" {
		return domain.DefaultReference()
	}
	ref, err := domain.LoadReferenceDir(cfg.ReferenceDir)
	if err != nil {
		return nil, fmt.Errorf("load reference from %s: %w", cfg.ReferenceDir, err)
	}
	return ref, nil
}

// NewHandler builds the bot handler: request parsers, dataset client, report
// service and chart renderer.
func NewHandler(cfg *config.Config, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) (*bot.Handler, error) {
	ref, err := LoadReference(cfg)
	if err != nil {
		return nil, err
	}

	requests := parse.NewRequests(ref, dateparse.New(cfg.DateLanguages, clock))
	source := dpc.NewClient(cfg.SourceBaseURL, cfg.SourceTimeout, ref, metrics, logger)
	reports := report.NewService(source, cfg.BotUsername, logger)

	logger.Info("request handler ready",
		"country", ref.Country(),
		"regions", len(ref.Regions()),
		"provinces", len(ref.Provinces()),
		"source", cfg.SourceBaseURL,
	)
	return bot.NewHandler(requests, reports, chart.NewRenderer(), metrics, logger), nil
}
