// Command query answers a single chat request from the command line, using
// the same configuration and wiring as the service but no transports. Report
// text goes to stdout; a trend chart is written to -out.
//
// Usage:
//
//	go run ./cmd/query -kind report -q "lazio, yesterday"
//	go run ./cmd/query -kind trend -q "nuovi positivi, lombardia, 1 march 2020 - today" -out trend.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/infection-report-service/internal/app"
	"github.com/couchcryptid/infection-report-service/internal/bot"
	"github.com/couchcryptid/infection-report-service/internal/config"
	"github.com/couchcryptid/infection-report-service/internal/observability"
)

// errRejected reports that the request was understood to be unanswerable;
// its explanation has already been printed.
var errRejected = errors.New("request rejected")

func main() {
	if err := run(); err != nil {
		if errors.Is(err, errRejected) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run() error {
	kind := flag.String("kind", string(bot.KindReport), "request kind: report or trend")
	text := flag.String("q", "", "request text, as a user would type it")
	out := flag.String("out", "trend.png", "where to write the trend chart")
	flag.Parse()

	if *text == "" {
		flag.Usage()
		return errors.New("-q is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLoggerTo(os.Stderr, cfg)

	handler, err := app.NewHandler(cfg, clockwork.NewRealClock(), observability.NewMetricsForTesting(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reply, err := handler.Handle(ctx, bot.Request{Kind: bot.Kind(*kind), Text: *text})
	if err != nil {
		return err
	}

	fmt.Println(reply.Text)
	if reply.Failed {
		return errRejected
	}
	if len(reply.Image) > 0 {
		if err := os.WriteFile(*out, reply.Image, 0o644); err != nil { //nolint:gosec // chart output is not secret
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(os.Stderr, "chart written to %s\n", *out)
	}
	return nil
}
