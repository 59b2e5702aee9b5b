//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/infection-report-service/internal/adapter/chart"
	"github.com/couchcryptid/infection-report-service/internal/adapter/dpc"
	"github.com/couchcryptid/infection-report-service/internal/bot"
	"github.com/couchcryptid/infection-report-service/internal/dateparse"
	"github.com/couchcryptid/infection-report-service/internal/domain"
	"github.com/couchcryptid/infection-report-service/internal/observability"
	"github.com/couchcryptid/infection-report-service/internal/parse"
	"github.com/couchcryptid/infection-report-service/internal/report"
)

const (
	regionsDayPath = "/dati-regioni/dpc-covid19-ita-regioni-20200718.csv"
	regionsPath    = "/dati-regioni/dpc-covid19-ita-regioni.csv"

	regionsDayCSV = `data,stato,codice_regione,denominazione_regione,totale_casi,tamponi,note
2020-07-18T17:00:00,ITA,12,Lazio,8536,412345,
2020-07-18T17:00:00,ITA,19,Sicilia,3190,301000,
`
	regionsCSV = `data,stato,codice_regione,denominazione_regione,totale_casi,tamponi,note
2020-07-16T17:00:00,ITA,12,Lazio,8490,405000,
2020-07-17T17:00:00,ITA,12,Lazio,8511,409000,
2020-07-18T17:00:00,ITA,12,Lazio,8536,412345,
`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0", kafka.WithClusterID("infection-report-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// newSource serves the fixture tables the way the upstream repository lays
// them out.
func newSource(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+regionsDayPath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, regionsDayCSV)
	})
	mux.HandleFunc("GET "+regionsPath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, regionsCSV)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newBot wires the real request handler against the fixture source, with
// "today" pinned to 18 July 2020.
func newBot(t *testing.T, sourceURL string) *bot.Handler {
	t.Helper()

	ref, err := domain.DefaultReference()
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2020, time.July, 18, 9, 30, 0, 0, time.UTC))
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	source := dpc.NewClient(sourceURL, 10*time.Second, ref, metrics, logger)
	return bot.NewHandler(
		parse.NewRequests(ref, dateparse.New([]string{"en"}, clock)),
		report.NewService(source, "@test_bot", logger),
		chart.NewRenderer(),
		metrics,
		logger,
	)
}
