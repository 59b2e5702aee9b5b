package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultSourceBaseURL is the root of the published infection tables.
const DefaultSourceBaseURL = "https://raw.githubusercontent.com/pcm-dpc/COVID-19/master"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset source and request parsing.
	SourceBaseURL string
	SourceTimeout time.Duration
	DateLanguages []string
	BotUsername   string
	ReferenceDir  string

	// Optional Kafka chat bridge.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("SOURCE_TIMEOUT", "30s"))
	if err != nil || sourceTimeout <= 0 {
		return nil, errors.New("invalid SOURCE_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SourceBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("SOURCE_BASE_URL", DefaultSourceBaseURL), "/"),
		SourceTimeout: sourceTimeout,
		DateLanguages: parseList(sharedcfg.EnvOrDefault("DATE_LANGUAGES", "en,it")),
		BotUsername:   sharedcfg.EnvOrDefault("BOT_USERNAME", `@Italia\_CoronaBot`),
		ReferenceDir:  os.Getenv("REFERENCE_DIR"),

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "chat-requests"),
		KafkaSinkTopic:   sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "chat-replies"),
		KafkaGroupID:     sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "infection-report-service"),

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if u, err := url.Parse(cfg.SourceBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid SOURCE_BASE_URL")
	}
	if len(cfg.DateLanguages) == 0 {
		return nil, errors.New("DATE_LANGUAGES is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}

func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
