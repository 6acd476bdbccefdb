package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	City            string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RefreshInterval time.Duration

	// Live source (OpenWeatherMap-compatible forecast API).
	LiveEnabled   bool
	LiveAPIKey    string
	LiveBaseURL   string
	LiveTimeout   time.Duration
	LiveRateRPS   float64
	LiveRateBurst int

	// Snapshot fallback.
	SnapshotDir string

	// Kafka sink, feature-flagged.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// In-memory dataset history retention.
	HistorySize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refreshStr := sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "30m")
	refreshInterval, err := time.ParseDuration(refreshStr)
	if err != nil || refreshInterval <= 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	liveTimeoutStr := sharedcfg.EnvOrDefault("OWM_TIMEOUT", "10s")
	liveTimeout, err := time.ParseDuration(liveTimeoutStr)
	if err != nil || liveTimeout <= 0 {
		return nil, errors.New("invalid OWM_TIMEOUT")
	}

	liveAPIKey := os.Getenv("OWM_API_KEY")
	liveEnabled := liveAPIKey != ""
	if v := os.Getenv("OWM_ENABLED"); v != "" {
		liveEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		City:            sharedcfg.EnvOrDefault("FORECAST_CITY", "London"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RefreshInterval: refreshInterval,

		LiveEnabled:   liveEnabled,
		LiveAPIKey:    liveAPIKey,
		LiveBaseURL:   sharedcfg.EnvOrDefault("OWM_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		LiveTimeout:   liveTimeout,
		LiveRateRPS:   parseRateRPS(),
		LiveRateBurst: parsePositiveInt("OWM_RATE_BURST", 3),

		SnapshotDir: sharedcfg.EnvOrDefault("SNAPSHOT_DIR", "."),

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "enriched-forecasts"),

		HistorySize: parsePositiveInt("HISTORY_SIZE", 10),
	}

	if cfg.City == "" {
		return nil, errors.New("FORECAST_CITY is required")
	}
	if cfg.LiveEnabled && cfg.LiveAPIKey == "" {
		return nil, errors.New("OWM_ENABLED is true but OWM_API_KEY is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

// parseRateRPS reads the live API rate limit; fractional values mean less
// than one request per second. The free OpenWeatherMap tier allows ~1 rps.
func parseRateRPS() float64 {
	if s := os.Getenv("OWM_RATE_RPS"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			return f
		}
	}
	return 1
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
