package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Field extraction configuration, compiled defaults unless a YAML
	// override file is given.
	FieldConfigPath string

	// NDBC weather enrichment configuration.
	WeatherBaseURL   string
	WeatherEnabled   bool
	WeatherTimeout   time.Duration
	WeatherCacheSize int
	ShoreDistanceKm  float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("WEATHER_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	shoreDistance, err := parsePositiveFloat("SHORE_DISTANCE_KM", 25)
	if err != nil {
		return nil, err
	}

	weatherEnabled := true
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-sarsat-messages"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "parsed-sarsat-positions"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "sarsat-msg-etl"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		FieldConfigPath: os.Getenv("FIELD_CONFIG_PATH"),

		WeatherBaseURL:   envOrDefault("WEATHER_BASE_URL", "https://www.ndbc.noaa.gov"),
		WeatherEnabled:   weatherEnabled,
		WeatherTimeout:   weatherTimeout,
		WeatherCacheSize: cacheSize,
		ShoreDistanceKm:  shoreDistance,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.WeatherEnabled && cfg.WeatherBaseURL == "" {
		return nil, errors.New("WEATHER_ENABLED is true but WEATHER_BASE_URL is not set")
	}

	return cfg, nil
}

// LoadFieldConfig returns the compiled extraction configuration: the
// built-in defaults, or the YAML file at path when one is configured.
// Overrides replace whole field entries rather than merging, so a YAML
// field must spell out its full pattern and check set.
func LoadFieldConfig(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field config %s: %w", path, err)
	}

	var overrides domain.Config
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing field config %s: %w", path, err)
	}
	if err := overrides.Compile(); err != nil {
		return nil, fmt.Errorf("field config %s: %w", path, err)
	}

	for name, fc := range overrides {
		cfg[name] = fc
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseBatchSize bounds BATCH_SIZE above so a typo cannot make the reader
// pull unbounded batches into memory.
func parseBatchSize() (int, error) {
	s := os.Getenv("BATCH_SIZE")
	if s == "" {
		return 50, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 1000 {
		return 0, errors.New("invalid BATCH_SIZE")
	}
	return n, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
