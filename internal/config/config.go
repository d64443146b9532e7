package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetPath           string
	DatasetSheet          string
	DateColumn            string
	DatasetReloadSchedule string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Summary computation.
	SampleSeed       uint64
	SampleSize       int
	MapPointLimit    int
	WeatherTopN      int
	SummaryCacheSize int

	// Snapshot publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxRegion    string
	MarkerLimit     int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err := time.ParseDuration(mapboxTimeoutStr)
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SAMPLE_SEED", "0"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SAMPLE_SEED")
	}

	sampleSize, err := parsePositiveInt("SAMPLE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	mapPointLimit, err := parsePositiveInt("MAP_POINT_LIMIT", 500)
	if err != nil {
		return nil, err
	}
	weatherTopN, err := parsePositiveInt("WEATHER_TOP_N", 10)
	if err != nil {
		return nil, err
	}
	summaryCacheSize, err := parsePositiveInt("SUMMARY_CACHE_SIZE", 128)
	if err != nil {
		return nil, err
	}
	markerLimit, err := parsePositiveInt("MARKER_LIMIT", 50)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DatasetPath:           sharedcfg.EnvOrDefault("DATASET_PATH", "data/road_accident_data.xlsx"),
		DatasetSheet:          sharedcfg.EnvOrDefault("DATASET_SHEET", "Data"),
		DateColumn:            sharedcfg.EnvOrDefault("DATE_COLUMN", "Accident Date"),
		DatasetReloadSchedule: os.Getenv("DATASET_RELOAD_SCHEDULE"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SampleSeed:       seed,
		SampleSize:       sampleSize,
		MapPointLimit:    mapPointLimit,
		WeatherTopN:      weatherTopN,
		SummaryCacheSize: summaryCacheSize,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "accident-dashboard-snapshots"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
		MapboxRegion:    os.Getenv("MAPBOX_REGION"),
		MarkerLimit:     markerLimit,
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("DATASET_PATH is required")
	}
	if cfg.DateColumn == "" {
		return nil, errors.New("DATE_COLUMN is required")
	}
	if cfg.DatasetReloadSchedule != "" {
		if _, err := cron.ParseStandard(cfg.DatasetReloadSchedule); err != nil {
			return nil, fmt.Errorf("invalid DATASET_RELOAD_SCHEDULE: %w", err)
		}
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
