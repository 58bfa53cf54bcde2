package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	AFADBaseURL     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	FetchTimeout    time.Duration

	TargetCountry    string
	LocalTimeOffset  time.Duration
	DefaultStartDate time.Time
	DefaultMagMin    float64
	DefaultMagMax    float64

	CacheSize int
	CacheTTL  time.Duration

	// Optional Kafka sink for freshly fetched events.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := envDuration("FETCH_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	localOffset, err := envDuration("LOCAL_TIME_OFFSET", 3*time.Hour)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	startDate, err := time.ParseInLocation("2006-01-02", envOrDefault("DEFAULT_START_DATE", "2023-02-06"), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_START_DATE: %w", err)
	}

	magMin, err := envFloat("MAG_MIN", 0.0)
	if err != nil {
		return nil, err
	}
	magMax, err := envFloat("MAG_MAX", 8.0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AFADBaseURL:     envOrDefault("AFAD_BASE_URL", "https://deprem.afad.gov.tr/apiv2/event/filter"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		FetchTimeout:    fetchTimeout,

		TargetCountry:    envOrDefault("TARGET_COUNTRY", "Türkiye"),
		LocalTimeOffset:  localOffset,
		DefaultStartDate: startDate,
		DefaultMagMin:    magMin,
		DefaultMagMax:    magMax,

		CacheSize: envInt("CACHE_SIZE", 32),
		CacheTTL:  cacheTTL,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "quake-events"),
	}

	if cfg.AFADBaseURL == "" {
		return nil, errors.New("AFAD_BASE_URL is required")
	}
	if cfg.TargetCountry == "" {
		return nil, errors.New("TARGET_COUNTRY is required")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.DefaultMagMin > cfg.DefaultMagMax {
		return nil, errors.New("MAG_MIN must not exceed MAG_MAX")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
