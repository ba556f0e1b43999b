package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store and feed modes.
const (
	StoreMemory = "memory"
	StorePebble = "pebble"
	StoreMongo  = "mongo"

	FeedNone  = "none"
	FeedWS    = "ws"
	FeedKafka = "kafka"
)

// Config aggregates client and dev-backend settings loaded from the environment.
type Config struct {
	Env      string
	LogLevel string

	APIBaseURL   string
	APITimeout   time.Duration
	APIRateLimit float64
	APIBurst     int

	StoreMode string
	StorePath string

	MongoURI      string
	MongoDatabase string
	MongoBlobTTL  time.Duration

	FeedMode     string
	FeedURL      string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	EnrichConcurrency int
	ProfileCacheSize  int
	ProfileCacheTTL   time.Duration

	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3Bucket         string
	S3UseSSL         bool

	DevServerAddr      string
	DevServerJWTSecret string
	DevServerTokenTTL  time.Duration
}

// Load reads an optional .env file and parses configuration from the
// environment. Variables already set take precedence over the file.
func Load(files ...string) (Config, error) {
	if err := loadDotEnv(files); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		StoreMode:          strings.ToLower(getEnv("STORE_MODE", StoreMemory)),
		StorePath:          getEnv("STORE_PATH", "./data/academy"),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DB", "academy"),
		FeedMode:           strings.ToLower(getEnv("FEED_MODE", FeedNone)),
		FeedURL:            getEnv("FEED_URL", ""),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "academy.messages.v1"),
		KafkaGroup:         getEnv("KAFKA_GROUP", "academy-client"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3PublicEndpoint:   getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:        getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:           getEnv("S3_BUCKET", "academy-injuries"),
		DevServerAddr:      getEnv("DEVSERVER_ADDR", ":8080"),
		DevServerJWTSecret: getEnv("DEVSERVER_JWT_SECRET", "dev-secret"),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.APITimeout, err = parseDurationEnv("API_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.APIRateLimit, err = parseFloatEnv("API_RATE_LIMIT", 20); err != nil {
		return Config{}, err
	}
	if cfg.APIBurst, err = parseIntEnv("API_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.EnrichConcurrency, err = parseIntEnv("ENRICH_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}
	if cfg.ProfileCacheSize, err = parseIntEnv("PROFILE_CACHE_SIZE", 256); err != nil {
		return Config{}, err
	}
	if cfg.ProfileCacheTTL, err = parseDurationEnv("PROFILE_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.MongoBlobTTL, err = parseDurationEnv("MONGO_BLOB_TTL", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.DevServerTokenTTL, err = parseDurationEnv("DEVSERVER_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = wsURL(cfg.APIBaseURL)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StoreMode {
	case StoreMemory, StorePebble:
	case StoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_MODE=mongo")
		}
	default:
		return fmt.Errorf("invalid STORE_MODE %q", c.StoreMode)
	}
	switch c.FeedMode {
	case FeedNone, FeedWS:
	case FeedKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when FEED_MODE=kafka")
		}
	default:
		return fmt.Errorf("invalid FEED_MODE %q", c.FeedMode)
	}
	if c.APIRateLimit < 0 || c.APIBurst < 0 {
		return errors.New("API_RATE_LIMIT and API_BURST must not be negative")
	}
	if c.EnrichConcurrency <= 0 {
		return errors.New("ENRICH_CONCURRENCY must be positive")
	}
	return nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws"
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
	default:
		return base + "/ws"
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	return n, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s number: %w", key, err)
	}
	return f, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
