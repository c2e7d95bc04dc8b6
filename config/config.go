package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates every runtime setting of the service. All values come
// from the environment (a .env file is honored when present) with the
// defaults below.
type Config struct {
	// HTTP API
	Port string

	// Deduplication engine
	SimilarityThreshold float64
	WindowDuration      time.Duration
	WindowLimit         int
	StoreTimeout        time.Duration
	Workers             int

	// Redis article store
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Optional Kafka article source
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Optional S3 archive of new articles
	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnvOrDefault("PORT", "8080"),

		SimilarityThreshold: getFloat("SIMILARITY_THRESHOLD", 0.85),
		WindowDuration:      getDurationSeconds("WINDOW_DURATION_SECONDS", 7*24*time.Hour),
		WindowLimit:         getInt("WINDOW_LIMIT", 100),
		StoreTimeout:        getDurationSeconds("STORE_TIMEOUT_SECONDS", 5*time.Second),
		Workers:             getInt("DEDUP_WORKERS", 5),

		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASS"),
		RedisDB:        getInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnvOrDefault("REDIS_KEY_PREFIX", "articles"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnvOrDefault("KAFKA_TOPIC", "scraped-articles"),
		KafkaGroupID: getEnvOrDefault("KAFKA_GROUP_ID", "cybertrack-dedup"),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:       strings.TrimSpace(os.Getenv("S3_PREFIX")),
		S3UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDurationSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
