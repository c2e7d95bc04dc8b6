package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.SimilarityThreshold != 0.85 {
		t.Fatalf("SimilarityThreshold = %v; want 0.85", cfg.SimilarityThreshold)
	}
	if cfg.WindowDuration != 7*24*time.Hour {
		t.Fatalf("WindowDuration = %v; want 168h", cfg.WindowDuration)
	}
	if cfg.WindowLimit != 100 {
		t.Fatalf("WindowLimit = %d; want 100", cfg.WindowLimit)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("RedisAddr = %q; want localhost:6379", cfg.RedisAddr)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("KafkaBrokers = %v; want empty", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("WINDOW_LIMIT", "25")
	t.Setenv("STORE_TIMEOUT_SECONDS", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg := Load()

	if cfg.SimilarityThreshold != 0.9 {
		t.Fatalf("SimilarityThreshold = %v; want 0.9", cfg.SimilarityThreshold)
	}
	if cfg.WindowLimit != 25 {
		t.Fatalf("WindowLimit = %d; want 25", cfg.WindowLimit)
	}
	if cfg.StoreTimeout != 2*time.Second {
		t.Fatalf("StoreTimeout = %v; want 2s", cfg.StoreTimeout)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "k1:9092" || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("KafkaBrokers = %v; want [k1:9092 k2:9092]", cfg.KafkaBrokers)
	}
}
