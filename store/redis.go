package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"cybertrack/dedup"
	"cybertrack/types"
)

const defaultKeyPrefix = "articles"

// RedisConfig configures the Redis connection and key namespace.
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	// KeyPrefix namespaces all article keys; defaults to "articles".
	KeyPrefix string
}

// RedisStore is the durable article store backing the deduplicator. Each
// article lives in a hash at <prefix>:<fingerprint>; a <prefix>:by-date
// sorted set scored by scrapedDate serves the recency window. The
// fingerprint is the primary key, so writes are idempotent upserts: two
// concurrent saves of the same URL collapse into one.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// NewRedisStoreWithClient wraps a preconfigured client, mainly for tests.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: keyPrefix}
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) articleKey(fp string) string {
	return s.prefix + ":" + fp
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":by-date"
}

// ExistsByFingerprint is a single EXISTS round trip on the article key.
func (s *RedisStore) ExistsByFingerprint(ctx context.Context, fp string) (bool, error) {
	n, err := s.client.Exists(ctx, s.articleKey(fp)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RecentTitles returns up to limit (title, fingerprint) pairs stored at or
// after since, newest first. Redis orders equal scores by member, so tie
// order is deterministic across calls.
func (s *RedisStore) RecentTitles(ctx context.Context, since time.Time, limit int) ([]dedup.Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}

	fps, err := s.client.ZRevRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
		Min:   strconv.FormatInt(since.Unix(), 10),
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("recency index query: %w", err)
	}
	if len(fps) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	titleCmds := make([]*redis.StringCmd, len(fps))
	for i, fp := range fps {
		titleCmds[i] = pipe.HGet(ctx, s.articleKey(fp), "title")
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("title fetch: %w", err)
	}

	candidates := make([]dedup.Candidate, 0, len(fps))
	for i, fp := range fps {
		title, err := titleCmds[i].Result()
		if err == redis.Nil {
			// Index entry without a hash: article was deleted out of band.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("title fetch for %s: %w", fp, err)
		}
		candidates = append(candidates, dedup.Candidate{Title: title, Fingerprint: fp})
	}
	return candidates, nil
}

// SaveArticle persists article under fp if no article with that
// fingerprint exists yet, and reports whether it was created. The HSETNX
// guard on the url field makes the write idempotent: concurrent saves of
// the same fingerprint race safely, exactly one wins.
func (s *RedisStore) SaveArticle(ctx context.Context, fp string, article *types.Article) (bool, error) {
	if fp == "" || article == nil {
		return false, fmt.Errorf("fingerprint and article are required")
	}

	key := s.articleKey(fp)
	created, err := s.client.HSetNX(ctx, key, "url", article.URL).Result()
	if err != nil {
		return false, fmt.Errorf("article upsert: %w", err)
	}
	if !created {
		return false, nil
	}

	scraped := article.ScrapedAt
	if scraped.IsZero() {
		scraped = time.Now()
	}

	fields := map[string]interface{}{
		"title":      article.Title,
		"source":     article.Source,
		"scraped_at": scraped.Format(time.RFC3339),
		"published":  article.PublishedAt.Format(time.RFC3339),
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(scraped.Unix()),
		Member: fp,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("article metadata write: %w", err)
	}
	return true, nil
}

// Count reports how many articles are indexed.
func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	return s.client.ZCard(ctx, s.indexKey()).Result()
}

// Clear removes every article in this store's namespace.
func (s *RedisStore) Clear(ctx context.Context) error {
	fps, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("index scan: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, fp := range fps {
		pipe.Del(ctx, s.articleKey(fp))
	}
	pipe.Del(ctx, s.indexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}
