package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cybertrack/types"
)

// Verdict classifies an incoming article against the durable store.
type Verdict string

const (
	VerdictNew            Verdict = "new"
	VerdictExactDuplicate Verdict = "exact_duplicate"
	VerdictNearDuplicate  Verdict = "near_duplicate"
)

// Default configuration values. The threshold and window parameters came
// from the original scrapers untuned, so they are configuration rather
// than constants baked into the algorithm.
const (
	DefaultSimilarityThreshold = 0.85
	DefaultWindowDuration      = 7 * 24 * time.Hour
	DefaultWindowLimit         = 100
	DefaultStoreTimeout        = 5 * time.Second
	DefaultWorkers             = 5
)

// Config holds the tunable parameters of the decision engine.
type Config struct {
	// SimilarityThreshold is the strict lower bound for a near-duplicate
	// match; a score exactly equal to it is NOT a duplicate.
	SimilarityThreshold float64
	// WindowDuration and WindowLimit bound the candidate window fetched
	// for fuzzy comparison.
	WindowDuration time.Duration
	WindowLimit    int
	// StoreTimeout caps each individual durable-store call.
	StoreTimeout time.Duration
	// Workers bounds concurrent store calls during CheckBatch.
	Workers int
}

func withDefaults(cfg Config) Config {
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.WindowDuration == 0 {
		cfg.WindowDuration = DefaultWindowDuration
	}
	if cfg.WindowLimit == 0 {
		cfg.WindowLimit = DefaultWindowLimit
	}
	if cfg.StoreTimeout == 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	return cfg
}

// Result is the verdict for one article. Fingerprint is always set and is
// the idempotent write key the caller must use when persisting a NEW
// article. The Matching fields carry the duplicate diagnostics.
type Result struct {
	Verdict             Verdict   `json:"verdict"`
	Fingerprint         string    `json:"fingerprint"`
	MatchingFingerprint string    `json:"matching_fingerprint,omitempty"`
	MatchingTitle       string    `json:"matching_title,omitempty"`
	Similarity          float64   `json:"similarity,omitempty"`
	CheckedAt           time.Time `json:"checked_at"`
}

// IsDuplicate reports whether the verdict is any kind of duplicate.
func (r *Result) IsDuplicate() bool {
	return r.Verdict == VerdictExactDuplicate || r.Verdict == VerdictNearDuplicate
}

// BatchResult pairs one input article with its verdict or failure.
type BatchResult struct {
	Article *types.Article
	Result  *Result
	Err     error
}

// Deduplicator decides, per incoming article, whether it is byte-identical
// to something stored (fingerprint hit), a near-duplicate of a recently
// stored title (Jaccard overlap), or new. It never writes to the durable
// store; persisting NEW articles is the caller's job, keyed by
// Result.Fingerprint so concurrent checks of the same URL collapse into
// one idempotent upsert.
type Deduplicator struct {
	store Store
	cache *SessionCache
	cfg   Config
}

// NewDeduplicator creates a decision engine over the given store, with a
// fresh session cache. Zero config fields fall back to defaults.
func NewDeduplicator(store Store, cfg Config) (*Deduplicator, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Deduplicator{
		store: store,
		cache: NewSessionCache(),
		cfg:   withDefaults(cfg),
	}, nil
}

// NewDeduplicatorWithCache injects an externally owned session cache, for
// callers that share one cache across several engines in the same run.
func NewDeduplicatorWithCache(store Store, cache *SessionCache, cfg Config) (*Deduplicator, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	return &Deduplicator{store: store, cache: cache, cfg: withDefaults(cfg)}, nil
}

// Config returns the effective configuration after defaults were applied.
func (d *Deduplicator) Config() Config { return d.cfg }

// Check classifies one incoming article.
//
// The decision sequence is: session cache, then fingerprint point lookup,
// then a bounded recency window of stored titles scored by Jaccard
// overlap. A store failure at any step is returned as a *StoreError and
// never downgraded to a verdict. The session cache lock is never held
// across store I/O.
func (d *Deduplicator) Check(ctx context.Context, article *types.Article) (*Result, error) {
	if article == nil || article.URL == "" {
		return nil, ErrInvalidInput
	}

	fp, err := Fingerprint(article.URL)
	if err != nil {
		return nil, err
	}

	checkedAt := time.Now()

	// Already proven duplicate this run: no store round trip.
	if cached, ok := d.cache.Seen(fp); ok {
		return &Result{
			Verdict:             cached.Verdict,
			Fingerprint:         fp,
			MatchingFingerprint: cached.MatchingFingerprint,
			MatchingTitle:       cached.MatchingTitle,
			Similarity:          cached.Similarity,
			CheckedAt:           checkedAt,
		}, nil
	}

	exists, err := d.existsByFingerprint(ctx, fp)
	if err != nil {
		return nil, err
	}
	if exists {
		result := &Result{
			Verdict:     VerdictExactDuplicate,
			Fingerprint: fp,
			CheckedAt:   checkedAt,
		}
		d.cache.MarkDuplicate(fp, result)
		return result, nil
	}

	window, err := d.fetchWindow(ctx)
	if err != nil {
		return nil, err
	}

	for _, cand := range window {
		score := Similarity(article.Title, cand.Title)
		// Strict greater-than: a score exactly at the threshold is new.
		if score > d.cfg.SimilarityThreshold {
			result := &Result{
				Verdict:             VerdictNearDuplicate,
				Fingerprint:         fp,
				MatchingFingerprint: cand.Fingerprint,
				MatchingTitle:       cand.Title,
				Similarity:          score,
				CheckedAt:           checkedAt,
			}
			d.cache.MarkDuplicate(fp, result)
			return result, nil
		}
	}

	return &Result{
		Verdict:     VerdictNew,
		Fingerprint: fp,
		CheckedAt:   checkedAt,
	}, nil
}

// CheckBatch classifies a batch of articles with bounded concurrency.
// Each article gets its own outcome; one article's store failure never
// aborts the rest. Results are returned in input order.
func (d *Deduplicator) CheckBatch(ctx context.Context, articles []*types.Article) []BatchResult {
	results := make([]BatchResult, len(articles))

	type job struct {
		idx     int
		article *types.Article
	}

	var wg sync.WaitGroup
	jobs := make(chan job, len(articles))

	workers := d.cfg.Workers
	if workers > len(articles) {
		workers = len(articles)
	}
	for i := 0; i < workers; i++ {
		go func() {
			for j := range jobs {
				result, err := d.Check(ctx, j.article)
				results[j.idx] = BatchResult{Article: j.article, Result: result, Err: err}
				wg.Done()
			}
		}()
	}

	for i, article := range articles {
		wg.Add(1)
		jobs <- job{idx: i, article: article}
	}

	wg.Wait()
	close(jobs)
	return results
}

func (d *Deduplicator) existsByFingerprint(ctx context.Context, fp string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	exists, err := d.store.ExistsByFingerprint(ctx, fp)
	if err != nil {
		return false, &StoreError{Op: "exists", Err: err}
	}
	return exists, nil
}

// fetchWindow rebuilds the candidate window for one check. The window is
// deliberately not cached across checks: "recent" shifts continuously.
func (d *Deduplicator) fetchWindow(ctx context.Context) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	since := time.Now().Add(-d.cfg.WindowDuration)
	window, err := d.store.RecentTitles(ctx, since, d.cfg.WindowLimit)
	if err != nil {
		return nil, &StoreError{Op: "recent-titles", Err: err}
	}
	if len(window) > d.cfg.WindowLimit {
		window = window[:d.cfg.WindowLimit]
	}
	return window, nil
}
