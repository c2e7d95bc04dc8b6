package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"cybertrack/common"
	"cybertrack/config"
	"cybertrack/dedup"
	"cybertrack/ingest"
	"cybertrack/store"
	"cybertrack/types"
)

// sourceDelay spaces out feed fetches so we are polite to the sources.
const sourceDelay = 2 * time.Second

// ArticleStore is the persistence surface the pipeline writes through:
// the read contract the engine consumes plus the idempotent upsert.
type ArticleStore interface {
	dedup.Store
	SaveArticle(ctx context.Context, fp string, article *types.Article) (bool, error)
}

// Pipeline wires the deduplication engine to the durable store and the
// optional S3 archive. The engine only judges; the pipeline performs the
// caller-side persistence, keyed by the fingerprint the engine exposes.
type Pipeline struct {
	engine   *dedup.Deduplicator
	articles ArticleStore
	archive  *common.S3
	bucket   string
	prefix   string
}

// Summary aggregates per-article outcomes of one batch.
type Summary struct {
	Total   int
	New     int
	Exact   int
	Near    int
	Failed  int
	Results []dedup.BatchResult
}

// NewPipeline assembles a pipeline. archive may be nil to disable S3
// uploads.
func NewPipeline(engine *dedup.Deduplicator, articles ArticleStore, archive *common.S3, bucket, prefix string) *Pipeline {
	return &Pipeline{
		engine:   engine,
		articles: articles,
		archive:  archive,
		bucket:   bucket,
		prefix:   prefix,
	}
}

// Check classifies one article without persisting anything.
func (p *Pipeline) Check(ctx context.Context, article *types.Article) (*dedup.Result, error) {
	return p.engine.Check(ctx, article)
}

// CheckBatch classifies a batch without persisting anything.
func (p *Pipeline) CheckBatch(ctx context.Context, articles []*types.Article) []dedup.BatchResult {
	return p.engine.CheckBatch(ctx, articles)
}

// ProcessArticle checks one article and persists it when the verdict is
// NEW. The save is an idempotent upsert keyed by the fingerprint, so a
// concurrent check of the same URL cannot double-insert.
func (p *Pipeline) ProcessArticle(ctx context.Context, article *types.Article) (*dedup.Result, error) {
	result, err := p.engine.Check(ctx, article)
	if err != nil {
		return nil, err
	}

	if result.Verdict != dedup.VerdictNew {
		return result, nil
	}

	created, err := p.articles.SaveArticle(ctx, result.Fingerprint, article)
	if err != nil {
		return nil, fmt.Errorf("failed to save article %s: %w", article.URL, err)
	}
	if !created {
		// Another worker won the upsert race between our check and write.
		result.Verdict = dedup.VerdictExactDuplicate
		return result, nil
	}

	p.archiveArticle(ctx, result.Fingerprint, article)
	return result, nil
}

// ProcessBatch runs the engine over the batch, persists the NEW articles
// and reports the per-outcome counts. One article's store failure never
// aborts the rest.
func (p *Pipeline) ProcessBatch(ctx context.Context, articles []*types.Article) Summary {
	summary := Summary{Total: len(articles)}
	summary.Results = p.engine.CheckBatch(ctx, articles)

	for i := range summary.Results {
		r := &summary.Results[i]
		if r.Err != nil {
			summary.Failed++
			continue
		}

		switch r.Result.Verdict {
		case dedup.VerdictExactDuplicate:
			summary.Exact++
		case dedup.VerdictNearDuplicate:
			summary.Near++
		case dedup.VerdictNew:
			created, err := p.articles.SaveArticle(ctx, r.Result.Fingerprint, r.Article)
			if err != nil {
				r.Err = &dedup.StoreError{Op: "save", Err: err}
				summary.Failed++
				continue
			}
			if !created {
				r.Result.Verdict = dedup.VerdictExactDuplicate
				summary.Exact++
				continue
			}
			summary.New++
			p.archiveArticle(ctx, r.Result.Fingerprint, r.Article)
		}
	}

	return summary
}

func (p *Pipeline) archiveArticle(ctx context.Context, fingerprint string, article *types.Article) {
	if p.archive == nil || p.bucket == "" {
		return
	}

	actx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := p.archive.ArchiveArticle(actx, p.bucket, p.prefix, fingerprint, article); err != nil {
		// Archive failures do not undo the store write.
		log.Printf("Warning: S3 archive failed for %s: %v", fingerprint, err)
	}
}

// RunOnce executes a single end-to-end cycle: fetch the configured feeds,
// deduplicate, persist new articles, optional S3 archive, summary.
func RunOnce(ctx context.Context, cfg config.Config, feeds []string) error {
	log.SetOutput(os.Stderr)
	log.Println("=== CyberTrack Scraper Run ===")

	articles, err := fetchAllSources(feeds)
	if err != nil {
		return err
	}

	articleStore, err := store.NewRedisStore(store.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize article store: %w", err)
	}
	defer articleStore.Close()

	engine, err := dedup.NewDeduplicator(articleStore, dedup.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		WindowDuration:      cfg.WindowDuration,
		WindowLimit:         cfg.WindowLimit,
		StoreTimeout:        cfg.StoreTimeout,
		Workers:             cfg.Workers,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize deduplicator: %w", err)
	}
	log.Printf("Similarity threshold: %.2f, window: %s / %d entries",
		engine.Config().SimilarityThreshold, engine.Config().WindowDuration, engine.Config().WindowLimit)

	archive, bucket, prefix := initializeS3(cfg)
	pipeline := NewPipeline(engine, articleStore, archive, bucket, prefix)

	log.Println("Processing articles for deduplication...")
	summary := pipeline.ProcessBatch(ctx, articles)

	for i, r := range summary.Results {
		switch {
		case r.Err != nil:
			log.Printf("  [%d/%d] FAILED %s: %v", i+1, summary.Total, r.Article.URL, r.Err)
		case r.Result.Verdict == dedup.VerdictNearDuplicate:
			log.Printf("  [%d/%d] NEAR DUPLICATE (%.0f%% similar to %q)",
				i+1, summary.Total, r.Result.Similarity*100, r.Result.MatchingTitle)
		case r.Result.Verdict == dedup.VerdictExactDuplicate:
			log.Printf("  [%d/%d] DUPLICATE (already stored)", i+1, summary.Total)
		default:
			log.Printf("  [%d/%d] NEW - saved: %s", i+1, summary.Total, r.Article.Title)
		}
	}

	log.Printf("Run complete: %d new, %d exact duplicate, %d near duplicate, %d failed",
		summary.New, summary.Exact, summary.Near, summary.Failed)
	log.Println("=== Run Complete ===")
	return nil
}

// fetchAllSources fetches each configured feed, isolating per-source
// failures so one unreachable site does not abort the run.
func fetchAllSources(feeds []string) ([]*types.Article, error) {
	if len(feeds) == 0 {
		feeds = []string{ingest.DefaultFeedPreset}
	}

	var all []*types.Article
	failures := 0
	for i, feed := range feeds {
		feedURL := ingest.ResolveFeedURL(feed)
		log.Printf("Fetching %s...", feedURL)
		articles, err := ingest.FetchFeed(feedURL, 0)
		if err != nil {
			log.Printf("Error fetching %s: %v", feedURL, err)
			failures++
			continue
		}
		log.Printf("Found %d articles from %s", len(articles), feedURL)
		all = append(all, articles...)

		if i < len(feeds)-1 {
			time.Sleep(sourceDelay)
		}
	}

	if failures == len(feeds) {
		return nil, fmt.Errorf("all %d feed sources failed", len(feeds))
	}
	return all, nil
}

// initializeS3 returns an S3 client and target bucket/prefix if configured.
func initializeS3(cfg config.Config) (*common.S3, string, string) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil, "", ""
	}

	client, err := common.NewS3(context.Background(), common.S3Config{
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Printf("Warning: failed to init S3 client: %v (archiving disabled)", err)
		return nil, "", ""
	}
	return client, cfg.S3Bucket, cfg.S3Prefix
}
