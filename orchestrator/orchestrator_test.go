package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cybertrack/dedup"
	"cybertrack/types"
)

// memStore is an in-memory ArticleStore for pipeline tests.
type memStore struct {
	mu        sync.Mutex
	articles  map[string]*types.Article // fingerprint -> article
	recency   []string                  // fingerprints, newest first
	existsErr map[string]error
	saveCalls int
	// lostFingerprints simulates a concurrent writer winning the upsert
	// race after our existence check.
	lostFingerprints map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		articles:         make(map[string]*types.Article),
		existsErr:        make(map[string]error),
		lostFingerprints: make(map[string]bool),
	}
}

func (m *memStore) ExistsByFingerprint(ctx context.Context, fp string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.existsErr[fp]; ok {
		return false, err
	}
	_, ok := m.articles[fp]
	return ok, nil
}

func (m *memStore) RecentTitles(ctx context.Context, since time.Time, limit int) ([]dedup.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dedup.Candidate, 0, limit)
	for _, fp := range m.recency {
		if len(out) == limit {
			break
		}
		out = append(out, dedup.Candidate{Title: m.articles[fp].Title, Fingerprint: fp})
	}
	return out, nil
}

func (m *memStore) SaveArticle(ctx context.Context, fp string, article *types.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.lostFingerprints[fp] {
		return false, nil
	}
	if _, ok := m.articles[fp]; ok {
		return false, nil
	}
	m.articles[fp] = article
	m.recency = append([]string{fp}, m.recency...)
	return true, nil
}

func newTestPipeline(t *testing.T, articles ArticleStore, cfg dedup.Config) *Pipeline {
	t.Helper()
	engine, err := dedup.NewDeduplicator(articles, cfg)
	if err != nil {
		t.Fatalf("failed to create deduplicator: %v", err)
	}
	return NewPipeline(engine, articles, nil, "", "")
}

func TestProcessArticleSavesNew(t *testing.T) {
	store := newMemStore()
	pipeline := newTestPipeline(t, store, dedup.Config{})
	ctx := context.Background()

	article := &types.Article{URL: "https://x.com/a", Title: "Major Vendor Patches Critical Flaw"}
	result, err := pipeline.ProcessArticle(ctx, article)
	if err != nil {
		t.Fatalf("ProcessArticle failed: %v", err)
	}
	if result.Verdict != dedup.VerdictNew {
		t.Fatalf("verdict = %q; want %q", result.Verdict, dedup.VerdictNew)
	}
	if store.saveCalls != 1 {
		t.Fatalf("saveCalls = %d; want 1", store.saveCalls)
	}
	if _, ok := store.articles[result.Fingerprint]; !ok {
		t.Fatal("article not stored under its fingerprint")
	}

	// Second sighting: duplicate, not saved again.
	fresh := newTestPipeline(t, store, dedup.Config{})
	result, err = fresh.ProcessArticle(ctx, article)
	if err != nil {
		t.Fatalf("repeat ProcessArticle failed: %v", err)
	}
	if result.Verdict != dedup.VerdictExactDuplicate {
		t.Fatalf("repeat verdict = %q; want %q", result.Verdict, dedup.VerdictExactDuplicate)
	}
	if store.saveCalls != 1 {
		t.Fatalf("duplicate triggered a save; saveCalls = %d", store.saveCalls)
	}
}

func TestProcessArticleUpsertRaceDowngrades(t *testing.T) {
	store := newMemStore()
	article := &types.Article{URL: "https://x.com/a", Title: "t"}
	fp, err := dedup.Fingerprint(article.URL)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	store.lostFingerprints[fp] = true

	pipeline := newTestPipeline(t, store, dedup.Config{})
	result, err := pipeline.ProcessArticle(context.Background(), article)
	if err != nil {
		t.Fatalf("ProcessArticle failed: %v", err)
	}
	if result.Verdict != dedup.VerdictExactDuplicate {
		t.Fatalf("lost upsert race must report duplicate, got %q", result.Verdict)
	}
}

func TestProcessBatchSummaryCounts(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	// Pre-store one article for the exact and near matches.
	seeded := &types.Article{
		URL:   "https://x.com/seeded",
		Title: "Ransomware Crew Breaches Hospital Network In Overnight Attack",
	}
	seededFP, err := dedup.Fingerprint(seeded.URL)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if _, err := store.SaveArticle(ctx, seededFP, seeded); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	failing := &types.Article{URL: "https://x.com/failing", Title: "t"}
	failingFP, err := dedup.Fingerprint(failing.URL)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	store.existsErr[failingFP] = errors.New("store timeout")

	batch := []*types.Article{
		{URL: "https://x.com/seeded", Title: "anything"}, // exact
		{ // near: adds one token to an eight-token title, 8/9 overlap
			URL:   "https://y.com/repost",
			Title: "Ransomware Crew Breaches Hospital Network In Overnight Attack Again",
		},
		{URL: "https://x.com/new", Title: "completely unrelated story"}, // new
		failing, // failed
	}

	pipeline := newTestPipeline(t, store, dedup.Config{Workers: 2})
	summary := pipeline.ProcessBatch(ctx, batch)

	if summary.Total != 4 {
		t.Fatalf("Total = %d; want 4", summary.Total)
	}
	if summary.Exact != 1 || summary.Near != 1 || summary.New != 1 || summary.Failed != 1 {
		t.Fatalf("counts = new:%d exact:%d near:%d failed:%d; want 1 each",
			summary.New, summary.Exact, summary.Near, summary.Failed)
	}

	// Only the NEW article was persisted beyond the seed.
	if len(store.articles) != 2 {
		t.Fatalf("stored %d articles; want 2", len(store.articles))
	}
	if summary.Results[1].Result.MatchingFingerprint != seededFP {
		t.Fatalf("near duplicate matched %q; want %q", summary.Results[1].Result.MatchingFingerprint, seededFP)
	}
}
