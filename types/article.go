package types

import "time"

// Article is a single scraped news item as handed to the deduplication core.
// The core treats it as immutable; ScrapedAt defaults to ingestion time when
// the producer leaves it zero.
type Article struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Author      string    `json:"author,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at,omitempty"`
}

// FeedResult is the top-level wrapper for one feed fetch.
type FeedResult struct {
	FeedURL      string     `json:"feed_url"`
	FetchedAt    time.Time  `json:"fetched_at"`
	ArticleCount int        `json:"article_count"`
	Articles     []*Article `json:"articles"`
}
