package ingest

import (
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"cybertrack/types"
)

// DefaultFeedPreset is the source fetched when none is specified.
const DefaultFeedPreset = "bc"

// FeedPresets maps friendly names to the RSS feeds of the tracked
// security news sources.
var FeedPresets = map[string]string{
	"bc":    "https://www.bleepingcomputer.com/feed/",
	"thn":   "https://feeds.feedburner.com/TheHackersNews",
	"krebs": "https://krebsonsecurity.com/feed/",
	"dr":    "https://www.darkreading.com/rss.xml",
}

// ResolveFeedURL resolves a feed identifier to a URL. Preset names map to
// their configured feed; anything else is assumed to be a direct URL.
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}

// FetchFeed retrieves and parses an RSS/Atom feed, returning articles
// ready for the deduplication pipeline. Items without a link are skipped;
// the core rejects empty URLs anyway.
func FetchFeed(feedURL string, maxCount int) ([]*types.Article, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := len(feed.Items)
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}

	now := time.Now()
	articles := make([]*types.Article, 0, count)
	for i := 0; i < count; i++ {
		item := feed.Items[i]
		if item.Link == "" {
			continue
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}

		categories := make([]string, len(item.Categories))
		copy(categories, item.Categories)

		articles = append(articles, &types.Article{
			URL:         item.Link,
			Title:       item.Title,
			Source:      feed.Title,
			Summary:     item.Description,
			Author:      author,
			Categories:  categories,
			PublishedAt: publishedAt,
			ScrapedAt:   now,
		})
	}

	return articles, nil
}
