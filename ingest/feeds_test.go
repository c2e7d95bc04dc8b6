package ingest

import "testing"

func TestResolveFeedURL(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"preset", "bc", "https://www.bleepingcomputer.com/feed/"},
		{"another preset", "krebs", "https://krebsonsecurity.com/feed/"},
		{"direct url passthrough", "https://example.com/rss.xml", "https://example.com/rss.xml"},
		{"unknown name passthrough", "not-a-preset", "not-a-preset"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ResolveFeedURL(c.input); got != c.want {
				t.Fatalf("ResolveFeedURL(%q) = %q; want %q", c.input, got, c.want)
			}
		})
	}
}

func TestDefaultPresetExists(t *testing.T) {
	if _, ok := FeedPresets[DefaultFeedPreset]; !ok {
		t.Fatalf("default preset %q not in FeedPresets", DefaultFeedPreset)
	}
}
