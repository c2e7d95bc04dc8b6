package dedup

import (
	"errors"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{"simple", "https://example.com/path", "https://example.com/path"},
		{"utm and fragment", "https://example.com/path?utm_source=feed#section", "https://example.com/path"},
		{"uppercase host", "HTTP://Example.COM/", "http://example.com"},
		{"tracking params", "https://example.com/?fbclid=XYZ&gclid=ABC&utm_medium=1", "https://example.com"},
		{"kept query param", "https://example.com/a?id=7&utm_campaign=x", "https://example.com/a?id=7"},
		{"trailing slash", "https://example.com/news/", "https://example.com/news"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := normalizeURL(c.url); got != c.want {
				t.Fatalf("normalizeURL(%q) = %q; want %q", c.url, got, c.want)
			}
		})
	}
}

func TestFingerprintStability(t *testing.T) {
	first, err := Fingerprint("https://x.com/a?utm=1")
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64-char hex digest, got %d chars", len(first))
	}

	for i := 0; i < 10; i++ {
		again, err := Fingerprint("https://x.com/a?utm=1")
		if err != nil {
			t.Fatalf("Fingerprint error: %v", err)
		}
		if again != first {
			t.Fatalf("fingerprint not stable: %q vs %q", first, again)
		}
	}
}

func TestFingerprintNormalizedFormsMatch(t *testing.T) {
	a, err := Fingerprint("https://x.com/a?utm_source=rss")
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	b, err := Fingerprint("HTTPS://X.com/a")
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if a != b {
		t.Fatalf("normalized-equal URLs fingerprint differently: %q vs %q", a, b)
	}

	other, err := Fingerprint("https://x.com/b")
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if other == a {
		t.Fatalf("distinct URLs produced identical fingerprints")
	}
}

func TestFingerprintEmptyURL(t *testing.T) {
	for _, url := range []string{"", "   "} {
		if _, err := Fingerprint(url); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Fingerprint(%q) error = %v; want ErrInvalidInput", url, err)
		}
	}
}
