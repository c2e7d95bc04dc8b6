package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Fingerprint derives the stable dedup/store key from an article URL.
// The URL is normalized first so that superficial differences (tracking
// parameters, fragment, host casing, trailing slash) fingerprint
// identically. The digest is the full SHA-256 of the normalized URL,
// hex-encoded.
func Fingerprint(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", ErrInvalidInput
	}

	norm := normalizeURL(rawURL)
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:]), nil
}

// normalizeURL applies the canonical form used for fingerprinting:
// lowercase scheme and host, no fragment, no common tracking query
// parameters (utm_*, fbclid, gclid), no trailing slash.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		// fallback: lowercase and trim
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	out := u.String()
	if strings.HasSuffix(out, "/") {
		out = strings.TrimRight(out, "/")
	}
	return out
}
