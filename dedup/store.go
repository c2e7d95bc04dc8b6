package dedup

import (
	"context"
	"time"
)

// Candidate is one recently stored article considered for fuzzy title
// comparison.
type Candidate struct {
	Title       string
	Fingerprint string
}

// Store describes the minimal durable-store functionality required by the
// deduplicator. Implementations must treat both operations as single
// round trips and honor the caller's context deadline.
//
// RecentTitles returns up to limit entries stored at or after since,
// newest first; tie order must be deterministic per call so that scoring
// stays reproducible.
type Store interface {
	ExistsByFingerprint(ctx context.Context, fp string) (bool, error)
	RecentTitles(ctx context.Context, since time.Time, limit int) ([]Candidate, error)
}
