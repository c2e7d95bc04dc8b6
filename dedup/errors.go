package dedup

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when an article is rejected before
// fingerprinting, e.g. because its URL is empty.
var ErrInvalidInput = errors.New("invalid article: empty URL")

// StoreError reports a failed durable-store operation (timeout, network,
// malformed response). It is never coerced into a verdict: callers decide
// whether to retry.
type StoreError struct {
	Op  string // "exists" or "recent-titles"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("durable store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreUnavailable reports whether err originated from the durable store.
func IsStoreUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
