package analyzer

import (
	"fmt"
	"time"
)

// FetchError is a terminal fetch failure: either the transport errored or
// the server answered outside the 2xx range. Its text is stored verbatim
// on the failed record's critical recommendation.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("Failed to fetch: %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CacheStats provides statistics about the analyzer's fetch cache.
type CacheStats struct {
	Entries     int    `json:"entries"`
	Hits        int    `json:"hits"`
	Misses      int    `json:"misses"`
	TTLSeconds  int    `json:"ttlSeconds"`
	MaxEntries  int    `json:"maxEntries"`
}

// Options tune the analyzer's fetch cache.
type Options struct {
	CacheTTL        time.Duration
	MaxCacheEntries int
}
