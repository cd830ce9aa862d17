package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/http"
	"sort"
	"time"
)

// User agents sent by the two analysis paths.
const (
	readinessUserAgent = "AI-Readiness-Checker/1.0"
	aeoUserAgent       = "AEO-Analyzer/1.0"
)

type cacheEntry struct {
	html      string
	timestamp time.Time
}

func cacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// fetch retrieves the raw HTML for url. Redirects follow the client's
// default behavior; any transport error or non-2xx status becomes a
// FetchError.
func (a *Analyzer) fetch(ctx context.Context, url, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	return string(body), nil
}

// fetchCached serves the page from the fetch cache when fresh, otherwise
// fetches and caches it. Both analysis paths share the cache, keyed by
// URL.
func (a *Analyzer) fetchCached(ctx context.Context, url, userAgent string) (string, error) {
	if time.Since(a.lastCleanup) > a.cleanupInterval {
		go a.cleanupCache()
	}

	key := cacheKey(url)
	a.cacheMutex.RLock()
	if entry, found := a.cache[key]; found && time.Since(entry.timestamp) < a.cacheTTL {
		a.cacheMutex.RUnlock()
		a.hits.Add(1)
		a.stats.RecordFetchCache(true)
		return entry.html, nil
	}
	a.cacheMutex.RUnlock()

	a.misses.Add(1)
	a.stats.RecordFetchCache(false)

	html, err := a.fetch(ctx, url, userAgent)
	if err != nil {
		return "", err
	}

	a.cacheMutex.Lock()
	a.cache[key] = cacheEntry{html: html, timestamp: time.Now()}
	a.cacheMutex.Unlock()

	return html, nil
}

// cleanupCache removes expired entries and enforces the size cap by
// evicting the oldest entries first.
func (a *Analyzer) cleanupCache() {
	now := time.Now()

	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()

	for key, entry := range a.cache {
		if now.Sub(entry.timestamp) > a.cacheTTL {
			delete(a.cache, key)
		}
	}

	if len(a.cache) > a.maxCacheSize {
		entries := make([]struct {
			key       string
			timestamp time.Time
		}, 0, len(a.cache))

		for key, entry := range a.cache {
			entries = append(entries, struct {
				key       string
				timestamp time.Time
			}{key, entry.timestamp})
		}

		sort.Slice(entries, func(i, j int) bool {
			return entries[i].timestamp.Before(entries[j].timestamp)
		})

		for i := 0; i < len(entries)-a.maxCacheSize; i++ {
			delete(a.cache, entries[i].key)
		}
	}

	a.lastCleanup = now
}
