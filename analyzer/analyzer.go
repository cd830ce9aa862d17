// Package analyzer orchestrates a full analysis run: fetch the page,
// score it on both rubrics, and persist the outcome against an opaque
// analysis id. Scoring itself is pure; all I/O lives at the edges of the
// two Run methods.
package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ai-readiness/backend/aeo"
	"github.com/ai-readiness/backend/metrics"
	"github.com/ai-readiness/backend/readiness"
	"github.com/ai-readiness/backend/recommend"
	"github.com/ai-readiness/backend/stats"
	"github.com/ai-readiness/backend/store"
)

// Analyzer runs website analyses against a record store.
type Analyzer struct {
	client  *http.Client
	store   store.Store
	stats   *stats.Storage
	metrics *metrics.Metrics
	log     *zap.Logger

	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	lastCleanup     time.Time
	cleanupInterval time.Duration
	hits            atomic.Int64
	misses          atomic.Int64
	done            chan struct{}
	closeOnce       sync.Once
}

// New creates an Analyzer with a tuned HTTP client and starts the cache
// cleanup goroutine.
func New(st store.Store, statsStorage *stats.Storage, m *metrics.Metrics, log *zap.Logger, opts Options) *Analyzer {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if opts.CacheTTL == 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.MaxCacheEntries == 0 {
		opts.MaxCacheEntries = 1000
	}

	a := &Analyzer{
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		store:           st,
		stats:           statsStorage,
		metrics:         m,
		log:             log,
		cache:           make(map[string]cacheEntry),
		cacheTTL:        opts.CacheTTL,
		maxCacheSize:    opts.MaxCacheEntries,
		cleanupInterval: 5 * time.Minute,
		lastCleanup:     time.Now(),
		done:            make(chan struct{}),
	}

	go a.periodicCleanup()

	return a
}

func (a *Analyzer) periodicCleanup() {
	ticker := time.NewTicker(a.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.cleanupCache()
		case <-a.done:
			return
		}
	}
}

// RunReadiness fetches the page and persists the six readiness results,
// the overall score and the recommendations against analysisID. On fetch
// failure the record is marked failed with one critical recommendation
// and the error is returned; the scorers are not invoked.
func (a *Analyzer) RunReadiness(ctx context.Context, url, analysisID string) (*store.Record, error) {
	a.stats.RecordReadinessRun()

	if err := a.store.UpdateStatus(analysisID, store.StatusAnalyzing); err != nil {
		return nil, fmt.Errorf("failed to mark analysis %s as analyzing: %w", analysisID, err)
	}

	html, err := a.fetchCached(ctx, url, readinessUserAgent)
	if err != nil {
		a.stats.RecordFetchFailure()
		a.metrics.RecordAnalysis("readiness", "fetch_failed")
		a.log.Warn("website fetch failed",
			zap.String("url", url),
			zap.String("analysisId", analysisID),
			zap.Error(err))

		if saveErr := a.store.SaveFailure(analysisID, recommend.FetchFailure(err.Error())); saveErr != nil {
			return nil, fmt.Errorf("failed to record fetch failure: %w", saveErr)
		}
		return nil, err
	}

	report := a.scoreReadiness(html, url)
	recs := recommend.Generate(report)

	if err := a.store.SaveReadiness(analysisID, report, recs); err != nil {
		return nil, fmt.Errorf("failed to save readiness results: %w", err)
	}

	a.metrics.RecordAnalysis("readiness", "completed")
	a.log.Info("readiness analysis completed",
		zap.String("url", url),
		zap.String("analysisId", analysisID),
		zap.Int("overallScore", report.Overall),
		zap.Int("recommendations", len(recs)))

	return a.store.Get(analysisID)
}

// RunAEO fetches the page and persists the AEO visibility fields against
// analysisID. Status and the readiness fields are never touched; the two
// paths share no transaction, so a reader may briefly observe a record
// with only one side populated.
func (a *Analyzer) RunAEO(ctx context.Context, url, analysisID string) (*store.AEOSnapshot, error) {
	a.stats.RecordAEORun()

	html, err := a.fetchCached(ctx, url, aeoUserAgent)
	if err != nil {
		a.stats.RecordFetchFailure()
		a.metrics.RecordAnalysis("aeo", "fetch_failed")
		a.log.Warn("website fetch failed",
			zap.String("url", url),
			zap.String("analysisId", analysisID),
			zap.Error(err))
		return nil, err
	}

	analysis := a.scoreAEO(html, url)
	snap := &store.AEOSnapshot{
		OverallScore:         aeo.Composite(analysis),
		StructuredDataScore:  analysis.StructuredDataScore,
		SnippetOptScore:      analysis.SnippetOptScore,
		CrawlabilityScore:    analysis.CrawlabilityScore,
		FeaturedSnippetScore: analysis.FeaturedSnippetScore,
		ContentQualityScore:  analysis.ContentQualityScore,
		TechnicalSEOScore:    analysis.TechnicalSEOScore,
		SchemasFound:         analysis.SchemasFound,
		Issues:               analysis.Issues,
		AIModelAccess:        analysis.AIModelAccess,
	}

	if err := a.store.SaveAEO(analysisID, snap); err != nil {
		return nil, fmt.Errorf("failed to save aeo results: %w", err)
	}

	a.metrics.RecordAnalysis("aeo", "completed")
	a.log.Info("aeo analysis completed",
		zap.String("url", url),
		zap.String("analysisId", analysisID),
		zap.Float64("overallScore", snap.OverallScore),
		zap.String("aiModelAccess", snap.AIModelAccess.String()))

	return snap, nil
}

// scoreReadiness evaluates the six categories, containing any panic to
// the category it came from: a failed category degrades to score 0 with
// an explanatory finding instead of aborting the other five.
func (a *Analyzer) scoreReadiness(html, url string) *readiness.Report {
	r := &readiness.Report{
		StructuredData: a.guardResult("structured data", func() readiness.Result { return readiness.StructuredData(html) }),
		MobileFriendly: a.guardResult("mobile friendliness", func() readiness.Result { return readiness.MobileFriendly(html) }),
		Accessibility:  a.guardResult("accessibility", func() readiness.Result { return readiness.Accessibility(html) }),
		ContentQuality: a.guardResult("content quality", func() readiness.Result { return readiness.ContentQuality(html) }),
		TechnicalSEO:   a.guardResult("technical SEO", func() readiness.Result { return readiness.TechnicalSEO(html, url) }),
		Privacy:        a.guardResult("privacy", func() readiness.Result { return readiness.Privacy(html) }),
	}
	r.Overall = readiness.OverallScore(r)
	return r
}

func (a *Analyzer) guardResult(category string, fn func() readiness.Result) (res readiness.Result) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("category analyzer panicked",
				zap.String("category", category),
				zap.Any("panic", r))
			res = readiness.Result{
				Score:    0,
				Details:  map[string]interface{}{"internalError": fmt.Sprint(r)},
				Findings: []string{fmt.Sprintf("Internal error while analyzing %s", category)},
			}
		}
	}()
	return fn()
}

// scoreAEO mirrors aeo.Analyze with the same per-category containment.
func (a *Analyzer) scoreAEO(html, url string) *aeo.Analysis {
	c := &aeo.Collector{}

	an := &aeo.Analysis{
		StructuredDataScore:  a.guardScore("structured data", c, func() int { return aeo.StructuredData(html, c) }),
		SnippetOptScore:      a.guardScore("snippet optimization", c, func() int { return aeo.SnippetOptimization(html, c) }),
		CrawlabilityScore:    a.guardScore("crawlability", c, func() int { return aeo.Crawlability(html, url, c) }),
		FeaturedSnippetScore: a.guardScore("featured snippet readiness", c, func() int { return aeo.FeaturedSnippetReadiness(html, c) }),
		ContentQualityScore:  a.guardScore("content quality", c, func() int { return aeo.ContentQuality(html, c) }),
		TechnicalSEOScore:    a.guardScore("technical SEO", c, func() int { return aeo.TechnicalSEO(html, url, c) }),
	}
	an.SchemasFound = c.Schemas
	an.Issues = c.Issues
	an.AIModelAccess = aeo.AccessLadder(an.StructuredDataScore, an.CrawlabilityScore, an.TechnicalSEOScore)
	return an
}

func (a *Analyzer) guardScore(category string, c *aeo.Collector, fn func() int) (score int) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("category analyzer panicked",
				zap.String("category", category),
				zap.Any("panic", r))
			c.AddIssue(fmt.Sprintf("Internal error while analyzing %s", category))
			score = 0
		}
	}()
	return fn()
}

// GetCacheStats returns statistics about the fetch cache.
func (a *Analyzer) GetCacheStats() CacheStats {
	a.cacheMutex.RLock()
	entries := len(a.cache)
	ttl := a.cacheTTL
	max := a.maxCacheSize
	a.cacheMutex.RUnlock()

	return CacheStats{
		Entries:    entries,
		Hits:       int(a.hits.Load()),
		Misses:     int(a.misses.Load()),
		TTLSeconds: int(ttl.Seconds()),
		MaxEntries: max,
	}
}

// IsCached checks if a URL is in the fetch cache and not expired.
func (a *Analyzer) IsCached(url string) bool {
	a.cacheMutex.RLock()
	defer a.cacheMutex.RUnlock()

	entry, found := a.cache[cacheKey(url)]
	return found && time.Since(entry.timestamp) < a.cacheTTL
}

// ClearCache drops all cached pages.
func (a *Analyzer) ClearCache() {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cache = make(map[string]cacheEntry)
}

// Shutdown stops the cleanup goroutine and flushes statistics.
func (a *Analyzer) Shutdown() error {
	if a == nil {
		return nil
	}

	a.closeOnce.Do(func() { close(a.done) })

	if a.stats != nil {
		if err := a.stats.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown stats storage: %w", err)
		}
	}

	a.cacheMutex.Lock()
	a.cache = nil
	a.cacheMutex.Unlock()

	return nil
}
