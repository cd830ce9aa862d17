// Package usage tracks service usage: unique visitors, analyzed sites,
// error rate and average handling time. Persisted as a JSON file.
package usage

import (
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Environment variable name for controlling statistics visibility.
const envDevMode = "DEV_MODE"

// Tracker collects usage statistics.
type Tracker struct {
	UniqueVisitors  map[string]time.Time `json:"uniqueVisitors"` // IP -> last visit time
	AnalysisCount   int                  `json:"analysisRequests"`
	ErrorCount      int                  `json:"errorCount"`
	PopularSites    map[string]int       `json:"popularSites"` // analyzed URL -> count
	AverageDuration float64              `json:"averageDuration"`
	TotalDuration   float64              `json:"-"`
	RequestCount    int                  `json:"-"`
	LastPersisted   time.Time            `json:"lastPersisted"`

	filePath string
	mutex    sync.RWMutex
}

// NewTracker creates a tracker persisted at filePath, loading any
// existing statistics.
func NewTracker(filePath string) *Tracker {
	t := &Tracker{
		UniqueVisitors: make(map[string]time.Time),
		PopularSites:   make(map[string]int),
		LastPersisted:  time.Now(),
		filePath:       filePath,
	}

	// A missing or unreadable file just means a fresh tracker.
	t.load()

	return t
}

// TrackVisitor records a unique visitor.
func (t *Tracker) TrackVisitor(ip string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.UniqueVisitors[ip] = time.Now()
}

// cleanSite reduces an analyzed URL to scheme+host+path, dropping query
// strings and our own API addresses.
func cleanSite(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	clean := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		clean += u.Path
	}

	return strings.TrimSuffix(clean, "/")
}

// TrackAnalysis records one analysis request.
func (t *Tracker) TrackAnalysis(site string, duration float64, hasError bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.AnalysisCount++

	if cleaned := cleanSite(site); cleaned != "" {
		t.PopularSites[cleaned]++
	}

	if hasError {
		t.ErrorCount++
	}

	t.TotalDuration += duration
	t.RequestCount++
	t.AverageDuration = t.TotalDuration / float64(t.RequestCount)
}

// UniqueVisitorsLast24h returns the number of unique visitors in the last
// 24 hours.
func (t *Tracker) UniqueVisitorsLast24h() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range t.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

// TopSites returns up to n analyzed sites with their counts.
func (t *Tracker) TopSites(n int) map[string]int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	result := make(map[string]int)
	count := 0

	for site, freq := range t.PopularSites {
		if count < n {
			result[site] = freq
			count++
		}
	}

	return result
}

// AnalysisTotal returns the total number of analysis requests seen.
func (t *Tracker) AnalysisTotal() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.AnalysisCount
}

// ErrorRate returns the error rate as a percentage.
func (t *Tracker) ErrorRate() float64 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if t.AnalysisCount == 0 {
		return 0
	}

	return (float64(t.ErrorCount) / float64(t.AnalysisCount)) * 100
}

// Save persists the statistics to the tracker's file.
func (t *Tracker) Save() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.LastPersisted = time.Now()

	file, err := os.Create(t.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(t)
}

func (t *Tracker) load() error {
	file, err := os.Open(t.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(t)
}

// Snapshot returns the current statistics. Popular sites are only
// included in development mode.
func (t *Tracker) Snapshot() map[string]interface{} {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	snap := map[string]interface{}{
		"uniqueVisitors24h": t.uniqueVisitorsLocked(),
		"totalRequests":     t.AnalysisCount,
		"errorRate":         t.errorRateLocked(),
		"averageDuration":   t.AverageDuration,
	}

	if os.Getenv(envDevMode) == "true" {
		snap["popularSites"] = t.topSitesLocked(5)
	}

	return snap
}

func (t *Tracker) uniqueVisitorsLocked() int {
	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, lastVisit := range t.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

func (t *Tracker) errorRateLocked() float64 {
	if t.AnalysisCount == 0 {
		return 0
	}
	return (float64(t.ErrorCount) / float64(t.AnalysisCount)) * 100
}

func (t *Tracker) topSitesLocked(n int) map[string]int {
	result := make(map[string]int)
	count := 0
	for site, freq := range t.PopularSites {
		if count < n {
			result[site] = freq
			count++
		}
	}
	return result
}
