package usage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAnalysis(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "usage.json"))

	tracker.TrackAnalysis("https://example.com/page?q=1", 120, false)
	tracker.TrackAnalysis("https://example.com/page", 80, true)
	tracker.TrackAnalysis("http://localhost:8082/api/analyze", 10, false)

	assert.Equal(t, 3, tracker.AnalysisTotal())
	assert.InDelta(t, 33.33, tracker.ErrorRate(), 0.01)
	assert.InDelta(t, 70.0, tracker.AverageDuration, 0.01)

	// Query strings are stripped and local addresses are not counted as
	// popular sites.
	top := tracker.TopSites(5)
	assert.Equal(t, 2, top["https://example.com/page"])
	assert.Len(t, top, 1)
}

func TestTrackVisitor(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "usage.json"))

	tracker.TrackVisitor("10.0.0.1")
	tracker.TrackVisitor("10.0.0.2")
	tracker.TrackVisitor("10.0.0.1")

	assert.Equal(t, 2, tracker.UniqueVisitorsLast24h())
}

func TestErrorRateEmpty(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "usage.json"))
	assert.Equal(t, 0.0, tracker.ErrorRate())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")

	tracker := NewTracker(path)
	tracker.TrackVisitor("10.0.0.1")
	tracker.TrackAnalysis("https://example.com", 50, false)
	require.NoError(t, tracker.Save())

	reloaded := NewTracker(path)
	assert.Equal(t, 1, reloaded.AnalysisTotal())
	assert.Equal(t, 1, reloaded.UniqueVisitorsLast24h())
}

func TestSnapshotHidesPopularSitesByDefault(t *testing.T) {
	tracker := NewTracker(filepath.Join(t.TempDir(), "usage.json"))
	tracker.TrackAnalysis("https://example.com", 50, false)

	snap := tracker.Snapshot()
	assert.Contains(t, snap, "totalRequests")
	assert.NotContains(t, snap, "popularSites")

	t.Setenv(envDevMode, "true")
	snap = tracker.Snapshot()
	assert.Contains(t, snap, "popularSites")
}

func TestCleanSite(t *testing.T) {
	assert.Equal(t, "https://example.com/a/b", cleanSite("https://example.com/a/b/?x=1"))
	assert.Equal(t, "https://example.com", cleanSite("https://example.com/"))
	assert.Equal(t, "", cleanSite("http://127.0.0.1:8082/"))
	assert.Equal(t, "", cleanSite("https://example.com/api/analyze"))
}
