package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-readiness/backend/metrics"
	"github.com/ai-readiness/backend/recommend"
	"github.com/ai-readiness/backend/stats"
	"github.com/ai-readiness/backend/store"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head>
	<title>Fixture Page For Analyzer Tests ok</title>
	<meta name="description" content="A fixture page used to exercise the full analysis pipeline">
	<meta name="viewport" content="width=device-width">
	<link rel="canonical" href="https://example.com/">
	<script type="application/ld+json">{"@type":"Article"}</script>
</head>
<body>
	<main role="main">
		<h1>Fixture</h1>
		<h2>What does this page test?</h2>
		<p>Some body content for the word counter.</p>
	</main>
</body>
</html>`

func newTestAnalyzer(t *testing.T, opts Options) (*Analyzer, *store.FileStore) {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	statsStorage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)

	a := New(st, statsStorage, metrics.New(), zap.NewNop(), opts)
	t.Cleanup(func() { a.Shutdown() })

	return a, st
}

func createRecord(t *testing.T, st *store.FileStore, id, url string) {
	t.Helper()
	require.NoError(t, st.Create(&store.Record{
		ID:        id,
		URL:       url,
		Status:    store.StatusPending,
		CreatedAt: time.Now().UTC(),
	}))
}

func TestRunReadiness(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AI-Readiness-Checker/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{})
	createRecord(t, st, "run-1", server.URL)

	rec, err := a.RunReadiness(context.Background(), server.URL, "run-1")
	require.NoError(t, err)

	assert.Equal(t, store.StatusCompleted, rec.Status)
	require.NotNil(t, rec.Readiness)
	assert.Equal(t, rec.Readiness.Overall, rec.OverallScore)
	assert.Equal(t, 40, rec.Readiness.StructuredData.Score)
	assert.NotEmpty(t, rec.Recommendations)
	require.NotNil(t, rec.CompletedAt)
}

func TestRunReadinessFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{})
	createRecord(t, st, "run-1", server.URL)

	_, err := a.RunReadiness(context.Background(), server.URL, "run-1")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)

	// The record is marked failed with a single critical recommendation.
	rec, err := st.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, rec.Status)
	require.Len(t, rec.Recommendations, 1)
	assert.Equal(t, recommend.Critical, rec.Recommendations[0].Priority)
	assert.Contains(t, rec.Recommendations[0].Message, "Unable to fetch website")
}

func TestRunReadinessUnknownRecord(t *testing.T) {
	a, _ := newTestAnalyzer(t, Options{})

	_, err := a.RunReadiness(context.Background(), "https://example.com", "no-such-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunAEO(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AEO-Analyzer/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{})
	createRecord(t, st, "run-1", server.URL)

	snap, err := a.RunAEO(context.Background(), server.URL, "run-1")
	require.NoError(t, err)

	assert.Equal(t, 5, snap.StructuredDataScore)
	assert.Equal(t, []string{"Article"}, snap.SchemasFound)
	assert.Equal(t, 3, snap.AIModelAccess.Total)
	assert.Greater(t, snap.OverallScore, 0.0)

	// The AEO path never touches the lifecycle status.
	rec, err := st.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusPending, rec.Status)
	assert.Nil(t, rec.Readiness)
	require.NotNil(t, rec.AEO)
	assert.Equal(t, snap.OverallScore, rec.AEO.OverallScore)
}

func TestRunAEOFetchFailureLeavesRecordAlone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{})
	createRecord(t, st, "run-1", server.URL)

	_, err := a.RunAEO(context.Background(), server.URL, "run-1")
	require.Error(t, err)

	rec, err := st.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusPending, rec.Status)
	assert.Nil(t, rec.AEO)
}

func TestBothPathsOnOneRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{})
	createRecord(t, st, "run-1", server.URL)

	_, err := a.RunReadiness(context.Background(), server.URL, "run-1")
	require.NoError(t, err)
	_, err = a.RunAEO(context.Background(), server.URL, "run-1")
	require.NoError(t, err)

	rec, err := st.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, rec.Status)
	assert.NotNil(t, rec.Readiness)
	assert.NotNil(t, rec.AEO)
}

func TestFetchCacheSharedAcrossPaths(t *testing.T) {
	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{})
	createRecord(t, st, "run-1", server.URL)

	_, err := a.RunReadiness(context.Background(), server.URL, "run-1")
	require.NoError(t, err)
	assert.True(t, a.IsCached(server.URL))

	_, err = a.RunAEO(context.Background(), server.URL, "run-1")
	require.NoError(t, err)

	assert.Equal(t, 1, fetches)

	cacheStats := a.GetCacheStats()
	assert.Equal(t, 1, cacheStats.Entries)
	assert.Equal(t, 1, cacheStats.Hits)
	assert.Equal(t, 1, cacheStats.Misses)
}

func TestCacheExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{CacheTTL: 50 * time.Millisecond})
	createRecord(t, st, "run-1", server.URL)

	_, err := a.RunReadiness(context.Background(), server.URL, "run-1")
	require.NoError(t, err)
	require.True(t, a.IsCached(server.URL))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, a.IsCached(server.URL))
}

func TestClearCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	a, st := newTestAnalyzer(t, Options{})
	createRecord(t, st, "run-1", server.URL)

	_, err := a.RunReadiness(context.Background(), server.URL, "run-1")
	require.NoError(t, err)
	require.True(t, a.IsCached(server.URL))

	a.ClearCache()
	assert.False(t, a.IsCached(server.URL))
}

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{URL: "https://example.com", StatusCode: 503}
	assert.Equal(t, "Failed to fetch: 503", err.Error())
}
