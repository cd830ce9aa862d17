package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ai-readiness/backend/analyzer"
	"github.com/ai-readiness/backend/metrics"
	"github.com/ai-readiness/backend/stats"
	"github.com/ai-readiness/backend/store"
	"github.com/ai-readiness/backend/usage"
)

const handlerFixture = `<html>
<head>
	<title>Handler Test Fixture Page Title ok</title>
	<meta name="description" content="fixture">
	<link rel="canonical" href="https://example.com/">
	<script type="application/ld+json">{"@type":"Article"}</script>
</head>
<body><h1>Fixture</h1></body>
</html>`

func newTestServer(t *testing.T) (*server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recordStore, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { recordStore.Close() })

	statsStorage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)

	log := zap.NewNop()
	srv := &server{
		analyzer: analyzer.New(recordStore, statsStorage, metrics.New(), log, analyzer.Options{}),
		store:    recordStore,
		stats:    statsStorage,
		usage:    usage.NewTracker(filepath.Join(t.TempDir(), "usage.json")),
		log:      log,
	}
	t.Cleanup(func() { srv.analyzer.Shutdown() })

	r := gin.New()
	r.POST("/api/analyze", srv.analyzeWebsite)
	r.POST("/api/visibility", srv.visibilityScore)
	r.GET("/api/analyses/:id", srv.getAnalysis)

	return srv, r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(handlerFixture))
	}))
	defer site.Close()

	_, r := newTestServer(t)

	w := postJSON(r, "/api/analyze", gin.H{"url": site.URL})
	require.Equal(t, http.StatusOK, w.Code)

	var rec store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, store.StatusCompleted, rec.Status)
	require.NotNil(t, rec.Readiness)
	assert.Equal(t, rec.Readiness.Overall, rec.OverallScore)
}

func TestAnalyzeEndpointRejectsBadURL(t *testing.T) {
	_, r := newTestServer(t)

	w := postJSON(r, "/api/analyze", gin.H{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/api/analyze", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointFetchFailure(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer site.Close()

	_, r := newTestServer(t)

	w := postJSON(r, "/api/analyze", gin.H{"url": site.URL})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestVisibilityEndpoint(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(handlerFixture))
	}))
	defer site.Close()

	srv, r := newTestServer(t)
	require.NoError(t, srv.store.Create(&store.Record{
		ID:        "vis-1",
		URL:       site.URL,
		Status:    store.StatusPending,
		CreatedAt: time.Now().UTC(),
	}))

	w := postJSON(r, "/api/visibility", gin.H{"url": site.URL, "analysisId": "vis-1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool               `json:"success"`
		AnalysisID string             `json:"analysisId"`
		AEOScore   float64            `json:"aeoScore"`
		AEO        *store.AEOSnapshot `json:"aeo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "vis-1", resp.AnalysisID)
	require.NotNil(t, resp.AEO)
	assert.Equal(t, resp.AEO.OverallScore, resp.AEOScore)
	assert.Equal(t, []string{"Article"}, resp.AEO.SchemasFound)
}

func TestVisibilityEndpointRequiresAnalysisID(t *testing.T) {
	_, r := newTestServer(t)

	w := postJSON(r, "/api/visibility", gin.H{"url": "https://example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVisibilityEndpointUnknownRecord(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(handlerFixture))
	}))
	defer site.Close()

	_, r := newTestServer(t)

	w := postJSON(r, "/api/visibility", gin.H{"url": site.URL, "analysisId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAnalysisEndpoint(t *testing.T) {
	srv, r := newTestServer(t)
	require.NoError(t, srv.store.Create(&store.Record{
		ID:        "get-1",
		URL:       "https://example.com",
		Status:    store.StatusPending,
		CreatedAt: time.Now().UTC(),
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses/get-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rec store.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "get-1", rec.ID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
