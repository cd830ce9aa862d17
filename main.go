package main

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-readiness/backend/analyzer"
	"github.com/ai-readiness/backend/config"
	"github.com/ai-readiness/backend/logging"
	"github.com/ai-readiness/backend/metrics"
	"github.com/ai-readiness/backend/middleware"
	"github.com/ai-readiness/backend/stats"
	"github.com/ai-readiness/backend/store"
	"github.com/ai-readiness/backend/usage"
)

// Bound on one fetch+score+persist sequence.
const analysisTimeout = 30 * time.Second

type server struct {
	analyzer *analyzer.Analyzer
	store    store.Store
	stats    *stats.Storage
	usage    *usage.Tracker
	log      *zap.Logger
}

func newStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.Store.Backend == "postgres" {
		log.Info("using postgres record store")
		return store.NewPostgresStore(cfg.Store.PostgresDSN)
	}
	log.Info("using file record store", zap.String("dataDir", cfg.Store.DataDir))
	return store.NewFileStore(cfg.Store.DataDir)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log = logging.NewDefault()
	}
	defer log.Sync()

	gin.SetMode(cfg.Server.GinMode)

	recordStore, err := newStore(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize record store", zap.Error(err))
	}
	defer recordStore.Close()

	statsStorage, err := stats.NewStorage(cfg.Store.DataDir)
	if err != nil {
		log.Fatal("failed to initialize stats storage", zap.Error(err))
	}

	m := metrics.New()
	tracker := usage.NewTracker(filepath.Join(cfg.Store.DataDir, "usage.json"))

	srv := &server{
		analyzer: analyzer.New(recordStore, statsStorage, m, log, analyzer.Options{
			CacheTTL:        cfg.Cache.TTL,
			MaxCacheEntries: cfg.Cache.MaxEntries,
		}),
		store: recordStore,
		stats: statsStorage,
		usage: tracker,
		log:   log,
	}
	defer srv.analyzer.Shutdown()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler(log))
	r.Use(rateLimiter.RateLimit())
	r.Use(m.Middleware())
	r.Use(corsMiddleware())
	r.Use(middleware.UsageTracking(tracker))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/analyze", srv.analyzeWebsite)
		api.POST("/visibility", srv.visibilityScore)
		api.GET("/analyses/:id", srv.getAnalysis)

		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"usage":   tracker.Snapshot(),
				"monthly": statsStorage.GetCurrentStats(),
				"cache":   srv.analyzer.GetCacheStats(),
			})
		})
	}

	r.GET("/metrics", gin.WrapH(m.Handler()))

	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// analyzeWebsite runs the readiness analysis. When no analysisId is
// supplied a new pending record is created first.
func (s *server) analyzeWebsite(c *gin.Context) {
	var request struct {
		URL        string `json:"url" binding:"required,url"`
		AnalysisID string `json:"analysisId"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}

	c.Set(middleware.AnalyzedURLKey, request.URL)

	id := request.AnalysisID
	if id == "" {
		id = uuid.NewString()
		if err := s.store.Create(&store.Record{
			ID:        id,
			URL:       request.URL,
			Status:    store.StatusPending,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			s.log.Error("failed to create analysis record", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create analysis"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), analysisTimeout)
	defer cancel()

	rec, err := s.analyzer.RunReadiness(ctx, request.URL, id)
	if err != nil {
		s.respondAnalysisError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// visibilityScore runs the AEO analysis against an existing record.
func (s *server) visibilityScore(c *gin.Context) {
	var request struct {
		URL        string `json:"url" binding:"required,url"`
		AnalysisID string `json:"analysisId" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL and analysisId are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), analysisTimeout)
	defer cancel()

	snap, err := s.analyzer.RunAEO(ctx, request.URL, request.AnalysisID)
	if err != nil {
		s.respondAnalysisError(c, request.AnalysisID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"analysisId": request.AnalysisID,
		"aeoScore":   snap.OverallScore,
		"aeo":        snap,
	})
}

func (s *server) getAnalysis(c *gin.Context) {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
			return
		}
		s.log.Error("failed to read analysis record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read analysis"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *server) respondAnalysisError(c *gin.Context, id string, err error) {
	var fetchErr *analyzer.FetchError
	switch {
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "analysisId": id})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
	default:
		s.log.Error("analysis failed", zap.String("analysisId", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze URL: " + err.Error()})
	}
}
