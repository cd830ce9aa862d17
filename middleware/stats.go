package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ai-readiness/backend/usage"
)

// AnalyzedURLKey is set by the analyze handler so usage tracking can
// attribute the request to the site that was graded rather than to our
// own API URL.
const AnalyzedURLKey = "analyzedUrl"

// UsageTracking records visitors and analysis requests.
func UsageTracking(tracker *usage.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		tracker.TrackVisitor(c.ClientIP())

		c.Next()

		if c.FullPath() == "/api/analyze" && c.Request.Method == http.MethodPost {
			duration := float64(time.Since(start).Milliseconds())
			tracker.TrackAnalysis(c.GetString(AnalyzedURLKey), duration, c.Writer.Status() >= 400)

			// Persist asynchronously every 100 analyses.
			if tracker.AnalysisTotal()%100 == 0 {
				go tracker.Save()
			}
		}
	}
}
