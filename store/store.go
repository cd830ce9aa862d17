// Package store persists website analysis records. The scoring engine
// treats it as an opaque create/read/update record store; backends are a
// JSON file (default) and PostgreSQL.
package store

import (
	"errors"
	"time"

	"github.com/ai-readiness/backend/aeo"
	"github.com/ai-readiness/backend/readiness"
	"github.com/ai-readiness/backend/recommend"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("analysis not found")

// Status is the lifecycle state of an analysis record:
// pending -> analyzing -> completed | failed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// AEOSnapshot holds the visibility-score fields written by the AEO path.
// It lives beside the readiness fields on the same record but is written
// independently; there is no cross-scorer transaction, so a reader can
// observe a record with either side present and the other absent.
type AEOSnapshot struct {
	OverallScore         float64         `json:"overallScore"`
	StructuredDataScore  int             `json:"structuredDataScore"`
	SnippetOptScore      int             `json:"snippetOptScore"`
	CrawlabilityScore    int             `json:"crawlabilityScore"`
	FeaturedSnippetScore int             `json:"featuredSnippetScore"`
	ContentQualityScore  int             `json:"contentQualityScore"`
	TechnicalSEOScore    int             `json:"technicalSeoScore"`
	SchemasFound         []string        `json:"schemasFound"`
	Issues               []string        `json:"issues"`
	AIModelAccess        aeo.ModelAccess `json:"aiModelAccess"`
}

// Record is one website analysis as stored.
type Record struct {
	ID              string                     `json:"id"`
	URL             string                     `json:"url"`
	Status          Status                     `json:"status"`
	OverallScore    int                        `json:"overallScore"`
	Readiness       *readiness.Report          `json:"readiness,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations,omitempty"`
	AEO             *AEOSnapshot               `json:"aeo,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
	CompletedAt     *time.Time                 `json:"completedAt,omitempty"`
}

// Store is the persistence boundary for analysis records.
type Store interface {
	// Create inserts a new record.
	Create(rec *Record) error
	// Get returns the record for id, or ErrNotFound.
	Get(id string) (*Record, error)
	// UpdateStatus transitions the record's lifecycle state.
	UpdateStatus(id string, status Status) error
	// SaveReadiness stores the readiness results and recommendations,
	// marking the record completed with a completion timestamp.
	SaveReadiness(id string, report *readiness.Report, recs []recommend.Recommendation) error
	// SaveFailure marks the record failed with a single critical
	// recommendation describing the fetch error.
	SaveFailure(id string, rec recommend.Recommendation) error
	// SaveAEO stores the AEO fields without touching status or the
	// readiness fields.
	SaveAEO(id string, snap *AEOSnapshot) error
	// Close flushes and releases the backend.
	Close() error
}
