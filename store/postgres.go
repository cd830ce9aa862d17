package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ai-readiness/backend/readiness"
	"github.com/ai-readiness/backend/recommend"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS website_analyses (
	id              TEXT PRIMARY KEY,
	url             TEXT NOT NULL,
	status          TEXT NOT NULL,
	overall_score   INTEGER NOT NULL DEFAULT 0,
	readiness       JSONB,
	recommendations JSONB,
	aeo             JSONB,
	created_at      TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ
)`

// PostgresStore persists records in PostgreSQL. Category details,
// recommendations and the AEO block are stored as JSONB so readiness and
// AEO writes touch disjoint columns.
type PostgresStore struct {
	conn *sql.DB
}

// NewPostgresStore opens a connection pool, verifies it and ensures the
// schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if _, err := conn.Exec(postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &PostgresStore{conn: conn}, nil
}

// Create inserts a new record.
func (s *PostgresStore) Create(rec *Record) error {
	query := `
		INSERT INTO website_analyses (id, url, status, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.conn.Exec(query, rec.ID, rec.URL, string(rec.Status), rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// Get returns the record for id.
func (s *PostgresStore) Get(id string) (*Record, error) {
	query := `
		SELECT id, url, status, overall_score, readiness, recommendations, aeo, created_at, completed_at
		FROM website_analyses WHERE id = $1
	`

	var (
		rec           Record
		status        string
		readinessJSON []byte
		recsJSON      []byte
		aeoJSON       []byte
		completedAt   sql.NullTime
	)

	err := s.conn.QueryRow(query, id).Scan(
		&rec.ID, &rec.URL, &status, &rec.OverallScore,
		&readinessJSON, &recsJSON, &aeoJSON,
		&rec.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}

	rec.Status = Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	if len(readinessJSON) > 0 {
		var report readiness.Report
		if err := json.Unmarshal(readinessJSON, &report); err != nil {
			return nil, fmt.Errorf("failed to decode readiness results: %w", err)
		}
		rec.Readiness = &report
	}
	if len(recsJSON) > 0 {
		if err := json.Unmarshal(recsJSON, &rec.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}
	if len(aeoJSON) > 0 {
		var snap AEOSnapshot
		if err := json.Unmarshal(aeoJSON, &snap); err != nil {
			return nil, fmt.Errorf("failed to decode aeo results: %w", err)
		}
		rec.AEO = &snap
	}

	return &rec, nil
}

// UpdateStatus transitions the record's lifecycle state.
func (s *PostgresStore) UpdateStatus(id string, status Status) error {
	return s.update(id, `UPDATE website_analyses SET status = $2 WHERE id = $1`, string(status))
}

// SaveReadiness stores the readiness side of the record and marks it
// completed.
func (s *PostgresStore) SaveReadiness(id string, report *readiness.Report, recs []recommend.Recommendation) error {
	readinessJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal readiness results: %w", err)
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	query := `
		UPDATE website_analyses
		SET status = $2, overall_score = $3, readiness = $4, recommendations = $5, completed_at = $6
		WHERE id = $1
	`
	return s.update(id, query, string(StatusCompleted), report.Overall, readinessJSON, recsJSON, time.Now().UTC())
}

// SaveFailure marks the record failed with one critical recommendation.
func (s *PostgresStore) SaveFailure(id string, failure recommend.Recommendation) error {
	recsJSON, err := json.Marshal([]recommend.Recommendation{failure})
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	query := `UPDATE website_analyses SET status = $2, recommendations = $3 WHERE id = $1`
	return s.update(id, query, string(StatusFailed), recsJSON)
}

// SaveAEO stores the AEO side of the record, leaving status and the
// readiness columns untouched.
func (s *PostgresStore) SaveAEO(id string, snap *AEOSnapshot) error {
	aeoJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal aeo results: %w", err)
	}

	return s.update(id, `UPDATE website_analyses SET aeo = $2 WHERE id = $1`, aeoJSON)
}

func (s *PostgresStore) update(id, query string, args ...interface{}) error {
	res, err := s.conn.Exec(query, append([]interface{}{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.conn.Close()
}
