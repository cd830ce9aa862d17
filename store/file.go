package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ai-readiness/backend/readiness"
	"github.com/ai-readiness/backend/recommend"
)

// FileStore keeps records in memory and persists them as a single JSON
// file, written via a temporary file and an atomic rename. Writes are
// coalesced through a background writer.
type FileStore struct {
	mutex       sync.RWMutex
	records     map[string]*Record
	filePath    string
	writeBuffer chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

// NewFileStore creates the data directory if needed, loads any existing
// records and starts the background writer.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{
		records:     make(map[string]*Record),
		filePath:    filepath.Join(dataDir, "analyses.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load analyses: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.records)
}

func (s *FileStore) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.records)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal analyses: %w", err)
	}

	// Write to a temporary file first, then rename (atomic on POSIX).
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (s *FileStore) backgroundWriter() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			s.save()
		case <-ticker.C:
			s.save()
		case <-s.done:
			return
		}
	}
}

func (s *FileStore) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// Write already pending.
	}
}

// Create inserts a new record.
func (s *FileStore) Create(rec *Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("analysis %s already exists", rec.ID)
	}

	cp := *rec
	s.records[rec.ID] = &cp
	s.requestWrite()
	return nil
}

// Get returns a copy of the record for id.
func (s *FileStore) Get(id string) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return nil, ErrNotFound
	}

	cp := *rec
	return &cp, nil
}

// UpdateStatus transitions the record's lifecycle state.
func (s *FileStore) UpdateStatus(id string, status Status) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, exists := s.records[id]
	if !exists {
		return ErrNotFound
	}

	rec.Status = status
	s.requestWrite()
	return nil
}

// SaveReadiness stores the readiness side of the record and marks it
// completed.
func (s *FileStore) SaveReadiness(id string, report *readiness.Report, recs []recommend.Recommendation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, exists := s.records[id]
	if !exists {
		return ErrNotFound
	}

	now := time.Now().UTC()
	rec.Status = StatusCompleted
	rec.OverallScore = report.Overall
	rec.Readiness = report
	rec.Recommendations = recs
	rec.CompletedAt = &now
	s.requestWrite()
	return nil
}

// SaveFailure marks the record failed with one critical recommendation.
func (s *FileStore) SaveFailure(id string, failure recommend.Recommendation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, exists := s.records[id]
	if !exists {
		return ErrNotFound
	}

	rec.Status = StatusFailed
	rec.Recommendations = []recommend.Recommendation{failure}
	s.requestWrite()
	return nil
}

// SaveAEO stores the AEO side of the record. Status and readiness fields
// are left untouched.
func (s *FileStore) SaveAEO(id string, snap *AEOSnapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, exists := s.records[id]
	if !exists {
		return ErrNotFound
	}

	cp := *snap
	rec.AEO = &cp
	s.requestWrite()
	return nil
}

// Close stops the background writer after a final flush.
func (s *FileStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.save()
	})
	return err
}
