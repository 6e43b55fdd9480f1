// Package storage persists collected posts as a JSON array, with optional
// incremental flushing so an interrupted run leaves everything collected so
// far on disk. Loading an existing file merges instead of overwriting.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"xscraper/pkg/logger"
	"xscraper/pkg/models"
)

// JSONStore accumulates post records and writes them to a single JSON file.
// It is safe for concurrent use, although a collection run appends from one
// goroutine.
type JSONStore struct {
	path        string
	incremental bool
	log         logger.Logger

	mu      sync.Mutex
	records []models.PostRecord
	ids     map[string]bool
}

// NewJSONStore opens a store at path. An existing file is loaded and its
// records kept, so a re-run extends the previous output rather than
// clobbering it.
func NewJSONStore(path string, incremental bool, log logger.Logger) (*JSONStore, error) {
	s := &JSONStore{
		path:        path,
		incremental: incremental,
		log:         log,
		ids:         make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read existing output file: %w", err)
	}

	var existing []models.PostRecord
	if err := json.Unmarshal(data, &existing); err != nil {
		return nil, fmt.Errorf("existing output file is not a valid record array: %w", err)
	}
	for _, r := range existing {
		if r.ID == "" || s.ids[r.ID] {
			continue
		}
		s.ids[r.ID] = true
		s.records = append(s.records, r)
	}

	log.InfoWithFields("loaded existing output", map[string]interface{}{
		"file":    path,
		"records": len(s.records),
	})
	return s, nil
}

// Append adds a record and, in incremental mode, rewrites the file so the
// record survives a crash. Records with an already stored id are ignored.
func (s *JSONStore) Append(record models.PostRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" || s.ids[record.ID] {
		return nil
	}
	s.ids[record.ID] = true
	s.records = append(s.records, record)

	if s.incremental {
		return s.flushLocked()
	}
	return nil
}

// SeenIDs returns the ids already stored, in insertion order. The collection
// engine seeds its duplicate set from this on resume.
func (s *JSONStore) SeenIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.ID)
	}
	return out
}

// Count returns the number of stored records.
func (s *JSONStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of the stored records.
func (s *JSONStore) Records() []models.PostRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.PostRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Flush writes the full record array to disk atomically.
func (s *JSONStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *JSONStore) flushLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	records := s.records
	if records == nil {
		records = []models.PostRecord{}
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary output file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(records); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode records: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace output file: %w", err)
	}
	return nil
}
