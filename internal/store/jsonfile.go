// internal/store/jsonfile.go
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/QuadKenya/growth-engine/internal/models"
)

// JSONFileStore persists candidates to a single JSON file. It serves
// local development and demos; production uses the Postgres store.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONFileStore(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFileStore) init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return os.WriteFile(s.path, []byte("[]"), 0o644)
	}
	return nil
}

func (s *JSONFileStore) readAll() ([]*models.CandidateRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var records []*models.CandidateRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// A corrupt file is treated as empty rather than wedging the
		// pipeline; the next write repairs it.
		return nil, nil
	}
	return records, nil
}

func (s *JSONFileStore) writeAll(records []*models.CandidateRecord) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	// Write-then-rename so a crash mid-write never truncates the file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONFileStore) Get(_ context.Context, id string) (*models.CandidateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONFileStore) Upsert(_ context.Context, rec *models.CandidateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != rec.ID {
			kept = append(kept, r)
		}
	}
	kept = append(kept, rec)
	return s.writeAll(kept)
}

func (s *JSONFileStore) ListAll(_ context.Context) ([]*models.CandidateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *JSONFileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return s.writeAll(kept)
}
