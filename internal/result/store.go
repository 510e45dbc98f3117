package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Store persists check records to a JSON file.
type Store struct {
	path    string
	records []*CheckRecord
	mu      sync.RWMutex
}

// NewStore opens the report at path. A missing file starts an empty store;
// an unreadable or malformed one is an error so it is never overwritten.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Add saves a record, replacing any earlier record for the same file.
func (s *Store) Add(r *CheckRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.records {
		if existing.File == r.File {
			s.records[i] = r
			return s.save()
		}
	}

	s.records = append(s.records, r)
	return s.save()
}

// Failed returns records that are not WPA-SEC compatible.
func (s *Store) Failed() []*CheckRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var failed []*CheckRecord
	for _, r := range s.records {
		if !r.Passed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// FindByFile looks up a record by file path.
func (s *Store) FindByFile(file string) *CheckRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.File == file {
			return r
		}
	}
	return nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	var records []*CheckRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse report %s: %w", s.path, err)
	}
	s.records = records
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
