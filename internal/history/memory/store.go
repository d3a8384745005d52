// Package memory provides an in-memory job-history store for
// development and testing.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/webnav/navigator/internal/navigator"
)

// ErrNotFound is returned when a job ID has no recorded result.
var ErrNotFound = errors.New("job not found")

// Store keeps job results in a map.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]navigator.JobResult
}

// NewStore constructs a Store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]navigator.JobResult)}
}

// RecordJob stores a completed job result.
func (s *Store) RecordJob(_ context.Context, result navigator.JobResult) error {
	if result.JobID == "" {
		return errors.New("job id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[result.JobID] = result
	return nil
}

// GetJob fetches a job result by ID.
func (s *Store) GetJob(_ context.Context, jobID string) (navigator.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.jobs[jobID]
	if !ok {
		return navigator.JobResult{}, ErrNotFound
	}
	return result, nil
}
