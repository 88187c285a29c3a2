package storage

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/nemanja-m/scatter/internal/coordinator/core"
)

// InMemoryRunStore keeps runs for the lifetime of the process. Runs are
// copied in and out, so callers never share memory with the store.
type InMemoryRunStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*core.Run
}

func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{
		runs: make(map[uuid.UUID]*core.Run),
	}
}

func (s *InMemoryRunStore) SaveRun(run *core.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.Clone()
	return nil
}

// UpdateRun applies update to the stored run under the store lock.
func (s *InMemoryRunStore) UpdateRun(id uuid.UUID, update func(run *core.Run)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, exists := s.runs[id]
	if !exists {
		return core.ErrRunNotFound
	}
	update(run)
	return nil
}

func (s *InMemoryRunStore) GetRunByID(id uuid.UUID) (*core.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[id]
	if !exists {
		return nil, core.ErrRunNotFound
	}
	return run.Clone(), nil
}

// GetRuns returns the runs matching filter, newest first, and the total
// number of matches before pagination.
func (s *InMemoryRunStore) GetRuns(filter core.RunFilter) ([]*core.Run, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*core.Run
	for _, run := range s.runs {
		if filter.Status != nil && run.Status != *filter.Status {
			continue
		}
		matches = append(matches, run)
	}
	slices.SortFunc(matches, func(a, b *core.Run) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})

	total := len(matches)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	runs := make([]*core.Run, 0, end-start)
	for _, run := range matches[start:end] {
		runs = append(runs, run.Clone())
	}
	return runs, total, nil
}
