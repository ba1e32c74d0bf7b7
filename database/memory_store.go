package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tieubaoca/pdf-insight-be/types"
)

// MemoryJobStore keeps jobs in a mutex-guarded map. Records live for the
// process lifetime; there is no eviction. Get returns a copy so readers
// never observe a job mid-mutation.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*types.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[string]*types.Job),
	}
}

func (s *MemoryJobStore) Create(ctx context.Context, job *types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *MemoryJobStore) Get(ctx context.Context, id string) (*types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", types.ErrNotFound, id)
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryJobStore) SetStatus(ctx context.Context, id string, status types.JobStatus) error {
	return s.update(id, func(job *types.Job) {
		job.Status = status
	})
}

func (s *MemoryJobStore) SetResult(ctx context.Context, id string, result *types.JobResult) error {
	return s.update(id, func(job *types.Job) {
		job.Status = types.JobStatusCompleted
		job.Result = result
	})
}

func (s *MemoryJobStore) SetError(ctx context.Context, id string, message string) error {
	return s.update(id, func(job *types.Job) {
		job.Status = types.JobStatusFailed
		job.Error = message
	})
}

func (s *MemoryJobStore) update(id string, fn func(job *types.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: job %s", types.ErrNotFound, id)
	}
	fn(job)
	job.UpdatedAt = time.Now().Unix()
	return nil
}
