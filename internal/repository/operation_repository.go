package repository

import (
	"context"
	"sort"
	"sync"

	"pdf-toolbox/internal/domain"
)

// MemoryOperationRepository keeps job records in process memory.
type MemoryOperationRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

func NewMemoryOperationRepository() *MemoryOperationRepository {
	return &MemoryOperationRepository{jobs: make(map[string]*domain.Job)}
}

func (r *MemoryOperationRepository) Save(_ context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *MemoryOperationRepository) Get(_ context.Context, id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return cloneJob(job), nil
}

// List returns up to limit jobs, newest first.
func (r *MemoryOperationRepository) List(_ context.Context, limit int) ([]*domain.Job, error) {
	r.mu.RLock()
	jobs := make([]*domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, cloneJob(job))
	}
	r.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func cloneJob(job *domain.Job) *domain.Job {
	c := *job
	if job.Result != nil {
		res := *job.Result
		res.Outputs = append([]string(nil), job.Result.Outputs...)
		c.Result = &res
	}
	if job.StartedAt != nil {
		t := *job.StartedAt
		c.StartedAt = &t
	}
	if job.FinishedAt != nil {
		t := *job.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
