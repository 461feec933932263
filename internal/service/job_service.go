package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

// ErrShuttingDown is returned by Submit once Shutdown was called.
var ErrShuttingDown = errors.New("job service is shutting down")

// JobService runs engine calls in the background, one goroutine per job, and
// records their progress in an OperationRepository.
type JobService struct {
	repo   domain.OperationRepository
	logger domain.Logger

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func NewJobService(repo domain.OperationRepository, logger domain.Logger) *JobService {
	return &JobService{
		repo:   repo,
		logger: logger,
	}
}

// Submit queues fn and returns the job as first recorded.
func (s *JobService) Submit(operation string, fn func(context.Context) domain.OperationResult) (*domain.Job, error) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	s.wg.Add(1)
	s.mu.Unlock()

	job := &domain.Job{
		ID:        uuid.New().String(),
		Operation: operation,
		Status:    domain.JobQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.save(job)
	snapshot := *job

	go s.run(job, fn)
	return &snapshot, nil
}

func (s *JobService) run(job *domain.Job, fn func(context.Context) domain.OperationResult) {
	defer s.wg.Done()

	started := time.Now().UTC()
	job.Status = domain.JobRunning
	job.StartedAt = &started
	s.save(job)
	s.logger.Info("Job started", "job_id", job.ID, "operation", job.Operation)

	result := s.call(job, fn)

	finished := time.Now().UTC()
	job.FinishedAt = &finished
	job.Result = &result
	job.Status = domain.JobSucceeded
	if !result.Success {
		job.Status = domain.JobFailed
	}
	s.save(job)
	s.logger.Info("Job finished", "job_id", job.ID, "operation", job.Operation, "status", job.Status, "duration_ms", finished.Sub(started).Milliseconds())
}

// call shields the worker from panics in engine code.
func (s *JobService) call(job *domain.Job, fn func(context.Context) domain.OperationResult) (result domain.OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			err := apperrors.NewInternalError("operation panicked", fmt.Errorf("%v", r))
			s.logger.Error("Job panicked", err, "job_id", job.ID, "operation", job.Operation)
			result = domain.Failed(err, apperrors.ErrorTypeInternal)
		}
	}()
	return fn(context.Background())
}

func (s *JobService) save(job *domain.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Error("Failed to save job", err, "job_id", job.ID, "status", job.Status)
	}
}

// Get returns a recorded job.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.repo.Get(ctx, id)
}

// List returns the most recent jobs, newest first.
func (s *JobService) List(ctx context.Context, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}

// Shutdown stops accepting jobs and waits for running ones until ctx is done.
func (s *JobService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
