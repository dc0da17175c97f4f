package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"chazz/app/models"
)

var ErrJobNotFound = errors.New("job not found")

// JobStore keeps batch jobs and their per-position results. Progress is
// derived from the batches that have results, so saving a retried batch twice
// does not advance the job twice.
type JobStore interface {
	CreateJob(ctx context.Context, preset string, totalPositions, batchSize, totalBatches int) (string, error)
	SaveResults(ctx context.Context, jobID string, batchIndex int, preset string, results []models.PositionResult) error
	UpdateJobProgress(ctx context.Context, jobID string) error
	FindJobStatus(ctx context.Context, jobID string) (models.JobStatus, error)
	FindResults(ctx context.Context, jobID string) ([]models.PositionResult, error)
}

// MemoryStore is the JobStore used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*models.JobStatus
	results map[string]map[int][]models.PositionResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[string]*models.JobStatus),
		results: make(map[string]map[int][]models.PositionResult),
	}
}

func (s *MemoryStore) CreateJob(_ context.Context, preset string, totalPositions, batchSize, totalBatches int) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = &models.JobStatus{
		ID:             id,
		Status:         models.JobQueued,
		Preset:         preset,
		TotalPositions: totalPositions,
		BatchSize:      batchSize,
		TotalBatches:   totalBatches,
		CreatedAt:      time.Now().UTC(),
	}
	s.results[id] = make(map[int][]models.PositionResult)
	return id, nil
}

func (s *MemoryStore) SaveResults(_ context.Context, jobID string, batchIndex int, _ string, results []models.PositionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches, ok := s.results[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	batches[batchIndex] = append([]models.PositionResult(nil), results...)
	return nil
}

func (s *MemoryStore) UpdateJobProgress(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	job.CompletedBatches = len(s.results[jobID])
	job.Status = progressStatus(job.CompletedBatches, job.TotalBatches)
	return nil
}

func (s *MemoryStore) FindJobStatus(_ context.Context, jobID string) (models.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return models.JobStatus{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return *job, nil
}

// FindResults returns results in batch order.
func (s *MemoryStore) FindResults(_ context.Context, jobID string) ([]models.PositionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batches, ok := s.results[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	idx := make([]int, 0, len(batches))
	for i := range batches {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	var out []models.PositionResult
	for _, i := range idx {
		out = append(out, batches[i]...)
	}
	return out, nil
}

func progressStatus(completed, total int) string {
	switch {
	case completed >= total:
		return models.JobCompleted
	case completed > 0:
		return models.JobRunning
	default:
		return models.JobQueued
	}
}
