package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"smartstudy/internal/cache"
	"smartstudy/internal/domain"
	"smartstudy/internal/logger"

	"go.uber.org/zap"
)

// MaxJobEvents caps the progress history kept per job.
const MaxJobEvents = 50

const (
	jobFieldStatus    = "status"
	jobFieldProgress  = "progress"
	jobFieldResult    = "result"
	jobFieldCreatedAt = "created_at"
	jobFieldUpdatedAt = "updated_at"
)

// cacheJobStore keeps job state in a hash and the progress history in a list.
type cacheJobStore struct {
	cache domain.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewCacheJobStore creates a JobStore backed by a domain.Cache. A nil cache
// falls back to an in-process store.
func NewCacheJobStore(c domain.Cache, ttl time.Duration) domain.JobStore {
	if c == nil {
		logger.Get().Warn("Job store initialized without cache, using in-memory store")
		return NewMemoryJobStore(ttl)
	}
	return &cacheJobStore{cache: c, ttl: ttl, now: time.Now}
}

func (s *cacheJobStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *cacheJobStore) write(ctx context.Context, jobID string, fields map[string]string) error {
	key := cache.JobKey(jobID)
	fields[jobFieldUpdatedAt] = s.stamp()
	if err := s.cache.HSet(ctx, key, fields); err != nil {
		logger.Get().Error("Failed to write job state", zap.String("key", key), zap.Error(err))
		return domain.NewInternalError(fmt.Sprintf("failed to write job state for key %s", key), err)
	}
	if s.ttl > 0 {
		if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
			logger.Get().Warn("Failed to set job expiry", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (s *cacheJobStore) Create(ctx context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return domain.NewInvalidInputError("cannot store a job without an ID")
	}
	return s.write(ctx, job.ID, map[string]string{
		jobFieldStatus:    string(job.Status),
		jobFieldCreatedAt: s.stamp(),
	})
}

func (s *cacheJobStore) SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	return s.write(ctx, jobID, map[string]string{jobFieldStatus: string(status)})
}

func (s *cacheJobStore) AppendProgress(ctx context.Context, jobID string, event domain.ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return domain.NewInternalError("failed to marshal progress event", err)
	}
	if err := s.write(ctx, jobID, map[string]string{jobFieldProgress: string(data)}); err != nil {
		return err
	}

	eventsKey := cache.JobEventsKey(jobID)
	if err := s.cache.RPush(ctx, eventsKey, string(data), MaxJobEvents); err != nil {
		logger.Get().Error("Failed to append job progress", zap.String("key", eventsKey), zap.Error(err))
		return domain.NewInternalError(fmt.Sprintf("failed to append progress for key %s", eventsKey), err)
	}
	if s.ttl > 0 {
		if err := s.cache.Expire(ctx, eventsKey, s.ttl); err != nil {
			logger.Get().Warn("Failed to set job events expiry", zap.String("key", eventsKey), zap.Error(err))
		}
	}
	return nil
}

func (s *cacheJobStore) Complete(ctx context.Context, jobID string, result domain.GenerationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return domain.NewInternalError("failed to marshal generation result", err)
	}
	return s.write(ctx, jobID, map[string]string{
		jobFieldStatus: string(domain.JobCompleted),
		jobFieldResult: string(data),
	})
}

func (s *cacheJobStore) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	key := cache.JobKey(jobID)
	fields, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, domain.NewJobNotFoundError(jobID)
		}
		logger.Get().Error("Failed to read job state", zap.String("key", key), zap.Error(err))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to read job state for key %s", key), err)
	}

	job := &domain.Job{ID: jobID, Status: domain.JobStatus(fields[jobFieldStatus])}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields[jobFieldCreatedAt])
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields[jobFieldUpdatedAt])

	if raw := fields[jobFieldProgress]; raw != "" {
		var event domain.ProgressEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, domain.NewInternalError(fmt.Sprintf("failed to unmarshal progress for key %s", key), err)
		}
		job.Progress = &event
	}
	if raw := fields[jobFieldResult]; raw != "" {
		var result domain.GenerationResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, domain.NewInternalError(fmt.Sprintf("failed to unmarshal result for key %s", key), err)
		}
		job.Result = &result
	}

	history, err := s.cache.LRange(ctx, cache.JobEventsKey(jobID))
	if err != nil {
		logger.Get().Warn("Failed to read job progress history", zap.String("job_id", jobID), zap.Error(err))
		return job, nil
	}
	for _, raw := range history {
		var event domain.ProgressEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			continue
		}
		job.Events = append(job.Events, event)
	}
	return job, nil
}

// memoryJobStore is used when no Redis is configured.
type memoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryJobStore creates an in-process JobStore. Jobs older than ttl are
// dropped when new jobs are created.
func NewMemoryJobStore(ttl time.Duration) domain.JobStore {
	return &memoryJobStore{jobs: make(map[string]*domain.Job), ttl: ttl, now: time.Now}
}

func (s *memoryJobStore) Create(ctx context.Context, job *domain.Job) error {
	if job == nil || job.ID == "" {
		return domain.NewInvalidInputError("cannot store a job without an ID")
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl > 0 {
		for id, j := range s.jobs {
			if now.Sub(j.UpdatedAt) > s.ttl {
				delete(s.jobs, id)
			}
		}
	}
	stored := *job
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.jobs[job.ID] = &stored
	return nil
}

func (s *memoryJobStore) update(jobID string, fn func(*domain.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.NewJobNotFoundError(jobID)
	}
	fn(job)
	job.UpdatedAt = s.now()
	return nil
}

func (s *memoryJobStore) SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	return s.update(jobID, func(j *domain.Job) { j.Status = status })
}

func (s *memoryJobStore) AppendProgress(ctx context.Context, jobID string, event domain.ProgressEvent) error {
	return s.update(jobID, func(j *domain.Job) {
		e := event
		j.Progress = &e
		j.Events = append(j.Events, event)
		if len(j.Events) > MaxJobEvents {
			j.Events = j.Events[len(j.Events)-MaxJobEvents:]
		}
	})
}

func (s *memoryJobStore) Complete(ctx context.Context, jobID string, result domain.GenerationResult) error {
	return s.update(jobID, func(j *domain.Job) {
		r := result
		j.Status = domain.JobCompleted
		j.Result = &r
	})
}

func (s *memoryJobStore) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.NewJobNotFoundError(jobID)
	}
	copied := *job
	copied.Events = append([]domain.ProgressEvent(nil), job.Events...)
	return &copied, nil
}
