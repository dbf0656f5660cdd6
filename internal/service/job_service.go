package service

import (
	"context"
	"sync"
	"time"

	"smartstudy/internal/domain"
	"smartstudy/internal/logger"
	"smartstudy/internal/util"

	"go.uber.org/zap"
)

// DefaultJobTimeout bounds one asynchronous generation run.
const DefaultJobTimeout = 10 * time.Minute

// JobService runs quiz generation in the background and exposes its progress.
type JobService interface {
	Start(ctx context.Context, req domain.GenerationRequest) (string, error)
	Get(ctx context.Context, jobID string) (*domain.Job, error)
	Shutdown(ctx context.Context) error
}

type jobService struct {
	quizzes QuizService
	store   domain.JobStore
	timeout time.Duration
	newID   func() string
	wg      sync.WaitGroup
}

// NewJobService creates a JobService. A zero timeout uses DefaultJobTimeout.
func NewJobService(quizzes QuizService, store domain.JobStore, timeout time.Duration) JobService {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &jobService{
		quizzes: quizzes,
		store:   store,
		timeout: timeout,
		newID:   util.NewULID,
	}
}

// jobProgress writes every event into the job store.
type jobProgress struct {
	store domain.JobStore
	jobID string
}

func (p jobProgress) Report(event domain.ProgressEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.AppendProgress(ctx, p.jobID, event); err != nil {
		logger.Get().Warn("Failed to record job progress", zap.String("job_id", p.jobID), zap.Error(err))
	}
}

// Start records a pending job and returns its ID immediately. The run
// outlives ctx; it is bounded by the service timeout instead.
func (s *jobService) Start(ctx context.Context, req domain.GenerationRequest) (string, error) {
	job := &domain.Job{ID: s.newID(), Status: domain.JobPending}
	if err := s.store.Create(ctx, job); err != nil {
		return "", err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(job.ID, req)
	}()

	logger.Get().Info("Quiz generation job started", zap.String("job_id", job.ID), zap.Int("question_count", req.QuestionCount))
	return job.ID, nil
}

func (s *jobService) run(jobID string, req domain.GenerationRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.store.SetStatus(ctx, jobID, domain.JobRunning); err != nil {
		logger.Get().Warn("Failed to mark job running", zap.String("job_id", jobID), zap.Error(err))
	}

	reporter := MultiProgress{jobProgress{store: s.store, jobID: jobID}, NewLoggingProgress(logger.Get().With(zap.String("job_id", jobID)))}
	result, err := s.quizzes.GenerateQuiz(ctx, req, reporter)
	if err != nil {
		logger.Get().Error("Quiz generation job rejected", zap.String("job_id", jobID), zap.Error(err))
		reporter.Report(domain.ProgressEvent{Stage: domain.StageCompleted, Message: err.Error(), Total: req.QuestionCount, At: time.Now()})
		if err := s.store.SetStatus(context.Background(), jobID, domain.JobFailed); err != nil {
			logger.Get().Error("Failed to mark job failed", zap.String("job_id", jobID), zap.Error(err))
		}
		return
	}

	// the run context may already be spent; the result must still land
	storeCtx, storeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer storeCancel()
	if err := s.store.Complete(storeCtx, jobID, result); err != nil {
		logger.Get().Error("Failed to store job result", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	logger.Get().Info("Quiz generation job completed",
		zap.String("job_id", jobID),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("questions", result.Quiz.Len()),
	)
}

func (s *jobService) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	if !util.IsULID(jobID) {
		return nil, domain.NewInvalidFormatError("job_id", jobID)
	}
	return s.store.Get(ctx, jobID)
}

// Shutdown waits for running jobs or until ctx is done.
func (s *jobService) Shutdown(ctx context.Context) error {
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

var _ JobService = (*jobService)(nil)
