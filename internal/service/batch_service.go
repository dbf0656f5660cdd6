package service

import (
	"context"
	"fmt"
	"time"

	"smartstudy/internal/config"
	"smartstudy/internal/domain"
	"smartstudy/internal/util"

	"go.uber.org/zap"
)

// BatchService splits large requests into batches and drives each one
// through the fallback orchestrator.
type BatchService interface {
	GenerateWithSplitting(ctx context.Context, req domain.GenerationRequest, reporter domain.ProgressReporter) domain.GenerationResult
}

// batchService implements the BatchService interface.
type batchService struct {
	orchestrator Orchestrator
	policy       config.GenerationConfig
	sleep        Sleeper
	logger       *zap.Logger
	now          func() time.Time
}

// batchState is owned by a single batch for the duration of its attempts.
type batchState struct {
	plan      BatchPlan
	attempt   int
	questions []domain.QuizQuestion
}

// NewBatchService creates a new instance of batchService.
func NewBatchService(
	orchestrator Orchestrator,
	policy config.GenerationConfig,
	sleep Sleeper,
	logger *zap.Logger,
) BatchService {
	if sleep == nil {
		sleep = ContextSleep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &batchService{
		orchestrator: orchestrator,
		policy:       policy,
		sleep:        sleep,
		logger:       logger,
		now:          time.Now,
	}
}

// GenerateWithSplitting always returns a usable result; degraded output is
// signalled through the result's Outcome and the progress events.
func (s *batchService) GenerateWithSplitting(ctx context.Context, req domain.GenerationRequest, reporter domain.ProgressReporter) domain.GenerationResult {
	emit := progressEmitter{reporter: reporter, logger: s.logger, now: s.now}.emit
	count := req.QuestionCount
	if count <= 0 {
		emit(domain.ProgressEvent{Stage: domain.StageCompleted, Message: "No questions requested.", Current: 0, Total: 0})
		return domain.GenerationResult{Outcome: domain.OutcomeGenerated, Quiz: domain.QuizData{Questions: []domain.QuizQuestion{}}}
	}

	if count <= s.policy.SingleRequestMax {
		return s.generateSingle(ctx, req, emit)
	}

	plans := PlanBatches(count, s.policy.BatchSize)
	s.logger.Info("Splitting quiz generation into batches",
		zap.Int("question_count", count),
		zap.Int("batch_size", s.policy.BatchSize),
		zap.Int("batches", len(plans)),
		zap.String("model", req.Model),
	)
	emit(domain.ProgressEvent{
		Stage:   domain.StageStarted,
		Message: fmt.Sprintf("Starting generation of %d questions...", count),
		Current: 0,
		Total:   count,
		Batches: len(plans),
	})

	var all []domain.QuizQuestion
	syntheticBatches := 0
	for _, plan := range plans {
		emit(domain.ProgressEvent{
			Stage:   domain.StageBatchStarted,
			Message: fmt.Sprintf("Generating batch %d/%d (%d questions)...", plan.Number, len(plans), plan.Size),
			Current: len(all),
			Total:   count,
			Batch:   plan.Number,
			Batches: len(plans),
		})

		content := SliceContent(req.Content, plan.Index, len(plans), s.policy.ContentOverlap)
		prompt := BuildQuizPrompt(content, plan.Size, req.Difficulty, req.QuestionType, req.FocusArea, s.policy.MaxContentChars)

		state := &batchState{plan: plan}
		if s.runBatch(ctx, prompt, req, state) {
			all = append(all, state.questions...)
			s.logger.Info("Batch successful",
				zap.Int("batch", plan.Number),
				zap.Int("questions", len(state.questions)),
				zap.Int("attempts", state.attempt+1),
			)
			emit(domain.ProgressEvent{
				Stage:   domain.StageBatchCompleted,
				Message: fmt.Sprintf("Batch %d completed! Generated %d questions.", plan.Number, len(state.questions)),
				Current: len(all),
				Total:   count,
				Batch:   plan.Number,
				Batches: len(plans),
			})
		} else {
			filler := FillerQuestions(plan.Size, plan.Number, plan.Offset)
			all = append(all, filler...)
			syntheticBatches++
			s.logger.Error("Batch failed, using placeholder questions",
				zap.Int("batch", plan.Number),
				zap.Int("attempts", s.policy.MaxBatchAttempts),
				zap.Int("placeholders", len(filler)),
			)
			emit(domain.ProgressEvent{
				Stage:   domain.StageBatchFallback,
				Message: fmt.Sprintf("Batch %d failed after %d attempts; added %d placeholder questions.", plan.Number, s.policy.MaxBatchAttempts, len(filler)),
				Current: len(all),
				Total:   count,
				Batch:   plan.Number,
				Batches: len(plans),
			})
		}

		if plan.Index < len(plans)-1 {
			if err := s.sleep(ctx, s.policy.InterBatchDelay); err != nil {
				s.logger.Warn("Inter-batch delay interrupted", zap.Int("batch", plan.Number), zap.Error(err))
			}
		}
	}

	result := s.finalize(all, count, len(plans), syntheticBatches)
	s.emitCompletion(emit, result, len(all))
	return result
}

// generateSingle serves small requests with exactly one orchestration call.
func (s *batchService) generateSingle(ctx context.Context, req domain.GenerationRequest, emit func(domain.ProgressEvent)) domain.GenerationResult {
	s.logger.Info("Using single request", zap.Int("question_count", req.QuestionCount), zap.String("model", req.Model))
	emit(domain.ProgressEvent{
		Stage:   domain.StageStarted,
		Message: fmt.Sprintf("Generating %d questions...", req.QuestionCount),
		Current: 0,
		Total:   req.QuestionCount,
		Batches: 1,
	})

	prompt := BuildQuizPrompt(req.Content, req.QuestionCount, req.Difficulty, req.QuestionType, req.FocusArea, s.policy.MaxContentChars)
	res := s.orchestrator.Generate(ctx, prompt, req.APIKey, req.Model)

	synthetic := 0
	if res.Synthetic {
		synthetic = 1
	}
	result := s.finalize(res.Quiz.Questions, req.QuestionCount, 1, synthetic)
	s.emitCompletion(emit, result, len(res.Quiz.Questions))
	return result
}

// runBatch retries the orchestrator until it returns real questions or the
// attempt budget is spent. Synthetic orchestrator output counts as a failure.
func (s *batchService) runBatch(ctx context.Context, prompt string, req domain.GenerationRequest, state *batchState) bool {
	for state.attempt = 0; state.attempt < s.policy.MaxBatchAttempts; state.attempt++ {
		res := s.orchestrator.Generate(ctx, prompt, req.APIKey, req.Model)
		if !res.Synthetic && len(res.Quiz.Questions) > 0 {
			questions := res.Quiz.Questions
			if len(questions) > state.plan.Size {
				questions = questions[:state.plan.Size]
			}
			state.questions = append(state.questions, questions...)
			return true
		}

		s.logger.Warn("Batch attempt produced no questions",
			zap.Int("batch", state.plan.Number),
			zap.Int("attempt", state.attempt+1),
			zap.Int("max_attempts", s.policy.MaxBatchAttempts),
		)
		if state.attempt == s.policy.MaxBatchAttempts-1 {
			break
		}
		delay := util.BackoffDelay(s.policy.BackoffBase, state.attempt)
		if err := s.sleep(ctx, delay); err != nil {
			s.logger.Warn("Batch retry wait interrupted", zap.Int("batch", state.plan.Number), zap.Error(err))
			break
		}
	}
	return false
}

// finalize dedupes and trims to count; it never pads.
func (s *batchService) finalize(questions []domain.QuizQuestion, count, batches, syntheticBatches int) domain.GenerationResult {
	final := Dedupe(questions)
	if len(final) > count {
		final = final[:count]
	}

	outcome := domain.OutcomeGenerated
	switch {
	case syntheticBatches > 0 && syntheticBatches >= batches:
		outcome = domain.OutcomeSynthetic
	case syntheticBatches > 0:
		outcome = domain.OutcomePartial
	}

	result := domain.GenerationResult{
		Quiz:             domain.QuizData{Questions: final},
		Outcome:          outcome,
		Requested:        count,
		Batches:          batches,
		SyntheticBatches: syntheticBatches,
	}
	if removed := len(questions) - len(Dedupe(questions)); removed > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d duplicate questions removed", removed))
	}
	if short := result.Shortfall(); short > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d of %d requested questions could not be generated", short, count))
	}
	if syntheticBatches > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d of %d batches used placeholder questions", syntheticBatches, batches))
	}
	return result
}

func (s *batchService) emitCompletion(emit func(domain.ProgressEvent), result domain.GenerationResult, produced int) {
	got := result.Quiz.Len()
	msg := fmt.Sprintf("Quiz generation complete! Created %d questions.", got)
	if short := result.Shortfall(); short > 0 {
		msg = fmt.Sprintf("Quiz generation complete! Created %d of %d requested questions (%d removed as duplicates or missing).", got, result.Requested, short)
	}
	s.logger.Info("Quiz generation finished",
		zap.Int("requested", result.Requested),
		zap.Int("produced", produced),
		zap.Int("final", got),
		zap.String("outcome", string(result.Outcome)),
	)
	emit(domain.ProgressEvent{
		Stage:   domain.StageCompleted,
		Message: msg,
		Current: got,
		Total:   got,
		Batches: result.Batches,
	})
}

var _ BatchService = (*batchService)(nil)
