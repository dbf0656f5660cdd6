package service

import (
	"context"
	"strings"

	"smartstudy/internal/config"
	"smartstudy/internal/domain"
	"smartstudy/internal/logger"

	"go.uber.org/zap"
)

// QuizService defines the interface for quiz-related operations
type QuizService interface {
	GenerateQuiz(ctx context.Context, req domain.GenerationRequest, reporter domain.ProgressReporter) (domain.GenerationResult, error)
	GenerateFromFiles(ctx context.Context, files []domain.UploadedFile, req domain.GenerationRequest, reporter domain.ProgressReporter) (domain.GenerationResult, error)
	Score(quiz domain.QuizData, answers []int) domain.ScoreReport
	Models() []domain.ModelDescriptor
}

// quizService implements QuizService
type quizService struct {
	batches    BatchService
	extraction ExtractionService
	registry   *domain.ModelRegistry
	cfg        *config.Config
}

// NewQuizService creates a new instance of quizService. extraction may be nil
// when no extractor is configured; GenerateFromFiles then fails.
func NewQuizService(
	batches BatchService,
	extraction ExtractionService,
	registry *domain.ModelRegistry,
	cfg *config.Config,
) QuizService {
	return &quizService{
		batches:    batches,
		extraction: extraction,
		registry:   registry,
		cfg:        cfg,
	}
}

// GenerateQuiz fills request defaults and runs the batch pipeline. Only a
// malformed request is an error; generation failures degrade the result.
func (s *quizService) GenerateQuiz(ctx context.Context, req domain.GenerationRequest, reporter domain.ProgressReporter) (domain.GenerationResult, error) {
	req = s.withDefaults(req)
	if strings.TrimSpace(req.Content) == "" {
		return domain.GenerationResult{}, domain.NewInvalidInputError("content cannot be empty")
	}
	if req.QuestionCount <= 0 {
		return domain.GenerationResult{}, domain.NewInvalidInputError("question count must be positive")
	}
	if req.APIKey == "" {
		return domain.GenerationResult{}, domain.NewInvalidInputError("an API key is required for quiz generation")
	}

	logger.Get().Info("Generating quiz",
		zap.Int("question_count", req.QuestionCount),
		zap.String("difficulty", req.Difficulty),
		zap.String("question_type", req.QuestionType),
		zap.String("model", req.Model),
		zap.Int("content_chars", len(req.Content)),
	)

	result := s.batches.GenerateWithSplitting(ctx, req, reporter)
	if result.Outcome != domain.OutcomeGenerated {
		logger.Get().Warn("Quiz generation degraded",
			zap.String("outcome", string(result.Outcome)),
			zap.Int("synthetic_batches", result.SyntheticBatches),
			zap.Strings("warnings", result.Warnings),
		)
	}
	return result, nil
}

// GenerateFromFiles extracts text from the uploaded documents and generates from it.
func (s *quizService) GenerateFromFiles(ctx context.Context, files []domain.UploadedFile, req domain.GenerationRequest, reporter domain.ProgressReporter) (domain.GenerationResult, error) {
	if s.extraction == nil {
		return domain.GenerationResult{}, domain.NewExtractionError("text extraction is not configured", nil)
	}
	text, err := s.extraction.Extract(ctx, files)
	if err != nil {
		return domain.GenerationResult{}, err
	}
	req.Content = text
	return s.GenerateQuiz(ctx, req, reporter)
}

// Score implements QuizService
func (s *quizService) Score(quiz domain.QuizData, answers []int) domain.ScoreReport {
	return domain.ScoreQuiz(quiz, answers)
}

// Models returns the registry in priority order.
func (s *quizService) Models() []domain.ModelDescriptor {
	return s.registry.Models()
}

func (s *quizService) withDefaults(req domain.GenerationRequest) domain.GenerationRequest {
	if req.Difficulty == "" {
		req.Difficulty = domain.DifficultyMedium
	}
	if req.QuestionType == "" {
		req.QuestionType = domain.QuestionTypeMultipleChoice
	}
	if req.Model == "" {
		req.Model = domain.AutoModel
	}
	if req.APIKey == "" && s.cfg != nil {
		req.APIKey = s.cfg.Gemini.APIKey
	}
	return req
}

var _ QuizService = (*quizService)(nil)
