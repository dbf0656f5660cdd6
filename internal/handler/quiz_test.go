package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartstudy/internal/domain"
	"smartstudy/internal/dto"
	"smartstudy/internal/handler"
	"smartstudy/internal/middleware"
	"smartstudy/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GenerateQuiz(ctx context.Context, req domain.GenerationRequest, reporter domain.ProgressReporter) (domain.GenerationResult, error) {
	args := m.Called(ctx, req, reporter)
	return args.Get(0).(domain.GenerationResult), args.Error(1)
}

func (m *MockQuizService) GenerateFromFiles(ctx context.Context, files []domain.UploadedFile, req domain.GenerationRequest, reporter domain.ProgressReporter) (domain.GenerationResult, error) {
	args := m.Called(ctx, files, req, reporter)
	return args.Get(0).(domain.GenerationResult), args.Error(1)
}

func (m *MockQuizService) Score(quiz domain.QuizData, answers []int) domain.ScoreReport {
	return m.Called(quiz, answers).Get(0).(domain.ScoreReport)
}

func (m *MockQuizService) Models() []domain.ModelDescriptor {
	return m.Called().Get(0).([]domain.ModelDescriptor)
}

type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, files []domain.UploadedFile) (string, error) {
	args := m.Called(ctx, files)
	return args.String(0), args.Error(1)
}

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Start(ctx context.Context, req domain.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockJobService) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) Shutdown(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubExtractor struct {
	healthErr error
}

func (s stubExtractor) ExtractText(ctx context.Context, files []domain.UploadedFile) (string, error) {
	return "", errors.New("not used")
}

func (s stubExtractor) Health(ctx context.Context) error { return s.healthErr }

// --- helpers ---

type fixture struct {
	app        *fiber.App
	quizzes    *MockQuizService
	extraction *MockExtractionService
	jobs       *MockJobService
}

func newFixture(extractor domain.TextExtractor) *fixture {
	f := &fixture{
		quizzes:    new(MockQuizService),
		extraction: new(MockExtractionService),
		jobs:       new(MockJobService),
	}
	f.app = fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	f.app.Use(middleware.RequestLogger())
	vm := middleware.NewValidationMiddleware(validation.NewValidator([]string{"gemini-1.5-flash", "gemini-1.5-pro"}))
	handler.RegisterRoutes(f.app,
		handler.NewQuizHandler(f.quizzes, f.extraction, f.jobs),
		handler.NewHealthHandler(nil, extractor),
		vm,
	)
	return f
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func sampleResult() domain.GenerationResult {
	return domain.GenerationResult{
		Quiz: domain.QuizData{Questions: []domain.QuizQuestion{
			{Question: "What does chlorophyll absorb?", Options: []string{"Light", "Water", "Soil", "Heat"}, Correct: 0, Explanation: "Light energy."},
			{Question: "Where does photosynthesis occur?", Options: []string{"Roots", "Chloroplasts", "Stem", "Seeds"}, Correct: 1, Explanation: "In chloroplasts."},
		}},
		Outcome:   domain.OutcomeGenerated,
		Requested: 2,
		Batches:   1,
	}
}

// --- tests ---

func TestRootAndHealth(t *testing.T) {
	f := newFixture(stubExtractor{healthErr: errors.New("connection refused")})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health dto.HealthResponse
	decode(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "disabled", health.Components["redis"])
	assert.Equal(t, "unavailable", health.Components["extractor"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))

	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListModels(t *testing.T) {
	f := newFixture(nil)
	f.quizzes.On("Models").Return([]domain.ModelDescriptor{
		{Name: "gemini-1.5-flash", Kind: domain.ModelKindGemini, Priority: 1, MaxOutputTokens: 4096},
		{Name: "gemini-1.5-pro", Kind: domain.ModelKindGemini, Priority: 2, MaxOutputTokens: 8192},
	})

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/models", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.ModelsResponse
	decode(t, resp, &body)
	assert.Equal(t, domain.AutoModel, body.Default)
	require.Len(t, body.Models, 2)
	assert.Equal(t, "gemini-1.5-flash", body.Models[0].Name)
}

func TestGenerateQuiz(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(nil)
		f.quizzes.On("GenerateQuiz", mock.Anything, mock.MatchedBy(func(req domain.GenerationRequest) bool {
			return req.QuestionCount == 2 && req.Content == "Photosynthesis converts light" && req.Difficulty == "easy"
		}), mock.Anything).Return(sampleResult(), nil).Once()

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/quizzes", dto.GenerateQuizRequest{
			Content:       "Photosynthesis converts light",
			QuestionCount: 2,
			Difficulty:    "easy",
		}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.GenerateQuizResponse
		decode(t, resp, &body)
		assert.Equal(t, "generated", body.Outcome)
		assert.Equal(t, 2, body.Generated)
		assert.Equal(t, 2, body.Requested)
		assert.Equal(t, "Where does photosynthesis occur?", body.Questions[1].Question)
		f.quizzes.AssertExpectations(t)
	})

	t.Run("degraded result is still 200", func(t *testing.T) {
		f := newFixture(nil)
		result := domain.GenerationResult{
			Quiz:             sampleResult().Quiz,
			Outcome:          domain.OutcomeSynthetic,
			Requested:        2,
			SyntheticBatches: 1,
			Warnings:         []string{"1 of 1 batches used placeholder questions"},
		}
		f.quizzes.On("GenerateQuiz", mock.Anything, mock.Anything, mock.Anything).Return(result, nil).Once()

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/quizzes", dto.GenerateQuizRequest{Content: "x", QuestionCount: 2}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.GenerateQuizResponse
		decode(t, resp, &body)
		assert.Equal(t, "synthetic", body.Outcome)
		assert.Equal(t, 1, body.SyntheticBatches)
		assert.NotEmpty(t, body.Warnings)
	})

	t.Run("validation errors", func(t *testing.T) {
		f := newFixture(nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/quizzes", dto.GenerateQuizRequest{
			QuestionCount: 0,
			Difficulty:    "impossible",
			Model:         "gpt-9",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body middleware.ValidationErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, string(domain.CodeValidation), body.Code)
		fields := make([]string, 0, len(body.Errors))
		for _, e := range body.Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"content", "question_count", "difficulty", "model"}, fields)
		f.quizzes.AssertNotCalled(t, "GenerateQuiz", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(nil)
		req := httptest.NewRequest(http.MethodPost, "/api/quizzes", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing api key", func(t *testing.T) {
		f := newFixture(nil)
		f.quizzes.On("GenerateQuiz", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.GenerationResult{}, domain.NewInvalidInputError("an API key is required for quiz generation")).Once()

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/quizzes", dto.GenerateQuizRequest{Content: "x", QuestionCount: 3}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body middleware.ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, string(domain.CodeInvalidInput), body.Code)
	})
}

func TestGenerateFromFiles(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(nil)
		f.quizzes.On("GenerateFromFiles", mock.Anything,
			mock.MatchedBy(func(files []domain.UploadedFile) bool {
				if len(files) != 1 || files[0].Name != "notes.txt" {
					return false
				}
				data, _ := io.ReadAll(files[0].Content)
				return string(data) == "cells divide"
			}),
			mock.MatchedBy(func(req domain.GenerationRequest) bool {
				return req.QuestionCount == 12 && req.FocusArea == "mitosis"
			}),
			mock.Anything,
		).Return(sampleResult(), nil).Once()

		req := multipartRequest(t, "/api/quizzes/from-files",
			map[string]string{"notes.txt": "cells divide"},
			map[string]string{"question_count": "12", "focus_area": "mitosis"},
		)
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		f.quizzes.AssertExpectations(t)
	})

	t.Run("unsupported file and bad count", func(t *testing.T) {
		f := newFixture(nil)

		req := multipartRequest(t, "/api/quizzes/from-files",
			map[string]string{"virus.exe": "MZ"},
			map[string]string{"question_count": "ten"},
		)
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body middleware.ValidationErrorResponse
		decode(t, resp, &body)
		require.Len(t, body.Errors, 2)
		assert.Equal(t, domain.CodeUnsupportedFile, body.Errors[0].Code)
		assert.Equal(t, domain.CodeInvalidFormat, body.Errors[1].Code)
	})

	t.Run("extraction failure", func(t *testing.T) {
		f := newFixture(nil)
		f.quizzes.On("GenerateFromFiles", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(domain.GenerationResult{}, domain.NewExtractionError("no text could be extracted from the uploaded files", nil)).Once()

		req := multipartRequest(t, "/api/quizzes/from-files",
			map[string]string{"slides.pdf": "%PDF"},
			map[string]string{"question_count": "5"},
		)
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	})
}

func TestExtractText(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(nil)
		f.extraction.On("Extract", mock.Anything, mock.MatchedBy(func(files []domain.UploadedFile) bool {
			return len(files) == 2
		})).Return("combined text", nil).Once()

		req := multipartRequest(t, "/api/extract-text", map[string]string{"a.docx": "A", "b.pptx": "B"}, nil)
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.ExtractTextResponse
		decode(t, resp, &body)
		assert.Equal(t, "combined text", body.Text)
		assert.Equal(t, 13, body.Characters)
	})

	t.Run("no files", func(t *testing.T) {
		f := newFixture(nil)
		req := multipartRequest(t, "/api/extract-text", nil, map[string]string{"note": "x"})

		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body middleware.ValidationErrorResponse
		decode(t, resp, &body)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, domain.CodeMissingField, body.Errors[0].Code)
	})

	t.Run("file too large", func(t *testing.T) {
		f := newFixture(nil)
		f.extraction.On("Extract", mock.Anything, mock.Anything).
			Return("", domain.NewError(domain.CodeOutOfRange, "file big.pdf exceeds the 10 byte limit", nil)).Once()

		req := multipartRequest(t, "/api/extract-text", map[string]string{"big.pdf": "0123456789ABC"}, nil)
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestQuizJobs(t *testing.T) {
	const jobID = "01HGZ8VNRYXS8QKNJV5GRWPWDQ"

	t.Run("start returns 202", func(t *testing.T) {
		f := newFixture(nil)
		f.jobs.On("Start", mock.Anything, mock.MatchedBy(func(req domain.GenerationRequest) bool {
			return req.QuestionCount == 20
		})).Return(jobID, nil).Once()

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/quiz-jobs", dto.GenerateQuizRequest{Content: "notes", QuestionCount: 20}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		var body dto.JobCreatedResponse
		decode(t, resp, &body)
		assert.Equal(t, jobID, body.JobID)
		assert.Equal(t, "pending", body.Status)
	})

	t.Run("get completed job", func(t *testing.T) {
		f := newFixture(nil)
		result := sampleResult()
		f.jobs.On("Get", mock.Anything, jobID).Return(&domain.Job{
			ID:       jobID,
			Status:   domain.JobCompleted,
			Progress: &domain.ProgressEvent{Stage: domain.StageCompleted, Message: "Quiz generation complete! Created 2 questions.", Current: 2, Total: 2},
			Events: []domain.ProgressEvent{
				{Stage: domain.StageStarted, Message: "Starting generation of 2 questions...", Total: 2},
				{Stage: domain.StageCompleted, Message: "Quiz generation complete! Created 2 questions.", Current: 2, Total: 2},
			},
			Result: &result,
		}, nil).Once()

		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/quiz-jobs/"+jobID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body dto.JobResponse
		decode(t, resp, &body)
		assert.Equal(t, "completed", body.Status)
		require.NotNil(t, body.Progress)
		assert.Equal(t, 2, body.Progress.Current)
		assert.Len(t, body.Events, 2)
		require.NotNil(t, body.Result)
		assert.Len(t, body.Result.Questions, 2)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := newFixture(nil)

		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/quiz-jobs/not-a-ulid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		f.jobs.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("unknown job", func(t *testing.T) {
		f := newFixture(nil)
		f.jobs.On("Get", mock.Anything, jobID).Return(nil, domain.NewJobNotFoundError(jobID)).Once()

		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/quiz-jobs/"+jobID, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body middleware.ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, string(domain.CodeJobNotFound), body.Code)
	})
}

func TestScoreQuiz(t *testing.T) {
	questions := []dto.QuestionResponse{
		{Question: "Q1", Options: []string{"A", "B", "C", "D"}, Correct: 0},
		{Question: "Q2", Options: []string{"A", "B", "C", "D"}, Correct: 3},
	}

	t.Run("success", func(t *testing.T) {
		f := newFixture(nil)
		f.quizzes.On("Score", mock.MatchedBy(func(q domain.QuizData) bool { return len(q.Questions) == 2 }), []int{0, -1}).
			Return(domain.ScoreReport{Score: 1, Total: 2, Percentage: 50}).Once()

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/quizzes/score", dto.ScoreQuizRequest{
			Questions: questions,
			Answers:   []int{0, -1},
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body domain.ScoreReport
		decode(t, resp, &body)
		assert.Equal(t, 50, body.Percentage)
	})

	t.Run("answer out of range", func(t *testing.T) {
		f := newFixture(nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/quizzes/score", dto.ScoreQuizRequest{
			Questions: questions,
			Answers:   []int{7},
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
