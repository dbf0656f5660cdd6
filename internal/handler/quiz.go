package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"smartstudy/internal/domain"
	"smartstudy/internal/dto"
	"smartstudy/internal/logger"
	"smartstudy/internal/middleware"
	"smartstudy/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	quizzes    service.QuizService
	extraction service.ExtractionService
	jobs       service.JobService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(quizzes service.QuizService, extraction service.ExtractionService, jobs service.JobService) *QuizHandler {
	return &QuizHandler{
		quizzes:    quizzes,
		extraction: extraction,
		jobs:       jobs,
	}
}

// ListModels godoc
// @Summary List generation models
// @Description Returns the configured models in fallback order
// @Tags models
// @Produce json
// @Success 200 {object} dto.ModelsResponse
// @Router /models [get]
func (h *QuizHandler) ListModels(c *fiber.Ctx) error {
	return c.JSON(dto.NewModelsResponse(h.quizzes.Models()))
}

// ExtractText godoc
// @Summary Extract text from documents
// @Description Extracts and combines the text of uploaded documents
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Documents (.pdf, .docx, .doc, .pptx, .ppt, .txt)"
// @Success 200 {object} dto.ExtractTextResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /extract-text [post]
func (h *QuizHandler) ExtractText(c *fiber.Ctx) error {
	if h.extraction == nil {
		return domain.NewExtractionError("text extraction is not configured", nil)
	}
	files, err := uploadedFiles(c)
	if err != nil {
		return err
	}

	text, err := h.extraction.Extract(c.UserContext(), files)
	if err != nil {
		return err
	}
	return c.JSON(dto.ExtractTextResponse{Text: text, Characters: len([]rune(text))})
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Generates multiple-choice questions from study material. Generation failures
// @Description degrade the outcome to partial or synthetic instead of failing the request.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	req, ok := c.Locals(middleware.ValidatedRequestKey).(dto.GenerateQuizRequest)
	if !ok {
		return domain.NewInternalError("generation request was not validated", nil)
	}

	result, err := h.quizzes.GenerateQuiz(c.UserContext(), req.ToDomain(), requestProgress(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewGenerateQuizResponse(result))
}

// GenerateFromFiles godoc
// @Summary Generate a quiz from documents
// @Description Extracts text from the uploaded documents, then generates a quiz from it
// @Tags quiz
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Documents"
// @Param question_count formData int true "Number of questions (1-50)"
// @Param difficulty formData string false "easy, medium, hard or mixed"
// @Param question_type formData string false "multiple_choice, true_false or mixed"
// @Param focus_area formData string false "Topic to emphasise"
// @Param model formData string false "Model name or auto"
// @Param api_key formData string false "Gemini API key"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /quizzes/from-files [post]
func (h *QuizHandler) GenerateFromFiles(c *fiber.Ctx) error {
	req, ok := c.Locals(middleware.ValidatedRequestKey).(dto.GenerateQuizRequest)
	if !ok {
		return domain.NewInternalError("generation request was not validated", nil)
	}
	files, err := uploadedFiles(c)
	if err != nil {
		return err
	}

	result, err := h.quizzes.GenerateFromFiles(c.UserContext(), files, req.ToDomain(), requestProgress(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewGenerateQuizResponse(result))
}

// StartJob godoc
// @Summary Start an asynchronous quiz generation
// @Description Returns a job id immediately; poll /quiz-jobs/{id} for progress and the result
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Generation request"
// @Success 202 {object} dto.JobCreatedResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quiz-jobs [post]
func (h *QuizHandler) StartJob(c *fiber.Ctx) error {
	req, ok := c.Locals(middleware.ValidatedRequestKey).(dto.GenerateQuizRequest)
	if !ok {
		return domain.NewInternalError("generation request was not validated", nil)
	}

	jobID, err := h.jobs.Start(c.UserContext(), req.ToDomain())
	if err != nil {
		logger.Get().Error("Failed to start generation job", zap.Error(err))
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.JobCreatedResponse{
		JobID:  jobID,
		Status: string(domain.JobPending),
	})
}

// GetJob godoc
// @Summary Get a generation job
// @Description Returns job status, progress history and, once completed, the quiz
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID (ULID)"
// @Success 200 {object} dto.JobResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz-jobs/{id} [get]
func (h *QuizHandler) GetJob(c *fiber.Ctx) error {
	jobID, _ := c.Locals(middleware.ValidatedJobIDKey).(string)

	job, err := h.jobs.Get(c.UserContext(), jobID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobResponse(job))
}

// ScoreQuiz godoc
// @Summary Score answers
// @Description Grades the selected option of each question
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.ScoreQuizRequest true "Quiz and answers"
// @Success 200 {object} dto.ScoreQuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quizzes/score [post]
func (h *QuizHandler) ScoreQuiz(c *fiber.Ctx) error {
	req, ok := c.Locals(middleware.ValidatedScoreKey).(dto.ScoreQuizRequest)
	if !ok {
		return domain.NewInternalError("score request was not validated", nil)
	}
	return c.JSON(h.quizzes.Score(req.ToDomain(), req.Answers))
}

// requestProgress logs progress of a synchronous request under its request id.
func requestProgress(c *fiber.Ctx) domain.ProgressReporter {
	log := logger.Get()
	if id, ok := c.Locals(middleware.RequestIDKey).(string); ok {
		log = log.With(zap.String("request_id", id))
	}
	return service.NewLoggingProgress(log)
}

// uploadedFiles reads the validated multipart files into memory.
func uploadedFiles(c *fiber.Ctx) ([]domain.UploadedFile, error) {
	headers, ok := c.Locals(middleware.ValidatedFilesKey).([]*multipart.FileHeader)
	if !ok || len(headers) == 0 {
		return nil, domain.NewMissingFieldError("files")
	}
	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("failed to read upload %s", fh.Filename))
		}
		files = append(files, domain.UploadedFile{
			Name:    fh.Filename,
			Size:    int64(len(data)),
			Content: bytes.NewReader(data),
		})
	}
	return files, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
