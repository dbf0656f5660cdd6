package middleware

import (
	"strings"

	"smartstudy/internal/domain"
	"smartstudy/internal/dto"
	"smartstudy/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the validation middleware
const (
	ValidatedRequestKey = "validated_request"
	ValidatedFilesKey   = "validated_files"
	ValidatedJobIDKey   = "validated_job_id"
	ValidatedScoreKey   = "validated_score"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(validator *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

// ValidateGenerateQuiz parses and validates a JSON generation request
func (vm *ValidationMiddleware) ValidateGenerateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.GenerateQuizRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("request body must be a JSON generation request")
		}

		if errors := vm.validator.ValidateGenerateQuizRequest(req); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals(ValidatedRequestKey, req)
		return c.Next()
	}
}

// ValidateUploadForm validates a multipart request carrying documents and
// generation options. Options are only checked when question_count is sent.
func (vm *ValidationMiddleware) ValidateUploadForm(requireOptions bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return domain.ValidationErrors{domain.NewMissingFieldError("files")}
		}
		files := form.File["files"]
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Filename)
		}
		errors := vm.validator.ValidateUploadNames(names)

		if requireOptions {
			req := dto.GenerateQuizRequest{
				Difficulty:   c.FormValue("difficulty"),
				QuestionType: c.FormValue("question_type"),
				FocusArea:    c.FormValue("focus_area"),
				Model:        c.FormValue("model"),
				APIKey:       c.FormValue("api_key"),
			}
			countStr := strings.TrimSpace(c.FormValue("question_count"))
			if countStr == "" {
				errors = append(errors, domain.NewMissingFieldError("question_count"))
			} else if count, err := parseCount(countStr); err != nil {
				errors = append(errors, domain.NewInvalidFormatError("question_count", countStr))
			} else {
				req.QuestionCount = count
				errors = append(errors, vm.validator.ValidateGenerationOptions(req)...)
			}
			c.Locals(ValidatedRequestKey, req)
		}

		if len(errors) > 0 {
			return errors
		}
		c.Locals(ValidatedFilesKey, files)
		return c.Next()
	}
}

// ValidateJobID validates the :id path parameter
func (vm *ValidationMiddleware) ValidateJobID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobID := c.Params("id")
		if errors := vm.validator.ValidateJobID(jobID); len(errors) > 0 {
			return errors
		}
		c.Locals(ValidatedJobIDKey, jobID)
		return c.Next()
	}
}

// ValidateScore parses and validates a scoring request
func (vm *ValidationMiddleware) ValidateScore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.ScoreQuizRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("request body must be a JSON scoring request")
		}
		if errors := vm.validator.ValidateScoreRequest(req); len(errors) > 0 {
			return errors
		}
		c.Locals(ValidatedScoreKey, req)
		return c.Next()
	}
}

// parseCount parses a question count form value
func parseCount(countStr string) (int, error) {
	count := 0
	for _, char := range countStr {
		if char < '0' || char > '9' {
			return 0, domain.NewValidationError("count must be a number")
		}
		count = count*10 + int(char-'0')
		if count > validation.MaxQuestionCount { // Early termination for efficiency
			return 0, domain.NewValidationError("count exceeds maximum value")
		}
	}
	if count == 0 {
		return 0, domain.NewValidationError("count must be greater than 0")
	}
	return count, nil
}
