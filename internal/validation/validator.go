package validation

import (
	"path/filepath"
	"slices"
	"strings"

	"smartstudy/internal/domain"
	"smartstudy/internal/dto"
	"smartstudy/internal/util"
)

const (
	MinQuestionCount   = 1
	MaxQuestionCount   = 50
	MaxFocusAreaLength = 200
	MaxUploadFiles     = 10
)

// Validator provides request validation functionality
type Validator struct {
	models []string
}

// NewValidator creates a validator that accepts the given model names
// in addition to "auto".
func NewValidator(models []string) *Validator {
	return &Validator{models: models}
}

// ValidateGenerateQuizRequest validates a JSON generation request
func (v *Validator) ValidateGenerateQuizRequest(req dto.GenerateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, domain.NewMissingFieldError("content"))
	}
	errors = append(errors, v.ValidateGenerationOptions(req)...)

	return errors
}

// ValidateGenerationOptions validates everything except the content, which
// file uploads supply later
func (v *Validator) ValidateGenerationOptions(req dto.GenerateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if req.QuestionCount < MinQuestionCount || req.QuestionCount > MaxQuestionCount {
		errors = append(errors, domain.NewOutOfRangeError("question_count", req.QuestionCount, MinQuestionCount, MaxQuestionCount))
	}
	if req.Difficulty != "" && !slices.Contains(domain.Difficulties, req.Difficulty) {
		errors = append(errors, domain.NewInvalidFormatError("difficulty", req.Difficulty))
	}
	if req.QuestionType != "" && !slices.Contains(domain.QuestionTypes, req.QuestionType) {
		errors = append(errors, domain.NewInvalidFormatError("question_type", req.QuestionType))
	}
	if req.Model != "" && req.Model != domain.AutoModel && !slices.Contains(v.models, req.Model) {
		errors = append(errors, domain.NewInvalidFormatError("model", req.Model))
	}
	if len(req.FocusArea) > MaxFocusAreaLength {
		errors = append(errors, domain.NewOutOfRangeError("focus_area", len(req.FocusArea), 0, MaxFocusAreaLength))
	}

	return errors
}

// ValidateUploadNames checks the number and extensions of uploaded files
func (v *Validator) ValidateUploadNames(names []string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(names) == 0 {
		return append(errors, domain.NewMissingFieldError("files"))
	}
	if len(names) > MaxUploadFiles {
		errors = append(errors, domain.NewOutOfRangeError("files", len(names), 1, MaxUploadFiles))
	}
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(domain.SupportedExtensions, ext) {
			errors = append(errors, domain.ValidationError{
				Code:    domain.CodeUnsupportedFile,
				Field:   "files",
				Message: "unsupported file type, expected one of " + strings.Join(domain.SupportedExtensions, ", "),
				Value:   name,
			})
		}
	}

	return errors
}

// ValidateJobID validates a job identifier
func (v *Validator) ValidateJobID(jobID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(jobID) == "" {
		errors = append(errors, domain.NewMissingFieldError("job_id"))
	} else if !util.IsULID(jobID) {
		errors = append(errors, domain.NewInvalidFormatError("job_id", jobID))
	}

	return errors
}

// ValidateScoreRequest validates a scoring request
func (v *Validator) ValidateScoreRequest(req dto.ScoreQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req.Questions) == 0 {
		return append(errors, domain.NewMissingFieldError("questions"))
	}
	for _, q := range req.Questions {
		if len(q.Options) != domain.OptionCount {
			errors = append(errors, domain.NewInvalidFormatError("questions.options", len(q.Options)))
			break
		}
	}
	for _, a := range req.Answers {
		if a < -1 || a >= domain.OptionCount {
			errors = append(errors, domain.NewOutOfRangeError("answers", a, -1, domain.OptionCount-1))
			break
		}
	}

	return errors
}
