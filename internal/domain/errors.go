package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Quiz generation errors
	CodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	CodeUnsupportedFile  ErrorCode = "UNSUPPORTED_FILE"
	CodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	CodeLLMServiceError  ErrorCode = "LLM_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a detail to the error and returns it for chaining.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewExtractionError(message string, cause error) *DomainError {
	return NewError(CodeExtractionFailed, message, cause)
}

func NewUnsupportedFileError(filename, ext string) *DomainError {
	return NewError(CodeUnsupportedFile, fmt.Sprintf("Unsupported file type: %s", ext), nil).
		WithContext("filename", filename).
		WithContext("supported", strings.Join(SupportedExtensions, ", "))
}

func NewJobNotFoundError(jobID string) *DomainError {
	return NewError(CodeJobNotFound, fmt.Sprintf("Generation job not found: %s", jobID), nil)
}

func NewLLMServiceError(cause error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", cause)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Code    ErrorCode   `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects every field problem found in one request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func NewValidationError(message string) ValidationError {
	return ValidationError{Code: CodeValidation, Message: message}
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Code: CodeMissingField, Field: field, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Code: CodeInvalidFormat, Field: field, Message: "invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{
		Code:    CodeOutOfRange,
		Field:   field,
		Message: fmt.Sprintf("must be between %d and %d", min, max),
		Value:   value,
	}
}

// BackendStatusError is returned by a generation backend when the endpoint
// answered with a non-2xx HTTP status.
type BackendStatusError struct {
	Model      string
	StatusCode int
	Body       string
}

func (e *BackendStatusError) Error() string {
	return fmt.Sprintf("model %s returned HTTP %d: %s", e.Model, e.StatusCode, e.Body)
}

// Overloaded reports whether the backend signalled a transient overload (503).
func (e *BackendStatusError) Overloaded() bool {
	return e.StatusCode == 503
}

// BackendTransportError wraps a network-level failure talking to a backend.
type BackendTransportError struct {
	Model string
	Err   error
}

func (e *BackendTransportError) Error() string {
	return fmt.Sprintf("model %s unreachable: %v", e.Model, e.Err)
}

func (e *BackendTransportError) Unwrap() error {
	return e.Err
}
