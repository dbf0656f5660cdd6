package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"smartstudy/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"job not found", domain.NewJobNotFoundError("01HGZ8VNRYXS8QKNJV5GRWPWDQ"), fiber.StatusNotFound, "JOB_NOT_FOUND"},
		{"invalid input", domain.NewInvalidInputError("content cannot be empty"), fiber.StatusBadRequest, "INVALID_INPUT"},
		{"unsupported file", domain.NewUnsupportedFileError("a.exe", ".exe"), fiber.StatusBadRequest, "UNSUPPORTED_FILE"},
		{"extraction failed", domain.NewExtractionError("extractor unreachable", errors.New("dial")), fiber.StatusBadGateway, "EXTRACTION_FAILED"},
		{"llm unavailable", domain.NewLLMServiceError(errors.New("503")), fiber.StatusServiceUnavailable, "LLM_SERVICE_ERROR"},
		{"single validation error", domain.NewMissingFieldError("files"), fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"validation errors", domain.ValidationErrors{domain.NewMissingFieldError("content")}, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"fiber error", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"unknown error", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var body struct {
				Code   string `json:"code"`
				Status int    `json:"status"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body.Code)
			assert.Equal(t, tt.wantCode, body.Status)
		})
	}
}

func TestParseCount(t *testing.T) {
	n, err := parseCount("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"0", "-3", "ten", "51", "999999999999"} {
		_, err := parseCount(bad)
		assert.Error(t, err, bad)
	}
}
