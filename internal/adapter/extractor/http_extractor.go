package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"smartstudy/internal/config"
	"smartstudy/internal/domain"
	"smartstudy/internal/logger"

	"go.uber.org/zap"
)

// HTTPExtractor talks to the document extraction service over multipart HTTP.
type HTTPExtractor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExtractor creates an HTTPExtractor from configuration.
func NewHTTPExtractor(cfg config.ExtractorConfig, client *http.Client) (*HTTPExtractor, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("extractor base URL is required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPExtractor{baseURL: strings.TrimRight(cfg.BaseURL, "/"), client: client}, nil
}

type extractResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// ExtractText posts every file under the "files" field and returns the combined text.
func (e *HTTPExtractor) ExtractText(ctx context.Context, files []domain.UploadedFile) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return "", domain.NewInternalError("failed to build upload", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return "", domain.NewExtractionError(fmt.Sprintf("failed to read %s", f.Name), err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", domain.NewInternalError("failed to build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract-text", &body)
	if err != nil {
		return "", domain.NewInternalError("failed to create extraction request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		logger.Get().Error("Extraction service unreachable", zap.String("base_url", e.baseURL), zap.Error(err))
		return "", domain.NewExtractionError("text extraction service is unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var detail errorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
			msg = detail.Detail
		}
		logger.Get().Warn("Extraction failed", zap.Int("status", resp.StatusCode), zap.String("detail", msg))
		return "", domain.NewExtractionError(fmt.Sprintf("extraction failed: %s", msg), nil).
			WithContext("status", resp.StatusCode)
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", domain.NewExtractionError("invalid response from extraction service", err)
	}
	return decoded.Text, nil
}

// Health checks GET {base}/health.
func (e *HTTPExtractor) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extractor health returned %d", resp.StatusCode)
	}
	return nil
}

var _ domain.TextExtractor = (*HTTPExtractor)(nil)
