package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"smartstudy/internal/domain"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an error response is kept for logs.
const maxErrorBody = 512

// HTTPDoer abstracts the HTTP client used by REST backends.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GeminiBackend calls the Gemini generateContent REST endpoint of a model.
type GeminiBackend struct {
	client HTTPDoer
	logger *zap.Logger
}

// NewGeminiBackend creates a GeminiBackend. A nil client uses http.DefaultClient.
func NewGeminiBackend(client HTTPDoer, logger *zap.Logger) *GeminiBackend {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiBackend{client: client, logger: logger}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Call sends one prompt and returns the first candidate's text. An answer
// without candidates yields empty text, which callers treat as unusable.
func (b *GeminiBackend) Call(ctx context.Context, call domain.BackendCall) (string, error) {
	model := call.Model
	if model.Endpoint == "" {
		return "", fmt.Errorf("model %s has no endpoint configured", model.Name)
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: call.Prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     model.Temperature,
			MaxOutputTokens: model.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := model.Endpoint + "?key=" + url.QueryEscape(call.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", &domain.BackendTransportError{Model: model.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		b.logger.Warn("Gemini request failed",
			zap.String("model", model.Name),
			zap.Int("status", resp.StatusCode),
		)
		return "", &domain.BackendStatusError{
			Model:      model.Name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &domain.BackendTransportError{Model: model.Name, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		b.logger.Warn("Gemini returned no candidates", zap.String("model", model.Name))
		return "", nil
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

var _ domain.GenerationBackend = (*GeminiBackend)(nil)
