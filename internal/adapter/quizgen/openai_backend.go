package quizgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"smartstudy/internal/config"
	"smartstudy/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend reaches OpenAI-compatible chat completion APIs. The model
// descriptor name is sent as the model ID.
type OpenAIBackend struct {
	client *openai.Client
}

// NewOpenAIBackend creates an OpenAIBackend from configuration.
func NewOpenAIBackend(cfg config.OpenAIConfig, httpClient *http.Client) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(clientCfg)}, nil
}

func (b *OpenAIBackend) Call(ctx context.Context, call domain.BackendCall) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: call.Model.Name,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: call.Prompt},
		},
		MaxTokens:   call.Model.MaxOutputTokens,
		Temperature: float32(call.Model.Temperature),
	})
	if err != nil {
		return "", mapOpenAIError(call.Model.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// mapOpenAIError keeps HTTP answers apart from requests that never got one.
func mapOpenAIError(model string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &domain.BackendStatusError{Model: model, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &domain.BackendStatusError{Model: model, StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return &domain.BackendTransportError{Model: model, Err: err}
}

var _ domain.GenerationBackend = (*OpenAIBackend)(nil)
