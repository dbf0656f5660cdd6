package quizgen_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartstudy/internal/adapter/quizgen"
	"smartstudy/internal/config"
	"smartstudy/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIBackend_RequiresKey(t *testing.T) {
	_, err := quizgen.NewOpenAIBackend(config.OpenAIConfig{}, nil)
	assert.Error(t, err)
}

func TestOpenAIBackend_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Equal(t, "quiz prompt", body.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"{\"questions\":[]}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	backend, err := quizgen.NewOpenAIBackend(config.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"}, server.Client())
	require.NoError(t, err)

	text, err := backend.Call(context.Background(), domain.BackendCall{
		Prompt: "quiz prompt",
		Model:  domain.ModelDescriptor{Name: "gpt-4o-mini", Kind: domain.ModelKindOpenAI, MaxOutputTokens: 1000, Temperature: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"questions":[]}`, text)
}

func TestOpenAIBackend_Call_Overloaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"engine overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	backend, err := quizgen.NewOpenAIBackend(config.OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"}, server.Client())
	require.NoError(t, err)

	_, err = backend.Call(context.Background(), domain.BackendCall{
		Prompt: "p",
		Model:  domain.ModelDescriptor{Name: "gpt-4o-mini", Kind: domain.ModelKindOpenAI, MaxOutputTokens: 10},
	})

	var statusErr *domain.BackendStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, statusErr.Overloaded())
}
