package quizgen

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"smartstudy/internal/config"
	"smartstudy/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaBackend runs prompts on a local Ollama server through langchaingo.
// One client is kept per model name.
type OllamaBackend struct {
	serverURL  string
	httpClient *http.Client

	mu      sync.Mutex
	clients map[string]*ollama.LLM
}

// NewOllamaBackend creates an OllamaBackend for the configured server.
func NewOllamaBackend(cfg config.OllamaConfig) (*OllamaBackend, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("ollama server URL is required")
	}
	return &OllamaBackend{
		serverURL:  cfg.ServerURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		clients:    make(map[string]*ollama.LLM),
	}, nil
}

func (b *OllamaBackend) clientFor(model string) (*ollama.LLM, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if llm, ok := b.clients[model]; ok {
		return llm, nil
	}
	llm, err := ollama.New(
		ollama.WithServerURL(b.serverURL),
		ollama.WithModel(model),
		ollama.WithHTTPClient(b.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client for %s: %w", model, err)
	}
	b.clients[model] = llm
	return llm, nil
}

// Call reports every failure as a transport error; the ollama client does
// not expose response status codes.
func (b *OllamaBackend) Call(ctx context.Context, call domain.BackendCall) (string, error) {
	llm, err := b.clientFor(call.Model.Name)
	if err != nil {
		return "", err
	}
	text, err := llms.GenerateFromSinglePrompt(ctx, llm, call.Prompt,
		llms.WithTemperature(call.Model.Temperature),
		llms.WithMaxTokens(call.Model.MaxOutputTokens),
	)
	if err != nil {
		return "", &domain.BackendTransportError{Model: call.Model.Name, Err: err}
	}
	return text, nil
}

var _ domain.GenerationBackend = (*OllamaBackend)(nil)
