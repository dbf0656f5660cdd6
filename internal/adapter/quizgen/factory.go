package quizgen

import (
	"fmt"
	"net/http"

	"smartstudy/internal/config"
	"smartstudy/internal/domain"

	"go.uber.org/zap"
)

// Resolver routes each model to the backend for its kind.
type Resolver struct {
	backends map[domain.ModelKind]domain.GenerationBackend
}

// NewResolver wires the backends the configuration enables. Gemini is always
// available; OpenAI and Ollama only when configured and used by a model.
func NewResolver(cfg *config.Config, registry *domain.ModelRegistry, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{backends: map[domain.ModelKind]domain.GenerationBackend{
		domain.ModelKindGemini: NewGeminiBackend(&http.Client{Timeout: cfg.Server.WriteTimeout}, logger),
	}}

	kinds := make(map[domain.ModelKind]bool)
	for _, m := range registry.Models() {
		kinds[m.Kind] = true
	}
	if kinds[domain.ModelKindOpenAI] {
		backend, err := NewOpenAIBackend(cfg.OpenAI, nil)
		if err != nil {
			return nil, fmt.Errorf("openai models configured: %w", err)
		}
		r.backends[domain.ModelKindOpenAI] = backend
	}
	if kinds[domain.ModelKindOllama] {
		backend, err := NewOllamaBackend(cfg.Ollama)
		if err != nil {
			return nil, fmt.Errorf("ollama models configured: %w", err)
		}
		r.backends[domain.ModelKindOllama] = backend
	}
	return r, nil
}

// NewStaticResolver builds a Resolver from explicit backends.
func NewStaticResolver(backends map[domain.ModelKind]domain.GenerationBackend) *Resolver {
	return &Resolver{backends: backends}
}

func (r *Resolver) BackendFor(model domain.ModelDescriptor) (domain.GenerationBackend, error) {
	backend, ok := r.backends[model.Kind]
	if !ok {
		return nil, fmt.Errorf("no backend for model %s of kind %q", model.Name, model.Kind)
	}
	return backend, nil
}

var _ domain.BackendResolver = (*Resolver)(nil)
