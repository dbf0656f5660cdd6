package service

import (
	"context"

	"smartstudy/internal/domain"

	"go.uber.org/zap"
)

// Orchestrator produces a quiz for a prompt and never fails.
type Orchestrator interface {
	Generate(ctx context.Context, prompt, apiKey, modelSelector string) domain.OrchestrationResult
}

// FallbackOrchestrator tries registry models in priority order and stops at
// the first one that yields a usable quiz.
type FallbackOrchestrator struct {
	registry *domain.ModelRegistry
	invoker  QuizInvoker
	logger   *zap.Logger
}

// NewFallbackOrchestrator creates a FallbackOrchestrator over an injected registry.
func NewFallbackOrchestrator(registry *domain.ModelRegistry, invoker QuizInvoker, logger *zap.Logger) *FallbackOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackOrchestrator{registry: registry, invoker: invoker, logger: logger}
}

// Generate returns the first model result, or the fixed fallback quiz flagged
// as synthetic when every candidate declined.
func (o *FallbackOrchestrator) Generate(ctx context.Context, prompt, apiKey, modelSelector string) domain.OrchestrationResult {
	candidates := o.registry.Candidates(modelSelector)
	for _, model := range candidates {
		o.logger.Debug("Trying model", zap.String("model", model.Name), zap.Int("priority", model.Priority))
		quiz, ok := o.invoker.Invoke(ctx, prompt, apiKey, model)
		if ok && quiz != nil {
			return domain.OrchestrationResult{Quiz: *quiz, Model: model.Name}
		}
	}

	o.logger.Warn("All models failed, using fallback quiz",
		zap.String("selector", modelSelector),
		zap.Int("candidates", len(candidates)),
	)
	return domain.OrchestrationResult{Quiz: FallbackQuiz(), Synthetic: true}
}

var _ Orchestrator = (*FallbackOrchestrator)(nil)
