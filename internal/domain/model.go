package domain

import (
	"fmt"
	"sort"
	"strings"
)

// AutoModel selects every registered model in priority order.
const AutoModel = "auto"

// ModelKind selects the wire protocol used to reach a model.
type ModelKind string

const (
	ModelKindGemini ModelKind = "gemini"
	ModelKindOpenAI ModelKind = "openai"
	ModelKindOllama ModelKind = "ollama"
)

// ModelDescriptor describes one generation backend. Lower Priority is tried first.
type ModelDescriptor struct {
	Name            string    `json:"name" mapstructure:"name"`
	Kind            ModelKind `json:"kind" mapstructure:"kind"`
	Endpoint        string    `json:"endpoint" mapstructure:"endpoint"`
	MaxOutputTokens int       `json:"max_output_tokens" mapstructure:"max_output_tokens"`
	Temperature     float64   `json:"temperature" mapstructure:"temperature"`
	Priority        int       `json:"priority" mapstructure:"priority"`
}

// ModelRegistry is an immutable, priority-ordered set of models.
type ModelRegistry struct {
	models []ModelDescriptor
}

// NewModelRegistry validates the descriptors and orders them by priority.
// Ties keep their declaration order.
func NewModelRegistry(models []ModelDescriptor) (*ModelRegistry, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("model registry requires at least one model")
	}
	seen := make(map[string]struct{}, len(models))
	sorted := make([]ModelDescriptor, 0, len(models))
	for _, m := range models {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("model name cannot be empty")
		}
		if m.Name == AutoModel {
			return nil, fmt.Errorf("model name %q is reserved", AutoModel)
		}
		if _, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("duplicate model %q", m.Name)
		}
		seen[m.Name] = struct{}{}
		if m.Kind == "" {
			m.Kind = ModelKindGemini
		}
		if m.MaxOutputTokens <= 0 {
			return nil, fmt.Errorf("model %q: max_output_tokens must be positive", m.Name)
		}
		sorted = append(sorted, m)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &ModelRegistry{models: sorted}, nil
}

// Models returns a copy of the models in priority order.
func (r *ModelRegistry) Models() []ModelDescriptor {
	out := make([]ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// Lookup finds a model by name.
func (r *ModelRegistry) Lookup(name string) (ModelDescriptor, bool) {
	for _, m := range r.models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// Candidates resolves a selector into the models to try, in order.
// "auto", empty, and unknown names all yield the full priority order.
func (r *ModelRegistry) Candidates(selector string) []ModelDescriptor {
	if selector != "" && selector != AutoModel {
		if m, ok := r.Lookup(selector); ok {
			return []ModelDescriptor{m}
		}
	}
	return r.Models()
}

// Names lists model names in priority order.
func (r *ModelRegistry) Names() []string {
	names := make([]string, len(r.models))
	for i, m := range r.models {
		names[i] = m.Name
	}
	return names
}
