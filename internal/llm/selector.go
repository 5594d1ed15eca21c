package llm

import "adpilot/internal/core/domain"

// Selector routes task kinds to upstream models, with a default model
// fallback for unmapped kinds.
type Selector struct {
	defaultModel string
	models       map[string]string
}

// NewSelector creates a Selector from the configured task→model map.
func NewSelector(defaultModel string, models map[string]string) *Selector {
	return &Selector{defaultModel: defaultModel, models: models}
}

// ModelFor returns the model configured for a task kind.
func (s *Selector) ModelFor(task domain.TaskKind) string {
	if m, ok := s.models[string(task)]; ok && m != "" {
		return m
	}
	return s.defaultModel
}
