package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// routeRule maps identifiers to a family; rules are evaluated in order
type routeRule struct {
	exact    string
	contains string
	family   Family
	name     string
}

var routeRules = []routeRule{
	{exact: "code-bison-32k", family: FamilyCompletion},
	{contains: "gemini", family: FamilyContent},
	{exact: "codechat-bison-32k", family: FamilyCodeChat},
	{contains: "chat-bison", family: FamilyChat},
	{exact: "text-unicorn", family: FamilyCompletion, name: "text-unicorn@001"},
}

// ResolveFamily returns the family and backend model name for an identifier
func ResolveFamily(modelID string) (Family, string, error) {
	for _, rule := range routeRules {
		matched := (rule.exact != "" && modelID == rule.exact) ||
			(rule.contains != "" && strings.Contains(modelID, rule.contains))
		if !matched {
			continue
		}
		name := modelID
		if rule.name != "" {
			name = rule.name
		}
		return rule.family, name, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedModel, modelID)
}

// Registry creates model handles and owns the family backends
type Registry struct {
	backends        Backends
	maxOutputTokens int32
	logger          zerolog.Logger

	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry creates a new model registry
func NewRegistry(backends Backends, maxOutputTokens int32, logger zerolog.Logger) *Registry {
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	return &Registry{
		backends:        backends,
		maxOutputTokens: maxOutputTokens,
		logger:          logger,
		models:          make(map[string]*Model),
	}
}

// CreateModel returns the handle for a configured identifier
func (r *Registry) CreateModel(modelID string) (*Model, error) {
	r.mu.RLock()
	m, ok := r.models[modelID]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	family, name, err := ResolveFamily(modelID)
	if err != nil {
		r.logger.Error().Str("model", modelID).Msg("Requested model not supported, review the models configuration")
		return nil, err
	}
	if !r.backends.has(family) {
		r.logger.Error().Str("model", modelID).Str("family", string(family)).Msg("No backend configured for model family")
		return nil, fmt.Errorf("%w: %s (%s)", ErrBackendNotConfigured, family, modelID)
	}

	m = &Model{
		ID:              modelID,
		Name:            name,
		Family:          family,
		MaxOutputTokens: r.maxOutputTokens,
	}

	r.mu.Lock()
	r.models[modelID] = m
	r.mu.Unlock()

	return m, nil
}

// Backends returns the family backends
func (r *Registry) Backends() Backends {
	return r.backends
}

// ModelInfo describes a created model handle
type ModelInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Family Family `json:"family"`
}

// ListModels returns information about all created model handles
func (r *Registry) ListModels() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ModelInfo, 0, len(r.models))
	for _, m := range r.models {
		infos = append(infos, ModelInfo{ID: m.ID, Name: m.Name, Family: m.Family})
	}
	return infos
}
