package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnsupportedModel is returned when a model identifier matches no known family
	ErrUnsupportedModel = errors.New("unsupported model identifier")
	// ErrBackendNotConfigured is returned when a family has no backend wired
	ErrBackendNotConfigured = errors.New("model backend not configured")
	// ErrEmptyResponse is returned when the model reply carries no text
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrInvalidResponseSchema is returned when the expected reply shape itself cannot be checked
	ErrInvalidResponseSchema = errors.New("invalid response schema definition")
)

// Family is the invocation shape of a hosted model
type Family string

const (
	FamilyContent    Family = "content-generation"
	FamilyChat       Family = "chat"
	FamilyCodeChat   Family = "code-chat"
	FamilyCompletion Family = "text-completion"
)

// DefaultMaxOutputTokens caps every generation
const DefaultMaxOutputTokens int32 = 1024

// Model is an immutable handle on a configured hosted model
type Model struct {
	// ID is the configured identifier
	ID string
	// Name is the identifier sent to the backend
	Name            string
	Family          Family
	MaxOutputTokens int32
}

// GenerationConfig holds per-call generation parameters
type GenerationConfig struct {
	MaxOutputTokens int32
	Temperature     float32
}

// Candidate is one alternative returned by a content-generation model
type Candidate struct {
	Parts []string
}

// ContentResponse is the reply of a content-generation model
type ContentResponse struct {
	Candidates []Candidate
}

// Prediction is the reply of a text-completion model
type Prediction struct {
	Text string
}

// ContentGenerator invokes content-generation models
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model, prompt string, cfg GenerationConfig) (*ContentResponse, error)
}

// TextPredictor invokes text-completion models
type TextPredictor interface {
	Predict(ctx context.Context, model, prompt string, cfg GenerationConfig) (*Prediction, error)
}

// ChatResponder sends a single user turn to a chat model
type ChatResponder interface {
	SendMessage(ctx context.Context, model, prompt string, cfg GenerationConfig) (string, error)
}

// Backends groups the transport for each model family; nil members are unavailable
type Backends struct {
	Content    ContentGenerator
	Chat       ChatResponder
	CodeChat   ChatResponder
	Completion TextPredictor
}

func (b Backends) has(f Family) bool {
	switch f {
	case FamilyContent:
		return b.Content != nil
	case FamilyChat:
		return b.Chat != nil
	case FamilyCodeChat:
		return b.CodeChat != nil
	case FamilyCompletion:
		return b.Completion != nil
	}
	return false
}
