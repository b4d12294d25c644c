package gemini

import (
	"context"
	"testing"

	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestToContentResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want *llm.ContentResponse
	}{
		{
			name: "nil response",
			resp: nil,
			want: &llm.ContentResponse{},
		},
		{
			name: "text parts kept in order",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("SELECT 1"), genai.Text(" FROM t")}}},
			}},
			want: &llm.ContentResponse{Candidates: []llm.Candidate{{Parts: []string{"SELECT 1", " FROM t"}}}},
		},
		{
			name: "non-text parts skipped",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Blob{MIMEType: "image/png", Data: []byte{1, 2}},
					genai.Text("SELECT 2"),
				}}},
			}},
			want: &llm.ContentResponse{Candidates: []llm.Candidate{{Parts: []string{"SELECT 2"}}}},
		},
		{
			name: "nil content yields an empty candidate",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("SELECT 3")}}},
			}},
			want: &llm.ContentResponse{Candidates: []llm.Candidate{{}, {Parts: []string{"SELECT 3"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toContentResponse(tt.resp))
		})
	}
}

func TestNewBackend_RequiresAPIKey(t *testing.T) {
	_, err := NewBackend(context.Background(), config.GeminiConfig{})
	assert.Error(t, err)
}
