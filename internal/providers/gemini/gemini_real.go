//go:build gemini

package gemini

import (
	"context"
	"fmt"
	"os"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/orbrick/taskorchestrator/internal/providers/gateway"
)

// realClient calls the actual Gemini API via the official SDK.
type realClient struct{ model *genai.GenerativeModel }

// NewFromEnv overrides the mock build's factory when compiled with the
// `gemini` build tag.
func NewFromEnv() gateway.Client {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		return &mockClient{}
	}
	ctx := context.Background()
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return &mockClient{}
	}
	model := os.Getenv("GATEWAY_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &realClient{model: c.GenerativeModel(model)}
}

func (r *realClient) Chat(ctx context.Context, prompt string, sessionKey string) (string, error) {
	resp, err := r.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return firstText(resp), nil
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
