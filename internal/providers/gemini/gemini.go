// Package gemini adapts Google's Gemini API to the gateway.Client
// interface. The default build provides a mock; a real client backed by
// github.com/google/generative-ai-go is available under the `gemini` build
// tag, ground truth teacher's internal/providers/gemini.
package gemini

import (
	"context"
	"strings"
)

// mockClient is used in development when GOOGLE_API_KEY is not set, and by
// the default (non-`gemini`-tagged) build.
type mockClient struct{}

func (m *mockClient) Chat(ctx context.Context, prompt string, sessionKey string) (string, error) {
	p := strings.ToLower(prompt)
	if strings.Contains(p, "http") || strings.Contains(p, "url") {
		return `[{"id":"step1","task":"fetch the URL","assignTo":"http_fetch"}]`, nil
	}
	return `[{"id":"step1","task":"` + prompt + `"}]`, nil
}
