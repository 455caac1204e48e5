package gateway

import (
	"context"
	"strings"
)

// MockClient returns deterministic canned plans/answers, ground truth
// teacher's llm.MockClient. Used when no provider is configured and in
// tests.
type MockClient struct{}

func (m *MockClient) Chat(ctx context.Context, prompt string, sessionKey string) (string, error) {
	p := strings.ToLower(prompt)
	if strings.Contains(p, "dag json") || strings.Contains(p, "planning") {
		if strings.Contains(p, "http") || strings.Contains(p, "url") {
			return `{"nodes":[{"id":"step1","task":"fetch the URL","assignTo":"http_fetch"}]}`, nil
		}
		return `{"nodes":[{"id":"step1","task":"answer the question"}]}`, nil
	}
	return "ok: " + prompt, nil
}
