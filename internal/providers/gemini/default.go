//go:build !gemini

package gemini

import "github.com/orbrick/taskorchestrator/internal/providers/gateway"

// NewFromEnv returns the mock Gemini client. Build with `-tags gemini` to
// link the real github.com/google/generative-ai-go backed client instead.
func NewFromEnv() gateway.Client {
	return &mockClient{}
}
