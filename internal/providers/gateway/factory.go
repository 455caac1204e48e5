package gateway

import (
	"os"
	"strings"
)

// NewFromEnv returns a Client based on environment variables, mirroring the
// teacher's llm.NewFromEnv provider-detection order.
//
// Supported:
//   - GATEWAY_PROVIDER=openai|anthropic; OPENAI_API_KEY / ANTHROPIC_API_KEY
//
// Gemini is not selected here: GATEWAY_PROVIDER=gemini is handled by the
// caller (cmd/orchestrator's newGatewayClient, using providers/gemini); if it
// reaches this function it is treated like an unset provider.
//
// Falls back to MockClient when nothing is configured.
func NewFromEnv() Client {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("GATEWAY_PROVIDER")))

	switch provider {
	case "openai":
		if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
			return newOpenAI(key)
		}
	case "anthropic":
		if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
			return newAnthropic(key)
		}
	}

	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return newOpenAI(key)
	}
	if key := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); key != "" {
		return newAnthropic(key)
	}
	return &MockClient{}
}

func newOpenAI(key string) *HTTPClient {
	build, extract := OpenAIChatShape()
	baseURL := os.Getenv("OPENAI_API_BASE")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/chat/completions"
	}
	return &HTTPClient{
		BaseURL:    baseURL,
		Model:      envOr("GATEWAY_MODEL", "gpt-4o-mini"),
		AuthHeader: "Authorization",
		AuthValue:  "Bearer " + key,
		Build:      build,
		Extract:    extract,
	}
}

func newAnthropic(key string) *HTTPClient {
	build, extract := AnthropicMessagesShape()
	baseURL := os.Getenv("ANTHROPIC_API_URL")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1/messages"
	}
	return &HTTPClient{
		BaseURL:    baseURL,
		Model:      envOr("GATEWAY_MODEL", "claude-3-5-sonnet-latest"),
		AuthHeader: "x-api-key",
		AuthValue:  key,
		ExtraHeaders: map[string]string{
			"anthropic-version": "2023-06-01",
		},
		Build:   build,
		Extract: extract,
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
