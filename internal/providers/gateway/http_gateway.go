package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/orbrick/taskorchestrator/internal/orcerrors"
)

// BuildRequest and ExtractText let one HTTP client serve multiple chat
// completion wire formats without duplicating the retry/timeout/backoff
// plumbing per provider, the way the teacher's OpenAIClient and
// AnthropicClient each reimplemented it.
type (
	// BuildRequest turns a prompt into the provider's JSON request body.
	BuildRequest func(model, prompt string) any
	// ExtractText pulls the generated text out of a decoded JSON response.
	ExtractText func(body map[string]any) (string, error)
)

// HTTPClient is a single chat-completion client configurable to the OpenAI,
// Anthropic, or any OpenAI-compatible wire shape.
type HTTPClient struct {
	BaseURL      string
	Model        string
	AuthHeader   string // header name, e.g. "Authorization" or "x-api-key"
	AuthValue    string // fully-formed header value, e.g. "Bearer <key>"
	ExtraHeaders map[string]string
	Build        BuildRequest
	Extract      ExtractText
	HTTPClient   *http.Client
	MaxAttempts  int
}

// OpenAIChatShape builds/parses the OpenAI-compatible chat completions
// wire format, ground truth teacher's OpenAIClient.
func OpenAIChatShape() (BuildRequest, ExtractText) {
	build := func(model, prompt string) any {
		return map[string]any{
			"model":       model,
			"messages":    []map[string]string{{"role": "user", "content": prompt}},
			"temperature": 0.2,
		}
	}
	extract := func(body map[string]any) (string, error) {
		choices, _ := body["choices"].([]any)
		if len(choices) == 0 {
			return "", errors.New("no choices")
		}
		choice, _ := choices[0].(map[string]any)
		message, _ := choice["message"].(map[string]any)
		content, _ := message["content"].(string)
		return content, nil
	}
	return build, extract
}

// AnthropicMessagesShape builds/parses the Anthropic messages wire format,
// ground truth teacher's AnthropicClient.
func AnthropicMessagesShape() (BuildRequest, ExtractText) {
	build := func(model, prompt string) any {
		return map[string]any{
			"model":      model,
			"max_tokens": 1024,
			"messages": []map[string]any{{
				"role":    "user",
				"content": []map[string]string{{"type": "text", "text": prompt}},
			}},
		}
	}
	extract := func(body map[string]any) (string, error) {
		content, _ := body["content"].([]any)
		if len(content) == 0 {
			return "", errors.New("no content")
		}
		block, _ := content[0].(map[string]any)
		text, _ := block["text"].(string)
		return text, nil
	}
	return build, extract
}

// Chat implements Client.
func (c *HTTPClient) Chat(ctx context.Context, prompt string, sessionKey string) (string, error) {
	body := c.Build(c.Model, prompt)
	b, err := json.Marshal(body)
	if err != nil {
		return "", orcerrors.Wrap(orcerrors.KindGatewayProtocolError, "encode request", err)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	maxAttempts := c.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(b))
		if err != nil {
			return "", orcerrors.Wrap(orcerrors.KindGatewayProtocolError, "build request", err)
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("x-session-key", sessionKey)
		if c.AuthHeader != "" {
			req.Header.Set(c.AuthHeader, c.AuthValue)
		}
		for k, v := range c.ExtraHeaders {
			req.Header.Set(k, v)
		}

		res, err := httpClient.Do(req)
		if err != nil {
			lastErr = classifyTransportError(err)
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				time.Sleep(backoff(attempt))
				continue
			}
			return "", lastErr
		}

		var decoded map[string]any
		decodeErr := json.NewDecoder(res.Body).Decode(&decoded)
		res.Body.Close()

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			if decodeErr != nil {
				return "", orcerrors.Wrap(orcerrors.KindGatewayProtocolError, "decode response", decodeErr)
			}
			return c.Extract(decoded)
		}

		lastErr = orcerrors.New(orcerrors.KindGatewayProtocolError,
			fmt.Sprintf("gateway status %d: %v", res.StatusCode, decoded))
		if res.StatusCode == http.StatusRequestTimeout || res.StatusCode == http.StatusTooManyRequests ||
			(res.StatusCode >= 500 && res.StatusCode <= 599) {
			time.Sleep(backoff(attempt))
			continue
		}
		return "", lastErr
	}
	return "", lastErr
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return orcerrors.Wrap(orcerrors.KindGatewayTimeout, "gateway request timed out", err)
	}
	return orcerrors.Wrap(orcerrors.KindGatewayConnFailed, "gateway connection failed", err)
}

func backoff(attempt int) time.Duration {
	return time.Duration(500*(1<<attempt)) * time.Millisecond
}
