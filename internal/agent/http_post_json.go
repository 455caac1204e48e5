package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// HTTPPostJSONAgent POSTs a JSON body to a URL and returns the response
// body as text. Ground truth teacher's tools.HTTPPostJSONTool.
type HTTPPostJSONAgent struct {
	Client *http.Client
}

func (a *HTTPPostJSONAgent) Name() string           { return "http_post_json" }
func (a *HTTPPostJSONAgent) Capabilities() []string { return []string{"http_post_json"} }

func (a *HTTPPostJSONAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	rawURL := stringParam(params, "url", "")
	if rawURL == "" {
		return graph.Err("missing url"), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return graph.Err("invalid url: " + err.Error()), nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return graph.Err("unsupported scheme: " + u.Scheme), nil
	}

	var bodyBytes []byte
	if params != nil {
		if s, ok := params["json"].(string); ok && s != "" {
			bodyBytes = []byte(s)
		} else {
			bodyBytes, err = json.Marshal(params["json"])
			if err != nil {
				return graph.Err("marshal json: " + err.Error()), nil
			}
		}
	} else {
		bodyBytes = []byte("null")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(bodyBytes))
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if params != nil {
		if hv, ok := params["headers"].(map[string]any); ok {
			for k, v := range hv {
				if vs, ok := v.(string); ok {
					req.Header.Set(k, vs)
				}
			}
		}
	}

	timeout := 10 * time.Second
	if ms := intParam(params, "timeout_ms", 0); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	defer resp.Body.Close()

	const maxBody = 2 << 20
	lr := io.LimitedReader{R: resp.Body, N: maxBody}
	respBody, _ := io.ReadAll(&lr)
	if resp.StatusCode >= 400 {
		return graph.Err(fmt.Sprintf("status %d: %s", resp.StatusCode, string(respBody))), nil
	}
	return graph.Ok(string(respBody)), nil
}
