package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// HTTPFetchAgent issues a GET and returns the body as text, truncated to
// maxBytes. Ground truth teacher's tools.HTTPGetTool.
type HTTPFetchAgent struct {
	Client   *http.Client
	MaxBytes int64
}

func (a *HTTPFetchAgent) Name() string           { return "http_fetch" }
func (a *HTTPFetchAgent) Capabilities() []string { return []string{"http_fetch", "fetch"} }

func (a *HTTPFetchAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	url := stringParam(params, "url", node.Task)
	if url == "" {
		return graph.Err("missing url"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	defer resp.Body.Close()

	max := a.MaxBytes
	if max <= 0 {
		max = 2 << 20
	}
	lr := io.LimitedReader{R: resp.Body, N: max}
	body, _ := io.ReadAll(&lr)

	if resp.StatusCode >= 400 {
		return graph.Err(fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))), nil
	}
	return graph.Ok(string(body)), nil
}
