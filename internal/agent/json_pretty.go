package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// JSONPrettyAgent validates and indents a raw JSON string. Ground truth
// teacher's tools.JSONPrettyTool.
type JSONPrettyAgent struct{}

func (a *JSONPrettyAgent) Name() string           { return "json_pretty" }
func (a *JSONPrettyAgent) Capabilities() []string { return []string{"json_pretty"} }

func (a *JSONPrettyAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	raw := stringParam(params, "json", node.Task)
	if strings.TrimSpace(raw) == "" {
		return graph.Err("missing json"), nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return graph.Err("invalid json: " + err.Error()), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	return graph.Ok(string(out)), nil
}
