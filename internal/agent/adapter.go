// Package agent defines the AgentAdapter capability interface, the agent
// registry, and a roster of concrete adapters adapted from the teacher's
// tool implementations.
package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// Adapter is a named worker exposing Execute(node) -> TaskResult. It never
// returns an error for a normal task failure — that is encoded as a failed
// TaskResult. A returned error signals an unexpected condition and is
// tolerated by the executor, which records it as a failed TaskResult
// carrying the error text.
type Adapter interface {
	Name() string
	Capabilities() []string
	Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error)
}

// parseParams treats node task text that parses as a JSON object as a
// structured parameter map (the shape the teacher's Tool.Execute expected);
// anything else returns nil so callers fall back to treating the whole
// string as their primary argument.
func parseParams(task string) map[string]any {
	t := strings.TrimSpace(task)
	if !strings.HasPrefix(t, "{") {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(t), &m); err != nil {
		return nil
	}
	return m
}

// stringParam reads a string field from params, or falls back to
// defaultVal if absent or empty.
func stringParam(params map[string]any, key, defaultVal string) string {
	if params == nil {
		return defaultVal
	}
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}

func intParam(params map[string]any, key string, defaultVal int) int {
	if params == nil {
		return defaultVal
	}
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultVal
}
