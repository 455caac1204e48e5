package agent

import (
	"context"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// CallAgent delegates execution to another adapter registered by name.
// Recursing into itself is rejected. Ground truth teacher's
// tools.CallTool.
type CallAgent struct {
	Registry *Registry
}

func (a *CallAgent) Name() string           { return "call" }
func (a *CallAgent) Capabilities() []string { return []string{"call"} }

func (a *CallAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	if a.Registry == nil {
		return graph.Err("registry not set"), nil
	}
	params := parseParams(node.Task)
	name := stringParam(params, "agent", "")
	if name == "" {
		return graph.Err("missing agent name"), nil
	}
	if name == a.Name() {
		return graph.Err("recursive call to \"call\" is not allowed"), nil
	}
	delegate, ok := a.Registry.Pick(name)
	if !ok {
		return graph.Err("unknown agent: " + name), nil
	}
	task := ""
	if params != nil {
		if t, ok := params["task"].(string); ok {
			task = t
		}
	}
	return delegate.Execute(ctx, &graph.TaskNode{ID: node.ID, Task: task, AssignTo: name})
}
