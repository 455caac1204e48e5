package agent

import (
	"context"
	"fmt"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// EchoAgent returns its input verbatim, prefixed. Ground truth teacher's
// tools.EchoTool; used mostly in tests and as a smoke-test node.
type EchoAgent struct{}

func (a *EchoAgent) Name() string           { return "echo" }
func (a *EchoAgent) Capabilities() []string { return []string{"echo"} }

func (a *EchoAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	text := stringParam(params, "text", node.Task)
	return graph.Ok(fmt.Sprintf("echo: %s", text)), nil
}
