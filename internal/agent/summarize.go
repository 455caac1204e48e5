package agent

import (
	"context"
	"fmt"

	"github.com/orbrick/taskorchestrator/internal/graph"
	"github.com/orbrick/taskorchestrator/internal/providers/gateway"
)

// SummarizeAgent asks the gateway for a short summary of the given text.
// Ground truth teacher's tools.SummarizeTool.
type SummarizeAgent struct {
	Client gateway.Client
}

func (a *SummarizeAgent) Name() string           { return "summarize" }
func (a *SummarizeAgent) Capabilities() []string { return []string{"summarize"} }

func (a *SummarizeAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	// A structured task carries its input under "text"; the raw JSON object
	// itself is not the text to summarize.
	fallback := node.Task
	if params != nil {
		fallback = ""
	}
	text := stringParam(params, "text", fallback)
	if text == "" {
		return graph.Err("missing text"), nil
	}
	prompt := fmt.Sprintf("Summarize the following text in a concise way (3-5 bullet points or a short paragraph). Focus on key facts.\n\nText:\n%s", text)
	out, err := a.Client.Chat(ctx, prompt, node.ID)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	return graph.Ok(out), nil
}
