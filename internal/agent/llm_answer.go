package agent

import (
	"context"

	"github.com/orbrick/taskorchestrator/internal/graph"
	"github.com/orbrick/taskorchestrator/internal/providers/gateway"
)

// LLMAnswerAgent forwards its input text (optionally prefixed with
// instructions) to the configured gateway and returns the generated
// answer. Ground truth teacher's tools.LLMAnswerTool.
type LLMAnswerAgent struct {
	Client gateway.Client
}

func (a *LLMAnswerAgent) Name() string           { return "llm_answer" }
func (a *LLMAnswerAgent) Capabilities() []string { return []string{"llm_answer", "answer"} }

func (a *LLMAnswerAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	question := stringParam(params, "text", "")
	if question == "" {
		question = stringParam(params, "question", node.Task)
	}
	instructions := stringParam(params, "instructions", "")
	prompt := question
	if instructions != "" {
		prompt = instructions + "\n\nQuestion:\n" + question
	}

	answer, err := a.Client.Chat(ctx, prompt, node.ID)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	return graph.Ok(answer), nil
}
