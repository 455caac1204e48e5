// Package planner turns a free-form goal into a validated *graph.TaskGraph
// by prompting an LLM for DAG JSON, ground truth teacher's
// agents.LLMPlanner.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/orbrick/taskorchestrator/internal/agent"
	"github.com/orbrick/taskorchestrator/internal/graph"
	"github.com/orbrick/taskorchestrator/internal/orcerrors"
	"github.com/orbrick/taskorchestrator/internal/providers/gateway"
)

// Planner has exactly one LLM source: either a full agent adapter (source
// mode a) or a gateway client (source mode b), per spec §4.6 step 2.
type Planner struct {
	Agent   agent.Adapter
	Gateway gateway.Client

	// AgentNames, if non-empty, is appended to the prompt so the model knows
	// what it can assign work to.
	AgentNames []string
}

type rawStep struct {
	ID        string   `json:"id"`
	Task      string   `json:"task"`
	DependsOn []string `json:"dependsOn"`
	AssignTo  string   `json:"assignTo"`
	Retries   int      `json:"retries"`
}

type plannerResponse struct {
	Nodes             []rawStep `json:"nodes"`
	SynthesizerPrompt string    `json:"synthesizerPrompt"`
}

// Plan builds the DAG for goal. Returns a tagged orcerrors.Error for every
// documented failure mode.
func (p *Planner) Plan(ctx context.Context, goal string) (*graph.TaskGraph, error) {
	if p.Agent == nil && p.Gateway == nil {
		return nil, orcerrors.New(orcerrors.KindConfigMissing,
			"planner requires either an agent or a gateway client")
	}

	prompt := p.buildPrompt(goal)
	raw, err := p.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	text := stripFences(raw)
	var resp plannerResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, orcerrors.Wrap(orcerrors.KindParseFailed,
			fmt.Sprintf("invalid planner JSON: %s", truncate(text, 500)), err)
	}
	if len(resp.Nodes) == 0 {
		return nil, orcerrors.New(orcerrors.KindValidationFailed, "planner returned no nodes")
	}

	rawNodes := make([]graph.RawNode, 0, len(resp.Nodes))
	for i, n := range resp.Nodes {
		if strings.TrimSpace(n.ID) == "" {
			return nil, orcerrors.New(orcerrors.KindValidationFailed,
				fmt.Sprintf("node %d: missing id", i))
		}
		if strings.TrimSpace(n.Task) == "" {
			return nil, orcerrors.New(orcerrors.KindValidationFailed,
				fmt.Sprintf("node %q: missing task", n.ID))
		}
		var cfg *graph.NodeConfig
		if n.Retries > 0 {
			cfg = &graph.NodeConfig{Retries: n.Retries}
		}
		rawNodes = append(rawNodes, graph.RawNode{
			ID:        n.ID,
			Task:      n.Task,
			DependsOn: n.DependsOn,
			AssignTo:  n.AssignTo,
			Config:    cfg,
		})
	}

	return graph.Create(goal, rawNodes, resp.SynthesizerPrompt)
}

func (p *Planner) callModel(ctx context.Context, prompt string) (string, error) {
	if p.Agent != nil {
		node := &graph.TaskNode{ID: "planner", Task: prompt}
		result, err := p.Agent.Execute(ctx, node)
		if err != nil {
			return "", orcerrors.Wrap(orcerrors.KindAgentExecutionFailed, "planner agent raised", err)
		}
		if !result.IsOk() {
			return "", orcerrors.New(orcerrors.KindAgentExecutionFailed, "planner agent failed: "+result.Output)
		}
		return result.Output, nil
	}
	sessionKey := "plan-" + uuid.NewString()
	return p.Gateway.Chat(ctx, prompt, sessionKey)
}

func (p *Planner) buildPrompt(goal string) string {
	var b strings.Builder
	b.WriteString(`You are a planning agent for a task orchestrator.
Output ONLY a JSON object, no prose, no code fences, of the shape:
{"nodes": [{"id": "n1", "task": "...", "dependsOn": ["n0"], "assignTo": "agent-name"}], "synthesizerPrompt": "..."}

Rules:
- "id" and "task" are required for every node; "dependsOn" defaults to [] and "assignTo" is optional.
- Use "dependsOn" to express ordering; the graph must be acyclic.
- "synthesizerPrompt" is optional guidance for combining results afterward.
`)
	if len(p.AgentNames) > 0 {
		b.WriteString("Available agents: ")
		b.WriteString(strings.Join(p.AgentNames, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\nGoal: ")
	b.WriteString(goal)
	return b.String()
}

// stripFences removes one optional leading and trailing fenced code block
// marker, matching the teacher's normalizeJSONText.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if idx := strings.IndexByte(t, '\n'); idx != -1 {
		t = t[idx+1:]
	}
	if j := strings.LastIndex(t, "```"); j != -1 {
		t = t[:j]
	}
	return strings.TrimSpace(t)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
