package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/orbrick/taskorchestrator/internal/graph"
	"github.com/orbrick/taskorchestrator/internal/providers/gateway"
)

// SummarizeChunkedAgent splits large text into overlapping chunks,
// summarizes each with bounded concurrency, then reduces the chunk
// summaries into one. Ground truth teacher's tools.SummarizeChunkedTool.
type SummarizeChunkedAgent struct {
	Client gateway.Client
}

func (a *SummarizeChunkedAgent) Name() string           { return "summarize_chunked" }
func (a *SummarizeChunkedAgent) Capabilities() []string { return []string{"summarize_chunked"} }

func (a *SummarizeChunkedAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	text := stringParam(params, "text", node.Task)
	if text == "" {
		return graph.Err("missing text"), nil
	}
	chunkSize := intParam(params, "chunk_chars", 8000)
	overlap := intParam(params, "overlap_chars", 400)
	maxParallel := intParam(params, "max_parallel", 3)
	if chunkSize < 1000 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}

	parts := splitChunks(text, chunkSize, overlap)
	if len(parts) == 1 {
		return (&SummarizeAgent{Client: a.Client}).Execute(ctx, &graph.TaskNode{ID: node.ID, Task: text})
	}

	summaries := make([]string, len(parts))
	errs := make([]error, len(parts))
	sem := make(chan struct{}, maxParallel)
	var wg sync.WaitGroup
	for i, p := range parts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()
			prompt := fmt.Sprintf("Summarize this section into 3-5 concise bullets focusing on key facts.\n\nSection %d/%d:\n%s", i+1, len(parts), p)
			s, err := a.Client.Chat(ctx, prompt, node.ID)
			if err != nil {
				errs[i] = err
				return
			}
			summaries[i] = s
		}(i, p)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return graph.Err(err.Error()), nil
		}
	}

	reduceInstructions := stringParam(params, "reduce_instructions",
		"Combine the following section summaries into a single clear summary (bullets or short paragraphs). Avoid repetition; preserve critical details.")
	var combined string
	for i, s := range summaries {
		combined += fmt.Sprintf("\n\n[Section %d]\n%s", i+1, s)
	}
	final, err := a.Client.Chat(ctx, reduceInstructions+"\n\nSummaries:"+combined, node.ID)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	return graph.Ok(final), nil
}

func splitChunks(s string, size, overlap int) []string {
	if size <= 0 {
		return []string{s}
	}
	var out []string
	for start := 0; start < len(s); {
		end := start + size
		if end > len(s) {
			end = len(s)
		}
		out = append(out, s[start:end])
		if end == len(s) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}
