// Package executor drives a *graph.TaskGraph to completion: a bounded
// concurrency scheduler over the ready set, backed by a cache, a rate
// limiter, and the retry helper. Ground truth teacher's
// orchestrator.Orchestrator.Start, generalized from its sequential
// step-by-step loop into a concurrent ready-set scheduler.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orbrick/taskorchestrator/internal/agent"
	"github.com/orbrick/taskorchestrator/internal/cache"
	"github.com/orbrick/taskorchestrator/internal/graph"
	"github.com/orbrick/taskorchestrator/internal/orcerrors"
	"github.com/orbrick/taskorchestrator/internal/ratelimit"
	"github.com/orbrick/taskorchestrator/internal/retry"
)

// Options configures one Execute call.
type Options struct {
	MaxConcurrency int
	AbortSignal    <-chan struct{}
	OnNodeStart    func(id string)
	OnNodeEnd      func(id string, result graph.TaskResult)

	Retry retry.Options
}

// Result is the terminal state of one Execute call.
type Result struct {
	Graph       *graph.TaskGraph
	Success     bool
	Duration    time.Duration
	NodeResults map[string]graph.TaskResult
}

// Executor is process-wide shared state (cache, rate limiter, registry)
// injected once and reused across runs, per spec §9 ("model them as
// explicitly-constructed singletons").
type Executor struct {
	Registry    *agent.Registry
	Cache       *cache.Cache
	RateLimiter *ratelimit.Limiter
	Logger      *zap.Logger
}

// Execute drives graph to a terminal state and returns the outcome. Safe
// to call once per graph; the graph is exclusively owned by the executor
// until this returns (spec §3 "Ownership").
func (e *Executor) Execute(ctx context.Context, g *graph.TaskGraph, opts Options) Result {
	start := time.Now()
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	logger := e.logger()

	for !graph.IsComplete(g) {
		if aborted(opts.AbortSignal) {
			skipAllPending(g)
			break
		}

		ready := graph.ReadyNodes(g)
		if len(ready) == 0 {
			logger.Error("ready set empty but graph incomplete; deadlock", zap.String("goal", g.Goal))
			break
		}

		batch := ready
		if len(batch) > maxConcurrency {
			batch = batch[:maxConcurrency]
		}

		results := make([]graph.TaskResult, len(batch))
		var wg sync.WaitGroup
		for i, node := range batch {
			node.Status = graph.StatusRunning
			if opts.OnNodeStart != nil {
				opts.OnNodeStart(node.ID)
			}
			wg.Add(1)
			go func(i int, n *graph.TaskNode) {
				defer wg.Done()
				results[i] = e.executeNode(ctx, n, opts.Retry)
			}(i, node)
		}
		wg.Wait()

		// Settlement happens here, sequentially, in the coordinating
		// goroutine: the graph is not thread-safe, so no batch member may
		// mutate shared node state or call SkipDownstream while siblings in
		// the same batch are still running.
		for i, node := range batch {
			result := results[i]
			node.Status = result.Status
			node.Result = &result
			if result.Status == graph.StatusFailed {
				graph.SkipDownstream(g, node.ID)
			}
			if opts.OnNodeEnd != nil {
				opts.OnNodeEnd(node.ID, result)
			}
		}
	}

	nodeResults := make(map[string]graph.TaskResult, len(g.Nodes))
	success := true
	for _, n := range g.Nodes {
		if n.Result != nil {
			nodeResults[n.ID] = *n.Result
		}
		if n.Status != graph.StatusDone {
			success = false
		}
	}

	return Result{
		Graph:       g,
		Success:     success,
		Duration:    time.Since(start),
		NodeResults: nodeResults,
	}
}

// executeNode implements spec §4.7's per-node algorithm. It never returns
// an error: every failure mode, including an unexpected agent panic-free
// error, becomes a graph.Err result.
func (e *Executor) executeNode(ctx context.Context, node *graph.TaskNode, retryOpts retry.Options) graph.TaskResult {
	a, ok := e.Registry.Pick(node.AssignTo)
	if !ok {
		return graph.Err(fmt.Sprintf("No agent available for %q", node.AssignTo))
	}

	cacheKey := cache.TaskKey(node.Task, a.Name())
	if e.Cache != nil && e.Cache.Enabled() {
		if v, hit := e.Cache.Get(cacheKey); hit {
			return graph.Ok(v)
		}
	}

	if e.RateLimiter != nil {
		if err := e.RateLimiter.Acquire(ctx, a.Name()); err != nil {
			return graph.Err("rate limit wait canceled: " + err.Error())
		}
	}

	var result graph.TaskResult
	if node.Retries() > 0 {
		attempts := retryOpts
		attempts.MaxAttempts = node.Retries() + 1
		if attempts.BaseDelayMs <= 0 {
			attempts.BaseDelayMs = 200
		}
		if attempts.MaxDelayMs <= 0 {
			attempts.MaxDelayMs = 5000
		}
		// Only a raised Go error is retryable; a modeled failure (r not ok)
		// is the agent's normal way of reporting "this task failed" and is
		// returned as-is, matching the non-retry path below.
		var modeled *graph.TaskResult
		output, err := retry.Do(ctx, attempts, func(ctx context.Context) (string, error) {
			r, execErr := a.Execute(ctx, node)
			if execErr != nil {
				modeled = nil
				return "", orcerrors.Wrap(orcerrors.KindAgentExecutionFailed, "agent raised", execErr)
			}
			modeled = &r
			return r.Output, nil
		})
		switch {
		case modeled != nil:
			result = *modeled
		case err != nil:
			result = graph.Err(err.Error())
		default:
			result = graph.Ok(output)
		}
	} else {
		r, err := a.Execute(ctx, node)
		if err != nil {
			result = graph.Err(err.Error())
		} else {
			result = r
		}
	}

	if result.IsOk() && e.Cache != nil && e.Cache.Enabled() {
		e.Cache.Set(cacheKey, result.Output)
	}
	return result
}

func (e *Executor) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

func aborted(signal <-chan struct{}) bool {
	if signal == nil {
		return false
	}
	select {
	case <-signal:
		return true
	default:
		return false
	}
}

func skipAllPending(g *graph.TaskGraph) {
	for _, n := range g.Nodes {
		if n.Status == graph.StatusPending {
			n.Status = graph.StatusSkipped
		}
	}
}
