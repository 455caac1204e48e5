package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbrick/taskorchestrator/internal/agent"
	"github.com/orbrick/taskorchestrator/internal/cache"
	"github.com/orbrick/taskorchestrator/internal/graph"
	"github.com/orbrick/taskorchestrator/internal/retry"
)

// scriptedAgent is a single-capability adapter driven by a plan function,
// used across the S1-S6 scenarios instead of a real gateway call.
type scriptedAgent struct {
	name string
	fn   func(node *graph.TaskNode, attempt int) (graph.TaskResult, error)

	mu       sync.Mutex
	calls    []string
	attempts map[string]int
}

func newScriptedAgent(name string, fn func(node *graph.TaskNode, attempt int) (graph.TaskResult, error)) *scriptedAgent {
	return &scriptedAgent{name: name, fn: fn, attempts: map[string]int{}}
}

func (a *scriptedAgent) Name() string           { return a.name }
func (a *scriptedAgent) Capabilities() []string { return []string{a.name} }

func (a *scriptedAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	a.mu.Lock()
	a.attempts[node.ID]++
	attempt := a.attempts[node.ID]
	a.calls = append(a.calls, node.ID)
	a.mu.Unlock()
	return a.fn(node, attempt)
}

func (a *scriptedAgent) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func newTestExecutor(reg *agent.Registry) *Executor {
	return &Executor{
		Registry: reg,
		Cache:    cache.New(false, time.Minute),
	}
}

// S1 - Linear chain: A -> B -> C, all ok, expect done/done/done in order.
func TestScenario_LinearChain(t *testing.T) {
	var order []string
	var mu sync.Mutex
	okAgent := newScriptedAgent("worker", func(node *graph.TaskNode, attempt int) (graph.TaskResult, error) {
		mu.Lock()
		order = append(order, node.ID)
		mu.Unlock()
		return graph.Ok("X"), nil
	})
	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(okAgent))

	g, err := graph.Create("goal", []graph.RawNode{
		{ID: "A", Task: "a"},
		{ID: "B", Task: "b", DependsOn: []string{"A"}},
		{ID: "C", Task: "c", DependsOn: []string{"B"}},
	}, "")
	require.NoError(t, err)

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), g, Options{MaxConcurrency: 2})

	assert.True(t, res.Success)
	assert.Equal(t, []string{"A", "B", "C"}, order)
	for _, id := range []string{"A", "B", "C"} {
		assert.Equal(t, "X", res.NodeResults[id].Output)
	}
}

// S2 - Diamond with parallelism: A -> {B, C} -> D, maxConcurrency=2.
func TestScenario_DiamondParallelism(t *testing.T) {
	var concurrentBC int32
	var maxObserved int32
	okAgent := newScriptedAgent("worker", func(node *graph.TaskNode, attempt int) (graph.TaskResult, error) {
		if node.ID == "B" || node.ID == "C" {
			n := atomic.AddInt32(&concurrentBC, 1)
			for {
				old := atomic.LoadInt32(&maxObserved)
				if n <= old || atomic.CompareAndSwapInt32(&maxObserved, old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&concurrentBC, -1)
		}
		return graph.Ok("ok"), nil
	})
	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(okAgent))

	g, err := graph.Create("goal", []graph.RawNode{
		{ID: "A", Task: "a"},
		{ID: "B", Task: "b", DependsOn: []string{"A"}},
		{ID: "C", Task: "c", DependsOn: []string{"A"}},
		{ID: "D", Task: "d", DependsOn: []string{"B", "C"}},
	}, "")
	require.NoError(t, err)

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), g, Options{MaxConcurrency: 2})

	assert.True(t, res.Success)
	assert.Equal(t, int32(2), maxObserved, "B and C must be dispatched in the same batch")
}

// S3 - Failure propagation: A -> B -> C, A -> D; A fails.
func TestScenario_FailurePropagation(t *testing.T) {
	failAgent := newScriptedAgent("worker", func(node *graph.TaskNode, attempt int) (graph.TaskResult, error) {
		if node.ID == "A" {
			return graph.Err("boom"), nil
		}
		return graph.Ok("ok"), nil
	})
	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(failAgent))

	g, err := graph.Create("goal", []graph.RawNode{
		{ID: "A", Task: "a"},
		{ID: "B", Task: "b", DependsOn: []string{"A"}},
		{ID: "C", Task: "c", DependsOn: []string{"B"}},
		{ID: "D", Task: "d", DependsOn: []string{"A"}},
	}, "")
	require.NoError(t, err)

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), g, Options{MaxConcurrency: 2})

	assert.False(t, res.Success)
	aNode, _ := g.Node("A")
	bNode, _ := g.Node("B")
	cNode, _ := g.Node("C")
	dNode, _ := g.Node("D")
	assert.Equal(t, graph.StatusFailed, aNode.Status)
	assert.Equal(t, graph.StatusSkipped, bNode.Status)
	assert.Equal(t, graph.StatusSkipped, cNode.Status)
	assert.Equal(t, graph.StatusSkipped, dNode.Status)
	assert.Contains(t, res.NodeResults["A"].Output, "boom")
}

// S4 - Cache hit: two nodes with identical (task, assignTo); cache enabled.
func TestScenario_CacheHit(t *testing.T) {
	countingAgent := newScriptedAgent("worker", func(node *graph.TaskNode, attempt int) (graph.TaskResult, error) {
		return graph.Ok("cached-value"), nil
	})
	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(countingAgent))

	g, err := graph.Create("goal", []graph.RawNode{
		{ID: "N1", Task: "same task", AssignTo: "worker"},
		{ID: "N2", Task: "same task", AssignTo: "worker"},
	}, "")
	require.NoError(t, err)

	e := &Executor{Registry: reg, Cache: cache.New(true, time.Minute)}
	res := e.Execute(context.Background(), g, Options{MaxConcurrency: 1})

	assert.True(t, res.Success)
	assert.Equal(t, 1, countingAgent.callCount())
	assert.Equal(t, "cached-value", res.NodeResults["N1"].Output)
	assert.Equal(t, "cached-value", res.NodeResults["N2"].Output)
}

// S5 - Retry recovery: node configured retries:2, fails twice then succeeds.
func TestScenario_RetryRecovery(t *testing.T) {
	flakyAgent := newScriptedAgent("worker", func(node *graph.TaskNode, attempt int) (graph.TaskResult, error) {
		if attempt < 3 {
			return graph.TaskResult{}, fmt.Errorf("transient failure attempt %d", attempt)
		}
		return graph.Ok("ok"), nil
	})
	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(flakyAgent))

	g, err := graph.Create("goal", []graph.RawNode{
		{ID: "N", Task: "flaky", Config: &graph.NodeConfig{Retries: 2}},
	}, "")
	require.NoError(t, err)

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), g, Options{
		MaxConcurrency: 1,
		Retry:          retry.Options{MaxAttempts: 1, BaseDelayMs: 1, MaxDelayMs: 5},
	})

	assert.True(t, res.Success)
	assert.Equal(t, "ok", res.NodeResults["N"].Output)
	assert.Equal(t, 3, flakyAgent.callCount())
}

// S6 - Cancellation: 10 independent nodes, maxConcurrency=2, abort after
// the first batch settles.
func TestScenario_Cancellation(t *testing.T) {
	var done int32
	slowAgent := newScriptedAgent("worker", func(node *graph.TaskNode, attempt int) (graph.TaskResult, error) {
		atomic.AddInt32(&done, 1)
		return graph.Ok("ok"), nil
	})
	reg := agent.NewRegistry()
	require.NoError(t, reg.Register(slowAgent))

	var raw []graph.RawNode
	for i := 0; i < 10; i++ {
		raw = append(raw, graph.RawNode{ID: fmt.Sprintf("n%d", i), Task: "t"})
	}
	g, err := graph.Create("goal", raw, "")
	require.NoError(t, err)

	abort := make(chan struct{})
	var closeAbort sync.Once
	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), g, Options{
		MaxConcurrency: 2,
		AbortSignal:    abort,
		OnNodeEnd: func(id string, result graph.TaskResult) {
			if atomic.LoadInt32(&done) >= 2 {
				closeAbort.Do(func() { close(abort) })
			}
		},
	})

	assert.False(t, res.Success)
	doneCount, skippedCount := 0, 0
	for _, n := range g.Nodes {
		switch n.Status {
		case graph.StatusDone:
			doneCount++
		case graph.StatusSkipped:
			skippedCount++
		}
	}
	assert.Equal(t, 2, doneCount)
	assert.Equal(t, 8, skippedCount)
}
