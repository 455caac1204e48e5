package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbrick/taskorchestrator/internal/orcerrors"
)

func TestCreate_DuplicateID(t *testing.T) {
	_, err := Create("goal", []RawNode{
		{ID: "a", Task: "t1"},
		{ID: "a", Task: "t2"},
	}, "")
	require.Error(t, err)
	kind, ok := orcerrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, orcerrors.KindGraphInvalid, kind)
}

func TestCreate_DanglingDependency(t *testing.T) {
	_, err := Create("goal", []RawNode{
		{ID: "a", Task: "t1", DependsOn: []string{"missing"}},
	}, "")
	require.Error(t, err)
	kind, _ := orcerrors.KindOf(err)
	assert.Equal(t, orcerrors.KindGraphInvalid, kind)
}

func TestCreate_Cycle(t *testing.T) {
	_, err := Create("goal", []RawNode{
		{ID: "a", Task: "t1", DependsOn: []string{"b"}},
		{ID: "b", Task: "t2", DependsOn: []string{"a"}},
	}, "")
	require.Error(t, err)
	kind, _ := orcerrors.KindOf(err)
	assert.Equal(t, orcerrors.KindGraphInvalid, kind)
}

func TestCreate_Valid(t *testing.T) {
	g, err := Create("goal", []RawNode{
		{ID: "a", Task: "t1"},
		{ID: "b", Task: "t2", DependsOn: []string{"a"}},
	}, "synth")
	require.NoError(t, err)
	assert.Equal(t, "goal", g.Goal)
	assert.Len(t, g.Nodes, 2)
}

func TestReadyNodes_Linear(t *testing.T) {
	g, err := Create("goal", []RawNode{
		{ID: "a", Task: "t1"},
		{ID: "b", Task: "t2", DependsOn: []string{"a"}},
		{ID: "c", Task: "t3", DependsOn: []string{"b"}},
	}, "")
	require.NoError(t, err)

	ready := ReadyNodes(g)
	require.Len(t, ready, 1)
	assert.Equal(t, "a", ready[0].ID)

	a, _ := g.Node("a")
	a.Status = StatusDone
	ready = ReadyNodes(g)
	require.Len(t, ready, 1)
	assert.Equal(t, "b", ready[0].ID)
}

func TestReadyNodes_Diamond(t *testing.T) {
	g, err := Create("goal", []RawNode{
		{ID: "a", Task: "t"},
		{ID: "b", Task: "t", DependsOn: []string{"a"}},
		{ID: "c", Task: "t", DependsOn: []string{"a"}},
		{ID: "d", Task: "t", DependsOn: []string{"b", "c"}},
	}, "")
	require.NoError(t, err)

	a, _ := g.Node("a")
	a.Status = StatusDone
	ready := ReadyNodes(g)
	require.Len(t, ready, 2)
	assert.ElementsMatch(t, []string{"b", "c"}, []string{ready[0].ID, ready[1].ID})
}

func TestIsComplete(t *testing.T) {
	g, err := Create("goal", []RawNode{{ID: "a", Task: "t"}, {ID: "b", Task: "t"}}, "")
	require.NoError(t, err)
	assert.False(t, IsComplete(g))

	a, _ := g.Node("a")
	b, _ := g.Node("b")
	a.Status = StatusDone
	assert.False(t, IsComplete(g))
	b.Status = StatusSkipped
	assert.True(t, IsComplete(g))
}

func TestSkipDownstream(t *testing.T) {
	g, err := Create("goal", []RawNode{
		{ID: "a", Task: "t"},
		{ID: "b", Task: "t", DependsOn: []string{"a"}},
		{ID: "c", Task: "t", DependsOn: []string{"b"}},
		{ID: "d", Task: "t", DependsOn: []string{"a"}},
		{ID: "e", Task: "t"},
	}, "")
	require.NoError(t, err)

	a, _ := g.Node("a")
	a.Status = StatusFailed
	SkipDownstream(g, "a")

	b, _ := g.Node("b")
	c, _ := g.Node("c")
	d, _ := g.Node("d")
	e, _ := g.Node("e")
	assert.Equal(t, StatusSkipped, b.Status)
	assert.Equal(t, StatusSkipped, c.Status)
	assert.Equal(t, StatusSkipped, d.Status)
	assert.Equal(t, StatusPending, e.Status)
}

func TestSkipDownstream_RunningNotRolledBack(t *testing.T) {
	g, err := Create("goal", []RawNode{
		{ID: "a", Task: "t"},
		{ID: "b", Task: "t", DependsOn: []string{"a"}},
	}, "")
	require.NoError(t, err)

	b, _ := g.Node("b")
	b.Status = StatusRunning
	SkipDownstream(g, "a")
	assert.Equal(t, StatusRunning, b.Status, "running nodes are not rolled back by skipDownstream")
}
