package graph

import (
	"fmt"

	"github.com/orbrick/taskorchestrator/internal/orcerrors"
)

// TaskGraph is a goal plus an ordered sequence of nodes and an optional
// synthesizer prompt. It is built once by Create and then mutated exclusively
// by the executor for the duration of a single execute call.
type TaskGraph struct {
	Goal              string
	Nodes             []*TaskNode
	SynthesizerPrompt string

	byID     map[string]*TaskNode
	children map[string][]string // node ID -> IDs that depend on it
}

// RawNode is the planner-facing shape before invariant validation.
type RawNode struct {
	ID        string
	Task      string
	DependsOn []string
	AssignTo  string
	Config    *NodeConfig
}

// Create validates the four graph invariants from the spec and returns a
// ready-to-execute TaskGraph, or a *orcerrors.Error tagged GRAPH_INVALID.
func Create(goal string, rawNodes []RawNode, synthPrompt string) (*TaskGraph, error) {
	byID := make(map[string]*TaskNode, len(rawNodes))
	nodes := make([]*TaskNode, 0, len(rawNodes))

	// Invariant 1: pairwise unique IDs.
	for _, rn := range rawNodes {
		if rn.ID == "" {
			return nil, orcerrors.New(orcerrors.KindGraphInvalid, "node has empty id")
		}
		if _, dup := byID[rn.ID]; dup {
			return nil, orcerrors.New(orcerrors.KindGraphInvalid, fmt.Sprintf("duplicate node id %q", rn.ID))
		}
		n := &TaskNode{
			ID:        rn.ID,
			Task:      rn.Task,
			DependsOn: append([]string(nil), rn.DependsOn...),
			AssignTo:  rn.AssignTo,
			Status:    StatusPending,
			Config:    rn.Config,
		}
		byID[rn.ID] = n
		nodes = append(nodes, n)
	}

	// Invariant 2: every dependsOn ID refers to a declared node.
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, orcerrors.New(orcerrors.KindGraphInvalid,
					fmt.Sprintf("node %q depends on undeclared node %q", n.ID, dep))
			}
		}
	}

	// Invariant 3: acyclic, via DFS with a three-color visiting set.
	if cycleID, ok := detectCycle(nodes); ok {
		return nil, orcerrors.New(orcerrors.KindGraphInvalid,
			fmt.Sprintf("cycle detected involving node %q", cycleID))
	}

	children := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			children[dep] = append(children[dep], n.ID)
		}
	}

	return &TaskGraph{
		Goal:              goal,
		Nodes:             nodes,
		SynthesizerPrompt: synthPrompt,
		byID:              byID,
		children:          children,
	}, nil
}

const (
	colorWhite = 0
	colorGray  = 1
	colorBlack = 2
)

// detectCycle runs standard DFS coloring over the dependsOn relation. It
// returns the ID of a node on a discovered back-edge.
func detectCycle(nodes []*TaskNode) (string, bool) {
	color := make(map[string]int, len(nodes))
	byID := make(map[string]*TaskNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var visit func(id string) (string, bool)
	visit = func(id string) (string, bool) {
		color[id] = colorGray
		for _, dep := range byID[id].DependsOn {
			switch color[dep] {
			case colorGray:
				return dep, true
			case colorWhite:
				if cyc, found := visit(dep); found {
					return cyc, true
				}
			}
		}
		color[id] = colorBlack
		return "", false
	}

	for _, n := range nodes {
		if color[n.ID] == colorWhite {
			if cyc, found := visit(n.ID); found {
				return cyc, true
			}
		}
	}
	return "", false
}

// Node looks up a node by ID.
func (g *TaskGraph) Node(id string) (*TaskNode, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// ReadyNodes returns pending nodes whose every dependency is done. Order is
// deterministic: the declared node sequence, filtered.
func ReadyNodes(g *TaskGraph) []*TaskNode {
	var ready []*TaskNode
	for _, n := range g.Nodes {
		if n.Status != StatusPending {
			continue
		}
		allDepsDone := true
		for _, dep := range n.DependsOn {
			depNode := g.byID[dep]
			if depNode == nil || depNode.Status != StatusDone {
				allDepsDone = false
				break
			}
		}
		if allDepsDone {
			ready = append(ready, n)
		}
	}
	return ready
}

// IsComplete reports whether every node is in a terminal status.
func IsComplete(g *TaskGraph) bool {
	for _, n := range g.Nodes {
		if !n.Status.Terminal() {
			return false
		}
	}
	return true
}

// SkipDownstream transitively marks every still-pending node whose
// dependency closure contains failedID as skipped. Running nodes are left
// alone; their eventual result does not unskip already-skipped descendants.
func SkipDownstream(g *TaskGraph, failedID string) {
	var walk func(id string)
	walk = func(id string) {
		for _, childID := range g.children[id] {
			child := g.byID[childID]
			if child == nil || child.Status != StatusPending {
				continue
			}
			child.Status = StatusSkipped
			walk(childID)
		}
	}
	walk(failedID)
}
