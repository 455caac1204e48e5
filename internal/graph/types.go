// Package graph implements the task DAG: node/result types, construction
// with invariant validation, and the readiness/skip/completion predicates the
// executor drives against. The graph itself carries no concurrency control;
// the executor owns synchronization (see internal/executor).
package graph

// Status is the lifecycle state of a TaskNode.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Terminal reports whether s is one of the terminal statuses.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// NodeConfig holds per-node overrides.
type NodeConfig struct {
	// Retries is additional attempts beyond the first; 0 means call once.
	Retries int `json:"retries,omitempty"`
}

// TaskResult is a tagged union: exactly one of Ok/Err is meaningful,
// distinguished by Status.
type TaskResult struct {
	Status Status `json:"status"`
	Output string `json:"output"`
}

// Ok builds a successful TaskResult.
func Ok(output string) TaskResult { return TaskResult{Status: StatusDone, Output: output} }

// Err builds a failed TaskResult. output is a diagnostic message.
func Err(output string) TaskResult { return TaskResult{Status: StatusFailed, Output: output} }

// IsOk reports whether the result represents success.
func (r TaskResult) IsOk() bool { return r.Status == StatusDone }

// TaskNode is one subtask in a TaskGraph.
type TaskNode struct {
	ID          string      `json:"id"`
	Task        string      `json:"task"`
	DependsOn   []string    `json:"dependsOn,omitempty"`
	AssignTo    string      `json:"assignTo,omitempty"`
	Status      Status      `json:"status"`
	Result      *TaskResult `json:"result,omitempty"`
	Config      *NodeConfig `json:"config,omitempty"`
}

// Retries returns the node's configured retry count, or 0 if unset.
func (n *TaskNode) Retries() int {
	if n.Config == nil {
		return 0
	}
	return n.Config.Retries
}
