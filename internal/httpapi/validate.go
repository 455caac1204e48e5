// Package httpapi exposes the orchestrator's HTTP submission surface:
// run creation, polling, plan/execute split, health, and live progress
// events. Ground truth teacher's internal/api/server.go and
// internal/orchestrator/events.go, generalized from the teacher's
// sequential single-task model to the concurrent DAG run model.
package httpapi

import (
	"strings"

	"github.com/orbrick/taskorchestrator/internal/orcerrors"
)

// SubmissionPayload is the wire shape of POST /runs.
type SubmissionPayload struct {
	Goal           string `json:"goal"`
	MaxConcurrency int    `json:"maxConcurrency,omitempty"`
	MaxSteps       int    `json:"maxSteps,omitempty"`
}

// ValidateSubmission enforces the invariants spec.md §6 lists for the
// submission payload beyond what encoding/json's own type checking gives
// for free (a non-empty trimmed goal, positive bounds).
func ValidateSubmission(p SubmissionPayload) error {
	if strings.TrimSpace(p.Goal) == "" {
		return orcerrors.New(orcerrors.KindValidationFailed, "goal must be non-empty")
	}
	if p.MaxConcurrency != 0 && p.MaxConcurrency < 1 {
		return orcerrors.New(orcerrors.KindValidationFailed, "maxConcurrency must be >= 1")
	}
	if p.MaxSteps != 0 && p.MaxSteps < 1 {
		return orcerrors.New(orcerrors.KindValidationFailed, "maxSteps must be >= 1")
	}
	return nil
}
