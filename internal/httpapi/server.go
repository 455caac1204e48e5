package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbrick/taskorchestrator/internal/config"
	"github.com/orbrick/taskorchestrator/internal/executor"
	"github.com/orbrick/taskorchestrator/internal/graph"
	"github.com/orbrick/taskorchestrator/internal/orcerrors"
	"github.com/orbrick/taskorchestrator/internal/planner"
)

// RunStatus tracks a submitted run through planning and execution.
type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusPlanned RunStatus = "planned"
	RunStatusRunning RunStatus = "running"
	RunStatusDone     RunStatus = "done"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one submission's lifecycle state, ground truth teacher's
// models.Task generalized from a single-agent task to a full DAG run.
type Run struct {
	mu sync.RWMutex

	ID             string
	Goal           string
	MaxConcurrency int
	Status         RunStatus
	Graph          *graph.TaskGraph
	Result         *executor.Result
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *Run) snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[string]any{
		"id":        r.ID,
		"goal":      r.Goal,
		"status":    r.Status,
		"createdAt": r.CreatedAt,
		"updatedAt": r.UpdatedAt,
	}
	if r.Graph != nil {
		out["graph"] = r.Graph
	}
	if r.Result != nil {
		out["success"] = r.Result.Success
		out["durationMs"] = r.Result.Duration.Milliseconds()
		out["nodeResults"] = r.Result.NodeResults
	}
	if r.Error != "" {
		out["error"] = r.Error
	}
	return out
}

func (r *Run) setStatus(s RunStatus) {
	r.mu.Lock()
	r.Status = s
	r.UpdatedAt = time.Now()
	r.mu.Unlock()
}

func (r *Run) setError(err error) {
	r.mu.Lock()
	r.Status = RunStatusFailed
	r.Error = err.Error()
	r.UpdatedAt = time.Now()
	r.mu.Unlock()
}

// Server wires the planner and executor cores behind an HTTP surface.
// Ground truth teacher's internal/api/server.go, split from a package-level
// init() singleton into an explicitly-constructed value per spec §9's
// "avoid hidden module-global access" guidance.
type Server struct {
	Planner  *planner.Planner
	Executor *executor.Executor
	Config   *config.Config
	Hub      *EventHub
	Logger   *zap.Logger

	mu   sync.RWMutex
	runs map[string]*Run
}

// NewServer builds a Server with an empty run table and event hub.
func NewServer(p *planner.Planner, e *executor.Executor, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		Planner:  p,
		Executor: e,
		Config:   cfg,
		Hub:      NewEventHub(),
		Logger:   logger,
		runs:     map[string]*Run{},
	}
}

// Routes builds the HTTP surface: submission, polling, plan/execute split,
// events, and health.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /runs", s.handleCreateRun)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("POST /runs/{id}/plan", s.handlePlan)
	mux.HandleFunc("POST /runs/{id}/execute", s.handleExecute)
	mux.HandleFunc("GET /runs/{id}/events", s.handleEvents)
	return cors(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleCreateRun validates the submission, registers the run, then plans
// and executes it in the background — mirroring the teacher's POST /tasks
// + POST /tasks/start/{id} two-step, collapsed into one call since this
// domain has no separate "review before starting" requirement at the top
// level (that is what /plan and /execute below are for).
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var payload SubmissionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ValidateSubmission(payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxConcurrency := payload.MaxConcurrency
	if maxConcurrency == 0 {
		maxConcurrency = s.Config.Limits.MaxConcurrency
	}

	run := &Run{
		ID:             uuid.NewString(),
		Goal:           payload.Goal,
		MaxConcurrency: maxConcurrency,
		Status:         RunStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	s.mu.Lock()
	s.runs[run.ID] = run
	s.mu.Unlock()

	go s.planAndExecute(context.Background(), run)

	respondJSON(w, http.StatusAccepted, run.snapshot())
}

func (s *Server) planAndExecute(ctx context.Context, run *Run) {
	g, err := s.Planner.Plan(ctx, run.Goal)
	if err != nil {
		run.setError(err)
		s.Hub.Publish(run.ID, Event{Event: "run_status", RunID: run.ID, Payload: map[string]any{"status": run.Status, "error": err.Error()}})
		return
	}
	run.mu.Lock()
	run.Graph = g
	run.Status = RunStatusPlanned
	run.UpdatedAt = time.Now()
	run.mu.Unlock()
	s.Hub.Publish(run.ID, Event{Event: "plan", RunID: run.ID, Payload: g})

	s.execute(ctx, run)
}

func (s *Server) execute(ctx context.Context, run *Run) {
	run.setStatus(RunStatusRunning)
	s.Hub.Publish(run.ID, Event{Event: "run_status", RunID: run.ID, Payload: map[string]any{"status": run.Status}})

	result := s.Executor.Execute(ctx, run.Graph, executor.Options{
		MaxConcurrency: run.MaxConcurrency,
		OnNodeStart: func(id string) {
			s.Hub.Publish(run.ID, Event{Event: "node_status", RunID: run.ID, Payload: map[string]any{"id": id, "status": "running"}})
		},
		OnNodeEnd: func(id string, r graph.TaskResult) {
			s.Hub.Publish(run.ID, Event{Event: "node_status", RunID: run.ID, Payload: map[string]any{"id": id, "status": r.Status, "output": r.Output}})
		},
	})

	run.mu.Lock()
	run.Result = &result
	if result.Success {
		run.Status = RunStatusDone
	} else {
		run.Status = RunStatusFailed
	}
	run.UpdatedAt = time.Now()
	run.mu.Unlock()
	s.Hub.Publish(run.ID, Event{Event: "run_status", RunID: run.ID, Payload: map[string]any{"status": run.Status, "success": result.Success}})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	respondJSON(w, http.StatusOK, run.snapshot())
}

// handlePlan runs the planner alone, ground truth teacher's
// Orchestrator.PlanOnly.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	g, err := s.Planner.Plan(r.Context(), run.Goal)
	if err != nil {
		run.setError(err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	run.mu.Lock()
	run.Graph = g
	run.Status = RunStatusPlanned
	run.UpdatedAt = time.Now()
	run.mu.Unlock()
	respondJSON(w, http.StatusOK, g)
}

// handleExecute runs an already-planned graph, ground truth teacher's
// Orchestrator.ExecutePlan.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	run.mu.RLock()
	hasGraph := run.Graph != nil
	run.mu.RUnlock()
	if !hasGraph {
		http.Error(w, "run has not been planned yet", http.StatusConflict)
		return
	}
	go s.execute(context.Background(), run)
	w.WriteHeader(http.StatusAccepted)
}

// handleEvents streams run lifecycle events as SSE, ground truth teacher's
// Hub-backed subscription model.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.lookup(id); !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, unsubscribe := s.Hub.Subscribe(id)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) lookup(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func statusFor(err error) int {
	kind, ok := orcerrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case orcerrors.KindParseFailed, orcerrors.KindValidationFailed, orcerrors.KindGraphInvalid:
		return http.StatusBadRequest
	case orcerrors.KindConfigMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// cors is a permissive local-dev CORS middleware, ground truth teacher's
// cmd/server/main.go cors().
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
