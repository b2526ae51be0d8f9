package viewer

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/layout"
	"github.com/joshharrison/critpath/internal/planner"
	"github.com/joshharrison/critpath/internal/session"
	"github.com/joshharrison/critpath/internal/taskfile"
)

const maxBodyBytes = 1 << 20

// ProjectRequest is the body of POST /api/v1/projects.
type ProjectRequest struct {
	Project  string           `json:"project"`
	Tasks    []taskfile.Input `json:"tasks"`
	Deadline float64          `json:"deadline,omitempty"`
}

// ProjectResponse is returned when a project is scheduled.
type ProjectResponse struct {
	ID   string        `json:"id"`
	Plan *planner.Plan `json:"plan"`
	View *layout.View  `json:"view"`
}

// EstimateRequest is the body of POST /api/v1/estimate. All three
// estimates are required.
type EstimateRequest struct {
	Optimistic  *float64 `json:"optimistic"`
	MostLikely  *float64 `json:"most_likely"`
	Pessimistic *float64 `json:"pessimistic"`
}

type EstimateResponse struct {
	Expected float64 `json:"expected"`
	StdDev   float64 `json:"std_dev"`
	Variance float64 `json:"variance"`
}

// ErrorResponse describes a rejected request. Kind is one of bad_request,
// invalid_record, duplicate_task, invalid_reference, cycle, invalid_graph
// or not_found.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Kind      string   `json:"kind"`
	Task      string   `json:"task,omitempty"`
	Reference string   `json:"reference,omitempty"`
	Field     string   `json:"field,omitempty"`
	Cycle     []string `json:"cycle,omitempty"`
}

// Server serves scheduled projects over HTTP and pushes new ones to
// websocket subscribers.
type Server struct {
	store        *session.Store
	hub          *hub
	templatePath string
}

// New creates a Server backed by store. templatePath optionally overrides
// the Markdown report template.
func New(store *session.Store, templatePath string) *Server {
	return &Server{
		store:        store,
		hub:          newHub(),
		templatePath: templatePath,
	}
}

// Routes returns the HTTP handler for the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/estimate", s.handleEstimate)
		r.Get("/stream", s.handleStream)

		r.Get("/projects", s.handleListProjects)
		r.Post("/projects", s.handleCreateProject)
		r.Get("/projects/{id}", s.handleGetProject)
		r.Delete("/projects/{id}", s.handleDeleteProject)
		r.Get("/projects/{id}/graph", s.handleGetGraph)
		r.Get("/projects/{id}/markdown", s.handleGetMarkdown)
	})

	return r
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: " + err.Error(), Kind: "bad_request"})
		return
	}

	tasks, err := taskfile.Validate(req.Tasks)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, describe(err))
		return
	}

	plan, err := planner.Generate(req.Project, tasks, planner.Config{Deadline: req.Deadline})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, describe(err))
		return
	}

	s.store.Put(plan)
	view := layout.FromGraph(plan.Graph(), plan.Report)
	s.hub.broadcast(Event{Type: EventProject, ID: plan.ID, Title: plan.Title, View: view})

	writeJSON(w, http.StatusCreated, ProjectResponse{ID: plan.ID, Plan: plan, View: view})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]session.Summary{"projects": s.store.List()})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Delete(id) {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "project not found", Kind: "not_found"})
		return
	}
	s.hub.broadcast(Event{Type: EventDeleted, ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, layout.FromGraph(plan.Graph(), plan.Report))
}

func (s *Server) handleGetMarkdown(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.lookup(w, r)
	if !ok {
		return
	}
	md, err := planner.RenderMarkdown(plan, s.templatePath)
	if err != nil {
		log.Printf("viewer: render markdown for %s: %v", plan.ID, err)
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "render failed", Kind: "internal"})
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: " + err.Error(), Kind: "bad_request"})
		return
	}

	tasks, err := taskfile.Validate([]taskfile.Input{{
		Name:        "estimate",
		Optimistic:  req.Optimistic,
		MostLikely:  req.MostLikely,
		Pessimistic: req.Pessimistic,
	}})
	if err != nil {
		resp := describe(err)
		resp.Task = ""
		writeError(w, http.StatusUnprocessableEntity, resp)
		return
	}

	t := tasks[0]
	writeJSON(w, http.StatusOK, EstimateResponse{
		Expected: t.Expected(),
		StdDev:   t.StdDev(),
		Variance: t.Variance(),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*planner.Plan, bool) {
	plan, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "project not found", Kind: "not_found"})
		return nil, false
	}
	return plan, true
}

// describe maps validation and graph errors to their API form.
func describe(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), Kind: "invalid_graph"}

	var (
		recErr   *taskfile.RecordError
		dupErr   *graph.DuplicateTaskNameError
		refErr   *graph.InvalidReferenceError
		cycleErr *graph.CycleError
	)
	switch {
	case errors.As(err, &recErr):
		resp.Kind = "invalid_record"
		resp.Task = recErr.Name
		resp.Field = recErr.Field
	case errors.As(err, &dupErr):
		resp.Kind = "duplicate_task"
		resp.Task = dupErr.Name
	case errors.As(err, &refErr):
		resp.Kind = "invalid_reference"
		resp.Task = refErr.Task
		resp.Reference = refErr.Reference
	case errors.As(err, &cycleErr):
		resp.Kind = "cycle"
		resp.Cycle = cycleErr.Members
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("viewer: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}
