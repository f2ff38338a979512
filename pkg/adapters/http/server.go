package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/pipeview/internal/presentation/graph"
	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/interaction"
	"github.com/aretw0/pipeview/pkg/pipeline"
	"github.com/aretw0/pipeview/pkg/promotions"
	"github.com/aretw0/pipeview/pkg/topology"
)

// Viewer is what the server needs to hand out live views.
type Viewer interface {
	Pipeline(ctx context.Context, project string) (*pipeline.Session, error)
	Promotions(ctx context.Context, project, stage string) (*promotions.View, error)
	SetVisible(ctx context.Context, project string, visible bool) error
}

// Server serves the pipeline views over HTTP.
type Server struct {
	Viewer  Viewer
	Version string

	logger  *slog.Logger
	metrics http.Handler
	closed  []error
}

// HandlerOption configures the handler.
type HandlerOption func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion reports v on /info.
func WithVersion(v string) HandlerOption {
	return func(s *Server) {
		s.Version = v
	}
}

// WithUnavailableErrors lists the errors that mean the viewer is shutting
// down and should be reported as 503.
func WithUnavailableErrors(errs ...error) HandlerOption {
	return func(s *Server) {
		s.closed = append(s.closed, errs...)
	}
}

// NewHandler creates a new HTTP handler for the viewer.
func NewHandler(viewer Viewer, opts ...HandlerOption) http.Handler {
	server := &Server{
		Viewer:  viewer,
		Version: "dev",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	r.Route("/projects/{project}", func(r chi.Router) {
		r.Get("/pipeline", server.GetPipeline)
		r.Get("/pipeline.mmd", server.GetMermaid)
		r.Get("/events", server.SubscribeEvents)
		r.Put("/visibility", server.SetVisibility)

		r.Get("/freight", server.GetFreight)
		r.Get("/highlight", server.GetHighlight)

		r.Post("/selection", server.Select)
		r.Delete("/selection", server.CancelSelection)
		r.Post("/manual-approval", server.StartManualApproval)
		r.Post("/stages/{stage}/click", server.ClickStage)
		r.Get("/stages/{stage}/promotions", server.GetPromotions)
		r.Get("/stages/{stage}/promotions/{name}", server.GetPromotion)

		r.Post("/warehouses/{warehouse}/refresh", server.RefreshWarehouse)
		r.Post("/warehouses/{warehouse}/filter", server.ToggleWarehouseFilter)
		r.Delete("/warehouse-filter", server.ResetWarehouseFilter)

		r.Post("/settings/hide-subscriptions", server.ToggleHideSubscriptions)
		r.Delete("/settings/stage-colors", server.ReassignColors)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PipelineResponse is the body of GET /pipeline.
type PipelineResponse struct {
	Project           string                `json:"project"`
	Topology          topology.Result       `json:"topology"`
	Selection         interaction.Selection `json:"selection"`
	SelectedWarehouse string                `json:"selectedWarehouse,omitempty"`
	Faded             []string              `json:"faded"`
	Subscribers       map[string][]string   `json:"subscribers"`
	StagesPerFreight  map[string][]string   `json:"stagesPerFreight"`
	Visible           bool                  `json:"visible"`
}

// SelectRequest is the body of POST /selection.
type SelectRequest struct {
	Action interaction.Action `json:"action"`
	Stage  string             `json:"stage"`
}

// ManualApprovalRequest is the body of POST /manual-approval.
type ManualApprovalRequest struct {
	Freight string `json:"freight"`
}

// VisibilityRequest is the body of PUT /visibility.
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// ClickResponse is the body returned by POST /stages/{stage}/click.
type ClickResponse struct {
	Approved  bool                  `json:"approved"`
	Selection interaction.Selection `json:"selection"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "pipeview-http",
		"version": s.Version,
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*pipeline.Session, bool) {
	project := chi.URLParam(r, "project")
	sess, err := s.Viewer.Pipeline(r.Context(), project)
	if err != nil {
		s.fail(w, "Pipeline", err)
		return nil, false
	}
	return sess, true
}

func (s *Server) pipelineResponse(sess *pipeline.Session) PipelineResponse {
	res := sess.Topology()
	faded := []string{}
	for _, st := range res.SortedStages {
		if sess.IsFaded(st.Name) {
			faded = append(faded, st.Name)
		}
	}
	return PipelineResponse{
		Project:           sess.Project(),
		Topology:          res,
		Selection:         sess.Interaction(),
		SelectedWarehouse: sess.SelectedWarehouse(),
		Faded:             faded,
		Subscribers:       sess.SubscribersByStage(),
		StagesPerFreight:  sess.StagesPerFreight(),
		Visible:           sess.Visible(),
	}
}

// GetPipeline handles the GET /projects/{project}/pipeline request.
func (s *Server) GetPipeline(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.pipelineResponse(sess))
}

// GetMermaid handles the GET /projects/{project}/pipeline.mmd request.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	resp := s.pipelineResponse(sess)
	overlay := &graph.GraphOverlay{FadedStages: resp.Faded, Selected: resp.Selection.Stage}
	w.Header().Set("Content-Type", "text/vnd.mermaid; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(resp.Topology, overlay))
}

// SetVisibility handles the PUT /projects/{project}/visibility request.
func (s *Server) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var body VisibilityRequest
	if !s.decode(w, r, &body) {
		return
	}
	project := chi.URLParam(r, "project")
	if err := s.Viewer.SetVisible(r.Context(), project, body.Visible); err != nil {
		s.fail(w, "SetVisibility", err)
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}

// GetFreight handles the GET /projects/{project}/freight request.
// The warehouse filter applies unless ?all=true.
func (s *Server) GetFreight(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	freight := sess.FilteredFreight()
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		freight = sess.Freight()
	}
	if freight == nil {
		freight = []domain.Freight{}
	}
	s.writeJSON(w, http.StatusOK, freight)
}

// GetHighlight handles GET /projects/{project}/highlight?stage= or ?freight=.
func (s *Server) GetHighlight(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var out map[string]bool
	switch {
	case q.Get("stage") != "":
		out = sess.HighlightedStages(q.Get("stage"), true)
	case q.Get("freight") != "":
		out = sess.HighlightedStages(q.Get("freight"), false)
	default:
		http.Error(w, "stage or freight is required", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// Select handles the POST /projects/{project}/selection request.
func (s *Server) Select(w http.ResponseWriter, r *http.Request) {
	var body SelectRequest
	if !s.decode(w, r, &body) {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := sess.SelectStage(body.Action, body.Stage); err != nil {
		s.fail(w, "Select", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.pipelineResponse(sess))
}

// CancelSelection handles the DELETE /projects/{project}/selection request.
func (s *Server) CancelSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Cancel()
	s.writeJSON(w, http.StatusOK, s.pipelineResponse(sess))
}

// StartManualApproval handles the POST /projects/{project}/manual-approval request.
func (s *Server) StartManualApproval(w http.ResponseWriter, r *http.Request) {
	var body ManualApprovalRequest
	if !s.decode(w, r, &body) {
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sel, err := sess.StartManualApproval(body.Freight)
	if err != nil {
		s.fail(w, "StartManualApproval", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sel)
}

// ClickStage handles the POST /projects/{project}/stages/{stage}/click request.
func (s *Server) ClickStage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	approved, err := sess.ClickStage(r.Context(), chi.URLParam(r, "stage"))
	if err != nil {
		s.fail(w, "ClickStage", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ClickResponse{Approved: approved, Selection: sess.Interaction()})
}

// GetPromotions handles the GET /projects/{project}/stages/{stage}/promotions request.
func (s *Server) GetPromotions(w http.ResponseWriter, r *http.Request) {
	view, err := s.Viewer.Promotions(r.Context(), chi.URLParam(r, "project"), chi.URLParam(r, "stage"))
	if err != nil {
		s.fail(w, "GetPromotions", err)
		return
	}
	rows := view.Rows()
	if rows == nil {
		rows = []promotions.Row{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

// GetPromotion handles the GET /projects/{project}/stages/{stage}/promotions/{name} request.
func (s *Server) GetPromotion(w http.ResponseWriter, r *http.Request) {
	view, err := s.Viewer.Promotions(r.Context(), chi.URLParam(r, "project"), chi.URLParam(r, "stage"))
	if err != nil {
		s.fail(w, "GetPromotion", err)
		return
	}
	name := chi.URLParam(r, "name")
	row, ok := view.Lookup(name)
	if !ok {
		s.fail(w, "GetPromotion", fmt.Errorf("promotion %s: %w", name, domain.ErrNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

// RefreshWarehouse handles the POST /projects/{project}/warehouses/{warehouse}/refresh request.
func (s *Server) RefreshWarehouse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.RefreshWarehouse(r.Context(), chi.URLParam(r, "warehouse")); err != nil {
		s.fail(w, "RefreshWarehouse", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ToggleWarehouseFilter handles the POST /projects/{project}/warehouses/{warehouse}/filter request.
func (s *Server) ToggleWarehouseFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	selected := sess.ToggleWarehouseFilter(chi.URLParam(r, "warehouse"))
	s.writeJSON(w, http.StatusOK, map[string]string{"selectedWarehouse": selected})
}

// ResetWarehouseFilter handles the DELETE /projects/{project}/warehouse-filter request.
func (s *Server) ResetWarehouseFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ResetWarehouseFilter()
	w.WriteHeader(http.StatusNoContent)
}

// ToggleHideSubscriptions handles the POST /projects/{project}/settings/hide-subscriptions request.
func (s *Server) ToggleHideSubscriptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	hide, err := sess.ToggleHideSubscriptions(r.Context())
	if err != nil {
		s.fail(w, "ToggleHideSubscriptions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"hideSubscriptions": hide})
}

// ReassignColors handles the DELETE /projects/{project}/settings/stage-colors request.
func (s *Server) ReassignColors(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.ReassignColors(r.Context()); err != nil {
		s.fail(w, "ReassignColors", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Topology().StageColors)
}

// SubscribeEvents handles the GET /projects/{project}/events request (SSE).
// Every topology rebuild or freight refetch is pushed as an update.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := sess.Subscribe()
	defer cancel()
	s.logger.Info("SSE: Subscribing to pipeline updates", "project", sess.Project())

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "project", sess.Project())
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				s.logger.Error("SSE: update encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := s.statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func (s *Server) statusFor(err error) int {
	for _, target := range s.closed {
		if errors.Is(err, target) {
			return http.StatusServiceUnavailable
		}
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrNoFreightSelected),
		errors.Is(err, promotions.ErrStageRequired):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
