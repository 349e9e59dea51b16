package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codeatlas/codeatlas/pkg/export"
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/model"
	"github.com/codeatlas/codeatlas/pkg/resolver"
	"github.com/codeatlas/codeatlas/pkg/session"
)

// newAnalysisID mints a project id. Hyphens are stripped so ids stay
// path-segment friendly.
func newAnalysisID() string {
	return "project-" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// handleCreateAnalysis accepts a structural record, resolves it into a
// graph, runs the initial flow layout, and stores the session.
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	structure, err := resolver.DecodeStructure(body)
	if err != nil {
		s.metrics.RecordResolution("error", 0, 0)
		s.respondError(w, http.StatusBadRequest, "invalid structural record: "+err.Error())
		return
	}
	if len(structure) == 0 {
		s.metrics.RecordResolution("error", 0, 0)
		s.respondError(w, http.StatusUnprocessableEntity, "no visualization data available")
		return
	}

	start := time.Now()
	graph, err := resolver.New(s.log).Resolve(structure)
	if err != nil {
		s.metrics.RecordResolution("error", len(structure), 0)
		s.respondError(w, http.StatusInternalServerError, "resolution failed")
		return
	}
	s.metrics.RecordResolution("ok", len(structure), time.Since(start))
	s.metrics.MalformedFilesTotal.Add(float64(len(graph.FileErrors())))
	s.observeGraph(graph)

	sess := session.New(graph, s.layoutCfg, s.log)
	layoutStart := time.Now()
	if err := sess.Settle(r.Context()); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "layout interrupted")
		return
	}
	stats := sess.LayoutStats()
	s.metrics.RecordLayout(string(session.ViewFlow), stats.Steps, stats.Converged, time.Since(layoutStart))

	id := newAnalysisID()
	s.mu.Lock()
	s.sessions[id] = sess
	s.latest = id
	s.metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.log.Info("analysis loaded",
		logging.String("analysis", id),
		logging.Files(len(structure)),
		logging.Count(graph.NodeCount()))

	s.respondJSON(w, http.StatusCreated, s.analysisResponse(id, graph))
}

func (s *Server) analysisResponse(id string, g *model.Graph) AnalysisResponse {
	return AnalysisResponse{
		ID:         id,
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		Files:      len(g.NodesByKind(model.KindFile)),
		Externals:  len(g.NodesByKind(model.KindExternal)),
		FileErrors: g.FileErrors(),
	}
}

// observeGraph refreshes the per-kind and per-relation gauges.
func (s *Server) observeGraph(g *model.Graph) {
	for _, kind := range []model.Kind{
		model.KindFile, model.KindModule, model.KindFunction,
		model.KindClass, model.KindExternal, model.KindVirtual,
	} {
		s.metrics.GraphNodesTotal.WithLabelValues(string(kind)).
			Set(float64(len(g.NodesByKind(kind))))
	}
	counts := make(map[model.Relation]int)
	for _, e := range g.Edges() {
		counts[e.Relation]++
	}
	for _, rel := range []model.Relation{
		model.RelationContains, model.RelationCalls,
		model.RelationInherits, model.RelationImports,
	} {
		s.metrics.GraphEdgesTotal.WithLabelValues(string(rel)).
			Set(float64(counts[rel]))
	}
}

func (s *Server) handleAnalysisInfo(w http.ResponseWriter, r *http.Request, id string) {
	sess, ok := s.lookup(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.respondJSON(w, http.StatusOK, s.analysisResponse(id, sess.Graph()))
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		if s.latest == id {
			s.latest = ""
		}
		s.metrics.SessionsActive.Set(float64(len(s.sessions)))
	}
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	sess.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// handleView switches the session to the requested view and returns its
// render payload.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request, id, viewName string) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sess, ok := s.lookup(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	view, err := session.ParseView(viewName)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	if err := sess.SetView(view); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if view == session.ViewFlow {
		if err := sess.Settle(r.Context()); err != nil {
			s.respondError(w, http.StatusServiceUnavailable, "layout interrupted")
			return
		}
	}
	stats := sess.LayoutStats()
	s.metrics.RecordLayout(string(view), stats.Steps, stats.Converged, time.Since(start))

	s.respondJSON(w, http.StatusOK, export.Session(sess))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sess, ok := s.lookup(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.respondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleEvents applies one interaction event and returns the resulting
// snapshot, so thin clients can stay stateless.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sess, ok := s.lookup(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "analysis not found")
		return
	}

	var ev EventRequest
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event body")
		return
	}
	if err := s.validate.Struct(ev); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event: "+err.Error())
		return
	}
	if err := s.applyEvent(sess, ev); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.RecordInteraction(ev.Type)
	s.respondJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) applyEvent(sess *session.Session, ev EventRequest) error {
	switch ev.Type {
	case "hover":
		sess.PointerEnter(ev.NodeID)
	case "unhover":
		sess.PointerLeave()
	case "click":
		sess.Click(ev.NodeID)
	case "focus":
		sess.SetFocusMode(ev.On)
	case "pan":
		sess.Pan(ev.DX, ev.DY)
	case "zoom":
		if ev.Factor <= 0 {
			return errors.New("zoom factor must be positive")
		}
		sess.Zoom(ev.Factor, ev.X, ev.Y)
	case "drag":
		sess.Drag(ev.NodeID, ev.X, ev.Y)
	case "enddrag":
		sess.EndDrag(ev.NodeID)
	default:
		return errors.New("unknown event type " + ev.Type)
	}
	return nil
}
