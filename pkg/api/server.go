// Package api is the HTTP surface of the analysis engine: structural
// records come in, resolved graphs, laid-out views, and interaction
// snapshots go out.
package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeatlas/codeatlas/pkg/graphql"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/logging"
	"github.com/codeatlas/codeatlas/pkg/metrics"
	"github.com/codeatlas/codeatlas/pkg/model"
	"github.com/codeatlas/codeatlas/pkg/session"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// Server is the HTTP API server. It holds resolved analyses in memory;
// nothing survives a restart.
type Server struct {
	log       logging.Logger
	metrics   *metrics.Registry
	layoutCfg layout.Config
	maxBody   int64
	validate  *validator.Validate

	mu       sync.RWMutex
	sessions map[string]*session.Session
	latest   string

	graphqlHandler *graphql.Handler
	startTime      time.Time
}

// Options tune server construction. Zero values fall back to defaults.
type Options struct {
	Logger       logging.Logger
	Metrics      *metrics.Registry
	Layout       layout.Config
	MaxBodyBytes int64
}

// NewServer creates an API server with no analyses loaded.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 16 << 20
	}

	s := &Server{
		log:       opts.Logger.With(logging.Component("api")),
		metrics:   opts.Metrics,
		layoutCfg: opts.Layout,
		maxBody:   opts.MaxBodyBytes,
		validate:  validator.New(),
		sessions:  make(map[string]*session.Session),
		startTime: time.Now(),
	}

	// The GraphQL surface queries the most recently loaded analysis.
	schema, err := graphql.BuildSchema(s.currentGraph)
	if err != nil {
		return nil, err
	}
	s.graphqlHandler = graphql.NewHandler(schema)
	return s, nil
}

func (s *Server) currentGraph() *model.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[s.latest]; ok {
		return sess.Graph()
	}
	return model.NewGraph()
}

func (s *Server) lookup(id string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Handler builds the routed handler with logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.metrics.PrometheusRegistry(),
		promhttp.HandlerOpts{},
	))
	mux.Handle("/graphql", s.graphqlHandler)

	mux.HandleFunc("/api/analysis", s.handleCreateAnalysis)
	mux.HandleFunc("/api/analysis/", s.handleAnalysisSubtree)

	return s.loggingMiddleware(s.metricsMiddleware(s.corsMiddleware(mux)))
}

// handleAnalysisSubtree routes /api/analysis/{id}/... paths.
func (s *Server) handleAnalysisSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/analysis/")
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.respondError(w, http.StatusNotFound, "analysis id missing")
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.handleAnalysisInfo(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.handleDeleteAnalysis(w, r, id)
	case len(parts) == 3 && parts[1] == "view":
		s.handleView(w, r, id, parts[2])
	case len(parts) == 2 && parts[1] == "snapshot":
		s.handleSnapshot(w, r, id)
	case len(parts) == 2 && parts[1] == "events":
		s.handleEvents(w, r, id)
	default:
		s.respondError(w, http.StatusNotFound, "no such endpoint")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	loaded := len(s.sessions)
	s.mu.RUnlock()

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Analyses:  loaded,
		Uptime:    time.Since(s.startTime).String(),
	})
}
