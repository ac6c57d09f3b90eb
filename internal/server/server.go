// Package server exposes the journal over a JSON HTTP API: submission
// endpoints for students (analyze, ask) and aggregate endpoints for
// teachers (summary, weekly report, dashboard, export).
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"kokorolog/internal/config"
	"kokorolog/internal/export"
	"kokorolog/internal/journal"
	"kokorolog/internal/logging"
	"kokorolog/internal/reply"
	"kokorolog/internal/report"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	cfg      *config.Config
	journal  *journal.Service
	reports  *report.Generator
	exporter *export.Exporter
	replier  *reply.Replier
	version  string
	limiter  *rateLimiter
	mux      *http.ServeMux
}

// New wires the routes. All dependencies are required except the
// replier's LLM, which degrades to canned phrases on its own.
func New(cfg *config.Config, j *journal.Service, g *report.Generator, e *export.Exporter, rep *reply.Replier, version string) *Server {
	s := &Server{
		cfg:      cfg,
		journal:  j,
		reports:  g,
		exporter: e,
		replier:  rep,
		version:  version,
		limiter:  newRateLimiter(cfg.Server.RateLimitPerMin),
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("GET /summary", s.handleSummary)
	s.mux.HandleFunc("GET /weekly_report", s.handleWeekly)
	s.mux.HandleFunc("GET /teacher_dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /export", s.handleExport)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	return s
}

// Handler returns the full middleware chain around the mux.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = withRateLimit(s.limiter, h)
	h = withAPIKey(s.cfg.Server.APIKey, h)
	h = withAccessLog(h)
	h = withRecovery(h)
	h = withRequestID(h)
	return h
}

// ListenAndServe runs until ctx is cancelled, then drains connections
// for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Server("listening on %s", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

type errorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail, RequestID: RequestID(r)})
}
