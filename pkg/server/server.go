// Package server serves the console over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/TechXTT/oraconsole/pkg/history"
	"github.com/TechXTT/oraconsole/pkg/session"
)

const shutdownTimeout = 10 * time.Second

// Server routes console requests to a session registry.
type Server struct {
	sessions *session.Registry
	history  *history.Store
	logger   *zap.Logger
	mux      *mux.Router
}

// New returns a Server backed by sessions. hist may be nil, in which case
// executed statements are not recorded.
func New(sessions *session.Registry, hist *history.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sessions: sessions,
		history:  hist,
		logger:   logger,
		mux:      mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	routeDefinitions := []struct {
		endpoint string
		method   string
		handler  http.HandlerFunc
	}{
		{"/", http.MethodGet, s.allocate},
		{"/conn", http.MethodGet, s.listSessions},
		{"/history", http.MethodGet, s.listHistory},
		{"/conn/{connid}", http.MethodGet, s.withSession(s.connection)},
		{"/conn/{connid}/delete", http.MethodPost, s.withSession(s.deleteSession)},
		{"/conn/{connid}/execute", http.MethodPost, s.withSession(s.execute)},
		{"/conn/{connid}/ddl", http.MethodGet, s.withSession(s.objects)},
		{"/conn/{connid}/ddl", http.MethodPost, s.withSession(s.ddl)},
		{"/conn/{connid}/def", http.MethodGet, s.withSession(s.procedures)},
		{"/conn/{connid}/def", http.MethodPost, s.withSession(s.definition)},
		{"/{connid}/close", http.MethodPost, s.withSession(s.closeSession)},
	}
	for _, route := range routeDefinitions {
		s.mux.HandleFunc(route.endpoint, route.handler).Methods(route.method)
	}
	s.mux.Use(s.logRequests)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// sessionHandler is a handler for routes carrying a {connid} variable.
type sessionHandler func(w http.ResponseWriter, r *http.Request, id session.ID)

// withSession parses {connid}. Malformed ids are answered with 404.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := session.ParseID(mux.Vars(r)["connid"])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		h(w, r, id)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// decode reads a JSON request body into dst, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}
