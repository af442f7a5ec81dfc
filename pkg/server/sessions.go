package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/TechXTT/oraconsole/pkg/catalog"
	"github.com/TechXTT/oraconsole/pkg/history"
	"github.com/TechXTT/oraconsole/pkg/session"
)

func (s *Server) allocate(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.Allocate(r.Context())
	switch {
	case errors.Is(err, session.ErrCapacityExceeded):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		s.logger.Error("failed to allocate session", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/conn/"+id.String(), http.StatusSeeOther)
}

type listSessionsResponse struct {
	Sessions []session.ID `json:"sessions"`
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	ids := s.sessions.List()
	if ids == nil {
		ids = []session.ID{}
	}
	s.writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: ids})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request, id session.ID) {
	s.sessions.Release(id)
	http.Redirect(w, r, "/conn", http.StatusSeeOther)
}

func (s *Server) closeSession(w http.ResponseWriter, _ *http.Request, id session.ID) {
	s.sessions.Release(id)
	w.WriteHeader(http.StatusNoContent)
}

type connectionResponse struct {
	ConnID  session.ID `json:"connid"`
	Objects []string   `json:"objects"`
}

// connection answers for a live session with the names offered for
// completion. Dead or unknown sessions are sent back to allocation.
func (s *Server) connection(w http.ResponseWriter, r *http.Request, id session.ID) {
	ok, err := s.sessions.Ping(r.Context(), id)
	if err != nil {
		s.logger.Info("session ping failed", zap.Stringer("session", id), zap.Error(err))
	}
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	objects, err := catalog.New(s.sessions, id).CompletionObjects(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, connectionResponse{ConnID: id, Objects: objects})
}

type executeRequest struct {
	SQL string `json:"sql"`
}

type executeResponse struct {
	Err    string          `json:"err,omitempty"`
	Result *session.Result `json:"result,omitempty"`
}

// execute runs a statement. Database errors are part of a normal
// response; only an unknown session is a 404.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, id session.ID) {
	var req executeRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.record(req.SQL)

	res, err := s.sessions.Execute(r.Context(), id, req.SQL)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		s.writeJSON(w, http.StatusNotFound, executeResponse{Err: err.Error()})
	case err != nil:
		s.writeJSON(w, http.StatusOK, executeResponse{Err: err.Error()})
	default:
		s.writeJSON(w, http.StatusOK, executeResponse{Result: res})
	}
}

func (s *Server) record(statement string) {
	if s.history == nil || !s.history.Add(statement) {
		return
	}
	if err := s.history.Save(); err != nil {
		s.logger.Warn("failed to save history", zap.Error(err))
	}
}

type historyResponse struct {
	Entries []history.Record `json:"entries"`
	// Latest is the statement the editor starts with.
	Latest string `json:"latest"`
}

func (s *Server) listHistory(w http.ResponseWriter, _ *http.Request) {
	resp := historyResponse{Entries: []history.Record{}, Latest: history.DefaultStatement}
	if s.history != nil {
		resp.Entries = append(resp.Entries, s.history.Entries()...)
		if latest, ok := s.history.Latest(); ok {
			resp.Latest = latest.Data
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}
