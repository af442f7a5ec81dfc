package server

import (
	"errors"
	"net/http"

	"github.com/TechXTT/oraconsole/pkg/catalog"
	"github.com/TechXTT/oraconsole/pkg/session"
)

// procedureType is the only object type /def can describe.
const procedureType = "PROCEDURE"

type objectsResponse struct {
	Objects map[string][]catalog.ObjectRef `json:"objects"`
}

func (s *Server) objects(w http.ResponseWriter, r *http.Request, id session.ID) {
	objects, err := catalog.New(s.sessions, id).Objects(r.Context())
	if err != nil {
		s.writeJSON(w, catalogStatus(err), errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, objectsResponse{Objects: objects})
}

type ddlRequest struct {
	Type    string `json:"type"`
	Owner   string `json:"owner"`
	Package string `json:"package"`
}

type ddlResponse struct {
	DDL   string `json:"ddl,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) ddl(w http.ResponseWriter, r *http.Request, id session.ID) {
	var req ddlRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Type == "" || req.Owner == "" || req.Package == "" {
		s.writeJSON(w, http.StatusBadRequest, ddlResponse{Error: "type, owner and package are required"})
		return
	}

	ddl, err := catalog.New(s.sessions, id).DDL(r.Context(), req.Type, req.Owner, req.Package)
	if err != nil {
		s.writeJSON(w, catalogStatus(err), ddlResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, ddlResponse{DDL: ddl})
}

type proceduresResponse struct {
	Procedures []catalog.Procedure `json:"procedures"`
}

func (s *Server) procedures(w http.ResponseWriter, r *http.Request, id session.ID) {
	procs, err := catalog.New(s.sessions, id).Procedures(r.Context())
	if err != nil {
		s.writeJSON(w, catalogStatus(err), errorResponse{Error: err.Error()})
		return
	}
	if procs == nil {
		procs = []catalog.Procedure{}
	}
	s.writeJSON(w, http.StatusOK, proceduresResponse{Procedures: procs})
}

type definitionRequest struct {
	Type         string `json:"type"`
	ObjectID     int64  `json:"object_id"`
	SubprogramID int64  `json:"subprogram_id"`
}

type definitionResponse struct {
	Data *session.ResultSet `json:"data"`
}

func (s *Server) definition(w http.ResponseWriter, r *http.Request, id session.ID) {
	var req definitionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Type != procedureType {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported object type: " + req.Type})
		return
	}

	args, err := catalog.New(s.sessions, id).Arguments(r.Context(), req.ObjectID, req.SubprogramID)
	if err != nil {
		s.writeJSON(w, catalogStatus(err), errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, definitionResponse{Data: args})
}

func catalogStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrExecutionFailed):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
