package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salesdash/internal/branch"
	"salesdash/internal/core"
	"salesdash/internal/dashboard"
	"salesdash/internal/export"
	"salesdash/internal/log"
	"salesdash/internal/table"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type branchesResponse struct {
	Branches []branch.Info `json:"branches"`
	Default  core.BranchID `json:"default"`
	Policy   branch.Policy `json:"unknownBranchPolicy"`
}

type sortView struct {
	Field     string          `json:"field,omitempty"`
	Direction table.Direction `json:"direction"`
}

type tableResponse struct {
	Branch core.BranchID       `json:"branch"`
	Table  dashboard.TableName `json:"table"`
	Sort   sortView            `json:"sort"`
	Rows   any                 `json:"rows"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if len(s.service.Registry().List()) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no branches loaded"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, branchesResponse{
		Branches: s.service.Registry().List(),
		Default:  core.DefaultBranch,
		Policy:   s.policy,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res := resolutionFrom(r.Context())
	sum, err := s.service.Summary(r.Context(), res.Branch)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpSummary)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	res := resolutionFrom(r.Context())
	name, err := dashboard.ParseTableName(chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	state, err := parseSort(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.service.Table(r.Context(), res.Branch, name, state)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpSort)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "table served",
		log.NewFields().WithBranch(res.Branch.String()).WithTable(string(name), state.Field, state.Direction.String()).ToSlice()...)
	writeJSON(w, http.StatusOK, tableResponse{
		Branch: res.Branch,
		Table:  name,
		Sort:   sortView{Field: state.Field, Direction: state.Direction},
		Rows:   rows,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res := resolutionFrom(r.Context())
	sum, err := s.service.Summary(r.Context(), res.Branch)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sum); err != nil {
		s.writeServiceError(w, r, err, log.OpExport)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s-summary.xlsx"`, strings.ToLower(res.Branch.String())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded", log.FieldClientIP, s.detector.ClientIP(r), log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// writeServiceError maps dashboard errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrUnknownBranch), errors.Is(err, dashboard.ErrUnknownTable):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dashboard.ErrUnknownColumn):
		writeError(w, http.StatusBadRequest, err.Error())
	case r.Context().Err() != nil:
		// client gone
	default:
		s.events.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
