package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salesdash/internal/branch"
	"salesdash/internal/table"
)

type contextKey string

const resolutionKey contextKey = "branch_resolution"

// FallbackHeader is set when an unknown branch was answered with the default one.
const FallbackHeader = "X-Branch-Fallback"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// resolveBranch applies the unknown-branch policy to the {branch} parameter.
// Under the strict policy an unknown branch ends the request with 404.
func (s *Server) resolveBranch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := s.service.Registry().Resolve(chi.URLParam(r, "branch"), s.policy)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if res.Fallback {
			w.Header().Set(FallbackHeader, "true")
			s.events.LogBranchFallback(r.Context(), res.Requested, res.Branch.String())
		}
		w.Header().Set("X-Branch", res.Branch.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resolutionKey, res)))
	})
}

func resolutionFrom(ctx context.Context) branch.Resolution {
	res, _ := ctx.Value(resolutionKey).(branch.Resolution)
	return res
}

// parseSort reads ?sort=&dir=. A column without a direction sorts ascending;
// a direction without a column is ignored.
func parseSort(r *http.Request) (table.State, error) {
	q := r.URL.Query()
	field := strings.ToLower(strings.TrimSpace(q.Get("sort")))
	dir, err := table.ParseDirection(q.Get("dir"))
	if err != nil {
		return table.State{}, err
	}
	if field == "" {
		return table.State{}, nil
	}
	if strings.TrimSpace(q.Get("dir")) == "" {
		dir = table.Ascending
	}
	return table.State{Field: field, Direction: dir}, nil
}
