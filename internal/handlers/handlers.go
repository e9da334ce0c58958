package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/pubsub"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/rankings"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/sleeper"
)

const maxUploadBytes = 10 << 20

// APIHandlers contains all API handler methods
type APIHandlers struct {
	session *session.Session
	leagues dal.LeagueDAL
	events  pubsub.Bus
}

// NewAPIHandlers creates a new API handlers instance. events may be nil, which disables SSE.
func NewAPIHandlers(s *session.Session, leagues dal.LeagueDAL, events pubsub.Bus) *APIHandlers {
	return &APIHandlers{
		session: s,
		leagues: leagues,
		events:  events,
	}
}

// Register mounts every route on mux. League writes go through authProvider.
func (h *APIHandlers) Register(mux *http.ServeMux, authProvider auth.AuthProvider) {
	protect := func(fn http.HandlerFunc) http.HandlerFunc { return fn }
	if authProvider != nil {
		mux.HandleFunc("/auth/login", authProvider.LoginHandler)
		mux.HandleFunc("/auth/callback", authProvider.CallbackHandler)
		mux.HandleFunc("/auth/logout", authProvider.LogoutHandler)
		protect = authProvider.Middleware
	}

	mux.HandleFunc("GET /{$}", h.BoardPage)

	mux.HandleFunc("POST /api/rankings", h.UploadRankings)
	mux.HandleFunc("POST /api/catalog/load", h.LoadCatalog)
	mux.HandleFunc("POST /api/draft/id", h.SetDraftID)
	mux.HandleFunc("POST /api/draft/refresh", h.Refresh)
	mux.HandleFunc("GET /api/board", h.Board)
	mux.HandleFunc("GET /api/available", h.Available)
	mux.HandleFunc("GET /api/top", h.Top)
	mux.HandleFunc("GET /api/search", h.Search)
	mux.HandleFunc("GET /api/drafted", h.Drafted)
	mux.HandleFunc("GET /api/unmatched", h.Unmatched)
	mux.HandleFunc("GET /api/summary", h.Summary)
	mux.HandleFunc("GET /api/adp", h.ADP)
	mux.HandleFunc("GET /api/events", h.EventsSSE)

	mux.HandleFunc("GET /api/leagues", h.ListLeagues)
	mux.HandleFunc("GET /api/leagues/export", h.ExportLeagues)
	mux.HandleFunc("GET /api/leagues/{name}", h.GetLeague)
	mux.HandleFunc("POST /api/leagues", protect(h.AddLeague))
	mux.HandleFunc("POST /api/leagues/import", protect(h.ImportLeagues))
	mux.HandleFunc("POST /api/leagues/{name}/use", protect(h.UseLeague))
	mux.HandleFunc("PUT /api/leagues/{name}", protect(h.UpdateLeague))
	mux.HandleFunc("DELETE /api/leagues/{name}", protect(h.DeleteLeague))

	mux.HandleFunc("GET /healthz", h.Liveness)
	mux.HandleFunc("GET /readyz", h.Readiness)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrNoRankings):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoDraftID), errors.Is(err, rankings.ErrMissingColumn),
		errors.Is(err, rankings.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, sleeper.ErrNotFound), errors.Is(err, dal.ErrLeagueNotFound):
		return http.StatusNotFound
	case errors.Is(err, dal.ErrLeagueExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		logger.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	http.Error(w, err.Error(), status)
}

// queryBool reports whether a query parameter is set to a true value ("1", "true", ...)
func queryBool(r *http.Request, key string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && b
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}
