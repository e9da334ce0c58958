package handlers

import (
	"net/http"
	"time"
)

// Liveness reports that the process is up
func (h *APIHandlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness checks the league store and reports session counts
func (h *APIHandlers) Readiness(w http.ResponseWriter, r *http.Request) {
	if _, err := h.leagues.ListLeagues(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "not_ready",
			"reason":    "database_unavailable",
			"error":     err.Error(),
			"timestamp": time.Now().Unix(),
		})
		return
	}

	sum := h.session.Summary()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"ranked":    sum.Ranked,
		"catalog":   sum.CatalogSize,
		"timestamp": time.Now().Unix(),
	})
}
