package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/auth"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/sleeper"
)

type leagueRequest struct {
	Name     string `json:"name"`
	DraftURL string `json:"draftUrl"`
	DraftID  string `json:"draftId"`
}

// draftID falls back to the id embedded in the URL
func (req leagueRequest) draftID() string {
	if req.DraftID != "" {
		return req.DraftID
	}
	return sleeper.ParseDraftID(req.DraftURL)
}

func (h *APIHandlers) ListLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.leagues.ListLeagues()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leagues)
}

func (h *APIHandlers) GetLeague(w http.ResponseWriter, r *http.Request) {
	league, err := h.leagues.GetLeague(r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, league)
}

func (h *APIHandlers) AddLeague(w http.ResponseWriter, r *http.Request) {
	var req leagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.draftID() == "" {
		http.Error(w, "name and a draft id or url are required", http.StatusBadRequest)
		return
	}

	league, err := h.leagues.AddLeague(req.Name, req.DraftURL, req.draftID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("League added", "name", league.Name, "draft_id", league.DraftID)
	writeJSON(w, http.StatusCreated, league)
}

func (h *APIHandlers) UpdateLeague(w http.ResponseWriter, r *http.Request) {
	var req leagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.draftID() == "" {
		http.Error(w, "a draft id or url is required", http.StatusBadRequest)
		return
	}

	league, err := h.leagues.UpdateLeague(r.PathValue("name"), req.DraftURL, req.draftID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, league)
}

// DeleteLeague is limited to admins
func (h *APIHandlers) DeleteLeague(w http.ResponseWriter, r *http.Request) {
	if user := auth.GetUser(r); user != nil && !auth.IsAdmin(user) {
		http.Error(w, "admin required", http.StatusForbidden)
		return
	}
	if err := h.leagues.DeleteLeague(r.PathValue("name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UseLeague switches the session to the league's draft and marks it used
func (h *APIHandlers) UseLeague(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	league, err := h.leagues.GetLeague(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.session.SetDraftID(r.Context(), league.DraftID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.leagues.MarkUsed(name); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"league": league.Name, "draftId": id})
}

func (h *APIHandlers) ExportLeagues(w http.ResponseWriter, r *http.Request) {
	data, err := h.leagues.Export()
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="leagues.json"`)
	_, _ = w.Write(data)
}

func (h *APIHandlers) ImportLeagues(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n, err := h.leagues.Import(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
