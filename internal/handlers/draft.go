package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
)

// UploadRankings accepts a rankings CSV as the raw body or as the multipart field "file"
func (h *APIHandlers) UploadRankings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var body io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file field: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body = file
	}

	res, err := h.session.LoadRankingsCSV(body)
	if err != nil {
		if errors.Is(err, session.ErrNoRankings) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, r, err)
		return
	}

	sum := h.session.Summary()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"loaded":    len(res.Players),
		"skipped":   res.Skipped,
		"matched":   sum.Matched,
		"unmatched": sum.Unmatched,
	})
}

// LoadCatalog loads the Sleeper catalog; ?force=1 skips the cached copy
func (h *APIHandlers) LoadCatalog(w http.ResponseWriter, r *http.Request) {
	load := h.session.LoadCatalog
	if queryBool(r, "force") {
		load = h.session.ReloadCatalog
	}
	n, err := load(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum := h.session.Summary()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"players":   n,
		"matched":   sum.Matched,
		"unmatched": sum.Unmatched,
	})
}

// SetDraftID takes {"draftId": "..."} or {"url": "..."}
func (h *APIHandlers) SetDraftID(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DraftID string `json:"draftId"`
		URL     string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode draft id request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	raw := req.DraftID
	if raw == "" {
		raw = req.URL
	}
	id, err := h.session.SetDraftID(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"draftId": id})
}

func (h *APIHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.session.Refresh(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Board returns the top ?n= (default 5) available players at each board position
func (h *APIHandlers) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.session.Board(queryInt(r, "n", 5))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *APIHandlers) Available(w http.ResponseWriter, r *http.Request) {
	players, err := h.session.Available()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// Top returns the top ?n= available players, at ?position= when given
func (h *APIHandlers) Top(w http.ResponseWriter, r *http.Request) {
	n := queryInt(r, "n", 10)

	var (
		players []models.RankedPlayer
		err     error
	)
	if pos := strings.TrimSpace(r.URL.Query().Get("position")); pos != "" {
		players, err = h.session.TopByPosition(models.ParsePosition(pos), n)
	} else {
		players, err = h.session.TopOverall(n)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *APIHandlers) Search(w http.ResponseWriter, r *http.Request) {
	hits, err := h.session.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

func (h *APIHandlers) Drafted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Drafted())
}

// Unmatched reports ranked players with no catalog match and drafted catalog players
// none of the rankings point at
func (h *APIHandlers) Unmatched(w http.ResponseWriter, r *http.Request) {
	var ranked []models.RankedPlayer
	for _, m := range h.session.Matches() {
		if !m.Matched() {
			ranked = append(ranked, m.Ranked)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ranked":  ranked,
		"drafted": h.session.UnmatchedDrafted(),
	})
}

func (h *APIHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Summary())
}

func (h *APIHandlers) ADP(w http.ResponseWriter, r *http.Request) {
	rows, err := h.session.ADP(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
