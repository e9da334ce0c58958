package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type boardPage struct {
	Summary session.Summary
	Board   []session.PositionBoard
	Drafted int
	Loaded  bool
}

// BoardPage renders the board as HTML. It reloads itself on board events.
func (h *APIHandlers) BoardPage(w http.ResponseWriter, r *http.Request) {
	page := boardPage{Summary: h.session.Summary()}

	board, err := h.session.Board(queryInt(r, "n", 5))
	switch {
	case err == nil:
		page.Board = board
		page.Loaded = true
	case !errors.Is(err, session.ErrNoRankings):
		writeError(w, r, err)
		return
	}
	page.Drafted = page.Summary.Drafted

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "board.html", page); err != nil {
		logger.Error("Failed to render board", "error", err)
	}
}
