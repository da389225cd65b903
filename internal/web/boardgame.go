package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/justestif/go-boardgame-playlists/internal/bgg"
)

// SearchGames proxies a catalog search (GET /boardgame/search?query=).
func (h *Handlers) SearchGames(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	results, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		internalError(w, r, err, msgSearchFailed)
		return
	}
	if results == nil {
		results = []bgg.SearchResult{}
	}

	writeJSON(w, http.StatusOK, results)
}

// GameDetails returns normalized attributes (GET /boardgame/details?id=).
func (h *Handlers) GameDetails(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, msgGameIDRequired)
		return
	}

	attrs, err := h.catalog.Details(r.Context(), id)
	if err != nil {
		if errors.Is(err, bgg.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, msgGameNotFound)
			return
		}
		internalError(w, r, err, msgDetailsFailed)
		return
	}

	writeJSON(w, http.StatusOK, attrs)
}
