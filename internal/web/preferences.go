package web

import (
	"errors"
	"net/http"

	"github.com/justestif/go-boardgame-playlists/internal/playlist"
	"github.com/justestif/go-boardgame-playlists/internal/validation"
)

// GetPreferences returns the caller's defaults (GET /preferences).
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	prefs, err := h.playlists.Preferences(r.Context(), userID)
	if err != nil {
		internalError(w, r, err, msgGetPrefsFailed)
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

// PutPreferences replaces the caller's defaults (PUT /preferences).
func (h *Handlers) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req playlist.PreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if err := validation.Struct(req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) && verr.Has("favorite_genres") {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidMood)
		return
	}

	prefs, err := h.playlists.SavePreferences(r.Context(), userID, req)
	if err != nil {
		internalError(w, r, err, msgSavePrefsFailed)
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}
