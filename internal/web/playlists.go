package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
	"github.com/justestif/go-boardgame-playlists/internal/validation"
)

// GeneratePlaylist creates a Spotify playlist for a game
// (POST /playlist/generate).
func (h *Handlers) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req playlist.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.GameID == "" || req.GameName == "" {
		writeError(w, http.StatusBadRequest, msgGameRequired)
		return
	}
	if err := validation.Struct(req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) && verr.Has("trackCount") {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidMood)
		return
	}

	accessToken, err := bearerToken(r, h.now())
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, msgTokenExpired)
			return
		}
		writeError(w, http.StatusUnauthorized, msgAuthHeader)
		return
	}

	result, err := h.playlists.Generate(r.Context(), userID, accessToken, req)
	if err != nil {
		switch {
		case errors.Is(err, bgg.ErrGameNotFound):
			writeError(w, http.StatusNotFound, msgGameNotFound)
		case errors.Is(err, playlist.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, msgGameRequired)
		case spotify.IsUnauthorized(err):
			writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		default:
			internalError(w, r, err, msgGenerateFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SavePlaylist stores a generated playlist (POST /playlist/save and
// POST /playlist/saved).
func (h *Handlers) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	var req playlist.SaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.MoodSettings != nil {
		if err := validation.Struct(req.MoodSettings); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidMood)
			return
		}
	}

	saved, err := h.playlists.Save(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, playlist.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgSaveRequired)
			return
		}
		internalError(w, r, err, msgSaveFailed)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// ListSavedPlaylists returns the caller's playlists (GET /playlist/saved).
func (h *Handlers) ListSavedPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	playlists, err := h.playlists.List(r.Context(), userID)
	if err != nil {
		internalError(w, r, err, msgListFailed)
		return
	}

	writeJSON(w, http.StatusOK, playlists)
}

// GetPlaylist returns one saved playlist (GET /playlist/{id}).
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.playlistTarget(w, r)
	if !ok {
		return
	}

	p, err := h.playlists.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgPlaylistNotFound)
			return
		}
		internalError(w, r, err, msgGetFailed)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// DeletePlaylist removes a saved playlist (DELETE /playlist/{id}). A bearer
// token is optional and only used to unfollow the Spotify playlist.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.playlistTarget(w, r)
	if !ok {
		return
	}

	accessToken, _ := bearerToken(r, h.now())

	if err := h.playlists.Delete(r.Context(), userID, id, accessToken); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgPlaylistNotFound)
			return
		}
		internalError(w, r, err, msgDeleteFailed)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// playlistTarget resolves the caller and the {id} path parameter, writing
// the error response itself when either is unusable.
func (h *Handlers) playlistTarget(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return uuid.Nil, uuid.Nil, false
	}

	raw := chi.URLParam(r, "id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, msgPlaylistIDRequired)
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusNotFound, msgPlaylistNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
