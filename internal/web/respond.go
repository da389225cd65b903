package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/justestif/go-boardgame-playlists/internal/logging"
)

const maxBodyBytes = 1 << 20

var errMissingBearer = errors.New("missing bearer token")

// Error messages returned to clients.
const (
	msgInvalidBody        = "Invalid request body"
	msgInvalidMood        = "Invalid mood settings"
	msgGameRequired       = "Game ID and name are required"
	msgSaveRequired       = "Playlist, game attributes, and music parameters are required"
	msgRefreshRequired    = "Refresh token is required"
	msgQueryRequired      = "Search query is required"
	msgGameIDRequired     = "Game ID is required"
	msgPlaylistIDRequired = "Playlist ID is required"

	msgNotAuthenticated = "Not authenticated"
	msgAuthHeader       = "Authorization header is required"
	msgTokenExpired     = "Access token has expired"

	msgGameNotFound     = "Game not found"
	msgPlaylistNotFound = "Playlist not found"

	msgGenerateFailed  = "Failed to generate playlist"
	msgSaveFailed      = "Failed to save playlist"
	msgListFailed      = "Failed to get saved playlists"
	msgGetFailed       = "Failed to get playlist"
	msgDeleteFailed    = "Failed to delete playlist"
	msgRefreshFailed   = "Failed to refresh token"
	msgSearchFailed    = "Failed to search board games"
	msgDetailsFailed   = "Failed to get board game details"
	msgGetPrefsFailed  = "Failed to get preferences"
	msgSavePrefsFailed = "Failed to save preferences"
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// internalError logs err with the request's context and writes a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logging.Ctx(r.Context()).Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, msg)
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
