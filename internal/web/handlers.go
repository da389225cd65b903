package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	relay        Relay
	sessions     *auth.Sessions
	profiles     ProfileStore
	catalog      Catalog
	playlists    *playlist.Service
	fetchProfile ProfileFetcher
	health       Pinger
	cfg          ServerConfig
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps, cfg ServerConfig) *Handlers {
	return &Handlers{
		relay:        deps.Relay,
		sessions:     deps.Sessions,
		profiles:     deps.Profiles,
		catalog:      deps.Catalog,
		playlists:    deps.Playlists,
		fetchProfile: deps.FetchProfile,
		health:       deps.Health,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Login starts the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateState()
	if err != nil {
		internalError(w, r, err, "Failed to generate state")
		return
	}

	h.setShortCookie(w, stateCookieName, state)

	if returnTo := r.URL.Query().Get("return_to"); returnTo != "" {
		if auth.IsLoopbackURL(returnTo) {
			h.setShortCookie(w, returnToCookieName, returnTo)
		} else {
			logging.Ctx(r.Context()).Warn().Str("return_to", returnTo).Msg("ignoring non-loopback return_to")
		}
	}

	http.Redirect(w, r, h.relay.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the OAuth flow (GET /callback). Failures redirect to
// "/?error=<reason>", or to the stored loopback return_to with the same
// error parameter so a waiting CLI learns about them.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.Ctx(ctx)
	q := r.URL.Query()

	returnTo := ""
	if c, err := r.Cookie(returnToCookieName); err == nil && auth.IsLoopbackURL(c.Value) {
		returnTo = c.Value
	}

	code := q.Get("code")
	if code == "" {
		h.callbackFailed(w, r, returnTo, "missing_code")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || q.Get("state") != stateCookie.Value {
		h.callbackFailed(w, r, returnTo, "state_mismatch")
		return
	}
	clearCookie(w, stateCookieName)

	tokens, err := h.relay.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("exchanging authorization code")
		h.callbackFailed(w, r, returnTo, "spotify_callback_error")
		return
	}

	user, err := h.fetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("fetching spotify profile")
		h.callbackFailed(w, r, returnTo, "spotify_callback_error")
		return
	}

	profile := &db.Profile{
		SpotifyID:   user.ID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}
	if err := h.profiles.Upsert(ctx, profile); err != nil {
		log.Error().Err(err).Msg("upserting profile")
		h.callbackFailed(w, r, returnTo, "not_authenticated")
		return
	}

	session, err := h.sessions.Issue(profile.ID.String(), profile.SpotifyID)
	if err != nil {
		log.Error().Err(err).Msg("issuing session")
		h.callbackFailed(w, r, returnTo, "not_authenticated")
		return
	}
	h.setSessionCookie(w, session)

	target := h.cfg.PostLoginURL
	if returnTo != "" {
		target = returnTo
		clearCookie(w, returnToCookieName)
	}

	dest, err := withTokens(target, tokens, session)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("building post-login redirect")
		http.Redirect(w, r, "/?error=not_authenticated", http.StatusTemporaryRedirect)
		return
	}

	log.Info().Str("profile_id", profile.ID.String()).Msg("user signed in")
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

// callbackFailed redirects a failed callback to returnTo when set, otherwise
// to the site root, with reason in the error parameter.
func (h *Handlers) callbackFailed(w http.ResponseWriter, r *http.Request, returnTo, reason string) {
	dest := "/?error=" + url.QueryEscape(reason)
	if returnTo != "" {
		clearCookie(w, returnToCookieName)
		if u, err := url.Parse(returnTo); err == nil {
			q := u.Query()
			q.Set("error", reason)
			u.RawQuery = q.Encode()
			dest = u.String()
		}
	}
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

// withTokens appends the credentials to target's query, keeping any query
// it already has.
func withTokens(target string, tokens auth.Tokens, session string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("access_token", tokens.AccessToken)
	q.Set("refresh_token", tokens.RefreshToken)
	q.Set("expires_at", strconv.FormatInt(tokens.ExpiresAt, 10))
	q.Set("session_token", session)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Logout clears the session cookie (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, sessionCookieName)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken exchanges a refresh token for a new access token
// (POST /refresh-token).
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, msgRefreshRequired)
		return
	}

	tokens, err := h.relay.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrMissingRefreshToken) {
			writeError(w, http.StatusBadRequest, msgRefreshRequired)
			return
		}
		internalError(w, r, err, msgRefreshFailed)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}
