package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
)

const (
	sessionCookieName  = "session"
	stateCookieName    = "oauth_state"
	returnToCookieName = "login_return_to"
	stateTTL           = 5 * time.Minute

	sessionHeader   = "X-Session-Token"
	expiresAtHeader = "X-Token-Expires-At"
)

type ctxKey int

const userKey ctxKey = iota

// RequireSession rejects requests without a valid session token and stores
// the profile id in the request context.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.sessions.Parse(sessionToken(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}
		userID, err := uuid.Parse(claims.ProfileID())
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, userID)
		ctx = logging.ContextWithUserID(ctx, userID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext returns the id stored by RequireSession.
func userFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey).(uuid.UUID)
	return id, ok
}

// sessionToken reads the session cookie, falling back to the header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(sessionHeader)
}

// bearerToken returns the Spotify access token from the Authorization header.
// It returns auth.ErrTokenExpired when the client-declared expiry has passed.
func bearerToken(r *http.Request, now time.Time) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errMissingBearer
	}

	if raw := r.Header.Get(expiresAtHeader); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && (auth.Tokens{ExpiresAt: ms}).Expired(now, 0) {
			return "", auth.ErrTokenExpired
		}
	}
	return strings.TrimSpace(token), nil
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL().Seconds()),
	})
}

func (h *Handlers) setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})
}

// clearCookie removes a cookie from the client.
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
