// Package web provides the HTTP API: OAuth relay, catalog proxy and playlist
// endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/logging"
	"github.com/justestif/go-boardgame-playlists/internal/metrics"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
	"github.com/justestif/go-boardgame-playlists/internal/spotify"
)

const shutdownTimeout = 10 * time.Second

// Relay exchanges and refreshes provider tokens.
type Relay interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (auth.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (auth.Tokens, error)
}

// Catalog searches and describes board games.
type Catalog interface {
	Search(ctx context.Context, query string) ([]bgg.SearchResult, error)
	Details(ctx context.Context, id string) (bgg.GameAttributes, error)
}

// ProfileStore records signed-in users.
type ProfileStore interface {
	Upsert(ctx context.Context, p *db.Profile) error
}

// ProfileFetcher returns the Spotify profile that owns accessToken.
type ProfileFetcher func(ctx context.Context, accessToken string) (*spotify.User, error)

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr         string
	PostLoginURL string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit    int
	CORSOrigins  []string
	SecureCookie bool
}

// Deps are the collaborators handlers call.
type Deps struct {
	Relay     Relay
	Sessions  *auth.Sessions
	Profiles  ProfileStore
	Catalog   Catalog
	Playlists *playlist.Service
	// FetchProfile defaults to querying Spotify with the access token.
	FetchProfile ProfileFetcher
	// Health is optional.
	Health Pinger
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	cfg      ServerConfig
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig, deps Deps) *Server {
	if deps.FetchProfile == nil {
		deps.FetchProfile = func(ctx context.Context, accessToken string) (*spotify.User, error) {
			return spotify.NewForToken(ctx, accessToken).CurrentUser(ctx)
		}
	}

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: NewHandlers(deps, cfg),
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", sessionHeader, expiresAtHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/healthz", h.Health)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}

		r.Get("/auth/login", h.Login)
		r.Get("/callback", h.Callback)
		r.Post("/auth/logout", h.Logout)
		r.Post("/refresh-token", h.RefreshToken)

		r.Get("/boardgame/search", h.SearchGames)
		r.Get("/boardgame/details", h.GameDetails)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Post("/playlist/generate", h.GeneratePlaylist)
			r.Post("/playlist/save", h.SavePlaylist)
			r.Post("/playlist/saved", h.SavePlaylist)
			r.Get("/playlist/saved", h.ListSavedPlaylists)
			r.Get("/playlist/{id}", h.GetPlaylist)
			r.Delete("/playlist/{id}", h.DeletePlaylist)

			r.Get("/preferences", h.GetPreferences)
			r.Put("/preferences", h.PutPreferences)
		})
	})
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("starting server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Info().Msg("server stopped")
	return nil
}
