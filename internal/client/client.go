// Package client calls the boardgame-playlists HTTP API on behalf of a
// signed-in user, keeping the user's tokens in a local credential store.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/justestif/go-boardgame-playlists/internal/auth"
	"github.com/justestif/go-boardgame-playlists/internal/bgg"
	"github.com/justestif/go-boardgame-playlists/internal/db"
	"github.com/justestif/go-boardgame-playlists/internal/playlist"
)

// refreshSkew refreshes tokens this long before they expire.
const refreshSkew = time.Minute

// ErrNotLoggedIn is returned when the store holds no credentials.
var ErrNotLoggedIn = errors.New("not logged in: run the login command first")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// CredentialStore persists credentials between runs.
type CredentialStore interface {
	Load() (*auth.Credentials, error)
	Save(creds *auth.Credentials) error
}

// Client is an API client bound to one server and one credential store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      CredentialStore
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, store CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		store:      store,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials returns stored credentials, refreshing them first when the
// access token expires within a minute.
func (c *Client) Credentials(ctx context.Context) (*auth.Credentials, error) {
	creds, err := c.load()
	if err != nil {
		return nil, err
	}
	if !creds.Expired(c.now(), refreshSkew) {
		return creds, nil
	}
	return c.refresh(ctx, creds)
}

// Refresh exchanges the stored refresh token for new tokens. Unless force is
// set, tokens that are still valid are returned unchanged.
func (c *Client) Refresh(ctx context.Context, force bool) (*auth.Credentials, error) {
	creds, err := c.load()
	if err != nil {
		return nil, err
	}
	if !force && !creds.Expired(c.now(), refreshSkew) {
		return creds, nil
	}
	return c.refresh(ctx, creds)
}

func (c *Client) load() (*auth.Credentials, error) {
	creds, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	if creds == nil || creds.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}
	return creds, nil
}

func (c *Client) refresh(ctx context.Context, creds *auth.Credentials) (*auth.Credentials, error) {
	if creds.RefreshToken == "" {
		return nil, auth.ErrMissingRefreshToken
	}

	var tokens auth.Tokens
	body := map[string]string{"refresh_token": creds.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/refresh-token", body, &tokens, nil); err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = creds.RefreshToken
	}

	updated := &auth.Credentials{Tokens: tokens, SessionToken: creds.SessionToken}
	if err := c.store.Save(updated); err != nil {
		return nil, fmt.Errorf("saving credentials: %w", err)
	}
	return updated, nil
}

// Search looks up games by name.
func (c *Client) Search(ctx context.Context, query string) ([]bgg.SearchResult, error) {
	var results []bgg.SearchResult
	path := "/boardgame/search?query=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &results, nil); err != nil {
		return nil, err
	}
	return results, nil
}

// Details returns normalized attributes for one game.
func (c *Client) Details(ctx context.Context, id string) (*bgg.GameAttributes, error) {
	var attrs bgg.GameAttributes
	path := "/boardgame/details?id=" + url.QueryEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &attrs, nil); err != nil {
		return nil, err
	}
	return &attrs, nil
}

// Generate creates a playlist for a game.
func (c *Client) Generate(ctx context.Context, req playlist.GenerateRequest) (*playlist.Result, error) {
	creds, err := c.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	var result playlist.Result
	if err := c.do(ctx, http.MethodPost, "/playlist/generate", req, &result, creds); err != nil {
		return nil, err
	}
	return &result, nil
}

// Save stores a generated playlist.
func (c *Client) Save(ctx context.Context, result *playlist.Result, req playlist.GenerateRequest) (*db.SavedPlaylist, error) {
	creds, err := c.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	body := playlist.SaveRequest{
		Playlist:        result.Playlist,
		GameAttributes:  &result.GameAttributes,
		MusicParameters: &result.MusicParameters,
		MoodSettings:    req.MoodSettings,
		GameID:          req.GameID,
	}

	var saved db.SavedPlaylist
	if err := c.do(ctx, http.MethodPost, "/playlist/save", body, &saved, creds); err != nil {
		return nil, err
	}
	return &saved, nil
}

// SavedPlaylists lists the user's saved playlists, newest first.
func (c *Client) SavedPlaylists(ctx context.Context) ([]db.SavedPlaylist, error) {
	creds, err := c.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	var playlists []db.SavedPlaylist
	if err := c.do(ctx, http.MethodGet, "/playlist/saved", nil, &playlists, creds); err != nil {
		return nil, err
	}
	return playlists, nil
}

// DeletePlaylist removes a saved playlist.
func (c *Client) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	creds, err := c.Credentials(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/playlist/"+id.String(), nil, nil, creds)
}

// do sends a JSON request and decodes a JSON response into out. creds, when
// set, are sent as the bearer token and session header.
func (c *Client) do(ctx context.Context, method, path string, body, out any, creds *auth.Credentials) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		if creds.ExpiresAt > 0 {
			req.Header.Set("X-Token-Expires-At", strconv.FormatInt(creds.ExpiresAt, 10))
		}
		if creds.SessionToken != "" {
			req.Header.Set("X-Session-Token", creds.SessionToken)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
