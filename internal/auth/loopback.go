package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const callbackTimeout = 2 * time.Minute

var (
	// ErrAuthTimeout is returned when the login redirect is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the redirect's nonce doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// LoopbackLogin signs in through a running server's /auth/login. It listens
// on an ephemeral 127.0.0.1 port, prints the login URL to out and waits for
// the server to redirect back with tokens.
func LoopbackLogin(ctx context.Context, serverURL string, out io.Writer) (*Credentials, error) {
	nonce, err := GenerateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}

	credsCh := make(chan *Credentials, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		handleLoopback(w, r, nonce, credsCh, errCh)
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			send(errCh, fmt.Errorf("callback server error: %w", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	returnTo := fmt.Sprintf("http://%s/callback?nonce=%s", ln.Addr().String(), nonce)
	loginURL, err := LoginURL(serverURL, returnTo)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, "\nTo authenticate, open this URL in your browser:")
	fmt.Fprintln(out, loginURL)
	fmt.Fprintln(out, "\nWaiting for authentication...")

	select {
	case creds := <-credsCh:
		return creds, nil
	case err := <-errCh:
		return nil, err
	case <-time.After(callbackTimeout):
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// LoginURL builds {serverURL}/auth/login?return_to=returnTo.
func LoginURL(serverURL, returnTo string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parsing server url: %w", err)
	}
	u = u.JoinPath("auth", "login")
	q := u.Query()
	q.Set("return_to", returnTo)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// IsLoopbackURL reports whether raw is an http URL on a loopback address,
// the only kind of return_to the server accepts.
func IsLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func handleLoopback(w http.ResponseWriter, r *http.Request, nonce string, credsCh chan<- *Credentials, errCh chan<- error) {
	q := r.URL.Query()

	if q.Get("nonce") != nonce {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		send(errCh, ErrStateMismatch)
		return
	}

	if errMsg := q.Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		send(errCh, fmt.Errorf("login failed: %s", errMsg))
		return
	}

	expiresAt, _ := strconv.ParseInt(q.Get("expires_at"), 10, 64)
	creds := &Credentials{
		Tokens: Tokens{
			AccessToken:  q.Get("access_token"),
			RefreshToken: q.Get("refresh_token"),
			ExpiresAt:    expiresAt,
		},
		SessionToken: q.Get("session_token"),
	}
	if creds.AccessToken == "" || creds.SessionToken == "" {
		http.Error(w, "Missing tokens", http.StatusBadRequest)
		send(errCh, errors.New("login redirect carried no tokens"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Authentication successful. You can close this window and return to the terminal.")

	send(credsCh, creds)
}

// send delivers v unless ch already holds a result. Only the first callback
// is acted on; later ones, such as a browser reload, are dropped.
func send[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}
