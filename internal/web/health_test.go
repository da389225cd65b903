package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pinger     Pinger
		wantStatus int
		wantBody   string
	}{
		{"no pinger", nil, http.StatusOK, `"ok"`},
		{"healthy", fakePinger{}, http.StatusOK, `"ok"`},
		{"database down", fakePinger{err: errUpstream}, http.StatusServiceUnavailable, `"unavailable"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(Deps{Health: tt.pinger}, ServerConfig{})
			rec := httptest.NewRecorder()

			h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		auth    string
		expires string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc", "", "abc", false},
		{"future expiry", "Bearer abc", "99999999999999", "abc", false},
		{"past expiry", "Bearer abc", "1", "", true},
		{"unparsable expiry ignored", "Bearer abc", "soon", "abc", false},
		{"missing", "", "", "", true},
		{"wrong scheme", "Basic abc", "", "", true},
		{"empty token", "Bearer   ", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.auth != "" {
				r.Header.Set("Authorization", tt.auth)
			}
			if tt.expires != "" {
				r.Header.Set(expiresAtHeader, tt.expires)
			}

			got, err := bearerToken(r, time.Now())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}
