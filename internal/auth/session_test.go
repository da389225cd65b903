package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessions_IssueAndParse(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)

	token, err := s.Issue("profile-uuid", "spotify-user")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.ProfileID() != "profile-uuid" {
		t.Errorf("ProfileID() = %q, want profile-uuid", claims.ProfileID())
	}
	if claims.SpotifyID != "spotify-user" {
		t.Errorf("SpotifyID = %q, want spotify-user", claims.SpotifyID)
	}
}

func TestSessions_ParseRejects(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)
	valid, err := s.Issue("profile-uuid", "spotify-user")
	if err != nil {
		t.Fatal(err)
	}

	other := NewSessions("ffffffffffffffffffffffffffffffff", time.Hour)
	forged, err := other.Issue("profile-uuid", "spotify-user")
	if err != nil {
		t.Fatal(err)
	}

	expired := NewSessions(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue("profile-uuid", "spotify-user")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", forged},
		{"expired", stale},
		{"tampered", valid[:len(valid)-2] + "xx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Parse(tt.token)
			if !errors.Is(err, ErrInvalidSession) {
				t.Errorf("Parse() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}
