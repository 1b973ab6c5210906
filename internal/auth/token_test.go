package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/folio-sh/folio/internal/log"
)

func TestTokenSource_ReturnsSavedTokenWhileValid(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClient(server.URL, "folio-cli", "", log.NullLogger())
	ts := NewTokenSource(c, TokenSet{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil, log.NullLogger())

	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "at-1" {
		t.Errorf("token = %q, want at-1", token)
	}
	if calls != 0 {
		t.Errorf("valid token should not hit the provider, got %d calls", calls)
	}
}

func TestTokenSource_RefreshesExpiredAndPersists(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"access_token":"at-2","refresh_token":"rt-2","expires_in":3600}`)
	}))
	defer server.Close()

	var persisted TokenSet
	c := NewClient(server.URL, "folio-cli", "", log.NullLogger())
	ts := NewTokenSource(c, TokenSet{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}, func(tokens TokenSet) error {
		persisted = tokens
		return nil
	}, log.NullLogger())

	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "at-2" {
		t.Errorf("token = %q, want at-2", token)
	}
	if persisted.AccessToken != "at-2" || persisted.RefreshToken != "rt-2" {
		t.Errorf("refreshed tokens not persisted: %+v", persisted)
	}

	// The refreshed token is cached for subsequent calls
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("second Token: %v", err)
	}
	if calls != 1 {
		t.Errorf("provider hit %d times, want 1", calls)
	}
}

func TestTokenSource_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"at-2","expires_in":3600}`)
	}))
	defer server.Close()

	var persisted TokenSet
	c := NewClient(server.URL, "folio-cli", "", log.NullLogger())
	ts := NewTokenSource(c, TokenSet{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}, func(tokens TokenSet) error {
		persisted = tokens
		return nil
	}, log.NullLogger())

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if persisted.RefreshToken != "rt-1" {
		t.Errorf("refresh token = %q, want rt-1 carried over", persisted.RefreshToken)
	}
}

func TestTokenSource_NoRefreshTokenReturnsSavedAsIs(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClient(server.URL, "folio-cli", "", log.NullLogger())
	ts := NewTokenSource(c, TokenSet{
		AccessToken: "at-1",
		ExpiresAt:   time.Now().Add(-time.Minute),
	}, nil, log.NullLogger())

	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "at-1" {
		t.Errorf("token = %q, want the stale at-1 (nothing to refresh with)", token)
	}
	if calls != 0 {
		t.Errorf("refresh attempted without a refresh token: %d calls", calls)
	}
}
