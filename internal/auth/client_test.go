package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/log"
)

func TestBeginLogin_BuildsAuthorizeURL(t *testing.T) {
	c := NewClient("https://id.example.com", "folio-cli", "http://127.0.0.1:8931/callback", log.NullLogger())

	login, err := c.BeginLogin([]string{"openid", "offline_access"})
	if err != nil {
		t.Fatalf("BeginLogin: %v", err)
	}

	parsed, err := url.Parse(login.URL)
	if err != nil {
		t.Fatalf("authorize URL unparsable: %v", err)
	}
	if parsed.Path != "/authorize" {
		t.Errorf("path = %q", parsed.Path)
	}

	q := parsed.Query()
	checks := map[string]string{
		"response_type":         "code",
		"client_id":             "folio-cli",
		"redirect_uri":          "http://127.0.0.1:8931/callback",
		"scope":                 "openid offline_access",
		"state":                 login.State,
		"code_challenge":        ChallengeS256(login.Verifier),
		"code_challenge_method": "S256",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestValidateState(t *testing.T) {
	c := NewClient("https://id.example.com", "folio-cli", "", log.NullLogger())

	if err := c.ValidateState("abc", "abc"); err != nil {
		t.Errorf("matching state rejected: %v", err)
	}
	if err := c.ValidateState("abc", "xyz"); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("mismatched state: err = %v, want %v", err, ErrStateMismatch)
	}
	if err := c.ValidateState("", ""); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("empty expected state must never validate: err = %v", err)
	}
}

func TestExchange_SendsPKCEFormAndParsesTokens(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		r.ParseForm()
		gotForm = r.PostForm
		fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-1","expires_in":3600,"token_type":"Bearer"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "folio-cli", "http://127.0.0.1:8931/callback", log.NullLogger())
	tokens, err := c.Exchange(context.Background(), "the-code", "the-verifier")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}

	checks := map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     "folio-cli",
		"code":          "the-code",
		"code_verifier": "the-verifier",
	}
	for key, want := range checks {
		if got := gotForm.Get(key); got != want {
			t.Errorf("form %s = %q, want %q", key, got, want)
		}
	}

	if tokens.AccessToken != "at-1" || tokens.RefreshToken != "rt-1" {
		t.Errorf("tokens = %+v", tokens)
	}
	if tokens.ExpiresAt.IsZero() || time.Until(tokens.ExpiresAt) > time.Hour {
		t.Errorf("expiry not derived from expires_in: %v", tokens.ExpiresAt)
	}
	if tokens.Expired() {
		t.Error("fresh token reported expired")
	}
}

func TestExchange_RejectedCodeMapsToAuthFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "folio-cli", "", log.NullLogger())
	_, err := c.Exchange(context.Background(), "bad", "v")
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Errorf("err = %v, want %v", err, domain.ErrAuthFailed)
	}
}

func TestRefresh_RequiresToken(t *testing.T) {
	c := NewClient("https://id.example.com", "folio-cli", "", log.NullLogger())
	_, err := c.Refresh(context.Background(), "")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("err = %v, want %v", err, domain.ErrNotAuthenticated)
	}
}

func TestRefresh_SendsGrant(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm
		fmt.Fprint(w, `{"access_token":"at-2","refresh_token":"rt-2","expires_in":900}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "folio-cli", "", log.NullLogger())
	tokens, err := c.Refresh(context.Background(), "rt-1")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if gotForm.Get("grant_type") != "refresh_token" || gotForm.Get("refresh_token") != "rt-1" {
		t.Errorf("form = %+v", gotForm)
	}
	if tokens.AccessToken != "at-2" {
		t.Errorf("tokens = %+v", tokens)
	}
}

func TestLogout_RevokesAndToleratesForgottenTokens(t *testing.T) {
	statuses := []int{http.StatusOK, http.StatusNotFound}
	for _, status := range statuses {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oauth/revoke" {
				t.Errorf("path = %q", r.URL.Path)
			}
			w.WriteHeader(status)
		}))

		c := NewClient(server.URL, "folio-cli", "", log.NullLogger())
		if err := c.Logout(context.Background(), "rt-1"); err != nil {
			t.Errorf("status %d: Logout err = %v", status, err)
		}
		server.Close()
	}
}

func TestLogout_NoTokenIsNoOp(t *testing.T) {
	c := NewClient("https://id.example.com", "folio-cli", "", log.NullLogger())
	if err := c.Logout(context.Background(), ""); err != nil {
		t.Errorf("Logout without token: %v", err)
	}
}

func TestAccessTokenExpiry_PeeksExpClaim(t *testing.T) {
	// Unsigned JWT with exp=4102444800 (2100-01-01); signature is not
	// verified by the peek
	header := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0"
	payload := "eyJleHAiOjQxMDI0NDQ4MDB9"
	token := strings.Join([]string{header, payload, ""}, ".")

	exp, ok := accessTokenExpiry(token)
	if !ok {
		t.Fatal("expected expiry to parse")
	}
	if exp.Unix() != 4102444800 {
		t.Errorf("exp = %d, want 4102444800", exp.Unix())
	}

	if _, ok := accessTokenExpiry("garbage"); ok {
		t.Error("garbage token should not yield an expiry")
	}
}
