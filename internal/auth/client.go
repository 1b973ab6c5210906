package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/folio-sh/folio/internal/domain"
)

const authTimeout = 30 * time.Second

// Auth-specific errors
var (
	// ErrStateMismatch indicates the callback state did not match the
	// one issued at login, suggesting a forged or replayed callback
	ErrStateMismatch = errors.New("authorization state mismatch")

	// ErrLoginTimeout indicates the user did not complete the provider
	// login in time
	ErrLoginTimeout = errors.New("login was not completed in time")
)

// TokenSet is the result of a successful code exchange or refresh.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresAt    time.Time
}

// Expired reports whether the access token is past (or within a minute
// of) its expiry.
func (t TokenSet) Expired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt.Add(-1 * time.Minute))
}

// LoginRequest holds everything the caller needs to complete an
// authorization-code login: the URL to open, the state to validate the
// callback against, and the verifier for the code exchange.
type LoginRequest struct {
	URL      string
	State    string
	Verifier string
}

// Client talks to the external identity provider using the OAuth2
// authorization-code flow with PKCE. It holds no user state beyond the
// configured client registration; token persistence is the caller's
// concern. The cart never depends on any of this: browsing and cart
// mutation work identically for anonymous users.
type Client struct {
	issuer      string
	clientID    string
	redirectURI string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates an identity-provider client.
func NewClient(issuer, clientID, redirectURI string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		issuer:      strings.TrimRight(issuer, "/"),
		clientID:    clientID,
		redirectURI: redirectURI,
		httpClient: &http.Client{
			Timeout: authTimeout,
		},
		logger: logger,
	}
}

// BeginLogin builds the authorization URL with a fresh state and PKCE
// challenge.
func (c *Client) BeginLogin(scopes []string) (*LoginRequest, error) {
	verifier, err := NewVerifier()
	if err != nil {
		return nil, err
	}
	state := NewState()

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", c.clientID)
	query.Set("redirect_uri", c.redirectURI)
	query.Set("scope", strings.Join(scopes, " "))
	query.Set("state", state)
	query.Set("code_challenge", ChallengeS256(verifier))
	query.Set("code_challenge_method", "S256")

	return &LoginRequest{
		URL:      fmt.Sprintf("%s/authorize?%s", c.issuer, query.Encode()),
		State:    state,
		Verifier: verifier,
	}, nil
}

// ValidateState checks the state echoed by the provider callback against
// the one issued at login.
func (c *Client) ValidateState(got, want string) error {
	if want == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		c.logger.Warn("rejecting callback with mismatched state")
		return ErrStateMismatch
	}
	return nil
}

// Exchange trades an authorization code plus its PKCE verifier for a
// token set.
func (c *Client) Exchange(ctx context.Context, code, verifier string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.clientID)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("code", code)
	form.Set("code_verifier", verifier)

	return c.tokenRequest(ctx, form)
}

// Refresh trades a refresh token for a fresh token set.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, domain.ErrNotAuthenticated
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("refresh_token", refreshToken)

	return c.tokenRequest(ctx, form)
}

// Logout revokes the refresh token at the provider. A provider that has
// already forgotten the token is treated as success.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("token", refreshToken)
	form.Set("token_type_hint", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.issuer+"/oauth/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("revoke request failed", "error", err)
		return domain.ErrServerOffline
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.issuer+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("token request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		c.logger.Warn("token request rejected", "status", resp.StatusCode)
		return nil, domain.ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var dto tokenResponse
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	tokens := &TokenSet{
		AccessToken:  dto.AccessToken,
		RefreshToken: dto.RefreshToken,
		IDToken:      dto.IDToken,
	}
	if dto.ExpiresIn > 0 {
		tokens.ExpiresAt = time.Now().Add(time.Duration(dto.ExpiresIn) * time.Second)
	} else if exp, ok := accessTokenExpiry(dto.AccessToken); ok {
		tokens.ExpiresAt = exp
	}
	return tokens, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// accessTokenExpiry peeks at the exp claim of a JWT access token without
// verifying the signature. Verification is the provider's job; the
// client only needs the expiry for refresh scheduling.
func accessTokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
