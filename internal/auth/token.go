package auth

import (
	"context"
	"log/slog"
	"sync"
)

// TokenSource hands out a valid access token for API requests. An
// expired access token is refreshed through the provider before being
// returned, and refreshed tokens are pushed through the persist
// callback so they survive the process.
type TokenSource struct {
	client  *Client
	persist func(TokenSet) error
	logger  *slog.Logger

	mu     sync.Mutex
	tokens TokenSet
}

// NewTokenSource creates a token source over the saved token set.
// persist may be nil when refreshed tokens need no durability.
func NewTokenSource(client *Client, tokens TokenSet, persist func(TokenSet) error, logger *slog.Logger) *TokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenSource{client: client, tokens: tokens, persist: persist, logger: logger}
}

// Token returns the current access token, refreshing it first when
// expired. Without a refresh token the saved access token is returned
// as-is; a request carrying it may then fail with ErrAuthFailed and the
// user signs in again.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tokens.AccessToken != "" && !s.tokens.Expired() {
		return s.tokens.AccessToken, nil
	}
	if s.tokens.RefreshToken == "" {
		return s.tokens.AccessToken, nil
	}

	fresh, err := s.client.Refresh(ctx, s.tokens.RefreshToken)
	if err != nil {
		return "", err
	}
	if fresh.RefreshToken == "" {
		// Providers that do not rotate leave the old refresh token valid
		fresh.RefreshToken = s.tokens.RefreshToken
	}
	s.tokens = *fresh

	if s.persist != nil {
		if err := s.persist(s.tokens); err != nil {
			s.logger.Warn("failed to persist refreshed tokens", "error", err)
		}
	}
	return s.tokens.AccessToken, nil
}
