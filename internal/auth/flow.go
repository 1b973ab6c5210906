package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

const loginWait = 5 * time.Minute

// callbackResult carries the provider redirect parameters
type callbackResult struct {
	code  string
	state string
	err   error
}

// Flow runs an interactive authorization-code login on a terminal. It
// prints the authorization URL, waits for the provider redirect on a
// local loopback listener, validates state and exchanges the code. When
// the loopback port cannot be bound it falls back to prompting for the
// redirect URL pasted by the user.
type Flow struct {
	client *Client
	port   int
	scopes []string
	logger *slog.Logger
}

// NewFlow creates an interactive login flow using the given provider
// client and loopback port (the port the redirect URI was registered
// with).
func NewFlow(client *Client, port int, scopes []string, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{client: client, port: port, scopes: scopes, logger: logger}
}

// Run executes the login flow and returns the resulting token set.
func (f *Flow) Run(ctx context.Context) (*TokenSet, error) {
	login, err := f.client.BeginLogin(f.scopes)
	if err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Sign in to your bookstore account")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	fmt.Println("Open this URL in your browser:")
	fmt.Println()
	fmt.Printf("  %s\n", login.URL)
	fmt.Println()

	code, state, err := f.waitForCallback(ctx)
	if err != nil {
		return nil, err
	}

	if err := f.client.ValidateState(state, login.State); err != nil {
		return nil, err
	}

	tokens, err := f.client.Exchange(ctx, code, login.Verifier)
	if err != nil {
		return nil, err
	}

	f.logger.Info("login completed")
	return tokens, nil
}

// waitForCallback listens on the loopback redirect port for the provider
// redirect, falling back to a manual paste prompt when the port is
// unavailable.
func (f *Flow) waitForCallback(ctx context.Context) (code, state string, err error) {
	addr := fmt.Sprintf("127.0.0.1:%d", f.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		f.logger.Warn("cannot bind redirect port, falling back to manual entry", "addr", addr, "error", err)
		return f.promptRedirectURL()
	}

	resultCh := make(chan callbackResult, 1)
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if errCode := q.Get("error"); errCode != "" {
				http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
				resultCh <- callbackResult{err: fmt.Errorf("provider returned error: %s", errCode)}
				return
			}
			fmt.Fprintln(w, "Signed in. You can close this window and return to the terminal.")
			resultCh <- callbackResult{code: q.Get("code"), state: q.Get("state")}
		}),
	}
	go server.Serve(listener)
	defer server.Close()

	fmt.Println("Waiting for the browser redirect...")

	select {
	case res := <-resultCh:
		return res.code, res.state, res.err
	case <-time.After(loginWait):
		return "", "", ErrLoginTimeout
	case <-ctx.Done():
		return "", "", ctx.Err()
	}
}

// promptRedirectURL reads the full redirect URL pasted by the user. The
// paste is read without echo since the query string carries the
// single-use authorization code.
func (f *Flow) promptRedirectURL() (code, state string, err error) {
	fmt.Println("After signing in, the browser will land on an unreachable")
	fmt.Println("localhost URL. Paste that full URL here (input hidden):")
	fmt.Print("> ")

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read redirect URL: %w", err)
	}

	parsed, err := url.Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return "", "", fmt.Errorf("invalid redirect URL: %w", err)
	}

	q := parsed.Query()
	if q.Get("code") == "" {
		return "", "", errors.New("redirect URL carries no authorization code")
	}
	return q.Get("code"), q.Get("state"), nil
}
