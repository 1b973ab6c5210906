package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested catalog item does not exist
	ErrNotFound = errors.New("catalog item not found")

	// ErrServerOffline indicates the storefront API is unreachable
	ErrServerOffline = errors.New("storefront API is unreachable")

	// ErrAuthFailed indicates the access token was rejected
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrNotAuthenticated indicates no user is signed in
	ErrNotAuthenticated = errors.New("not signed in")
)
