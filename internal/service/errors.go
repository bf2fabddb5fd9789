package service

import (
	"errors"

	"github.com/hanxue/hanxue-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is; the API layer maps them to status codes.
var (
	// ErrUserNotFound indicates the account does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrUserNotFound = store.ErrUserNotFound

	// ErrEmailExists indicates the email is registered to another account.
	// API layer should map this to HTTP 409 Conflict.
	ErrEmailExists = store.ErrEmailExists

	// ErrWrongPassword indicates the current password did not match.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrWrongPassword = errors.New("current password is incorrect")
)
