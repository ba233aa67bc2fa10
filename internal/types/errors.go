package types

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrEmailTaken = fmt.Errorf("email already registered: %w", ErrConflict)
var ErrSessionNotFound = errors.New("session not found or expired")

// User facing messages. The login failure message is shared by every
// credential failure so callers cannot tell which check failed.
const (
	MsgRequiredFields     = "required fields missing"
	MsgInvalidEmail       = "invalid email format"
	MsgPasswordMismatch   = "password mismatch"
	MsgEmailRegistered    = "email already registered"
	MsgInvalidCredentials = "invalid credentials or inactive account"
)

// ValidationError is bad or missing input. The form is re-rendered with Message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(msg string) error { return &ValidationError{Message: msg} }

// AuthError is a credential failure. Message is deliberately generic.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

func NewAuthError() error {
	return &AuthError{Message: MsgInvalidCredentials, Err: ErrUnauthenticated}
}

// StoreError wraps a database or session backend failure. It aborts the request.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// UserMessage returns the message to show on a re-rendered form and whether
// err is recoverable at all.
func UserMessage(err error) (string, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message, true
	}
	var aErr *AuthError
	if errors.As(err, &aErr) {
		return aErr.Message, true
	}
	return "", false
}
