package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable, machine-readable classification of a failure.
type ErrorKind string

const (
	KindUnauthenticated   ErrorKind = "UNAUTHENTICATED"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindInvalidRequest    ErrorKind = "INVALID_REQUEST"
	KindSelfVoteForbidden ErrorKind = "SELF_VOTE_FORBIDDEN"
	KindStoreFailure      ErrorKind = "STORE_FAILURE"
)

// AppError carries a kind, a client-safe message and the underlying cause.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewUnauthenticatedError() *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: "Authentication required"}
}

func NewUnauthorizedError() *AppError {
	return &AppError{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewInvalidRequestError(message string) *AppError {
	return &AppError{Kind: KindInvalidRequest, Message: message}
}

func NewSelfVoteError() *AppError {
	return &AppError{Kind: KindSelfVoteForbidden, Message: "You cannot vote on your own post"}
}

// NewStoreError wraps a durable-store failure behind a generic message.
func NewStoreError(message string, err error) *AppError {
	return &AppError{Kind: KindStoreFailure, Message: message, Err: err}
}

// KindOf reports the kind of err. Anything that is not an AppError is a store failure.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStoreFailure
}

// HTTPStatus maps an error kind to its response status.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindSelfVoteForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that may be shown to a client.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "An unexpected error occurred"
}
