// ABOUTME: Caller-visible error taxonomy for command dispatch and the auth gate.
// ABOUTME: Every failure crossing the transport boundary is reduced to a kind plus a message.

package packs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure returned to callers.
type ErrorKind string

const (
	KindUnknownCommand      ErrorKind = "UnknownCommand"
	KindInvalidArgument     ErrorKind = "InvalidArgument"
	KindServerMisconfigured ErrorKind = "ServerMisconfigured"
	KindMissingCredential   ErrorKind = "MissingCredential"
	KindInvalidCredential   ErrorKind = "InvalidCredential"
	KindUpstreamUnavailable ErrorKind = "UpstreamUnavailable"
	KindPartialDataWarning  ErrorKind = "PartialDataWarning"
	KindInternalError       ErrorKind = "InternalError"
)

// Sentinels for errors.Is comparisons by kind.
var (
	ErrUnknownCommand      = &Error{Kind: KindUnknownCommand}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrServerMisconfigured = &Error{Kind: KindServerMisconfigured}
	ErrMissingCredential   = &Error{Kind: KindMissingCredential}
	ErrInvalidCredential   = &Error{Kind: KindInvalidCredential}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrInternal            = &Error{Kind: KindInternalError}
)

// Error is a typed failure safe to show to callers.
// Err holds the underlying cause for logging and is never serialized.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf builds an Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports a bad input field.
func InvalidArgument(field, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if field != "" {
		msg = fmt.Sprintf("invalid argument %q: %s", field, msg)
	}
	return &Error{Kind: KindInvalidArgument, Message: msg, Field: field}
}

// Upstream wraps a remote data source failure.
func Upstream(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindInternalError for untyped errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternalError
}

// HTTPStatus maps a kind to the status code used by the REST surface.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindUnknownCommand:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindMissingCredential, KindInvalidCredential:
		return http.StatusUnauthorized
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
