// Package apperr defines the error taxonomy shared by the minting flow and
// its mapping to HTTP status codes and client-facing messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by where it originated.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConfiguration
	KindNetwork
	KindChain
	KindStorage
	KindUpload
	KindNotFound
	KindMinting
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindNetwork:
		return "network"
	case KindChain:
		return "chain"
	case KindStorage:
		return "storage"
	case KindUpload:
		return "upload"
	case KindNotFound:
		return "not_found"
	case KindMinting:
		return "minting"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Msg is safe to show to a client only for
// validation errors; every other kind is reported with a generic message.
type Error struct {
	Kind  Kind
	Field string // offending input field, validation only
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, &apperr.Error{Kind: apperr.KindChain}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// New creates a classified error wrapping err.
func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation reports caller input that is out of bounds.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// Configuration reports missing or malformed server settings.
func Configuration(msg string, err error) *Error {
	return New(KindConfiguration, msg, err)
}

// Network reports an RPC endpoint that is unreachable or rejected the call.
func Network(msg string, err error) *Error {
	return New(KindNetwork, msg, err)
}

// Chain reports a transaction that landed with an on-chain error or expired.
func Chain(msg string, err error) *Error {
	return New(KindChain, msg, err)
}

// Storage reports a database read or write failure.
func Storage(msg string, err error) *Error {
	return New(KindStorage, msg, err)
}

// Upload reports a pinning failure.
func Upload(msg string, err error) *Error {
	return New(KindUpload, msg, err)
}

// NotFound reports a missing pending request.
func NotFound(msg string, err error) *Error {
	return New(KindNotFound, msg, err)
}

// Minting reports a finalizer run that produced no token.
func Minting(msg string, err error) *Error {
	return New(KindMinting, msg, err)
}

// Conflict reports an order that was already submitted.
func Conflict(msg string, err error) *Error {
	return New(KindConflict, msg, err)
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status code returned to clients.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the short message a client may see for err.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "There was a server error. Please try again later."
	}
	switch e.Kind {
	case KindValidation:
		return e.Msg
	case KindConfiguration:
		return "Server misconfigured. Sorry about that."
	case KindNotFound:
		return "Token request not found."
	case KindConflict:
		return "This order was already submitted."
	case KindChain:
		return "There was a server error. Please reach out on Twitter before trying again."
	case KindStorage:
		return "Database Error."
	default:
		return "There was a server error. Please try again."
	}
}
