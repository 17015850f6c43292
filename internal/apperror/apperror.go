// Package apperror defines the error taxonomy of the API and the Echo error
// handler that renders it as a response envelope.
package apperror

import (
	"fmt"
	"net/http"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// Kind classifies an Error.
type Kind int

const (
	KindValidation Kind = iota + 1 // required input missing or out of domain
	KindNotFound                   // no rows where the route needs at least one
	KindStore                      // the store failed to execute a statement
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// storeMessage is the only message a client sees for a store failure.
const storeMessage = "Database error"

// Error is returned by handlers and rendered by Handler.
type Error struct {
	Kind    Kind
	Code    int    // HTTP status code
	Status  string // envelope status
	Message string // client-facing message
	Err     error  // underlying cause, logged but never rendered
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithStatus returns a copy of e with a different envelope status.
func (e *Error) WithStatus(status string) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// Envelope renders e for the client.
func (e *Error) Envelope() model.Envelope {
	return model.Envelope{Status: e.Status, Message: e.Message}
}

// Validation reports a missing or malformed input (400).
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: http.StatusBadRequest, Status: model.StatusError, Message: msg}
}

// NotFound reports an empty result or an unknown id (404).
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: http.StatusNotFound, Status: model.StatusError, Message: msg}
}

// Store reports a failed store call (500). The cause stays server side.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Code: http.StatusInternalServerError, Status: model.StatusError, Message: storeMessage, Err: err}
}
