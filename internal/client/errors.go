package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a client failure.
type Kind int

const (
	// KindTransport means no usable response arrived.
	KindTransport Kind = iota + 1
	// KindBusiness means the server answered with isSuccess false or an
	// error status.
	KindBusiness
	// KindPrecondition means a local check failed and nothing was sent.
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBusiness:
		return "business"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// User-visible fallbacks.
const (
	MessageUnknown = "An unknown error occurred"
	MessageGeneric = "An error occurred"
)

// Error is returned by every endpoint call.
type Error struct {
	Kind    Kind
	Op      string // "POST /api/Blogs/get-all-blogs"
	Status  int    // HTTP status; 0 for transport and precondition errors
	Message string // server message or local precondition text
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.UserMessage())
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.UserMessage())
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the user for this error.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTransport:
		return MessageUnknown
	case KindPrecondition:
		return e.Message
	default:
		if e.Message != "" {
			return e.Message
		}
		return MessageGeneric
	}
}

// Precondition builds a local failure that never reached the network.
func Precondition(message string) *Error {
	return &Error{Kind: KindPrecondition, Message: message}
}

func transportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func businessError(op string, status int, message string) *Error {
	return &Error{Kind: KindBusiness, Op: op, Status: status, Message: message}
}

func kindOf(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	e, ok := kindOf(err)
	return ok && e.Kind == KindTransport
}

// IsBusiness reports whether err is a server-reported failure.
func IsBusiness(err error) bool {
	e, ok := kindOf(err)
	return ok && e.Kind == KindBusiness
}

// IsPrecondition reports whether err is a local precondition failure.
func IsPrecondition(err error) bool {
	e, ok := kindOf(err)
	return ok && e.Kind == KindPrecondition
}

// IsUnauthorized reports whether the server rejected the session.
func IsUnauthorized(err error) bool {
	e, ok := kindOf(err)
	return ok && e.Kind == KindBusiness && e.Status == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := kindOf(err); ok {
		return e.Status
	}
	return 0
}
