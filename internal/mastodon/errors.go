package mastodon

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	// ErrTransport covers connection and IO failures before a response was read.
	ErrTransport ErrorKind = iota
	// ErrStatus is a complete response with a non-2xx status code.
	ErrStatus
	// ErrUnexpectedResponse is a 2xx response whose content-type, encoding, or
	// JSON shape violates the endpoint contract.
	ErrUnexpectedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTransport:
		return "transport"
	case ErrStatus:
		return "status"
	case ErrUnexpectedResponse:
		return "unexpected_response"
	default:
		return "unknown"
	}
}

type APIError struct {
	Kind ErrorKind
	Op   string
	Code int
	Body []byte
	Err  error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case ErrStatus:
		return fmt.Sprintf("mastodon %s: http %d", e.Op, e.Code)
	default:
		if e.Err != nil {
			return fmt.Sprintf("mastodon %s: %s: %v", e.Op, e.Kind, e.Err)
		}
		return fmt.Sprintf("mastodon %s: %s", e.Op, e.Kind)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// IsResourceGone reports whether err is a 401 or 404 status failure on a
// single-resource fetch. Callers treat these as "not found" and skip the
// action instead of failing the poll.
func IsResourceGone(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Kind != ErrStatus {
		return false
	}
	return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusNotFound
}
