package source

import (
	"errors"
	"fmt"
)

// Kind classifies a failed headline fetch.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidEndpoint
	KindTransport
	KindBadStatus
	KindEmptyBody
	KindDecode
)

var (
	ErrUnknown         = errors.New("unknown fetch failure")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrTransport       = errors.New("transport failure")
	ErrBadStatus       = errors.New("unexpected http status")
	ErrEmptyBody       = errors.New("empty response body")
	ErrDecode          = errors.New("malformed payload")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidEndpoint:
		return ErrInvalidEndpoint
	case KindTransport:
		return ErrTransport
	case KindBadStatus:
		return ErrBadStatus
	case KindEmptyBody:
		return ErrEmptyBody
	case KindDecode:
		return ErrDecode
	default:
		return ErrUnknown
	}
}

// Error is returned by every source. Its Error text is meant for end users;
// the underlying cause is kept for logs via Unwrap.
type Error struct {
	Kind       Kind
	StatusCode int
	Endpoint   string
	Timeout    bool
	Offline    bool
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidEndpoint:
		return fmt.Sprintf("Invalid URL: %s", e.Endpoint)
	case KindTransport:
		switch {
		case e.Offline:
			return "No internet connection. Please check your network."
		case e.Timeout:
			return "The request timed out. Please try again."
		default:
			return fmt.Sprintf("Network error: %v", e.Err)
		}
	case KindBadStatus:
		return fmt.Sprintf("Invalid server response. HTTP %d", e.StatusCode)
	case KindEmptyBody:
		return "The server returned no data."
	case KindDecode:
		return "Failed to decode response. API format may have changed."
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so callers can write
// errors.Is(err, source.ErrBadStatus).
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsTransient reports whether retrying the fetch later may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrEmptyBody)
}
