package gateway

import (
	"errors"
	"fmt"
)

// ErrGatewayClosed is returned by calls made after Close.
var ErrGatewayClosed = errors.New("gateway is closed")

var errMissing = errors.New("missing or null")

// UnexpectedStatusError is the fatal outcome of any HTTP status the gateway
// does not map to a domain.GatewayError.
type UnexpectedStatusError struct {
	StatusCode int
	URL        string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// DecodeError reports a search response that does not match the expected schema.
// Index is the position of the offending item, or -1 when the envelope is at fault.
type DecodeError struct {
	Index int
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("item %d: field %q: %v", e.Index, e.Field, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("item %d: %v", e.Index, e.Err)
	case e.Field != "":
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
