package domain

import "fmt"

// FetchError reports a failed HTTP call to the upstream event API: either a
// transport error or a non-2xx status.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a response body or field that could not be decoded
// into the expected shape.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CoercionError reports a field that was required to be numeric but was not.
type CoercionError struct {
	Field string
	Value string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coerce %s: %q is not numeric", e.Field, e.Value)
}
