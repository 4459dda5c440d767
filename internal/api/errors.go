package api

import (
	"errors"
	"fmt"
)

// Failure categories. Every error returned by Client matches exactly one of
// these with errors.Is.
var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("unexpected status")
	ErrDecode    = errors.New("undecodable response")
	ErrMalformed = errors.New("malformed response")
)

const maxBodyExcerpt = 256

// Error describes a failed API call.
type Error struct {
	Op         string // e.g. "list topics"
	Kind       error  // one of the category sentinels
	StatusCode int    // set for ErrStatus
	Body       string // response excerpt for ErrStatus
	Err        error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: %v %d: %s", e.Op, e.Kind, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %v %d", e.Op, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt]) + "..."
	}
	return string(body)
}
