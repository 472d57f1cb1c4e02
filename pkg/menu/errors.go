package menu

import (
	"errors"
	"fmt"

	"github.com/kotrzina/knue-meals/pkg/fetch"
)

// Kind is the closed set of failures a menu lookup can end with.
type Kind uint8

const (
	// KindInvalidInput is a bad request parameter, rejected before any fetch.
	KindInvalidInput Kind = iota + 1
	// KindUpstream is a connection failure, timeout or non-2xx upstream status.
	KindUpstream
	// KindExtraction means the page no longer has the expected shape.
	KindExtraction
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstream:
		return "upstream"
	case KindExtraction:
		return "extraction"
	default:
		return "unknown"
	}
}

// Error carries the kind of failure and the stage it happened in.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Err: fmt.Errorf(format, args...)}
}

func upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

func extraction(op string, err error) error {
	return &Error{Kind: KindExtraction, Op: op, Err: err}
}

// KindOf classifies err. Anything that is not a *Error counts as an
// extraction failure.
func KindOf(err error) Kind {
	var menuErr *Error
	if errors.As(err, &menuErr) {
		return menuErr.Kind
	}
	return KindExtraction
}

// IsTimeout reports whether an upstream failure was a timeout. Such failures
// are worth retrying.
func IsTimeout(err error) bool {
	return errors.Is(err, fetch.ErrTimeout)
}

// UpstreamStatus is the HTTP status the upstream answered with, or 0 when no
// response was received.
func UpstreamStatus(err error) int {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}
