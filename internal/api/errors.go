package api

import (
	"errors"
	"fmt"
)

// Kind classifies a remote operation failure so callers can pick the right
// recovery path without string-matching error text.
type Kind int

const (
	// KindNetwork is a transport error or a non-success HTTP status.
	KindNetwork Kind = iota
	// KindAuth is a 401-class rejection; callers should attempt a token
	// refresh before treating the session as expired.
	KindAuth
	// KindParse is a response body that could not be decoded.
	KindParse
	// KindDuplicate is a 409 conflict, e.g. a character name already taken.
	KindDuplicate
	// KindConfig is a request aborted before any I/O because a required
	// identifier (world key, character key) was absent.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindParse:
		return "parse"
	case KindDuplicate:
		return "duplicate"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a kind-tagged remote failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == kind
}
