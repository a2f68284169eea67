package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams marks input the reducer rejects: bad ranges, unknown
	// metric, too few rows for the neighborhood size.
	ErrInvalidParams = errors.New("invalid embedding input")
	ErrMisaligned    = errors.New("reducer output does not match input rows")
	ErrClosed        = errors.New("embedding executor closed")
)

type Kind string

const (
	KindInvalid     Kind = "invalid"
	KindEngine      Kind = "engine"
	KindAlignment   Kind = "alignment"
	KindUnavailable Kind = "unavailable"
)

// Error is returned for every failed computation. No partial result accompanies it.
type Error struct {
	Engine string
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "embedding error"
	}
	return fmt.Sprintf("embedding (%s, %s): %v", e.Engine, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func classify(engine string, err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}
	kind := KindEngine
	switch {
	case errors.Is(err, ErrInvalidParams):
		kind = KindInvalid
	case errors.Is(err, ErrMisaligned):
		kind = KindAlignment
	}
	return &Error{Engine: engine, Kind: kind, Err: err}
}
