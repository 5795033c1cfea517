package node

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	// ErrNotFound indicates a referenced node, parent, or link key is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgs indicates a malformed call from the boundary.
	ErrInvalidArgs = errors.New("invalid arguments")

	// ErrIO indicates a file create, write, or rename failure.
	ErrIO = errors.New("i/o failure")

	// ErrParse indicates malformed metadata or a malformed link record.
	ErrParse = errors.New("parse failure")
)

// Error describes a failed node or tree operation.
type Error struct {
	Op   string // operation, e.g. "create", "link", "rebalance"
	Key  string // node key involved, if any
	Kind error  // one of the Err* kinds above
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Op
	if e.Key != "" {
		msg += " " + e.Key
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound builds an ErrNotFound error for key.
func NotFound(op, key string) error {
	return &Error{Op: op, Key: key, Kind: ErrNotFound}
}

// InvalidArgs builds an ErrInvalidArgs error with a formatted reason.
func InvalidArgs(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrInvalidArgs, Err: fmt.Errorf(format, args...)}
}

// IOError wraps a filesystem failure.
func IOError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Key: key, Kind: ErrIO, Err: err}
}

// ParseError wraps a decoding failure.
func ParseError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Key: key, Kind: ErrParse, Err: err}
}
