package bitstream

import (
	"errors"
	"fmt"
)

// Failure kinds, one per operation family. Every error returned by this
// package wraps exactly one of them.
var (
	ErrRead    = errors.New("read error")
	ErrWrite   = errors.New("write error")
	ErrSeek    = errors.New("seek error")
	ErrAppend  = errors.New("append error")
	ErrInsert  = errors.New("insert error")
	ErrErase   = errors.New("erase error")
	ErrReserve = errors.New("reserve error")
	ErrResize  = errors.New("resize error")
)

// OpError describes a failed buffer operation.
type OpError struct {
	Kind error
	Msg  string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
}

func (e *OpError) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &OpError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
