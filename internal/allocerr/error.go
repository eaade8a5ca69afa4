package allocerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failed allocator operation.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidRequestSize
	NoSuitableBlock
	InvalidBlockIndex
	AlreadyFree
	UnknownBlockSize
	NothingOutstanding
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	InvalidRequestSize: "invalid request size",
	NoSuitableBlock:    "no suitable block",
	InvalidBlockIndex:  "invalid block index",
	AlreadyFree:        "already free",
	UnknownBlockSize:   "unknown block size",
	NothingOutstanding: "nothing outstanding",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	ErrInvalidRequestSize = &Error{Kind: InvalidRequestSize}
	ErrNoSuitableBlock    = &Error{Kind: NoSuitableBlock}
	ErrInvalidBlockIndex  = &Error{Kind: InvalidBlockIndex}
	ErrAlreadyFree        = &Error{Kind: AlreadyFree}
	ErrUnknownBlockSize   = &Error{Kind: UnknownBlockSize}
	ErrNothingOutstanding = &Error{Kind: NothingOutstanding}
)

// Error is returned by every allocator operation that leaves state unchanged.
// Value holds the offending request size, block index or block size.
type Error struct {
	Kind  Kind
	Value int
}

func New(kind Kind, value int) *Error {
	return &Error{Kind: kind, Value: value}
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidRequestSize:
		return fmt.Sprintf("invalid request size %d KB: must be positive", e.Value)
	case NoSuitableBlock:
		return fmt.Sprintf("no suitable block found for process size %d KB", e.Value)
	case InvalidBlockIndex:
		return fmt.Sprintf("invalid block number %d", e.Value)
	case AlreadyFree:
		return fmt.Sprintf("block %d is already free", e.Value)
	case UnknownBlockSize:
		return fmt.Sprintf("invalid block size %d KB", e.Value)
	case NothingOutstanding:
		return fmt.Sprintf("no allocated block of size %d KB to release", e.Value)
	}
	return e.Kind.String()
}

// Is matches any *Error of the same Kind, so callers can compare against the
// package sentinels regardless of Value.
func (e *Error) Is(target error) bool {
	if targetErr, ok := target.(*Error); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

// KindOf returns the Kind carried by err, or KindUnknown if err is nil or not
// an allocator error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ValidateRequestSize rejects non-positive request sizes before any search.
func ValidateRequestSize(size int) error {
	if size <= 0 {
		return New(InvalidRequestSize, size)
	}
	return nil
}
