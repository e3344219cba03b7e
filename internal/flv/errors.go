package flv

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds     = errors.New("tag exceeds buffer")
	ErrInvalidKind     = errors.New("invalid tag kind")
	ErrTrailerMismatch = errors.New("tag trailer mismatch")
	ErrHeaderSignature = errors.New("invalid FLV header signature")
)

// TagError reports a structural failure at a byte offset. Expected and
// Observed carry the values that disagreed; their meaning depends on Err.
type TagError struct {
	Err      error
	Offset   int
	Expected uint64
	Observed uint64
}

func (e *TagError) Error() string {
	switch e.Err {
	case ErrOutOfBounds:
		return fmt.Sprintf("offset %d: %v (need %d bytes, %d available)", e.Offset, e.Err, e.Expected, e.Observed)
	case ErrInvalidKind:
		return fmt.Sprintf("offset %d: %v %#02x (expected audio, video or metadata)", e.Offset, e.Err, e.Observed)
	case ErrTrailerMismatch:
		return fmt.Sprintf("offset %d: %v (expected %d, observed %d)", e.Offset, e.Err, e.Expected, e.Observed)
	case ErrHeaderSignature:
		return fmt.Sprintf("offset %d: %v (expected %q)", e.Offset, e.Err, Signature)
	default:
		return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
	}
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// AsTagError extracts a *TagError from err.
func AsTagError(err error) (*TagError, bool) {
	var te *TagError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
