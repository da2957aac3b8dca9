package chunk

import (
	"errors"
	"fmt"
)

var (
	// ErrMarkerCollision is returned when a serialized value already contains
	// the continuation marker. No chunks are produced in that case.
	ErrMarkerCollision = errors.New("chunk: value contains the reserved continuation marker")
	// ErrParse matches every *ParseError through errors.Is.
	ErrParse = errors.New("chunk: reassembled value is not valid")
	// ErrInvalidCodec is returned for a non-positive chunk size or empty marker.
	ErrInvalidCodec = errors.New("chunk: invalid codec configuration")
)

// ParseError reports a reassembled payload that does not decode.
type ParseError struct {
	// Payload is the concatenated chunk payload that failed to decode.
	Payload string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("chunk: decode %d-byte payload: %v", len(e.Payload), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) hold for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
