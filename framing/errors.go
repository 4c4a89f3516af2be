package framing

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrChunkSizeInvalid is reported for a chunk header whose size is not
	// a decimal number without leading zeros.
	ErrChunkSizeInvalid = errors.New("invalid chunk size")
	// ErrChunkSizeTooLarge is reported for a chunk header whose size exceeds
	// the decoder's maximum chunk size.
	ErrChunkSizeTooLarge = errors.New("chunk size too large")
	// ErrZeroChunks is reported when an end-of-chunks marker ends a message
	// that carried no chunks.
	ErrZeroChunks = errors.New("end-of-chunks with no chunks")
	// ErrBadChunkHeader is reported when the characters framing a chunk
	// header or the end-of-chunks marker are not as RFC6242 requires.
	ErrBadChunkHeader = errors.New("invalid chunk header")
	// ErrFrameTooLarge is reported when a frame exceeds the configured
	// maximum frame size.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrEmptyMessage is returned by a chunked Encoder asked to end a message
	// with no body. Chunked framing has no encoding for an empty message.
	ErrEmptyMessage = errors.New("empty message cannot be chunk encoded")
	// ErrChunkSizeOutOfRange is returned when an encoder is configured with
	// a chunk size outside [MinChunkSize, MaxChunkSize].
	ErrChunkSizeOutOfRange = errors.New("chunk size out of range")
	// ErrMechanismLocked is returned when a framing mechanism change is
	// requested after the one permitted upgrade has taken place.
	ErrMechanismLocked = errors.New("framing mechanism cannot be changed")
)

// FramingError is a framing violation in a decoded stream. Framing errors
// are fatal: the decoder reporting one returns it on every later call.
type FramingError struct {
	// Err is one of the Err* sentinels, for use with errors.Is.
	Err error
	// Reason describes the violation.
	Reason string
	// Offset is the offset in the decoded stream of the offending byte.
	Offset int64
}

func (e *FramingError) Error() string {
	reason := e.Reason
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	}
	return fmt.Sprintf("netconf framing error: %s at input offset %d", reason, e.Offset)
}

func (e *FramingError) Unwrap() error { return e.Err }

func newFramingError(sentinel error, offset int64, format string, args ...interface{}) *FramingError {
	return &FramingError{Err: sentinel, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is, or wraps, a framing violation.
func IsFatal(err error) bool {
	var fe *FramingError
	return errors.As(err, &fe)
}
