package framing

import (
	"io"

	"github.com/pkg/errors"
)

const (
	// MinChunkSize is the smallest chunk size an Encoder may be configured
	// with.
	MinChunkSize = 128
	// MaxChunkSize is the largest chunk size an Encoder may be configured
	// with, and the default largest chunk a Decoder accepts.
	MaxChunkSize = 16 * 1024 * 1024
	// MaxChunkSizeRFC6242 is the largest chunk size RFC6242 permits.
	MaxChunkSizeRFC6242 = 4294967295
)

var tokenEOM = []byte("]]>]]>")

// Frame is one complete NETCONF message body with its framing removed.
// A Frame never shares storage with a decoder's buffers.
type Frame []byte

// Len returns the frame's length in bytes.
func (f Frame) Len() int { return len(f) }

// Decoder extracts frames from a byte stream delivered in arbitrary
// increments.
type Decoder interface {
	// Mechanism returns the framing mechanism the decoder implements.
	Mechanism() Mechanism
	// Decode consumes p and returns the frames it completes, in stream
	// order. Frames completed before a framing violation are returned
	// along with the error. p is not retained.
	Decode(p []byte) ([]Frame, error)
	// Buffered returns the number of bytes held for an incomplete frame.
	Buffered() int
	// Finish reports io.ErrUnexpectedEOF if the stream ended mid-frame.
	Finish() error

	// pending returns and releases bytes received but not yet decoded,
	// for handing to a successor decoder.
	pending() []byte
}

// NewDecoder returns a decoder for the framing mechanism m.
func NewDecoder(m Mechanism, opts ...DecoderOption) Decoder {
	cfg := newDecoderConfig(opts)
	if m == Chunk {
		return newChunkDecoder(cfg)
	}
	return newEOMDecoder(cfg)
}

type decoderConfig struct {
	maxFrameSize   int
	maxChunkSize   int64
	readBufferSize int
	trace          *Trace
}

func newDecoderConfig(opts []DecoderOption) decoderConfig {
	cfg := decoderConfig{maxChunkSize: MaxChunkSize, readBufferSize: defaultReadBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.trace = resolveTrace(cfg.trace)
	return cfg
}

// DecoderOption is a constructor option function for decoders and
// FrameReaders.
type DecoderOption func(*decoderConfig)

// WithMaxFrameSize sets the largest frame the decoder accepts. Zero, the
// default, places no limit on frame size.
func WithMaxFrameSize(bytes int) DecoderOption {
	return func(c *decoderConfig) {
		if bytes < 0 {
			bytes = 0
		}
		c.maxFrameSize = bytes
	}
}

// WithMaxChunkSize sets the largest chunk a chunked decoder accepts. Values
// outside [1, MaxChunkSizeRFC6242] are clamped to that range.
func WithMaxChunkSize(bytes int64) DecoderOption {
	return func(c *decoderConfig) {
		switch {
		case bytes < 1:
			bytes = 1
		case bytes > MaxChunkSizeRFC6242:
			bytes = MaxChunkSizeRFC6242
		}
		c.maxChunkSize = bytes
	}
}

// WithReadBufferSize sets the size of the buffer a FrameReader reads into.
func WithReadBufferSize(bytes int) DecoderOption {
	return func(c *decoderConfig) {
		if bytes < minReadBufferSize {
			bytes = minReadBufferSize
		}
		c.readBufferSize = bytes
	}
}

// WithDecoderTrace sets the decoder's trace hooks.
func WithDecoderTrace(trace *Trace) DecoderOption {
	return func(c *decoderConfig) { c.trace = trace }
}

func errUnexpectedEOF(m Mechanism, buffered int) error {
	return errors.Wrapf(io.ErrUnexpectedEOF, "%s stream ended with %d bytes of incomplete frame", m, buffered)
}
