package framing

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// DefaultChunkSize is the chunk size encoders use unless configured otherwise.
const DefaultChunkSize = 8192

// EncoderOption is a constructor option function for the Encoder type.
type EncoderOption func(*Encoder)

// WithChunkSize sets the largest chunk the encoder writes. NewEncoder fails
// for sizes outside [MinChunkSize, MaxChunkSize].
func WithChunkSize(bytes int) EncoderOption { return func(e *Encoder) { e.chunkSize = bytes } }

// WithAllocator sets the allocator supplying chunk staging buffers.
func WithAllocator(a Allocator) EncoderOption { return func(e *Encoder) { e.alloc = a } }

// WithEncoderTrace sets the encoder's trace hooks.
func WithEncoderTrace(trace *Trace) EncoderOption { return func(e *Encoder) { e.trace = trace } }

// Encoder is a framing writer. Message bodies are written with Write, in as
// many calls as convenient, and each message is completed with EndOfMessage.
type Encoder struct {
	// Output is the underlying Writer to receive encoded output
	Output io.Writer

	mechanism Mechanism
	chunkSize int
	alloc     Allocator
	trace     *Trace

	body      int
	effective int
	degraded  int64
}

// NewEncoder returns a new encoder for mechanism m writing to output,
// configured with any options provided.
func NewEncoder(output io.Writer, m Mechanism, opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{Output: output, mechanism: m, chunkSize: DefaultChunkSize, alloc: DefaultAllocator}
	for _, opt := range opts {
		opt(e)
	}
	if e.chunkSize < MinChunkSize || e.chunkSize > MaxChunkSize {
		return nil, errors.Wrapf(ErrChunkSizeOutOfRange, "chunk size %d not in [%d, %d]",
			e.chunkSize, MinChunkSize, MaxChunkSize)
	}
	if e.alloc == nil {
		e.alloc = DefaultAllocator
	}
	e.trace = resolveTrace(e.trace)
	e.effective = e.chunkSize
	return e, nil
}

// Mechanism returns the encoder's framing mechanism.
func (e *Encoder) Mechanism() Mechanism { return e.mechanism }

// ChunkSize returns the chunk size used for the most recent chunk, which is
// smaller than the configured chunk size when the allocator could not
// supply a buffer large enough.
func (e *Encoder) ChunkSize() int { return e.effective }

// Degraded returns the number of chunks written at less than the configured
// chunk size because of allocator limits.
func (e *Encoder) Degraded() int64 { return e.degraded }

// Write writes the framed output for b to the underlying writer.
func (e *Encoder) Write(b []byte) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	}
	if e.mechanism == Chunk {
		n, err = e.writeChunked(b)
	} else {
		n, err = e.Output.Write(b)
	}
	e.body += n
	if err != nil {
		e.trace.Error("encoder write", err)
	}
	return n, err
}

// EndOfMessage must be called after each message is written to the
// Encoder. It writes the message ending of the encoder's mechanism, either
// "]]>]]>" or "\n##\n". In chunked framing a message with no body cannot be
// ended and ErrEmptyMessage is returned.
func (e *Encoder) EndOfMessage() error {
	var err error
	if e.mechanism == Chunk {
		if e.body == 0 {
			return ErrEmptyMessage
		}
		_, err = e.Output.Write(tokenEndOfChunks)
	} else {
		_, err = e.Output.Write(tokenEOM)
	}
	if err != nil {
		e.trace.Error("encoder end of message", err)
		return errors.WithStack(err)
	}
	e.trace.FrameEncoded(e.mechanism, e.body)
	e.body = 0
	return nil
}

// WriteFrame writes the whole message b followed by its message ending.
func (e *Encoder) WriteFrame(b []byte) error {
	if e.mechanism == Chunk && len(b) == 0 {
		return ErrEmptyMessage
	}
	if _, err := e.Write(b); err != nil {
		return err
	}
	return e.EndOfMessage()
}

// Close attempts to close the underlying writer.
func (e *Encoder) Close() error {
	if closer, ok := e.Output.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

var tokenEndOfChunks = []byte("\n##\n")

// staging returns a buffer to assemble a chunk in and the largest chunk it
// can hold. When the allocator cannot supply a buffer for the configured
// chunk size the largest it can supply is used, or failing that an
// unpooled buffer of MinChunkSize.
func (e *Encoder) staging() (buf []byte, size int, pooled bool) {
	max := e.alloc.MaxCapacity()
	switch {
	case max >= e.chunkSize+maxHeaderLen:
		return e.alloc.Get(e.chunkSize + maxHeaderLen), e.chunkSize, true
	case max-maxHeaderLen >= MinChunkSize:
		size = max - maxHeaderLen
		return e.alloc.Get(max), size, true
	}
	return make([]byte, 0, MinChunkSize+maxHeaderLen), MinChunkSize, false
}

func (e *Encoder) writeChunked(b []byte) (n int, err error) {
	buf, size, pooled := e.staging()
	if pooled {
		defer func() { e.alloc.Put(buf) }()
	}
	e.effective = size

	// chunk encoding:
	// \n#<x>\n<x bytes data...>
	for n < len(b) {
		chunk := len(b) - n
		if chunk > size {
			chunk = size
		}
		if size < e.chunkSize {
			e.degraded++
			e.trace.ChunkSizeDegraded(e.chunkSize, size)
		}
		buf = append(buf[:0], '\n', '#')
		buf = strconv.AppendInt(buf, int64(chunk), 10)
		buf = append(buf, '\n')
		buf = append(buf, b[n:n+chunk]...)
		if _, err = e.Output.Write(buf); err != nil {
			return n, errors.WithStack(err)
		}
		n += chunk
	}
	return n, nil
}
