package message

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// DefaultBufferSize is the BufferedWriter size a Codec uses.
const DefaultBufferSize = 4096

// BufferedWriter buffers output to an underlying writer in a fixed size
// buffer. Close flushes the buffer and closes the underlying writer if it
// is an io.Closer.
type BufferedWriter struct {
	w   *bufio.Writer
	dst io.Writer
}

// NewBufferedWriter returns a BufferedWriter of size bytes writing to dst.
func NewBufferedWriter(dst io.Writer, size int) *BufferedWriter {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &BufferedWriter{w: bufio.NewWriterSize(dst, size), dst: dst}
}

// Reset discards any buffered data and directs output to dst.
func (b *BufferedWriter) Reset(dst io.Writer) {
	b.w.Reset(dst)
	b.dst = dst
}

func (b *BufferedWriter) Write(p []byte) (int, error) {
	n, err := b.w.Write(p)
	return n, errors.WithStack(err)
}

func (b *BufferedWriter) WriteString(s string) (int, error) {
	n, err := b.w.WriteString(s)
	return n, errors.WithStack(err)
}

func (b *BufferedWriter) WriteByte(c byte) error { return errors.WithStack(b.w.WriteByte(c)) }

func (b *BufferedWriter) WriteRune(r rune) (int, error) {
	n, err := b.w.WriteRune(r)
	return n, errors.WithStack(err)
}

// Buffered returns the number of bytes buffered and not yet written.
func (b *BufferedWriter) Buffered() int { return b.w.Buffered() }

// Flush writes any buffered data to the underlying writer.
func (b *BufferedWriter) Flush() error { return errors.WithStack(b.w.Flush()) }

// Close flushes the buffer, then closes the underlying writer if it is an
// io.Closer.
func (b *BufferedWriter) Close() error {
	err := b.Flush()
	if c, ok := b.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = errors.WithStack(cerr)
		}
	}
	return err
}
