package transport

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/andaru/netconf-core/framing"
	"github.com/pkg/errors"
)

// Option is a constructor option function for the Conn type.
type Option func(*Conn)

// WithDecoderOptions sets the options of the connection's frame decoders.
func WithDecoderOptions(opts ...framing.DecoderOption) Option {
	return func(c *Conn) { c.decOpts = append(c.decOpts, opts...) }
}

// WithEncoderOptions sets the options of the connection's frame encoders.
func WithEncoderOptions(opts ...framing.EncoderOption) Option {
	return func(c *Conn) { c.encOpts = append(c.encOpts, opts...) }
}

// Conn is a framed NETCONF transport connection.
//
// ReadFrame may be called concurrently with the write methods, but not
// with itself. Writes are serialized.
type Conn struct {
	src     io.Reader
	dst     io.WriteCloser
	decOpts []framing.DecoderOption
	encOpts []framing.EncoderOption

	reader *framing.FrameReader

	mu       sync.Mutex
	encoder  *framing.Encoder
	upgraded bool

	mechanism int32
	received  int64
	sent      int64
}

// New returns a new Conn reading frames from src and writing frames to dst.
// The connection begins in end-of-message framing. Closing the Conn closes
// dst.
func New(src io.Reader, dst io.WriteCloser, opts ...Option) (*Conn, error) {
	if src == nil || dst == nil {
		return nil, errors.New("transport: both src and dst must be non-nil")
	}
	c := &Conn{src: src, dst: dst}
	for _, opt := range opts {
		opt(c)
	}
	enc, err := framing.NewEncoder(dst, framing.EOM, c.encOpts...)
	if err != nil {
		return nil, err
	}
	c.encoder = enc
	c.reader = framing.NewFrameReader(src, framing.EOM, c.decOpts...)
	return c, nil
}

// NewConn returns a new Conn over the bidirectional stream rwc.
func NewConn(rwc io.ReadWriteCloser, opts ...Option) (*Conn, error) {
	return New(rwc, rwc, opts...)
}

// Mechanism returns the connection's current framing mechanism.
func (c *Conn) Mechanism() framing.Mechanism {
	return framing.Mechanism(atomic.LoadInt32(&c.mechanism))
}

// ReadFrame returns the next message received.
func (c *Conn) ReadFrame() (framing.Frame, error) {
	f, err := c.reader.ReadFrame()
	if err == nil {
		atomic.AddInt64(&c.received, 1)
	}
	return f, err
}

// WriteFrame writes b as one message.
func (c *Conn) WriteFrame(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.encoder.WriteFrame(b); err != nil {
		return err
	}
	atomic.AddInt64(&c.sent, 1)
	return nil
}

// MessageWriter returns a writer for one message, which is ended by
// closing the writer. Other writes on the connection block until then.
func (c *Conn) MessageWriter() io.WriteCloser {
	c.mu.Lock()
	return &messageWriter{c: c}
}

// Upgrade switches the connection's framing mechanism. Only one switch, from
// end-of-message to chunked framing, is permitted. It must be called by the
// goroutine calling ReadFrame, after the peer's <hello> has been read.
func (c *Conn) Upgrade(m framing.Mechanism) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m == c.encoder.Mechanism() {
		return nil
	}
	if c.upgraded || m != framing.Chunk {
		return errors.Wrapf(framing.ErrMechanismLocked, "cannot change framing from %s to %s", c.encoder.Mechanism(), m)
	}
	enc, err := framing.NewEncoder(c.dst, m, c.encOpts...)
	if err != nil {
		return err
	}
	if err := c.reader.SetMechanism(m); err != nil {
		return err
	}
	c.encoder = enc
	c.upgraded = true
	atomic.StoreInt32(&c.mechanism, int32(m))
	return nil
}

// FramesReceived returns the number of messages read from the connection.
func (c *Conn) FramesReceived() int64 { return atomic.LoadInt64(&c.received) }

// FramesSent returns the number of messages written to the connection.
func (c *Conn) FramesSent() int64 { return atomic.LoadInt64(&c.sent) }

// Close closes the underlying writer.
func (c *Conn) Close() error { return c.dst.Close() }

type messageWriter struct {
	c      *Conn
	closed bool
}

func (w *messageWriter) Write(b []byte) (int, error) {
	if w.closed {
		return 0, errors.New("transport: write to closed message writer")
	}
	return w.c.encoder.Write(b)
}

func (w *messageWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.c.mu.Unlock()
	if err := w.c.encoder.EndOfMessage(); err != nil {
		return err
	}
	atomic.AddInt64(&w.c.sent, 1)
	return nil
}
