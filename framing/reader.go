package framing

import (
	"io"

	"github.com/pkg/errors"
)

const (
	defaultReadBufferSize = 64 * 1024
	minReadBufferSize     = 16
)

// FrameReader reads frames from an underlying io.Reader.
//
// NETCONF sessions begin in end-of-message framing. After the <hello>
// exchange, :base:1.1 sessions switch to chunked framing (see RFC6242,
// s4.1); SetMechanism performs that switch once, passing any bytes
// already received after the <hello> message to the chunked decoder.
type FrameReader struct {
	src      io.Reader
	dec      Decoder
	cfg      []DecoderOption
	buf      []byte
	queue    []Frame
	err      error
	eof      bool
	upgraded bool
}

// NewFrameReader returns a FrameReader decoding src with mechanism m.
func NewFrameReader(src io.Reader, m Mechanism, opts ...DecoderOption) *FrameReader {
	cfg := newDecoderConfig(opts)
	return &FrameReader{
		src: src,
		dec: NewDecoder(m, opts...),
		cfg: opts,
		buf: make([]byte, cfg.readBufferSize),
	}
}

// Mechanism returns the framing mechanism currently decoded.
func (r *FrameReader) Mechanism() Mechanism { return r.dec.Mechanism() }

// ReadFrame returns the next frame. At the end of a cleanly framed stream
// it returns io.EOF; a stream ending mid-frame yields io.ErrUnexpectedEOF.
func (r *FrameReader) ReadFrame() (Frame, error) {
	for len(r.queue) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		if r.eof {
			// the decoder may have changed since the source ended
			r.err = io.EOF
			if err := r.dec.Finish(); err != nil {
				r.err = err
			}
			continue
		}
		r.fill()
	}
	f := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	return f, nil
}

func (r *FrameReader) fill() {
	n, err := r.src.Read(r.buf)
	if n > 0 {
		frames, derr := r.dec.Decode(r.buf[:n])
		r.queue = append(r.queue, frames...)
		if derr != nil {
			r.err = derr
			return
		}
	}
	switch {
	case err == io.EOF:
		r.eof = true
	case err != nil:
		r.err = errors.WithStack(err)
	}
}

// SetMechanism changes the framing mechanism of frames not yet decoded.
// Only one change, from EOM to Chunk, is permitted; requesting the current
// mechanism is a no-op.
func (r *FrameReader) SetMechanism(m Mechanism) error {
	if m == r.dec.Mechanism() {
		return nil
	}
	if r.upgraded || m != Chunk {
		return errors.Wrapf(ErrMechanismLocked, "cannot change framing from %s to %s", r.dec.Mechanism(), m)
	}
	r.upgraded = true
	rest := r.dec.pending()
	r.dec = NewDecoder(m, r.cfg...)
	if len(rest) > 0 {
		frames, err := r.dec.Decode(rest)
		r.queue = append(r.queue, frames...)
		if err != nil && r.err == nil {
			r.err = err
		}
	}
	return nil
}
