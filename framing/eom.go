package framing

import (
	"bytes"
)

// eomDecoder decodes the :base:1.0 end-of-message framing.
//
// bodyLength is the number of leading bytes of buf known not to start a
// delimiter, so each byte is examined once however the input is divided.
type eomDecoder struct {
	buf        []byte
	bodyLength int
	consumed   int64
	err        error
	cfg        decoderConfig

	// scanned counts bytes examined by the delimiter search.
	scanned int64
}

func newEOMDecoder(cfg decoderConfig) *eomDecoder { return &eomDecoder{cfg: cfg} }

func (d *eomDecoder) Mechanism() Mechanism { return EOM }

func (d *eomDecoder) Buffered() int { return len(d.buf) }

func (d *eomDecoder) Decode(p []byte) (frames []Frame, err error) {
	if d.err != nil {
		return nil, d.err
	}
	d.buf = append(d.buf, p...)
	start := 0
	for {
		body := d.buf[start:]
		i := bytes.IndexByte(body[d.bodyLength:], tokenEOM[0])
		if i < 0 {
			d.scanned += int64(len(body) - d.bodyLength)
			d.bodyLength = len(body)
			break
		}
		d.scanned += int64(i + 1)
		idx := d.bodyLength + i
		if len(body)-idx < len(tokenEOM) {
			// the delimiter may complete in a later call
			if !bytes.HasPrefix(tokenEOM, body[idx:]) {
				d.bodyLength = idx + 1
				continue
			}
			d.bodyLength = idx
			break
		}
		if !bytes.Equal(body[idx:idx+len(tokenEOM)], tokenEOM) {
			d.bodyLength = idx + 1
			continue
		}
		if max := d.cfg.maxFrameSize; max > 0 && idx > max {
			err = d.fail(newFramingError(ErrFrameTooLarge, d.consumed+int64(start+max),
				"frame exceeds maximum size %d", max))
			return frames, err
		}
		frame := make(Frame, idx)
		copy(frame, body[:idx])
		frames = append(frames, frame)
		d.cfg.trace.FrameDecoded(EOM, idx)
		start += idx + len(tokenEOM)
		d.bodyLength = 0
	}
	if max := d.cfg.maxFrameSize; max > 0 && d.bodyLength > max {
		err = d.fail(newFramingError(ErrFrameTooLarge, d.consumed+int64(start+max),
			"frame exceeds maximum size %d", max))
		return frames, err
	}
	d.discard(start)
	return frames, nil
}

// discard drops the first n bytes of buf.
func (d *eomDecoder) discard(n int) {
	if n == 0 {
		return
	}
	d.consumed += int64(n)
	rest := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:rest]
}

func (d *eomDecoder) fail(err error) error {
	d.err = err
	d.buf = nil
	d.cfg.trace.Error("eom decode", err)
	return err
}

func (d *eomDecoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if len(d.buf) > 0 {
		return errUnexpectedEOF(EOM, len(d.buf))
	}
	return nil
}

func (d *eomDecoder) pending() []byte {
	p := d.buf
	d.buf, d.bodyLength = nil, 0
	return p
}
