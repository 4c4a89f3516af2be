package framing

type chunkState uint8

const (
	// awaiting "\n" of "\n#<size>\n" or "\n##\n"
	stateHeaderNewline chunkState = iota
	// awaiting "#"
	stateHeaderHash
	// awaiting the first size digit, or "#" of the end-of-chunks marker
	stateHeaderSizeStart
	// awaiting further size digits or the newline ending the header
	stateHeaderSize
	// awaiting remaining bytes of chunk data
	stateBody
	// awaiting the final "\n" of "\n##\n"
	stateTerminator
)

// chunkDecoder decodes the :base:1.1 chunked framing. It is a byte-wise state
// machine over chunk headers; chunk data is copied directly into the
// message under construction, so no input is buffered other than the
// partial message itself. size holds the chunk size while the header is
// parsed and then the bytes left in the chunk.
type chunkDecoder struct {
	state  chunkState
	size   int64
	chunks int
	msg    []byte
	offset int64
	err    error
	cfg    decoderConfig
}

func newChunkDecoder(cfg decoderConfig) *chunkDecoder { return &chunkDecoder{cfg: cfg} }

func (d *chunkDecoder) Mechanism() Mechanism { return Chunk }

func (d *chunkDecoder) Buffered() int { return len(d.msg) }

func (d *chunkDecoder) Decode(p []byte) (frames []Frame, err error) {
	if d.err != nil {
		return nil, d.err
	}
	for i := 0; i < len(p); {
		if d.state == stateBody {
			n := int64(len(p) - i)
			if n > d.size {
				n = d.size
			}
			d.msg = append(d.msg, p[i:i+int(n)]...)
			d.size -= n
			i += int(n)
			d.offset += n
			if d.size == 0 {
				d.chunks++
				d.state = stateHeaderNewline
			}
			continue
		}
		b := p[i]
		switch d.state {
		case stateHeaderNewline:
			if b != '\n' {
				return frames, d.fail(ErrBadChunkHeader, "expected newline starting chunk header, got %q", b)
			}
			d.state = stateHeaderHash
		case stateHeaderHash:
			if b != '#' {
				return frames, d.fail(ErrBadChunkHeader, "expected '#' in chunk header, got %q", b)
			}
			d.state = stateHeaderSizeStart
		case stateHeaderSizeStart:
			switch {
			case b == '#':
				if d.chunks == 0 {
					return frames, d.fail(ErrZeroChunks, "end-of-chunks marker before any chunk")
				}
				d.state = stateTerminator
			case b == '0':
				return frames, d.fail(ErrChunkSizeInvalid, "chunk size has a leading zero")
			case b >= '1' && b <= '9':
				d.size = int64(b - '0')
				d.state = stateHeaderSize
			default:
				return frames, d.fail(ErrChunkSizeInvalid, "expected chunk size digit, got %q", b)
			}
		case stateHeaderSize:
			switch {
			case b >= '0' && b <= '9':
				d.size = d.size*10 + int64(b-'0')
				if d.size > d.cfg.maxChunkSize {
					return frames, d.fail(ErrChunkSizeTooLarge, "chunk size exceeds maximum %d", d.cfg.maxChunkSize)
				}
			case b == '\n':
				if max := int64(d.cfg.maxFrameSize); max > 0 && int64(len(d.msg))+d.size > max {
					return frames, d.fail(ErrFrameTooLarge, "frame exceeds maximum size %d", max)
				}
				d.state = stateBody
			default:
				return frames, d.fail(ErrChunkSizeInvalid, "expected chunk size digit or newline, got %q", b)
			}
		case stateTerminator:
			if b != '\n' {
				return frames, d.fail(ErrBadChunkHeader, "expected newline ending end-of-chunks marker, got %q", b)
			}
			// message ownership moves to the frame
			frames = append(frames, Frame(d.msg))
			d.cfg.trace.FrameDecoded(Chunk, len(d.msg))
			d.msg, d.chunks = nil, 0
			d.state = stateHeaderNewline
		}
		i++
		d.offset++
	}
	return frames, nil
}

func (d *chunkDecoder) fail(sentinel error, format string, args ...interface{}) error {
	d.err = newFramingError(sentinel, d.offset, format, args...)
	d.msg = nil
	d.cfg.trace.Error("chunk decode", d.err)
	return d.err
}

func (d *chunkDecoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.state != stateHeaderNewline || d.chunks > 0 {
		return errUnexpectedEOF(Chunk, len(d.msg))
	}
	return nil
}

func (d *chunkDecoder) pending() []byte { return nil }
