package framing

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeInPieces feeds input to d in pieces of size bsize.
func decodeInPieces(d Decoder, input string, bsize int) (frames []string, err error) {
	for len(input) > 0 {
		n := bsize
		if n > len(input) {
			n = len(input)
		}
		got, derr := d.Decode([]byte(input[:n]))
		for _, f := range got {
			frames = append(frames, string(f))
		}
		if derr != nil {
			return frames, derr
		}
		input = input[n:]
	}
	return frames, d.Finish()
}

var eomTestInputs = []string{
	"]]>]]>",
	"012345789012345789012345789012345789012345789012345789012345789]]>]]>012345789012345789012345789]]>]]>",
	"0123456789]]>]]>0123456789]]>]]>0123456789]]>]]>0123456789]]>]]>]]>]]>0123456789]]>]]>]]>]]>",
	"]]>]]foo]]>]]>bar]]]]]>]]>]]]>]]]]>]]>baz]]>]]>",
	"]]>]]foo]]>]]>bar]]]>]]>",
	"foo>]]>bar]]>]]>bazoopa]]>]]>",
	"]]>]]>]]>]]>baz]]>]]>",
	"]]>]]>]]>]]>]]>]]>",
	"]]>]]>foo]]>]]>]]>]]>",
	"]]>]]>foo\n]]>]]>]]>]]>bar]]>]]>]]>]]>]]>]]>]]>]]>]]>]]>]]>]]>]]>]]>]]>]]>",
	"foo]]>]]>",
	"foo]]>]]>bar]]>]]>bazoopa]]>]]>",
	"foo",
	"foo]]>]]>bar]]>]]>bazoopa",
	"]]>]]>]]>]]>]]>]]>abcdefghijklmnop",
	"a]]>]]>b]]>]]>c",
	"]]>]]",
	"",
}

func TestEOMDecoder(t *testing.T) {
	for _, input := range eomTestInputs {
		parts := strings.Split(input, "]]>]]>")
		wantFrames, rest := parts[:len(parts)-1], parts[len(parts)-1]
		if len(wantFrames) == 0 {
			wantFrames = nil
		}
		for bsize := 1; bsize <= len(input)+1; bsize++ {
			t.Run(fmt.Sprintf("%q/%d", input, bsize), func(t *testing.T) {
				ck := assert.New(t)
				d := NewDecoder(EOM)
				got, err := decodeInPieces(d, input, bsize)
				ck.Equal(wantFrames, got)
				ck.Equal(len(rest), d.Buffered())
				if rest == "" {
					ck.NoError(err)
				} else {
					ck.True(errors.Is(err, io.ErrUnexpectedEOF), "want unexpected EOF, got %v", err)
					ck.False(IsFatal(err))
				}
			})
		}
	}
}

func TestEOMDecoderFramesDoNotAlias(t *testing.T) {
	ck := assert.New(t)
	d := NewDecoder(EOM)
	input := []byte("foo]]>]]>ba")
	frames, err := d.Decode(input)
	ck.NoError(err)
	require.Len(t, frames, 1)
	input[0] = 'x'
	more, err := d.Decode([]byte("r]]>]]>"))
	ck.NoError(err)
	ck.Equal("foo", string(frames[0]))
	ck.Equal([]Frame{Frame("bar")}, more)
}

func TestEOMDecoderLinearScan(t *testing.T) {
	ck := assert.New(t)
	// a long near-miss of the delimiter, fed one byte at a time
	input := strings.Repeat("]]>]]]", 4096) + "]]>]]>"
	d := newEOMDecoder(newDecoderConfig(nil))
	var frames []Frame
	for i := 0; i < len(input); i++ {
		got, err := d.Decode([]byte{input[i]})
		ck.NoError(err)
		frames = append(frames, got...)
	}
	ck.Len(frames, 1)
	ck.LessOrEqual(d.scanned, int64(2*len(input)))
	ck.Equal(0, d.Buffered())
}

func TestEOMDecoderMaxFrameSize(t *testing.T) {
	for _, input := range []string{
		"0123456789]]>]]>",
		"0123456789",
		"ok]]>]]>0123456789",
	} {
		t.Run(input, func(t *testing.T) {
			ck := assert.New(t)
			d := NewDecoder(EOM, WithMaxFrameSize(8))
			_, err := d.Decode([]byte(input))
			ck.True(errors.Is(err, ErrFrameTooLarge), "got %v", err)
			ck.True(IsFatal(err))
			// the decoder is poisoned
			frames, again := d.Decode([]byte("]]>]]>"))
			ck.Nil(frames)
			ck.Equal(err, again)
			ck.Equal(err, d.Finish())
		})
	}
}

func TestEOMDecoderTrace(t *testing.T) {
	ck := assert.New(t)
	var sizes []int
	d := NewDecoder(EOM, WithDecoderTrace(&Trace{
		FrameDecoded: func(m Mechanism, size int) {
			ck.Equal(EOM, m)
			sizes = append(sizes, size)
		},
	}))
	_, err := d.Decode([]byte("foo]]>]]>barbaz]]>]]>"))
	ck.NoError(err)
	ck.Equal([]int{3, 6}, sizes)
}

func BenchmarkEOMDecoder(b *testing.B) {
	for _, input := range []string{
		"0123456789]]>]]>0123456789]]>]]>0123456789]]>]]>0123456789]]>]]>]]>]]>0123456789]]>]]>]]>]]>",
		"]]>]]foo]]>]]>bar]]]]]>]]>]]]>]]]]>]]>baz]]>]]>",
		strings.Repeat("<data>0123456789</data>", 4096) + "]]>]]>",
	} {
		in := []byte(input)
		for _, bsize := range []int{16, 512, 4096} {
			b.Run(fmt.Sprintf("%d/%d", len(in), bsize), func(b *testing.B) {
				b.SetBytes(int64(len(in)))
				for i := 0; i < b.N; i++ {
					d := NewDecoder(EOM)
					for p := in; len(p) > 0; {
						n := bsize
						if n > len(p) {
							n = len(p)
						}
						if _, err := d.Decode(p[:n]); err != nil {
							b.Fatal(err)
						}
						p = p[n:]
					}
				}
			})
		}
	}
}
