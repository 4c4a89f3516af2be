package transport

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/andaru/netconf-core/framing"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeBuffer struct {
	*bytes.Buffer
	closed int
}

func (b *closeBuffer) Close() error {
	b.closed++
	return nil
}

func TestConnHelloUpgrade(t *testing.T) {
	ck := assert.New(t)
	in := strings.NewReader(`<hello><capabilities><capability>urn:ietf:params:netconf:base:1.1</capability></capabilities></hello>]]>]]>` +
		"\n#6\n<rpc/>\n##\n")
	out := &closeBuffer{Buffer: &bytes.Buffer{}}
	c, err := New(in, out)
	require.NoError(t, err)
	ck.Equal(framing.EOM, c.Mechanism())

	ck.NoError(c.WriteFrame([]byte("<hello/>")))
	hello, err := c.ReadFrame()
	ck.NoError(err)
	ck.Contains(string(hello), framing.CapabilityBase11)

	m, err := framing.MechanismFor([]string{framing.CapabilityBase11}, []string{framing.CapabilityBase11})
	require.NoError(t, err)
	ck.NoError(c.Upgrade(m))
	ck.Equal(framing.Chunk, c.Mechanism())

	rpc, err := c.ReadFrame()
	ck.NoError(err)
	ck.Equal("<rpc/>", string(rpc))
	ck.NoError(c.WriteFrame([]byte("<rpc-reply/>")))

	_, err = c.ReadFrame()
	ck.Equal(io.EOF, err)

	ck.Equal("<hello/>]]>]]>\n#12\n<rpc-reply/>\n##\n", out.String())
	ck.Equal(int64(2), c.FramesReceived())
	ck.Equal(int64(2), c.FramesSent())

	ck.NoError(c.Close())
	ck.Equal(1, out.closed)
}

func TestConnUpgradeOnce(t *testing.T) {
	ck := assert.New(t)
	c, err := New(strings.NewReader(""), &closeBuffer{Buffer: &bytes.Buffer{}})
	require.NoError(t, err)
	ck.NoError(c.Upgrade(framing.EOM))
	ck.NoError(c.Upgrade(framing.Chunk))
	ck.NoError(c.Upgrade(framing.Chunk))
	ck.True(errors.Is(c.Upgrade(framing.EOM), framing.ErrMechanismLocked))
}

func TestConnMessageWriter(t *testing.T) {
	ck := assert.New(t)
	out := &closeBuffer{Buffer: &bytes.Buffer{}}
	c, err := New(strings.NewReader(""), out, WithEncoderOptions(framing.WithChunkSize(framing.MinChunkSize)))
	require.NoError(t, err)
	ck.NoError(c.Upgrade(framing.Chunk))

	w := c.MessageWriter()
	_, err = io.WriteString(w, "<rpc-reply>")
	ck.NoError(err)
	_, err = io.WriteString(w, "</rpc-reply>")
	ck.NoError(err)
	ck.NoError(w.Close())
	ck.NoError(w.Close())
	_, err = w.Write([]byte("late"))
	ck.Error(err)
	ck.Equal("\n#11\n<rpc-reply>\n#12\n</rpc-reply>\n##\n", out.String())
	ck.Equal(int64(1), c.FramesSent())

	// an empty chunked message cannot be sent, and releases the connection
	ck.Equal(framing.ErrEmptyMessage, c.MessageWriter().Close())
	ck.NoError(c.WriteFrame([]byte("x")))
	ck.Equal(int64(2), c.FramesSent())
}

func TestConnOptions(t *testing.T) {
	ck := assert.New(t)
	_, err := New(strings.NewReader(""), &closeBuffer{Buffer: &bytes.Buffer{}},
		WithEncoderOptions(framing.WithChunkSize(1)))
	ck.True(errors.Is(err, framing.ErrChunkSizeOutOfRange))

	_, err = New(nil, nil)
	ck.Error(err)

	c, err := New(strings.NewReader("0123456789]]>]]>"), &closeBuffer{Buffer: &bytes.Buffer{}},
		WithDecoderOptions(framing.WithMaxFrameSize(4)))
	require.NoError(t, err)
	_, err = c.ReadFrame()
	ck.True(framing.IsFatal(err))
	ck.Equal(int64(0), c.FramesReceived())
}
