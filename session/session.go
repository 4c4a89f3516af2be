package session

import (
	"io"

	"github.com/pkg/errors"

	"github.com/andaru/netconf-core/framing"
	"github.com/andaru/netconf-core/message"
	"github.com/andaru/netconf-core/ncerr"
	"github.com/andaru/netconf-core/transport"
)

// ErrEndOfStream is returned by Receive when the peer's input ends
// between messages.
var ErrEndOfStream = errors.New("end of stream")

// New returns a new NETCONF Session
func New(src io.Reader, dst io.WriteCloser, config Config) (*Session, error) {
	conn, err := transport.New(src, dst, config.TransportOptions...)
	if err != nil {
		return nil, err
	}
	codec := config.Codec
	if codec == nil {
		codec = message.NewCodec()
	}
	return &Session{
		Config: &config,
		State:  &State{},
		conn:   conn,
		codec:  codec,
	}, nil
}

// Run executes the Session s, using Handler h
func Run(s *Session, h Handler) {
	// perform the <hello> and <capabilities> exchange
	if s.InitialHandshake() {
		h.OnEstablish(s)
		for s.State.Status == StatusEstablished {
			h.OnMessage(s)
		}
	}
	if s.State.Status == StatusError {
		h.OnError(s)
	}
	s.Close()
	h.OnClose(s)
}

// Session represents a NETCONF session
type Session struct {
	Config *Config
	State  *State

	conn  *transport.Conn
	codec *message.Codec
}

// Handler is the Session handler interface.
// Client and/or server applications implement this interface.
//
// See Run() for usage.
type Handler interface {
	// OnEstablish is called when the session is established.
	// When called, session capabilities processing has completed
	OnEstablish(*Session)
	// OnMessage is called after the session is established
	// and then repeatedly while the session remains in the
	// StatusEstablished state.
	OnMessage(*Session)
	// OnError is called once if the session transitions
	// to the StatusError state.  This can occur initially,
	// instead of OnEstablish, or after the OnEstablish state,
	// indicating a session transport error occurred.
	OnError(*Session)
	// OnClose is called immediately after the session's
	// transport is closed.
	OnClose(*Session)
}

// Config contains Session configuration
type Config struct {
	// ID is the configured session-id. Must be 0 for client sessions
	// and non-0 for server sessions
	ID uint32
	// Capabilities holds our session capabilities
	Capabilities message.Capabilities
	// Codec encodes and decodes the session's messages. A compact
	// codec is used when nil.
	Codec *message.Codec
	// TransportOptions configure the session's frame decoders and
	// encoders.
	TransportOptions []transport.Option
}

// State contains runtime Session state
type State struct {
	// ID is the established session-id. Will be populated during
	// capabilities exchange.
	ID uint32
	// Capabilities holds the remote peer's capabilities
	Capabilities message.Capabilities
	// Status is the session status
	Status Status
	Counters struct {
		// RxMsgs is the number of NETCONF messages received on the session
		RxMsgs int
		// TxMsgs is the number of NETCONF messages sent on the session
		TxMsgs int
	}

	// Opaque is user private data and is not used by the netconf libraries.
	Opaque interface{}

	errs []error
}

// Status is a Session's (present) state.
type Status int

const (
	// StatusInactive is the initial session state, indicating that
	// I/O has not yet been started.
	StatusInactive Status = iota
	// StatusCapabilitiesExchange is set while <hello> messages are
	// exchanged.
	StatusCapabilitiesExchange
	// StatusEstablished is set after capabilities exchange finishes
	// if the session has been successfully established. Otherwise,
	// the state machine will proceed to StatusError.
	StatusEstablished

	// StatusError indicates the session has encountered an error.
	StatusError
	// StatusClosed indicates the session closed normally.
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusCapabilitiesExchange:
		return "capabilities-exchange"
	case StatusEstablished:
		return "established"
	case StatusError:
		return "error"
	case StatusClosed:
		return "closed"
	}
	return "unknown"
}

// Mechanism returns the session's current framing mechanism.
func (s *Session) Mechanism() framing.Mechanism { return s.conn.Mechanism() }

// Codec returns the session's message codec.
func (s *Session) Codec() *message.Codec { return s.codec }

// Receive returns the next message from the peer. A frame over the
// decoder size limit is reported as a too-big transport error.
func (s *Session) Receive() (*message.Message, error) {
	f, err := s.conn.ReadFrame()
	switch {
	case err == io.EOF:
		return nil, ErrEndOfStream
	case errors.Is(err, framing.ErrFrameTooLarge):
		return nil, ncerr.TooBig(ncerr.WithType(ncerr.TypeTransport), ncerr.WithCause(err))
	case err != nil:
		return nil, err
	}
	s.State.Counters.RxMsgs++
	return s.codec.DecodeFrame(f)
}

// Send writes m to the peer as one message.
func (s *Session) Send(m *message.Message) error {
	w := s.conn.MessageWriter()
	err := s.codec.EncodeTo(w, m)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		s.State.Counters.TxMsgs++
	}
	return err
}

// InitialHandshake performs session handshake, capabilities exchange and framing mode selection.
//
// Returns true if the handshake completed successfully, in which
// case the session status will be StatusEstablished; otherwise returns false
// if an error occurred (for either transport or validation reasons), in
// which case Session.Errors will return non-nil and the session status will
// be StatusError.
func (s *Session) InitialHandshake() (ok bool) {
	if s.State.Status == StatusInactive {
		s.State.Status = StatusCapabilitiesExchange
		if s.sendHello(); len(s.State.errs) == 0 {
			s.recvHello()
		}
		ok = len(s.State.errs) == 0
	}
	if !ok {
		s.State.Status = StatusError
	}
	return ok
}

// Close closes the Session
func (s *Session) Close() error {
	if s.State.Status != StatusError {
		s.State.Status = StatusClosed
	}
	err := s.conn.Close()
	if err == io.ErrClosedPipe {
		err = nil
	}
	return err
}

// AddError adds an error to the session state
func (s *Session) AddError(errs ...error) (added int) {
	for _, err := range errs {
		if err != nil {
			s.State.errs = append(s.State.errs, err)
			added++
		}
	}
	return added
}

// Errors returns all session errors
func (s *Session) Errors() []error { return s.State.errs }

// Run executes the session using Handler h
func (s *Session) Run(handler Handler) { Run(s, handler) }

// doCapabilitiesExchange selects the session framing mode based on the
// :base:1.x capabilities seen.
func (s *Session) doCapabilitiesExchange(peer *message.Hello) {
	m, err := peer.Mechanism(s.Config.Capabilities)
	if err == nil {
		err = s.conn.Upgrade(m)
	}
	if s.AddError(err) > 0 {
		s.State.Status = StatusError
		return
	}
	s.State.Status = StatusEstablished
}

func (s *Session) recvHello() {
	m, err := s.Receive()
	var peer *message.Hello
	if err == nil {
		peer, err = m.Hello()
	}
	if s.AddError(err) > 0 {
		s.State.Status = StatusError
		return
	}
	s.State.Capabilities = peer.Capabilities

	// Only a client should receive a <session-id> in the <hello>. With a
	// non-zero s.Config.ID we are a server session and should not.
	switch {
	case peer.SessionID == 0 && s.Config.ID == 0:
		err = errors.New("no session-id received for client session")
	case peer.SessionID != 0 && s.Config.ID != 0:
		err = errors.New("session-id received from client peer")
	case peer.SessionID != 0:
		s.State.ID = peer.SessionID
	default:
		s.State.ID = s.Config.ID
	}
	if s.AddError(err) > 0 {
		s.State.Status = StatusError
		return
	}
	s.doCapabilitiesExchange(peer)
}

// sendHello sends the <hello> message along with any capabilities
// configured on the session and the session-id element if the
// configured ID is non-zero.
func (s *Session) sendHello() {
	hello, err := message.NewHello(message.Hello{
		Capabilities: s.Config.Capabilities,
		SessionID:    s.Config.ID,
	})
	if err == nil {
		err = s.Send(hello)
	}
	if s.AddError(err) > 0 {
		s.State.Status = StatusError
	}
}
