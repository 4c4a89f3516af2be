package framing

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Mechanism is a NETCONF transport framing mechanism.
type Mechanism int

const (
	// EOM is the :base:1.0 end-of-message delimited framing mechanism.
	EOM Mechanism = iota
	// Chunk is the :base:1.1 chunked framing mechanism.
	Chunk
)

const (
	// CapabilityBase10 is the :base:1.0 capability URI.
	CapabilityBase10 = "urn:ietf:params:netconf:base:1.0"
	// CapabilityBase11 is the :base:1.1 capability URI.
	CapabilityBase11 = "urn:ietf:params:netconf:base:1.1"
)

func (m Mechanism) String() string {
	switch m {
	case EOM:
		return "eom"
	case Chunk:
		return "chunk"
	default:
		return "Mechanism(" + strconv.Itoa(int(m)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mechanism) MarshalText() ([]byte, error) {
	if m != EOM && m != Chunk {
		return nil, errors.Errorf("invalid framing mechanism %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mechanism) UnmarshalText(b []byte) error {
	v, err := ParseMechanism(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMechanism parses a framing mechanism name. Both mechanism names
// ("eom", "chunk") and protocol versions ("1.0", "base:1.1") are accepted.
func ParseMechanism(s string) (Mechanism, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eom", "end-of-message", "1.0", "base:1.0", ":base:1.0", CapabilityBase10:
		return EOM, nil
	case "chunk", "chunked", "1.1", "base:1.1", ":base:1.1", CapabilityBase11:
		return Chunk, nil
	}
	return EOM, errors.Errorf("unknown framing mechanism %q", s)
}

// MechanismFor selects the framing mechanism for a session given the local
// and remote <hello> capabilities. Chunked framing is used when both peers
// offer :base:1.1, otherwise both peers must offer :base:1.0.
func MechanismFor(local, remote []string) (Mechanism, error) {
	switch {
	case hasCapability(local, CapabilityBase11) && hasCapability(remote, CapabilityBase11):
		return Chunk, nil
	case hasCapability(local, CapabilityBase10) && hasCapability(remote, CapabilityBase10):
		return EOM, nil
	}
	return EOM, errors.New("session failed to negotiate framing mode")
}

func hasCapability(caps []string, want string) bool {
	for _, c := range caps {
		// capabilities may carry parameters, e.g. "...:base:1.1?foo=bar"
		if c = strings.TrimSpace(c); c == want || strings.HasPrefix(c, want+"?") {
			return true
		}
	}
	return false
}
