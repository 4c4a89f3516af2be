// Package config holds the framing and codec settings shared by the
// commands, loaded from TOML files.
package config

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"

	"github.com/andaru/netconf-core/framing"
	"github.com/andaru/netconf-core/message"
	"github.com/andaru/netconf-core/schema"
)

// Trace hook sets, by name.
const (
	TraceNone       = "none"
	TraceDefault    = "default"
	TraceDiagnostic = "diagnostic"
)

// Config is the framing and codec configuration.
type Config struct {
	// Framing is the framing mechanism, "eom" or "chunk".
	Framing string `toml:"framing"`
	// ChunkSize is the encoder chunk size.
	ChunkSize int `toml:"chunk_size"`
	// MaxChunkSize is the largest chunk the decoder accepts.
	MaxChunkSize int64 `toml:"max_chunk_size"`
	// MaxFrameSize limits decoded frames; zero is unlimited.
	MaxFrameSize int `toml:"max_frame_size"`
	// Pretty enables pretty printed output.
	Pretty bool   `toml:"pretty"`
	Indent string `toml:"indent"`
	// SchemaFile is the path of a YAML schema context.
	SchemaFile string `toml:"schema_file"`
	// Trace names the trace hooks: "none", "default" or "diagnostic".
	Trace string `toml:"trace"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Framing:      framing.EOM.String(),
		ChunkSize:    framing.DefaultChunkSize,
		MaxChunkSize: framing.MaxChunkSize,
		Indent:       message.DefaultIndent,
		Trace:        TraceDefault,
	}
}

// Load reads the TOML file at path and resolves it against the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.WithStack(err)
	}
	defer f.Close()
	c, err := Decode(f)
	return c, errors.Wrapf(err, "config file %s", path)
}

// Decode reads TOML configuration from r and resolves it against the
// defaults. Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	var c Config
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return c.Resolve()
}

// Resolve returns c with unset fields taken from Default, validated.
func (c Config) Resolve() (Config, error) {
	if err := mergo.Merge(&c, Default()); err != nil {
		return Config{}, errors.WithStack(err)
	}
	return c, c.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.Mechanism(); err != nil {
		return err
	}
	switch {
	case c.ChunkSize < framing.MinChunkSize || c.ChunkSize > framing.MaxChunkSize:
		return errors.Errorf("chunk_size %d out of range [%d, %d]", c.ChunkSize, framing.MinChunkSize, framing.MaxChunkSize)
	case c.MaxChunkSize < 1 || c.MaxChunkSize > framing.MaxChunkSizeRFC6242:
		return errors.Errorf("max_chunk_size %d out of range [1, %d]", c.MaxChunkSize, int64(framing.MaxChunkSizeRFC6242))
	case c.MaxFrameSize < 0:
		return errors.Errorf("max_frame_size %d is negative", c.MaxFrameSize)
	}
	switch c.Trace {
	case TraceNone, TraceDefault, TraceDiagnostic:
	default:
		return errors.Errorf("unknown trace %q", c.Trace)
	}
	return nil
}

// Mechanism returns the configured framing mechanism.
func (c Config) Mechanism() (framing.Mechanism, error) {
	m, err := framing.ParseMechanism(c.Framing)
	return m, errors.Wrap(err, "framing")
}

func (c Config) framingTrace() *framing.Trace {
	switch c.Trace {
	case TraceDefault:
		return framing.DefaultLoggingHooks
	case TraceDiagnostic:
		return framing.DiagnosticLoggingHooks
	}
	return framing.NoOpLoggingHooks
}

func (c Config) messageTrace() *message.Trace {
	switch c.Trace {
	case TraceDefault:
		return message.DefaultLoggingHooks
	case TraceDiagnostic:
		return message.DiagnosticLoggingHooks
	}
	return message.NoOpLoggingHooks
}

// DecoderOptions returns the frame decoder options of c.
func (c Config) DecoderOptions() []framing.DecoderOption {
	return []framing.DecoderOption{
		framing.WithMaxChunkSize(c.MaxChunkSize),
		framing.WithMaxFrameSize(c.MaxFrameSize),
		framing.WithDecoderTrace(c.framingTrace()),
	}
}

// EncoderOptions returns the frame encoder options of c.
func (c Config) EncoderOptions() []framing.EncoderOption {
	return []framing.EncoderOption{
		framing.WithChunkSize(c.ChunkSize),
		framing.WithEncoderTrace(c.framingTrace()),
	}
}

// CodecOptions returns the message codec options of c.
func (c Config) CodecOptions() []message.CodecOption {
	return []message.CodecOption{
		message.WithPretty(c.Pretty),
		message.WithIndent(c.Indent),
		message.WithCodecTrace(c.messageTrace()),
	}
}

// Schema loads the configured schema context, or returns nil when no
// schema file is configured.
func (c Config) Schema() (*schema.Context, error) {
	if c.SchemaFile == "" {
		return nil, nil
	}
	return schema.LoadFile(c.SchemaFile)
}
