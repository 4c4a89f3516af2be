package framing

import (
	"context"

	"github.com/golang/glog"
	"github.com/imdario/mergo"
)

// Trace defines a structure for handling framing trace events.
type Trace struct {
	// FrameDecoded is called for every frame a decoder emits.
	FrameDecoded func(m Mechanism, size int)

	// FrameEncoded is called when an encoder ends a message, with the
	// size of the message body.
	FrameEncoded func(m Mechanism, size int)

	// ChunkSizeDegraded is called when the encoder's allocator cannot
	// supply a buffer of the configured chunk size and a smaller chunk is
	// written instead.
	ChunkSizeDegraded func(configured, effective int)

	// Error is called after a framing error has been detected.
	Error func(context string, err error)
}

// DefaultLoggingHooks reports errors and chunk size degradation.
var DefaultLoggingHooks = &Trace{
	ChunkSizeDegraded: func(configured, effective int) {
		glog.Warningf("chunk size degraded configured:%d effective:%d", configured, effective)
	},
	Error: func(context string, err error) {
		glog.Errorf("framing error context:%s err:%v", context, err)
	},
}

// DiagnosticLoggingHooks reports every framing event at verbosity 1.
var DiagnosticLoggingHooks = &Trace{
	FrameDecoded: func(m Mechanism, size int) {
		glog.V(1).Infof("FrameDecoded mechanism:%s size:%d", m, size)
	},
	FrameEncoded: func(m Mechanism, size int) {
		glog.V(1).Infof("FrameEncoded mechanism:%s size:%d", m, size)
	},
	ChunkSizeDegraded: func(configured, effective int) {
		glog.Warningf("chunk size degraded configured:%d effective:%d", configured, effective)
	},
	Error: func(context string, err error) {
		glog.Errorf("framing error context:%s err:%v", context, err)
	},
}

// NoOpLoggingHooks provides set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	FrameDecoded:      func(m Mechanism, size int) {},
	FrameEncoded:      func(m Mechanism, size int) {},
	ChunkSizeDegraded: func(configured, effective int) {},
	Error:             func(context string, err error) {},
}

type traceContextKey struct{}

// WithTrace returns a new context based on ctx carrying trace.
func WithTrace(ctx context.Context, trace *Trace) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// ContextTrace returns the Trace associated with ctx, with any missing hooks
// set to no-ops. If ctx carries no Trace, NoOpLoggingHooks is returned.
func ContextTrace(ctx context.Context) *Trace {
	trace, _ := ctx.Value(traceContextKey{}).(*Trace)
	return resolveTrace(trace)
}

func resolveTrace(trace *Trace) *Trace {
	if trace == nil {
		return NoOpLoggingHooks
	}
	resolved := *trace
	if err := mergo.Merge(&resolved, NoOpLoggingHooks); err != nil {
		return NoOpLoggingHooks
	}
	return &resolved
}
