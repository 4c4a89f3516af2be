package message

import (
	"encoding/xml"

	"github.com/golang/glog"
	"github.com/imdario/mergo"

	"github.com/andaru/netconf-core/xmlutil"
)

// Trace defines a structure for handling codec trace events.
type Trace struct {
	// Decoded is called for every message decoded, with its root element
	// name and encoded size.
	Decoded func(name xml.Name, size int)

	// Encoded is called for every message encoded.
	Encoded func(name xml.Name, size int)

	// Error is called when a message cannot be decoded or encoded.
	Error func(context string, err error)
}

// DefaultLoggingHooks reports codec errors.
var DefaultLoggingHooks = &Trace{
	Error: func(context string, err error) {
		glog.Errorf("message error context:%s err:%v", context, err)
	},
}

// DiagnosticLoggingHooks reports every codec event at verbosity 1.
var DiagnosticLoggingHooks = &Trace{
	Decoded: func(name xml.Name, size int) {
		glog.V(1).Infof("Decoded name:%s size:%d", xmlutil.Clark(name), size)
	},
	Encoded: func(name xml.Name, size int) {
		glog.V(1).Infof("Encoded name:%s size:%d", xmlutil.Clark(name), size)
	},
	Error: func(context string, err error) {
		glog.Errorf("message error context:%s err:%v", context, err)
	},
}

// NoOpLoggingHooks provides set of hooks that do nothing.
var NoOpLoggingHooks = &Trace{
	Decoded: func(name xml.Name, size int) {},
	Encoded: func(name xml.Name, size int) {},
	Error:   func(context string, err error) {},
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
