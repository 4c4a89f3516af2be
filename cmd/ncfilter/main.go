// ncfilter applies NETCONF subtree filters to XML documents, and frames
// or deframes NETCONF message streams.
//
//	ncfilter filter --filter get.xml --data running.xml [--schema schema.yaml]
//	ncfilter frame --framing chunk < message.xml
//	ncfilter deframe --framing chunk < session.log
//
// The filter file holds either a <filter> element or a <get>/<get-config>
// <rpc> carrying one. Data files hold a <data> container, an <rpc-reply>
// or a <notification>.
package main

import (
	goflag "flag"
	"fmt"
	"io"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andaru/netconf-core/config"
	"github.com/andaru/netconf-core/framing"
	"github.com/andaru/netconf-core/message"
	"github.com/andaru/netconf-core/subtree"
)

func main() {
	defer glog.Flush()
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCommand(stdin, stdout, stderr)
	// cobra reads os.Args when given nil
	root.SetArgs(append([]string{}, args...))
	return root.Execute()
}

// invocation is the state of one command run.
type invocation struct {
	cfg    config.Config
	stdin  io.Reader
	stdout io.Writer

	configPath string
	filterPath string
	dataPath   string
	raw        bool
	args       []string
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	inv := &invocation{stdin: stdin, stdout: stdout}
	root := &cobra.Command{
		Use:   "ncfilter",
		Short: "Apply NETCONF subtree filters and frame NETCONF message streams",
		Long: `ncfilter applies RFC6241 subtree filters to XML data documents, and
frames or deframes RFC6242 NETCONF message streams.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog logs a warning on every line until the Go flag set is parsed
			_ = goflag.CommandLine.Parse(nil)
			inv.args = args
			return inv.configure(cmd.Flags())
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&inv.configPath, "config", "c", "", "TOML configuration file")
	pf.String("framing", "", `framing mechanism, "eom" or "chunk"`)
	pf.Int("chunk-size", 0, "chunk size for chunked framing")
	pf.Int("max-frame-size", 0, "largest frame accepted, zero for no limit")
	pf.String("schema", "", "YAML schema file used to resolve filter namespaces")
	pf.Bool("pretty", false, "indent XML output")
	pf.String("trace", "", `trace hooks, "none", "default" or "diagnostic"`)
	// glog's flags, e.g. --v and --logtostderr
	pf.AddGoFlagSet(goflag.CommandLine)

	filterCmd := &cobra.Command{
		Use:   "filter --filter FILE --data FILE",
		Short: "Apply a subtree filter to a data document",
		Long: `Apply a subtree filter to a data document and print the result.

The filter file holds either a <filter> element or an <rpc> whose operation
carries one. The data file holds a container element such as <data>, an
<rpc-reply> or a <notification>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error { return inv.filter() },
	}
	filterCmd.Flags().StringVarP(&inv.filterPath, "filter", "f", "", "filter document")
	filterCmd.Flags().StringVarP(&inv.dataPath, "data", "d", "", "data document")

	frameCmd := &cobra.Command{
		Use:   "frame [FILE...]",
		Short: "Frame the messages in the named files, or stdin",
		RunE:  func(cmd *cobra.Command, args []string) error { return inv.frame() },
	}

	deframeCmd := &cobra.Command{
		Use:   "deframe",
		Short: "Decode a framed message stream from stdin",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return inv.deframe() },
	}
	deframeCmd.Flags().BoolVar(&inv.raw, "raw", false, "write frames without decoding them as XML")

	root.AddCommand(filterCmd, frameCmd, deframeCmd)
	return root
}

// configure loads the configuration file, if any, and overrides it with
// the flags set on the command line.
func (inv *invocation) configure(fs *pflag.FlagSet) error {
	cfg := config.Default()
	if inv.configPath != "" {
		var err error
		if cfg, err = config.Load(inv.configPath); err != nil {
			return err
		}
	}
	if fs.Changed("framing") {
		cfg.Framing, _ = fs.GetString("framing")
	}
	if fs.Changed("chunk-size") {
		cfg.ChunkSize, _ = fs.GetInt("chunk-size")
	}
	if fs.Changed("max-frame-size") {
		cfg.MaxFrameSize, _ = fs.GetInt("max-frame-size")
	}
	if fs.Changed("schema") {
		cfg.SchemaFile, _ = fs.GetString("schema")
	}
	if fs.Changed("pretty") {
		cfg.Pretty, _ = fs.GetBool("pretty")
	}
	if fs.Changed("trace") {
		cfg.Trace, _ = fs.GetString("trace")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	inv.cfg = cfg
	glog.V(1).Infof("ncfilter: framing=%s chunk_size=%d schema=%q", cfg.Framing, cfg.ChunkSize, cfg.SchemaFile)
	return nil
}

func (inv *invocation) codec() *message.Codec {
	return message.NewCodec(inv.cfg.CodecOptions()...)
}

func (inv *invocation) decodeFile(c *message.Codec, path string) (*message.Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	m, err := c.Decode(b)
	return m, errors.Wrap(err, path)
}

func (inv *invocation) filter() error {
	if inv.filterPath == "" || inv.dataPath == "" {
		return errors.New("filter requires both --filter and --data")
	}
	sc, err := inv.cfg.Schema()
	if err != nil {
		return err
	}
	c := inv.codec()

	fm, err := inv.decodeFile(c, inv.filterPath)
	if err != nil {
		return err
	}
	var f *subtree.Filter
	if fm.Name().Local == "filter" {
		f, err = subtree.ReadNode(sc, fm.Root())
	} else {
		f, err = fm.Filter(sc)
	}
	if err != nil {
		return errors.Wrap(err, inv.filterPath)
	}
	if f == nil {
		return errors.Errorf("%s: no subtree filter found", inv.filterPath)
	}

	dm, err := inv.decodeFile(c, inv.dataPath)
	if err != nil {
		return err
	}
	switch {
	case dm.IsNotification():
		out := subtree.ApplyNotification(f, dm.Root())
		if out == nil {
			glog.V(1).Infof("notification %s filtered out", inv.dataPath)
			return nil
		}
		return inv.writeNode(c, out)
	case dm.IsReply():
		data := dm.Data()
		if data == nil {
			return errors.Errorf("%s: reply has no <data> element", inv.dataPath)
		}
		return inv.writeNode(c, subtree.Apply(f, data))
	}
	return inv.writeNode(c, subtree.Apply(f, dm.Root()))
}

func (inv *invocation) writeNode(c *message.Codec, n *xmlquery.Node) error {
	if err := c.EncodeNode(inv.stdout, n); err != nil {
		return err
	}
	_, err := io.WriteString(inv.stdout, "\n")
	return errors.WithStack(err)
}

func (inv *invocation) frame() error {
	m, err := inv.cfg.Mechanism()
	if err != nil {
		return err
	}
	enc, err := framing.NewEncoder(inv.stdout, m, inv.cfg.EncoderOptions()...)
	if err != nil {
		return err
	}
	paths := inv.args
	if len(paths) == 0 {
		b, err := io.ReadAll(inv.stdin)
		if err != nil {
			return errors.WithStack(err)
		}
		return enc.WriteFrame(b)
	}
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := enc.WriteFrame(b); err != nil {
			return errors.Wrap(err, path)
		}
	}
	if n := enc.Degraded(); n > 0 {
		glog.Warningf("%d chunks written below the configured chunk size", n)
	}
	return nil
}

func (inv *invocation) deframe() error {
	m, err := inv.cfg.Mechanism()
	if err != nil {
		return err
	}
	c := inv.codec()
	r := framing.NewFrameReader(inv.stdin, m, inv.cfg.DecoderOptions()...)
	for count := 0; ; count++ {
		f, err := r.ReadFrame()
		if err == io.EOF {
			glog.V(1).Infof("deframed %d messages", count)
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "message %d", count+1)
		}
		if inv.raw {
			if _, err := inv.stdout.Write(append(f, '\n')); err != nil {
				return errors.WithStack(err)
			}
			continue
		}
		msg, err := c.DecodeFrame(f)
		if err != nil {
			return errors.Wrapf(err, "message %d", count+1)
		}
		if err := inv.writeNode(c, msg.Document()); err != nil {
			return err
		}
	}
}
