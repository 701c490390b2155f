package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/export"
	"firestige.xyz/dissector/internal/pipeline"
	"firestige.xyz/dissector/internal/reporter"
	"firestige.xyz/dissector/internal/source"
)

type dissectOptions struct {
	format   string
	hex      string
	protocol string
	hexdump  bool
	limit    uint64
	workers  int
}

func newDissectCmd(g *globalOptions) *cobra.Command {
	o := &dissectOptions{}
	cmd := &cobra.Command{
		Use:   "dissect [FILE]",
		Short: "Dissect a capture file or a hex packet",
		Long: `Dissect every UDP packet of a pcap or pcapng file, or a single packet
given as hex with --hex.

Examples:
  dissector dissect show.pcapng
  dissector dissect --format json --limit 10 show.pcap
  dissector dissect --hex "41 72 74 2d 4e 65 74 00 00 20 00 0e"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDissect(cmd, g, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.format, "format", "f", "text", "output format: text, json or yaml")
	f.StringVar(&o.hex, "hex", "", "dissect this hex packet instead of a file")
	f.StringVarP(&o.protocol, "protocol", "p", "", "dissect every packet as this protocol")
	f.BoolVar(&o.hexdump, "hexdump", false, "append a hex dump of each packet")
	f.Uint64VarP(&o.limit, "limit", "n", 0, "stop after this many frames (0 = all)")
	f.IntVarP(&o.workers, "workers", "w", 1, "dissection workers; output of different flows may interleave when > 1")
	return cmd
}

func runDissect(cmd *cobra.Command, g *globalOptions, o *dissectOptions, args []string) error {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	engine, err := newEngine(g.cfg)
	if err != nil {
		return err
	}
	if err := checkProtocol(engine, o.protocol); err != nil {
		return err
	}
	opts := export.Options{HexDump: o.hexdump}

	if o.hex != "" {
		data, err := parseHex(o.hex)
		if err != nil {
			return err
		}
		t := engine.Dissect(&core.Packet{Data: data, Meta: core.Metadata{Protocol: o.protocol}})
		return export.Write(cmd.OutOrStdout(), format, t, opts)
	}
	if len(args) != 1 {
		return fmt.Errorf("a capture file or --hex is required")
	}

	src, err := source.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	p := pipeline.NewBuilder().
		WithSource(src).
		WithEngine(engine).
		WithReporter(reporter.NewConsole(cmd.OutOrStdout(), format)).
		WithWorkers(o.workers).
		WithBufferSize(g.cfg.Pipeline.BufferSize).
		WithExport(opts).
		WithProtocol(o.protocol).
		WithLimit(o.limit).
		Build()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.Run(ctx)
}

func checkProtocol(e *decoder.Engine, name string) error {
	if name == "" {
		return nil
	}
	if _, ok := e.Registry().Find(name); !ok {
		return fmt.Errorf("protocol %q: %w", name, core.ErrProtocolNotFound)
	}
	return nil
}
