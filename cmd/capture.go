package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/export"
	"firestige.xyz/dissector/internal/metrics"
	"firestige.xyz/dissector/internal/pipeline"
	"firestige.xyz/dissector/internal/reporter"
	"firestige.xyz/dissector/internal/source"
)

type captureOptions struct {
	iface  string
	filter string
}

func newCaptureCmd(g *globalOptions) *cobra.Command {
	o := &captureOptions{}
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture and dissect traffic with the configured source and reporters",
		Long: `Run the capture section of the configuration: read frames from a live
interface (libpcap or AF_PACKET) or a file, dissect them on the worker pool
and hand the records to the enabled reporters. When metrics are enabled
the Prometheus endpoint also serves the Art-Net node directory at
/artnet/nodes.

Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.iface != "" {
				g.cfg.Capture.Interface = o.iface
			}
			if cmd.Flags().Changed("filter") {
				g.cfg.Capture.BPFFilter = o.filter
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runCapture(ctx, cmd, g.cfg)
		},
	}
	cmd.Flags().StringVarP(&o.iface, "interface", "i", "", "override capture.interface")
	cmd.Flags().StringVar(&o.filter, "filter", "", "override capture.bpf_filter")
	return cmd
}

func runCapture(ctx context.Context, cmd *cobra.Command, cfg *config.GlobalConfig) error {
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	reps, err := newReporters(cmd, cfg.Reporters)
	if err != nil {
		return err
	}
	defer func() {
		if err := reps.Close(context.Background()); err != nil {
			slog.Error("closing reporters failed", "error", err)
		}
	}()

	nodes := pipeline.NewNodeDirectory(config.Duration(cfg.Pipeline.NodeTTL))
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		srv.Handle("/artnet/nodes", nodes)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				slog.Error("error stopping metrics server", "error", err)
			}
		}()
	}

	src, err := source.Open(cfg.Capture)
	if err != nil {
		return err
	}
	defer src.Close()

	p := pipeline.NewBuilder().
		WithSource(src).
		WithEngine(engine).
		WithReporter(reps).
		WithNodes(nodes).
		WithWorkers(cfg.Pipeline.Workers).
		WithBufferSize(cfg.Pipeline.BufferSize).
		WithExport(export.Options{HexDump: cfg.Reporters.Console.HexDump}).
		WithDropWhenFull(cfg.Capture.Source != "file").
		Build()
	if err := p.Run(ctx); err != nil {
		return err
	}
	slog.Info("art-net nodes seen", "count", nodes.Len())
	return reps.Flush(context.Background())
}

// newReporters builds the enabled reporters.
func newReporters(cmd *cobra.Command, cfg config.ReportersConfig) (*reporter.Fanout, error) {
	var reps []reporter.Reporter
	if cfg.Console.Enabled {
		format, err := export.ParseFormat(cfg.Console.Format)
		if err != nil {
			return nil, err
		}
		reps = append(reps, reporter.NewConsole(cmd.OutOrStdout(), format))
	}
	if cfg.Kafka.Enabled {
		k, err := reporter.NewKafka(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		reps = append(reps, k)
	}
	if len(reps) == 0 {
		slog.Warn("no reporter enabled, records are dissected and counted only")
	}
	return reporter.NewFanout(reps...), nil
}
