// Package pipeline connects a capture source to the dissection engine and
// the reporters. Frames are decoded down to UDP on the reading goroutine
// and sharded by flow onto workers, so the packets of one flow are always
// dissected and reported in capture order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/serialx/hashring"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/tree"
	"firestige.xyz/dissector/internal/export"
	"firestige.xyz/dissector/internal/link"
	"firestige.xyz/dissector/internal/metrics"
	"firestige.xyz/dissector/internal/source"
)

// Reporter receives the records produced by the workers. It must be safe
// for concurrent use.
type Reporter interface {
	Report(ctx context.Context, r *core.Record) error
}

// Config contains pipeline configuration.
type Config struct {
	Source   source.Source
	Engine   *decoder.Engine
	Reporter Reporter
	Nodes    *NodeDirectory // optional Art-Net node directory

	Workers    int
	BufferSize int            // per-worker queue capacity
	Export     export.Options // record body rendering
	Protocol   string         // dissect every packet as this protocol
	Limit      uint64         // stop after this many frames, 0 = unlimited

	// DropWhenFull drops packets instead of blocking the reader when a
	// worker queue is full. Live captures set it so the reader never
	// falls behind the kernel.
	DropWhenFull bool
}

// Pipeline is one source-to-reporter run.
type Pipeline struct {
	cfg     Config
	link    *link.Decoder
	ring    *hashring.HashRing
	nodes   []string
	queues  []chan core.Packet
	metrics Metrics
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	p := &Pipeline{
		cfg:    cfg,
		link:   link.NewDecoder(),
		nodes:  make([]string, cfg.Workers),
		queues: make([]chan core.Packet, cfg.Workers),
	}
	for i := range p.nodes {
		p.nodes[i] = "worker-" + strconv.Itoa(i)
		p.queues[i] = make(chan core.Packet, cfg.BufferSize)
	}
	p.ring = hashring.New(p.nodes)
	return p
}

// Run reads the source until it is exhausted, the frame limit is reached
// or ctx is cancelled, then waits for the workers to drain their queues.
// It does not close the source.
func (p *Pipeline) Run(ctx context.Context) error {
	if lt := p.cfg.Source.LinkType(); !link.Supported(lt) {
		return fmt.Errorf("link type %d: %w", lt, core.ErrUnsupportedLink)
	}
	slog.Info("pipeline starting", "source", p.cfg.Source.Name(), "workers", len(p.queues))

	var wg sync.WaitGroup
	for i, q := range p.queues {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.work(ctx, i, q)
		}()
	}

	err := p.read(ctx)
	for _, q := range p.queues {
		close(q)
	}
	wg.Wait()

	st := p.Stats()
	slog.Info("pipeline stopped",
		"frames", st.Frames,
		"dissected", st.Dissected,
		"skipped", st.Skipped,
		"dropped", st.Dropped,
		"report_errors", st.ReportErrors,
	)
	return err
}

// read is the capture loop. It returns nil on a clean end of input.
func (p *Pipeline) read(ctx context.Context) error {
	for p.cfg.Limit == 0 || p.metrics.Frames.Load() < p.cfg.Limit {
		f, err := p.cfg.Source.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, core.ErrSourceClosed):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			return err
		}
		p.metrics.Frames.Add(1)

		pkt, err := p.link.Decode(f)
		if err != nil {
			p.metrics.Skipped.Add(1)
			metrics.LinkSkippedTotal.WithLabelValues(skipReason(err)).Inc()
			slog.Debug("frame skipped", "frame", f.Number, "error", err)
			continue
		}
		pkt.Meta.Protocol = p.cfg.Protocol
		p.dispatch(ctx, pkt)
	}
	return nil
}

// dispatch queues pkt on the worker that owns its flow.
func (p *Pipeline) dispatch(ctx context.Context, pkt core.Packet) {
	i := p.shard(pkt.Meta.FlowKey())
	if p.cfg.DropWhenFull {
		select {
		case p.queues[i] <- pkt:
		default:
			p.metrics.Dropped.Add(1)
			metrics.PipelineDropsTotal.WithLabelValues(p.nodes[i]).Inc()
		}
		return
	}
	select {
	case p.queues[i] <- pkt:
	case <-ctx.Done():
	}
}

func (p *Pipeline) shard(key string) int {
	if len(p.nodes) == 1 {
		return 0
	}
	node, ok := p.ring.GetNode(key)
	if !ok {
		return 0
	}
	for i, n := range p.nodes {
		if n == node {
			return i
		}
	}
	return 0
}

func (p *Pipeline) work(ctx context.Context, id int, q <-chan core.Packet) {
	for pkt := range q {
		p.process(ctx, &pkt)
	}
	slog.Debug("worker stopped", "worker", id)
}

// process dissects one packet and hands the record to the reporter.
func (p *Pipeline) process(ctx context.Context, pkt *core.Packet) {
	start := time.Now()
	t := p.cfg.Engine.Dissect(pkt)
	p.observe(t, time.Since(start))

	if p.cfg.Nodes != nil {
		p.cfg.Nodes.Observe(t)
	}
	if p.cfg.Reporter == nil {
		return
	}
	if err := p.cfg.Reporter.Report(ctx, export.Record(t, p.cfg.Export)); err != nil {
		p.metrics.ReportErrors.Add(1)
		return
	}
	p.metrics.Reported.Add(1)
}

func (p *Pipeline) observe(t *tree.Tree, elapsed time.Duration) {
	proto := t.Protocol()
	p.metrics.Dissected.Add(1)
	metrics.PacketsDissectedTotal.WithLabelValues(proto).Inc()
	metrics.DissectLatencySeconds.WithLabelValues(proto).Observe(elapsed.Seconds())
	if op := t.Opcode(); op != "" {
		metrics.OpcodesTotal.WithLabelValues(proto, op).Inc()
	}
	for _, d := range t.Diagnostics() {
		p.metrics.Diagnostics.Add(1)
		metrics.DiagnosticsTotal.WithLabelValues(proto, d.Severity.String(), d.Code).Inc()
	}
}

// Stats returns the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return p.metrics.snapshot()
}

// LinkStats returns the link layer decoder counters.
func (p *Pipeline) LinkStats() link.Stats {
	return p.link.Stats()
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, core.ErrNotUDP):
		return "not_udp"
	case errors.Is(err, core.ErrFragmented):
		return "fragment"
	case errors.Is(err, core.ErrUnsupportedLink):
		return "unsupported"
	case errors.Is(err, core.ErrTruncated):
		return "truncated"
	}
	return "malformed"
}
