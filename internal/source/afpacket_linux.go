//go:build linux

package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/dissector/internal/config"
)

// OpenAFPacket starts a TPACKET_V3 memory-mapped capture on
// cfg.Interface. With a non-zero FanoutID several processes can share the
// interface load.
func OpenAFPacket(cfg config.CaptureConfig) (Source, error) {
	if cfg.Interface == "" {
		return nil, fmt.Errorf("capture.interface is required for afpacket capture")
	}
	ring, err := ringSize(cfg.BufferSizeMB, cfg.Snaplen, os.Getpagesize())
	if err != nil {
		return nil, err
	}
	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(cfg.Interface),
		afpacket.OptFrameSize(ring.frameSize),
		afpacket.OptBlockSize(ring.blockSize),
		afpacket.OptNumBlocks(ring.numBlocks),
		afpacket.OptPollTimeout(config.Duration(cfg.Timeout)),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("open afpacket on %s: %w", cfg.Interface, err)
	}
	if cfg.FanoutID > 0 {
		if err := tp.SetFanout(afpacket.FanoutHashWithDefrag, cfg.FanoutID); err != nil {
			tp.Close()
			return nil, fmt.Errorf("set fanout %d: %w", cfg.FanoutID, err)
		}
	}
	if cfg.BPFFilter != "" {
		prog, err := compileBPF(cfg.BPFFilter, ring.frameSize)
		if err != nil {
			tp.Close()
			return nil, err
		}
		if err := tp.SetBPF(prog); err != nil {
			tp.Close()
			return nil, fmt.Errorf("set BPF filter %q: %w", cfg.BPFFilter, err)
		}
	}
	slog.Info("afpacket capture started",
		"interface", cfg.Interface,
		"frame_size", ring.frameSize,
		"block_size", ring.blockSize,
		"blocks", ring.numBlocks,
		"fanout", cfg.FanoutID,
	)

	return &reader{
		name:     "afpacket",
		src:      tp,
		linkType: uint32(layers.LinkTypeEthernet),
		retry: func(err error) bool {
			return errors.Is(err, afpacket.ErrTimeout)
		},
		close: func() error {
			tp.Close()
			return nil
		},
	}, nil
}

// compileBPF compiles expr with libpcap and converts it to the raw form
// the socket filter expects.
func compileBPF(expr string, snaplen int) ([]bpf.RawInstruction, error) {
	insns, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snaplen, expr)
	if err != nil {
		return nil, fmt.Errorf("compile BPF filter %q: %w", expr, err)
	}
	raw := make([]bpf.RawInstruction, len(insns))
	for i, in := range insns {
		raw[i] = bpf.RawInstruction{Op: in.Code, Jt: in.Jt, Jf: in.Jf, K: in.K}
	}
	return raw, nil
}
