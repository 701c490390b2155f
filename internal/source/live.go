package source

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/gopacket/pcap"

	"firestige.xyz/dissector/internal/config"
)

// OpenLive starts a libpcap capture on cfg.Interface with cfg.BPFFilter
// applied in the kernel.
func OpenLive(cfg config.CaptureConfig) (Source, error) {
	if cfg.Interface == "" {
		return nil, fmt.Errorf("capture.interface is required for live capture")
	}
	handle, err := pcap.OpenLive(cfg.Interface, int32(cfg.Snaplen), cfg.Promiscuous, config.Duration(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("open live capture on %s: %w", cfg.Interface, err)
	}
	if cfg.BPFFilter != "" {
		if err := handle.SetBPFFilter(cfg.BPFFilter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("set BPF filter %q: %w", cfg.BPFFilter, err)
		}
	}
	slog.Info("live capture started", "interface", cfg.Interface, "filter", cfg.BPFFilter, "snaplen", cfg.Snaplen)

	return &reader{
		name:     "live",
		src:      handle,
		linkType: uint32(handle.LinkType()),
		retry: func(err error) bool {
			return errors.Is(err, pcap.NextErrorTimeoutExpired)
		},
		close: func() error {
			if stats, err := handle.Stats(); err == nil {
				slog.Info("live capture stopped",
					"interface", cfg.Interface,
					"received", stats.PacketsReceived,
					"dropped", stats.PacketsDropped,
				)
			}
			handle.Close()
			return nil
		},
	}, nil
}
