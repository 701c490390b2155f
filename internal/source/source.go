// Package source reads link-layer frames from capture files and network
// interfaces.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/gopacket"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/metrics"
)

// Source yields frames in capture order. Next returns io.EOF when a file
// is exhausted and core.ErrSourceClosed once Close has been called.
type Source interface {
	Name() string
	LinkType() uint32
	Next(ctx context.Context) (core.Frame, error)
	Close() error
}

// Open builds the source selected by cfg.Source.
func Open(cfg config.CaptureConfig) (Source, error) {
	switch cfg.Source {
	case "file":
		return OpenFile(cfg.Path)
	case "live":
		return OpenLive(cfg)
	case "afpacket":
		return OpenAFPacket(cfg)
	}
	return nil, fmt.Errorf("unknown capture source %q: %w", cfg.Source, core.ErrConfigInvalid)
}

// reader turns any gopacket data source into a Source.
type reader struct {
	name     string
	src      gopacket.PacketDataSource
	linkType uint32

	// retry reports errors that mean "nothing yet", such as a read timeout.
	retry func(error) bool
	close func() error

	number    uint64
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (r *reader) Name() string     { return r.name }
func (r *reader) LinkType() uint32 { return r.linkType }

// Next reads the next frame. Frames are numbered from 1.
func (r *reader) Next(ctx context.Context) (core.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return core.Frame{}, err
		}
		if r.closed.Load() {
			return core.Frame{}, core.ErrSourceClosed
		}
		data, ci, err := r.src.ReadPacketData()
		if err != nil {
			if r.retry != nil && r.retry(err) {
				continue
			}
			if r.closed.Load() {
				return core.Frame{}, core.ErrSourceClosed
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return core.Frame{}, io.EOF
			}
			return core.Frame{}, fmt.Errorf("%s: read frame: %w", r.name, err)
		}
		r.number++
		metrics.CaptureFramesTotal.WithLabelValues(r.name).Inc()
		return core.Frame{
			Data:       data,
			Timestamp:  ci.Timestamp,
			CaptureLen: uint32(ci.CaptureLength),
			OrigLen:    uint32(ci.Length),
			LinkType:   r.linkType,
			Number:     r.number,
		}, nil
	}
}

func (r *reader) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		if r.close != nil {
			r.closeErr = r.close()
		}
	})
	return r.closeErr
}
