// Package core defines core data structures with zero external dependencies.
package core

import (
	"net/netip"
	"time"
)

// Frame is a captured link-layer frame, zero-copy reference to the capture buffer.
type Frame struct {
	Data       []byte    // Raw frame data
	Timestamp  time.Time // Capture timestamp
	CaptureLen uint32    // Captured length
	OrigLen    uint32    // Original length on the wire
	LinkType   uint32    // pcap LINKTYPE_* value
	Number     uint64    // 1-based frame number within the source
}

// Packet is the unit handed to the dissection engine: an immutable byte
// sequence plus the metadata the transport layer knows about it.
// The engine borrows Data for the duration of one call and never mutates it.
type Packet struct {
	Data []byte
	Meta Metadata
}

// Metadata describes where a Packet came from.
type Metadata struct {
	Number    uint64
	Timestamp time.Time
	SrcAddr   netip.AddrPort
	DstAddr   netip.AddrPort
	WireLen   uint32

	// Protocol forces a registered protocol by name; empty means resolve
	// by port and heuristics.
	Protocol string
}

// FlowKey identifies the datagram flow a packet belongs to.
// Packets of one flow are always dissected in arrival order.
func (m Metadata) FlowKey() string {
	if !m.SrcAddr.IsValid() {
		return ""
	}
	return m.SrcAddr.String() + ">" + m.DstAddr.String()
}

// Record is the final output handed to reporters.
type Record struct {
	Number    uint64
	Timestamp time.Time
	SrcAddr   netip.AddrPort
	DstAddr   netip.AddrPort
	Protocol  string
	Info      string

	// Labels: per-record annotations, see labels.go
	Labels Labels

	// Body is the exported field tree (see internal/export).
	Body any
}
