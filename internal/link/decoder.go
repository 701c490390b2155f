// Package link decodes captured frames down to the UDP payload that is
// handed to the dissection engine.
package link

import (
	"errors"
	"fmt"
	"net/netip"
	"sync/atomic"

	"github.com/google/gopacket/layers"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
)

// Decoder decodes frames and keeps per-layer counters. It holds no
// per-frame state, so one Decoder may be shared by every pipeline worker.
type Decoder struct {
	frames    atomic.Uint64
	ipv4      atomic.Uint64
	ipv6      atomic.Uint64
	udp       atomic.Uint64
	notUDP    atomic.Uint64
	fragments atomic.Uint64
	errors    atomic.Uint64
}

// Stats is a snapshot of the decoder counters.
type Stats struct {
	Frames    uint64
	IPv4      uint64
	IPv6      uint64
	UDP       uint64
	NotUDP    uint64
	Fragments uint64
	Errors    uint64
}

// NewDecoder creates a decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode turns a captured frame into a Packet whose Data is the UDP
// payload (a sub-slice of f.Data) and whose metadata carries the
// addresses, timestamp and frame number.
func (d *Decoder) Decode(f core.Frame) (core.Packet, error) {
	dg, err := d.DecodeDatagram(f.LinkType, f.Data)
	if err != nil {
		return core.Packet{}, err
	}
	wire := f.OrigLen
	if wire == 0 {
		wire = uint32(len(f.Data))
	}
	return core.Packet{
		Data: dg.Payload,
		Meta: core.Metadata{
			Number:    f.Number,
			Timestamp: f.Timestamp,
			SrcAddr:   netip.AddrPortFrom(dg.IP.SrcIP, dg.UDP.SrcPort),
			DstAddr:   netip.AddrPortFrom(dg.IP.DstIP, dg.UDP.DstPort),
			WireLen:   wire,
		},
	}, nil
}

// DecodeDatagram decodes the L2-L4 headers of one frame.
func (d *Decoder) DecodeDatagram(linkType uint32, data []byte) (core.Datagram, error) {
	d.frames.Add(1)
	dg, err := decode(linkType, data)
	switch {
	case err == nil:
		d.udp.Add(1)
	case errors.Is(err, core.ErrNotUDP):
		d.notUDP.Add(1)
	case errors.Is(err, core.ErrFragmented):
		d.fragments.Add(1)
	default:
		d.errors.Add(1)
	}
	switch dg.IP.Version {
	case 4:
		d.ipv4.Add(1)
	case 6:
		d.ipv6.Add(1)
	}
	return dg, err
}

// Stats returns the current counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		Frames:    d.frames.Load(),
		IPv4:      d.ipv4.Load(),
		IPv6:      d.ipv6.Load(),
		UDP:       d.udp.Load(),
		NotUDP:    d.notUDP.Load(),
		Fragments: d.fragments.Load(),
		Errors:    d.errors.Load(),
	}
}

// Supported reports whether frames of the given pcap link type can be
// decoded.
func Supported(linkType uint32) bool {
	if linkType > 0xff {
		return false
	}
	switch layers.LinkType(linkType) {
	case layers.LinkTypeEthernet, layers.LinkTypeLinuxSLL,
		layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6:
		return true
	}
	return false
}

func decode(linkType uint32, data []byte) (core.Datagram, error) {
	var dg core.Datagram
	if !Supported(linkType) {
		return dg, fmt.Errorf("link type %d: %w", linkType, core.ErrUnsupportedLink)
	}
	c := cursor.New(data)

	switch layers.LinkType(linkType) {
	case layers.LinkTypeEthernet:
		eth, err := decodeEthernet(c)
		dg.Ethernet = eth
		if err != nil {
			return dg, err
		}
		if eth.EtherType != etherTypeIPv4 && eth.EtherType != etherTypeIPv6 {
			return dg, fmt.Errorf("ethertype %#04x: %w", eth.EtherType, core.ErrNotUDP)
		}
	case layers.LinkTypeLinuxSLL:
		etherType, err := decodeLinuxSLL(c)
		dg.Ethernet.EtherType = etherType
		if err != nil {
			return dg, err
		}
		if etherType != etherTypeIPv4 && etherType != etherTypeIPv6 {
			return dg, fmt.Errorf("ethertype %#04x: %w", etherType, core.ErrNotUDP)
		}
	}

	ip, payload, err := decodeIP(c)
	dg.IP = ip
	if err != nil {
		return dg, err
	}
	if ip.Protocol != core.IPProtoUDP {
		return dg, fmt.Errorf("ip protocol %d: %w", ip.Protocol, core.ErrNotUDP)
	}

	udp, body, err := decodeUDP(payload)
	dg.UDP = udp
	if err != nil {
		return dg, err
	}
	dg.Payload, _ = body.Bytes(body.Remaining())
	return dg, nil
}
