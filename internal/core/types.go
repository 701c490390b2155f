// Package core defines core types with zero external dependencies.
package core

import "net/netip"

// EthernetHeader represents L2 Ethernet frame header.
type EthernetHeader struct {
	SrcMAC    [6]byte
	DstMAC    [6]byte
	EtherType uint16   // 0x0800=IPv4, 0x86DD=IPv6, 0x8100=VLAN
	VLANs     []uint16 // 0~2 VLAN IDs (QinQ scenarios have 2)
}

// IPHeader represents L3 IP header (IPv4/IPv6).
type IPHeader struct {
	Version  uint8
	SrcIP    netip.Addr
	DstIP    netip.Addr
	Protocol uint8 // UDP=17
	TTL      uint8
	TotalLen uint16
}

// UDPHeader represents the L4 UDP header.
type UDPHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16
}

// Datagram is the result of L2-L4 decoding of one frame.
type Datagram struct {
	Ethernet EthernetHeader
	IP       IPHeader
	UDP      UDPHeader
	Payload  []byte // zero-copy slice of the frame
}

// IP protocol numbers.
const (
	IPProtoUDP uint8 = 17
)
