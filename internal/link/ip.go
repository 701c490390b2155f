package link

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
)

const (
	ipv4HeaderMinLen = 20
	ipv6HeaderLen    = 40

	ipv6NextFragment = 44
)

// decodeIP decodes an IPv4 or IPv6 header. The returned cursor covers the
// L4 payload, bounded by the IP length field when the capture holds it all
// (Ethernet padding is dropped).
func decodeIP(c *cursor.Cursor) (core.IPHeader, *cursor.Cursor, error) {
	b, err := c.PeekU8(c.Offset())
	if err != nil {
		return core.IPHeader{}, nil, err
	}
	switch version := b >> 4; version {
	case 4:
		return decodeIPv4(c)
	case 6:
		return decodeIPv6(c)
	default:
		return core.IPHeader{}, nil, fmt.Errorf("ip version %d: %w", version, core.ErrMalformedFrame)
	}
}

func decodeIPv4(c *cursor.Cursor) (core.IPHeader, *cursor.Cursor, error) {
	ip := core.IPHeader{Version: 4}
	hdr, err := c.Bytes(ipv4HeaderMinLen)
	if err != nil {
		return ip, nil, err
	}

	// IHL is in 32-bit words
	headerLen := int(hdr[0]&0x0f) * 4
	if headerLen < ipv4HeaderMinLen {
		return ip, nil, fmt.Errorf("ipv4 header length %d: %w", headerLen, core.ErrMalformedFrame)
	}
	ip.TotalLen = binary.BigEndian.Uint16(hdr[2:4])
	ip.TTL = hdr[8]
	ip.Protocol = hdr[9]
	ip.SrcIP = netip.AddrFrom4([4]byte(hdr[12:16]))
	ip.DstIP = netip.AddrFrom4([4]byte(hdr[16:20]))

	// Options
	if err := c.Skip(headerLen - ipv4HeaderMinLen); err != nil {
		return ip, nil, err
	}
	if int(ip.TotalLen) < headerLen {
		return ip, nil, fmt.Errorf("ipv4 total length %d below header length %d: %w",
			ip.TotalLen, headerLen, core.ErrMalformedFrame)
	}

	// MF flag or a non-zero fragment offset
	if binary.BigEndian.Uint16(hdr[6:8])&0x3fff != 0 {
		return ip, nil, fmt.Errorf("ipv4 %s > %s: %w", ip.SrcIP, ip.DstIP, core.ErrFragmented)
	}
	return ip, payload(c, int(ip.TotalLen)-headerLen), nil
}

func decodeIPv6(c *cursor.Cursor) (core.IPHeader, *cursor.Cursor, error) {
	ip := core.IPHeader{Version: 6}
	hdr, err := c.Bytes(ipv6HeaderLen)
	if err != nil {
		return ip, nil, err
	}
	payloadLen := binary.BigEndian.Uint16(hdr[4:6])
	ip.TotalLen = ipv6HeaderLen + payloadLen
	ip.Protocol = hdr[6] // next header
	ip.TTL = hdr[7]      // hop limit
	ip.SrcIP = netip.AddrFrom16([16]byte(hdr[8:24]))
	ip.DstIP = netip.AddrFrom16([16]byte(hdr[24:40]))

	// Extension headers other than the fragment header are not walked;
	// such packets surface as non-UDP.
	if ip.Protocol == ipv6NextFragment {
		return ip, nil, fmt.Errorf("ipv6 %s > %s: %w", ip.SrcIP, ip.DstIP, core.ErrFragmented)
	}
	return ip, payload(c, int(payloadLen)), nil
}

// payload bounds the rest of c by a length field, keeping what was
// captured when the frame was cut by the snap length.
func payload(c *cursor.Cursor, n int) *cursor.Cursor {
	n = min(n, c.Remaining())
	p, _ := c.Take(n)
	return p
}
