package link

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
)

const udpHeaderLen = 8

// decodeUDP decodes a UDP header and returns the payload cursor, bounded
// by the UDP length field when it fits the captured bytes.
func decodeUDP(c *cursor.Cursor) (core.UDPHeader, *cursor.Cursor, error) {
	var udp core.UDPHeader
	hdr, err := c.Bytes(udpHeaderLen)
	if err != nil {
		return udp, nil, err
	}
	udp.SrcPort = binary.BigEndian.Uint16(hdr[0:2])
	udp.DstPort = binary.BigEndian.Uint16(hdr[2:4])
	// Length includes the header
	udp.Length = binary.BigEndian.Uint16(hdr[4:6])
	udp.Checksum = binary.BigEndian.Uint16(hdr[6:8])

	if udp.Length < udpHeaderLen {
		return udp, nil, fmt.Errorf("udp length %d: %w", udp.Length, core.ErrMalformedFrame)
	}
	return udp, payload(c, int(udp.Length)-udpHeaderLen), nil
}
