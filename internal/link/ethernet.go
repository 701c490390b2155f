package link

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
)

const (
	// Ethernet constants
	ethernetHeaderLen = 14
	sllHeaderLen      = 16
	maxVLANTags       = 2

	// EtherType values
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
	etherTypeVLAN = 0x8100
	etherTypeQinQ = 0x88A8
)

// decodeEthernet reads an Ethernet II header including up to two VLAN
// tags (QinQ). The cursor is left on the first byte of the L3 payload.
func decodeEthernet(c *cursor.Cursor) (core.EthernetHeader, error) {
	var eth core.EthernetHeader
	hdr, err := c.Bytes(ethernetHeaderLen)
	if err != nil {
		return eth, err
	}
	copy(eth.DstMAC[:], hdr[0:6])
	copy(eth.SrcMAC[:], hdr[6:12])
	etherType := binary.BigEndian.Uint16(hdr[12:14])

	for etherType == etherTypeVLAN || etherType == etherTypeQinQ {
		if len(eth.VLANs) == maxVLANTags {
			return eth, fmt.Errorf("more than %d vlan tags: %w", maxVLANTags, core.ErrUnsupportedLink)
		}
		// TCI (PCP, DEI, 12-bit VLAN ID) then the next EtherType
		tci, err := c.U16(binary.BigEndian)
		if err != nil {
			return eth, err
		}
		eth.VLANs = append(eth.VLANs, tci&0x0fff)
		if etherType, err = c.U16(binary.BigEndian); err != nil {
			return eth, err
		}
	}
	eth.EtherType = etherType
	return eth, nil
}

// decodeLinuxSLL reads a Linux "cooked" capture header and returns the
// protocol type it carries.
func decodeLinuxSLL(c *cursor.Cursor) (uint16, error) {
	hdr, err := c.Bytes(sllHeaderLen)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(hdr[14:16]), nil
}
