package artnet

import (
	"bytes"

	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

// VLCName is the registry key of the visible light communication payload
// carried by ArtNzs.
const VLCName = "artnet-vlc"

const vlcStartCode = 0x91

var vlcMagic = []byte{0x41, 0x4c, 0x45}

func isVLC(c *cursor.Cursor) bool {
	b, err := c.PeekBytes(c.Offset(), len(vlcMagic))
	return err == nil && bytes.Equal(b, vlcMagic)
}

var (
	hfVlcMagic   = raw("Magic", "artnet-vlc.magic")
	hfVlcTrans   = u16("Transaction", "artnet-vlc.transaction")
	hfVlcSlot    = u16("Slot address", "artnet-vlc.slot_addr")
	hfVlcCount   = u16("Payload count", "artnet-vlc.pay_count")
	hfVlcCheck   = hex16("Payload checksum", "artnet-vlc.pay_check")
	hfVlcSpare   = raw("Spare", "artnet-vlc.spare")
	hfVlcDepth   = u8("Modulation depth", "artnet-vlc.depth")
	hfVlcFreq    = u16("Modulation frequency", "artnet-vlc.frequency")
	hfVlcMod     = hex16("Modulation type", "artnet-vlc.modulation")
	hfVlcLang    = enum("Payload language", "artnet-vlc.language", 2, field.BaseHex, vlcLanguages)
	hfVlcRepeat  = u16("Beacon repeat", "artnet-vlc.beacon_repeat")
	hfVlcPayload = raw("Payload", "artnet-vlc.payload")
	hfVlcText    = str("Text", "artnet-vlc.text")

	vlcFlags = mask8("Flags", "artnet-vlc.flags",
		flag("IEEE", "artnet-vlc.flags.ieee", 0x80),
		flag("Reply", "artnet-vlc.flags.reply", 0x40),
		flag("Beacon", "artnet-vlc.flags.beacon", 0x20),
	)
)

// NewVLC builds the ArtVlc payload description.
func NewVLC() *decoder.Protocol {
	return &decoder.Protocol{
		Name:    VLCName,
		Title:   "Art-Net VLC",
		Dissect: dissectVLC,
		Fields: []*field.Def{
			hfVlcMagic, hfVlcTrans, hfVlcSlot, hfVlcCount, hfVlcCheck, hfVlcSpare, hfVlcDepth,
			hfVlcFreq, hfVlcMod, hfVlcLang, hfVlcRepeat, hfVlcPayload, hfVlcText,
		},
		Bitmasks: []*decoder.Bitmask{vlcFlags},
	}
}

func dissectVLC(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfVlcMagic, len(vlcMagic)); err != nil {
		return err
	}
	if _, err := d.AddBitmask(c, parent, vlcFlags); err != nil {
		return err
	}
	for _, def := range []*field.Def{hfVlcTrans, hfVlcSlot} {
		if _, err := d.AddUint(c, parent, def); err != nil {
			return err
		}
	}
	count, err := d.AddUint(c, parent, hfVlcCount)
	if err != nil {
		return err
	}
	checkStart := c.Abs()
	check, err := d.AddUint(c, parent, hfVlcCheck)
	if err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfVlcSpare, 1); err != nil {
		return err
	}
	for _, def := range []*field.Def{hfVlcDepth, hfVlcFreq, hfVlcMod} {
		if _, err := d.AddUint(c, parent, def); err != nil {
			return err
		}
	}
	lang, err := d.AddUint(c, parent, hfVlcLang)
	if err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfVlcRepeat); err != nil {
		return err
	}

	payload, err := c.PeekBytes(c.Offset(), int(count))
	if err != nil {
		return err
	}
	if sum := vlcChecksum(payload); sum != uint16(check) {
		d.Malformed(tree.Range{Start: checkStart, Len: 2},
			"VLC payload checksum is %#04x, computed %#04x", check, sum)
	}
	if lang == 0x0001 {
		_, err = d.AddString(c, parent, hfVlcText, int(count))
		return err
	}
	_, err = d.AddBytes(c, parent, hfVlcPayload, int(count))
	return err
}

// vlcChecksum is the 16-bit additive sum of the payload bytes.
func vlcChecksum(b []byte) uint16 {
	var sum uint16
	for _, v := range b {
		sum += uint16(v)
	}
	return sum
}
