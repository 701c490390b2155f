package artnet

import (
	"fmt"
	"strings"

	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
	"firestige.xyz/dissector/internal/core/valtab"
)

const (
	maxTriggerData = 512
	oemAny         = 0xffff
	// requests at or above this value are manufacturer specific
	dataRequestManSpec = 0x8000
)

// DataProtocolName returns the registry key a manufacturer-specific
// ArtDataReply payload is delegated to.
func DataProtocolName(estaMan uint64) string {
	return fmt.Sprintf("artnet-data-%04x", estaMan)
}

func dissectDiagData(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 1); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfDiagPriority); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfDiagPort); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfFiller, 1); err != nil {
		return err
	}
	length, err := d.AddUint(c, parent, hfDiagLength)
	if err != nil {
		return err
	}
	text, err := c.Take(int(length))
	if err != nil {
		return err
	}
	s, err := d.AddCString(text, parent, hfDiagText, int(length))
	if err != nil {
		return err
	}
	d.SetInfo("OpDiagData %q", s)
	return nil
}

func dissectCommand(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddUint(c, parent, hfEstaMan); err != nil {
		return err
	}
	length, err := d.AddUint(c, parent, hfCommandLength)
	if err != nil {
		return err
	}
	start := c.Abs()
	data, err := c.Take(int(length))
	if err != nil {
		return err
	}
	s, err := d.AddCString(data, parent, hfCommandData, int(length))
	if err != nil {
		return err
	}
	ref := d.Tree().LastChild(parent)
	for _, kv := range ParseCommand(s) {
		d.Tree().Append(ref, tree.Node{Def: hfCommandKey, Kind: field.KindString, Str: kv.Key,
			Range: tree.Range{Start: start + kv.at, Len: len(kv.Key)}})
		d.Tree().Append(ref, tree.Node{Def: hfCommandValue, Kind: field.KindString, Str: kv.Value,
			Range: tree.Range{Start: start + kv.at + len(kv.Key) + 1, Len: len(kv.Value)}})
	}
	return nil
}

// Command is one key=value pair of an ArtCommand.
type Command struct {
	Key, Value string
	at         int
}

// ParseCommand splits "key=value&key=value&" text. Entries without '=' are
// skipped.
func ParseCommand(s string) []Command {
	var out []Command
	at := 0
	for part := range strings.SplitSeq(s, "&") {
		if k, v, ok := strings.Cut(part, "="); ok && k != "" {
			out = append(out, Command{Key: k, Value: v, at: at})
		}
		at += len(part) + 1
	}
	return out
}

func dissectTrigger(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	oem, err := d.AddUint(c, parent, hfTriggerOem)
	if err != nil {
		return err
	}
	key := hfTriggerKey
	if oem == oemAny {
		key = hfTriggerKeyStd
	}
	if _, err := d.AddUint(c, parent, key); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTriggerSubKey); err != nil {
		return err
	}
	if n := min(c.Remaining(), maxTriggerData); n > 0 {
		_, err = d.AddBytes(c, parent, hfTriggerData, n)
	}
	return err
}

func dissectTimeCode(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 1); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTimeCodeStream); err != nil {
		return err
	}
	start := c.Abs()
	var v [4]uint64
	for i, def := range []*field.Def{hfTimeCodeFrames, hfTimeCodeSeconds, hfTimeCodeMinutes, hfTimeCodeHours} {
		n, err := d.AddUint(c, parent, def)
		if err != nil {
			return err
		}
		v[i] = n
	}
	typ, err := d.AddUint(c, parent, hfTimeCodeType)
	if err != nil {
		return err
	}
	frames, seconds, minutes, hours := v[0], v[1], v[2], v[3]
	d.SetInfo("OpTimeCode %02d:%02d:%02d:%02d", hours, minutes, seconds, frames)

	if typ >= uint64(len(framesPerSecond)) {
		d.Malformed(tree.Range{Start: start + 4, Len: 1}, "Unknown timecode type %d", typ)
		return nil
	}
	if fps := framesPerSecond[typ]; frames >= fps {
		d.Malformed(tree.Range{Start: start, Len: 1}, "Frame %d out of range for %d fps", frames, fps)
	}
	if seconds > 59 {
		d.Malformed(tree.Range{Start: start + 1, Len: 1}, "Seconds %d out of range", seconds)
	}
	if minutes > 59 {
		d.Malformed(tree.Range{Start: start + 2, Len: 1}, "Minutes %d out of range", minutes)
	}
	if hours > 23 {
		d.Malformed(tree.Range{Start: start + 3, Len: 1}, "Hours %d out of range", hours)
	}
	return nil
}

func dissectTimeSync(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	for _, def := range []*field.Def{
		hfTimeSyncProg, hfTimeSyncSec, hfTimeSyncMin, hfTimeSyncHour, hfTimeSyncMday,
		hfTimeSyncMon, hfTimeSyncYear, hfTimeSyncWday, hfTimeSyncIsDST,
	} {
		if _, err := d.AddUint(c, parent, def); err != nil {
			return err
		}
	}
	return nil
}

// dissectRequestHead decodes EstaMan, Oem and Request shared by
// ArtDataRequest and ArtDataReply.
func dissectRequestHead(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) (esta, req uint64, err error) {
	if esta, err = d.AddUint(c, parent, hfEstaMan); err != nil {
		return
	}
	if _, err = d.AddUint(c, parent, hfOem); err != nil {
		return
	}
	req, err = d.AddUint(c, parent, hfDataRequest)
	return
}

func dissectDataRequest(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	_, req, err := dissectRequestHead(d, c, parent)
	if err != nil {
		return err
	}
	d.SetInfo("OpDataRequest %s", valtab.LookupOr(dataRequests, req, "request %#04x"))
	if c.Remaining() > 0 {
		d.Opaque(c, parent, hfSpare)
	}
	return nil
}

func dissectDataReply(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	esta, req, err := dissectRequestHead(d, c, parent)
	if err != nil {
		return err
	}
	n, err := d.AddUint(c, parent, hfDataPayLen)
	if err != nil {
		return err
	}
	d.SetInfo("OpDataReply %s", valtab.LookupOr(dataRequests, req, "request %#04x"))
	payload, err := c.Take(int(n))
	if err != nil {
		return err
	}
	switch {
	case req >= dataRequestManSpec:
		return d.Delegate(DataProtocolName(esta), payload, parent)
	case req != 0 && n > 0:
		_, err = d.AddCString(payload, parent, hfDataURL, int(n))
		return err
	case n > 0:
		d.Opaque(payload, parent, hfPayload)
	}
	return nil
}

func dissectIPProg(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	if _, err := d.AddBitmask(c, parent, ipProgCommand); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfFiller, 1); err != nil {
		return err
	}
	return dissectIPBlock(d, c, parent, false)
}

func dissectIPProgReply(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 4); err != nil {
		return err
	}
	return dissectIPBlock(d, c, parent, true)
}

// dissectIPBlock decodes address, mask and port, then the optional
// trailing fields appended by later revisions.
func dissectIPBlock(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef, reply bool) error {
	ip, err := d.AddIPv4(c, parent, hfIPProgIP)
	if err != nil {
		return err
	}
	if _, err := d.AddIPv4(c, parent, hfIPProgMask); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfIPProgPort); err != nil {
		return err
	}
	var groups []func() error
	if reply {
		d.SetInfo("OpIpProgReply %s", ip)
		groups = append(groups, func() error {
			if _, err := d.AddBitmask(c, parent, ipProgReplyStatus); err != nil {
				return err
			}
			_, err := d.AddBytes(c, parent, hfSpare, 1)
			return err
		})
	}
	groups = append(groups, func() error {
		_, err := d.AddIPv4(c, parent, hfIPProgGateway)
		return err
	})
	if err := trailing(c, groups...); err != nil {
		return err
	}
	if c.Remaining() > 0 {
		d.Opaque(c, parent, hfSpare)
	}
	return nil
}

func dissectFirmwareMaster(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	for _, def := range []*field.Def{hfFirmwareType, hfFirmwareBlockID, hfFirmwareLength} {
		if _, err := d.AddUint(c, parent, def); err != nil {
			return err
		}
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 20); err != nil {
		return err
	}
	if c.Remaining() > 0 {
		d.Opaque(c, parent, hfFirmwareData)
	}
	return nil
}

func dissectFirmwareReply(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfFirmwareReply); err != nil {
		return err
	}
	if c.Remaining() > 0 {
		d.Opaque(c, parent, hfSpare)
	}
	return nil
}

// The video opcodes size their data from header fields. Products of two
// 8-bit counts stay small and are read through the cursor like any other
// length.

func dissectVideoSetup(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 4); err != nil {
		return err
	}
	if _, err := d.AddBitmask(c, parent, videoControl); err != nil {
		return err
	}
	height, err := d.AddUint(c, parent, hfVideoFontHeight)
	if err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfVideoFirstFont); err != nil {
		return err
	}
	last, err := d.AddUint(c, parent, hfVideoLastFont)
	if err != nil {
		return err
	}
	if _, err := d.AddString(c, parent, hfVideoWinFont, 64); err != nil {
		return err
	}
	if _, err := d.AddString(c, parent, hfVideoLinuxFont, 64); err != nil {
		return err
	}
	if n := int(last * height); n > 0 {
		_, err = d.AddBytes(c, parent, hfVideoFontData, n)
	}
	return err
}

func dissectVideoPalette(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 4); err != nil {
		return err
	}
	for _, def := range []*field.Def{hfPaletteRed, hfPaletteGreen, hfPaletteBlue} {
		if _, err := d.AddBytes(c, parent, def, 17); err != nil {
			return err
		}
	}
	return nil
}

func dissectVideoData(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	var v [4]uint64
	for i, def := range []*field.Def{hfVideoPosX, hfVideoPosY, hfVideoLenX, hfVideoLenY} {
		n, err := d.AddUint(c, parent, def)
		if err != nil {
			return err
		}
		v[i] = n
	}
	if n := int(v[2] * v[3] * 2); n > 0 {
		_, err := d.AddBytes(c, parent, hfVideoData, n)
		return err
	}
	return nil
}
