// Package artnet describes the Art-Net lighting control protocol carried
// over UDP port 6454.
package artnet

import (
	"bytes"
	"encoding/binary"

	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/tree"
)

const (
	// Name is the registry key of the protocol.
	Name = "artnet"
	// DefaultPort is the UDP port Art-Net is registered on.
	DefaultPort = 6454

	headerLen = 10
	// CurrentVersion is the protocol revision senders are expected to use.
	CurrentVersion = 14
)

var magic = []byte("Art-Net\x00")

// Options tune the protocol description.
type Options struct {
	UDPPort   uint16 `mapstructure:"udp_port"`
	Heuristic bool   `mapstructure:"heuristic"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{UDPPort: DefaultPort, Heuristic: true}
}

// New builds the Art-Net protocol description.
func New(opts Options) *decoder.Protocol {
	if opts.UDPPort == 0 {
		opts.UDPPort = DefaultPort
	}
	p := &decoder.Protocol{
		Name:       Name,
		Title:      "Art-Net",
		Ports:      []uint16{opts.UDPPort},
		Peek:       peekOpcode,
		Header:     dissectHeader,
		HeaderName: "Header",
		Opcodes:    opcodes,
		Fields:     fields,
		Bitmasks:   bitmasks,
	}
	if opts.Heuristic {
		p.Probe = Probe
	}
	return p
}

// Probe reports whether buf starts with the Art-Net ID.
func Probe(buf []byte) bool {
	return bytes.HasPrefix(buf, magic)
}

func peekOpcode(c *cursor.Cursor) (uint64, error) {
	v, err := c.PeekU16(len(magic), binary.LittleEndian)
	return uint64(v), err
}

func dissectHeader(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef, op *decoder.Opcode) error {
	start := c.Abs()
	id, _ := c.PeekBytes(c.Offset(), len(magic))
	if _, err := d.AddString(c, parent, hfID, len(magic)); err != nil {
		return err
	}
	if !bytes.Equal(id, magic) {
		d.Malformed(tree.Range{Start: start, Len: len(magic)}, "Art-Net ID is %q, expected %q", id, magic)
	}
	if _, err := d.AddUint(c, parent, hfOpcode); err != nil {
		return err
	}
	if op != nil {
		d.SetInfo("%s", op.Name)
	}
	return nil
}

// versioned prefixes a body routine with the ProtVer field.
func versioned(fn decoder.Routine) decoder.Routine {
	return func(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
		start := c.Abs()
		v, err := d.AddUint(c, parent, hfProtVer)
		if err != nil {
			return err
		}
		if v < CurrentVersion {
			d.Note(tree.Range{Start: start, Len: 2}, "Protocol version %d is older than %d", v, CurrentVersion)
		}
		if fn == nil {
			if c.Remaining() > 0 {
				d.Opaque(c, parent, hfPayload)
			}
			return nil
		}
		return fn(d, c, parent)
	}
}

// Body lengths count from the end of the header and include ProtVer.
var opcodes = decoder.OpcodeTable{
	{Code: 0x2000, Name: "OpPoll", Routine: versioned(dissectPoll), MinLen: 2},
	{Code: 0x2100, Name: "OpPollReply", Routine: dissectPollReply, MinLen: pollReplyMinLen},
	{Code: 0x2300, Name: "OpDiagData", Routine: versioned(dissectDiagData), MinLen: 8},
	{Code: 0x2400, Name: "OpCommand", Routine: versioned(dissectCommand), MinLen: 6},
	{Code: 0x2700, Name: "OpDataRequest", Routine: versioned(dissectDataRequest), MinLen: 8},
	{Code: 0x2800, Name: "OpDataReply", Routine: versioned(dissectDataReply), MinLen: 10},
	{Code: 0x5000, Name: "OpDmx", Routine: versioned(dissectDmx), MinLen: 8},
	{Code: 0x5100, Name: "OpNzs", Routine: versioned(dissectNzs), MinLen: 8},
	{Code: 0x5200, Name: "OpSync", Routine: versioned(dissectSync), MinLen: 4},
	{Code: 0x6000, Name: "OpAddress", Routine: versioned(dissectAddress), MinLen: 97},
	{Code: 0x7000, Name: "OpInput", Routine: versioned(dissectInput), MinLen: 10},
	{Code: 0x8000, Name: "OpTodRequest", Routine: versioned(dissectTodRequest), MinLen: 14},
	{Code: 0x8100, Name: "OpTodData", Routine: versioned(dissectTodData), MinLen: 18},
	{Code: 0x8200, Name: "OpTodControl", Routine: versioned(dissectTodControl), MinLen: 14},
	{Code: 0x8300, Name: "OpRdm", Routine: versioned(dissectRdm), MinLen: 14},
	{Code: 0x8400, Name: "OpRdmSub", Routine: versioned(dissectRdmSub), MinLen: 22},
	{Code: 0x9000, Name: "OpMedia", Routine: versioned(nil), MinLen: 2},
	{Code: 0x9100, Name: "OpMediaPatch", Routine: versioned(nil), MinLen: 2},
	{Code: 0x9200, Name: "OpMediaControl", Routine: versioned(nil), MinLen: 2},
	{Code: 0x9300, Name: "OpMediaContrlReply", Routine: versioned(nil), MinLen: 2},
	{Code: 0x9700, Name: "OpTimeCode", Routine: versioned(dissectTimeCode), MinLen: 9},
	{Code: 0x9800, Name: "OpTimeSync", Routine: versioned(dissectTimeSync), MinLen: 14},
	{Code: 0x9900, Name: "OpTrigger", Routine: versioned(dissectTrigger), MinLen: 8},
	{Code: 0x9a00, Name: "OpDirectory", Routine: versioned(nil), MinLen: 2},
	{Code: 0x9b00, Name: "OpDirectoryReply", Routine: versioned(nil), MinLen: 2},
	{Code: 0xa010, Name: "OpVideoSetup", Routine: versioned(dissectVideoSetup), MinLen: 138},
	{Code: 0xa020, Name: "OpVideoPalette", Routine: versioned(dissectVideoPalette), MinLen: 57},
	{Code: 0xa040, Name: "OpVideoData", Routine: versioned(dissectVideoData), MinLen: 8},
	{Code: 0xf000, Name: "OpMacMaster", Routine: versioned(nil), MinLen: 2},
	{Code: 0xf100, Name: "OpMacSlave", Routine: versioned(nil), MinLen: 2},
	{Code: 0xf200, Name: "OpFirmwareMaster", Routine: versioned(dissectFirmwareMaster), MinLen: 30},
	{Code: 0xf300, Name: "OpFirmwareReply", Routine: versioned(dissectFirmwareReply), MinLen: 26},
	{Code: 0xf400, Name: "OpFileTnMaster", Routine: versioned(nil), MinLen: 2},
	{Code: 0xf500, Name: "OpFileFnMaster", Routine: versioned(nil), MinLen: 2},
	{Code: 0xf600, Name: "OpFileFnReply", Routine: versioned(nil), MinLen: 2},
	{Code: 0xf800, Name: "OpIpProg", Routine: versioned(dissectIPProg), MinLen: 16},
	{Code: 0xf900, Name: "OpIpProgReply", Routine: versioned(dissectIPProgReply), MinLen: 16},
}
