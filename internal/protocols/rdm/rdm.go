// Package rdm describes ANSI E1.20 Remote Device Management messages as
// carried inside DMX512 and tunnelled by ArtRdm.
package rdm

import (
	"fmt"

	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
	"firestige.xyz/dissector/internal/core/valtab"
)

// Name is the registry key of the protocol.
const Name = "rdm"

const (
	StartCode    = 0xcc
	SubStartCode = 0x01

	uidLen      = 6
	labelMaxLen = 32

	ccGetResponse = 0x21
	ccSet         = 0x30
	ccSetResponse = 0x31

	responseNack = 0x02

	pidDeviceModel    = 0x0080
	pidManufacturer   = 0x0081
	pidDeviceLabel    = 0x0082
	pidDeviceInfo     = 0x0060
	pidSoftwareLabel  = 0x00c0
	pidDMXStart       = 0x00f0
	pidIdentifyDevice = 0x1000
)

// FormatUID renders a 6-byte UID as MMMM:DDDDDDDD.
func FormatUID(b []byte) string {
	if len(b) != uidLen {
		return fmt.Sprintf("% x", b)
	}
	return fmt.Sprintf("%02x%02x:%02x%02x%02x%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

func u8(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Width: 1}
}

func u16(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Width: 2}
}

func hex(name, abbrev string, width int) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Width: width, Base: field.BaseHex}
}

func enum(name, abbrev string, width int, values valtab.Lookup) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindEnum, Width: width, Base: field.BaseHex, Values: values}
}

func uid(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindBytes, FormatBytes: FormatUID}
}

var (
	hfStartCode    = hex("Start code", "rdm.start_code", 1)
	hfSubStartCode = hex("Sub-start code", "rdm.sub_start_code", 1)
	hfMessageLen   = u8("Message length", "rdm.message_length")
	hfDestUID      = uid("Destination UID", "rdm.dest_uid")
	hfSrcUID       = uid("Source UID", "rdm.src_uid")
	hfTransaction  = u8("Transaction number", "rdm.transaction_number")
	hfPortID       = u8("Port ID", "rdm.port_id")
	hfResponseType = enum("Response type", "rdm.response_type", 1, responseTypes)
	hfMessageCount = u8("Message count", "rdm.message_count")
	hfSubDevice    = u16("Sub-device", "rdm.sub_device")
	hfCommandClass = enum("Command class", "rdm.command_class", 1, commandClasses)
	hfPID          = enum("Parameter ID", "rdm.parameter_id", 2, ParameterIDs)
	hfPDL          = u8("Parameter data length", "rdm.pdl")
	hfPD           = &field.Def{Name: "Parameter data", Abbrev: "rdm.pd", Kind: field.KindBytes}
	hfChecksum     = hex("Checksum", "rdm.checksum", 2)

	hfNackReason = enum("NACK reason", "rdm.pd.nack_reason", 2, nackReasons)
	hfLabel      = &field.Def{Name: "Label", Abbrev: "rdm.pd.label", Kind: field.KindString}
	hfStartAddr  = u16("DMX start address", "rdm.pd.dmx_start_address")
	hfIdentify   = &field.Def{Name: "Identify", Abbrev: "rdm.pd.identify", Kind: field.KindBool, Width: 1}

	hfInfoVersion     = hex("RDM protocol version", "rdm.pd.device_info.protocol_version", 2)
	hfInfoModel       = hex("Device model ID", "rdm.pd.device_info.model_id", 2)
	hfInfoCategory    = enum("Product category", "rdm.pd.device_info.product_category", 2, productCategories)
	hfInfoSoftware    = hex("Software version ID", "rdm.pd.device_info.software_version", 4)
	hfInfoFootprint   = u16("DMX footprint", "rdm.pd.device_info.dmx_footprint")
	hfInfoPersonality = u8("Current personality", "rdm.pd.device_info.personality")
	hfInfoPersonCount = u8("Personality count", "rdm.pd.device_info.personality_count")
	hfInfoStartAddr   = u16("DMX start address", "rdm.pd.device_info.dmx_start_address")
	hfInfoSubDevices  = u16("Sub-device count", "rdm.pd.device_info.sub_device_count")
	hfInfoSensors     = u8("Sensor count", "rdm.pd.device_info.sensor_count")
)

// New builds the RDM protocol description.
func New() *decoder.Protocol {
	return &decoder.Protocol{
		Name:    Name,
		Title:   "Remote Device Management",
		Dissect: dissect,
		Fields: []*field.Def{
			hfStartCode, hfSubStartCode, hfMessageLen, hfDestUID, hfSrcUID, hfTransaction,
			hfPortID, hfResponseType, hfMessageCount, hfSubDevice, hfCommandClass, hfPID,
			hfPDL, hfPD, hfChecksum, hfNackReason, hfLabel, hfStartAddr, hfIdentify,
			hfInfoVersion, hfInfoModel, hfInfoCategory, hfInfoSoftware, hfInfoFootprint,
			hfInfoPersonality, hfInfoPersonCount, hfInfoStartAddr, hfInfoSubDevices, hfInfoSensors,
		},
	}
}

// Message is the fixed part of an RDM message.
type Message struct {
	CommandClass uint64
	ResponseType uint64
	PID          uint64
	PDL          int
}

// IsResponse reports whether the command class is a response.
func (m Message) IsResponse() bool { return m.CommandClass&0x01 != 0 }

func dissect(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	start := c.Abs()
	// The DMX start code is dropped when RDM rides inside ArtRdm.
	var sum uint16 = StartCode
	if b, err := c.PeekU8(c.Offset()); err == nil && b == StartCode {
		if _, err := d.AddUint(c, parent, hfStartCode); err != nil {
			return err
		}
		sum = 0
	}
	implied := 1 - (c.Abs() - start)

	if _, err := d.AddUint(c, parent, hfSubStartCode); err != nil {
		return err
	}
	lenStart := c.Abs()
	msgLen, err := d.AddUint(c, parent, hfMessageLen)
	if err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfDestUID, uidLen); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSrcUID, uidLen); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTransaction); err != nil {
		return err
	}

	// The byte after the transaction number is the port ID in requests and
	// the response type in responses; the command class tells which.
	class, err := c.PeekU8(c.Offset() + 4)
	if err != nil {
		return err
	}
	var m Message
	m.CommandClass = uint64(class)
	if m.IsResponse() {
		if m.ResponseType, err = d.AddUint(c, parent, hfResponseType); err != nil {
			return err
		}
	} else if _, err := d.AddUint(c, parent, hfPortID); err != nil {
		return err
	}
	for _, def := range []*field.Def{hfMessageCount, hfSubDevice, hfCommandClass} {
		if _, err := d.AddUint(c, parent, def); err != nil {
			return err
		}
	}
	if m.PID, err = d.AddUint(c, parent, hfPID); err != nil {
		return err
	}
	pdl, err := d.AddUint(c, parent, hfPDL)
	if err != nil {
		return err
	}
	m.PDL = int(pdl)
	pd, err := c.Take(m.PDL)
	if err != nil {
		return err
	}
	if m.PDL > 0 {
		if err := dissectParameterData(d, pd, parent, m); err != nil {
			return err
		}
	}
	d.SetInfo("RDM %s %s", valtab.LookupOr(commandClasses, m.CommandClass, "class %#02x"),
		valtab.LookupOr(ParameterIDs, m.PID, "PID %#04x"))

	covered := c.Abs() - start + implied
	if int(msgLen) != covered {
		d.Malformed(tree.Range{Start: lenStart, Len: 1},
			"Message length %d does not match %d bytes of message", msgLen, covered)
	}
	msg, _ := c.Sub(start-c.Base(), c.Abs()-start)
	b, _ := msg.Bytes(msg.Remaining())
	for _, v := range b {
		sum += uint16(v)
	}

	checkStart := c.Abs()
	check, err := d.AddUint(c, parent, hfChecksum)
	if err != nil {
		return err
	}
	if uint16(check) != sum {
		d.Malformed(tree.Range{Start: checkStart, Len: 2}, "Checksum %#04x does not match computed %#04x", check, sum)
	}
	return nil
}

func dissectParameterData(d *decoder.Dissection, pd *cursor.Cursor, parent tree.NodeRef, m Message) error {
	sub := d.Subtree(parent, "Parameter data", pd)
	defer d.Close(sub, pd)

	if m.IsResponse() && m.ResponseType == responseNack && m.PDL == 2 {
		_, err := d.AddUint(pd, sub, hfNackReason)
		return err
	}
	withData := m.CommandClass == ccGetResponse || m.CommandClass == ccSet || m.CommandClass == ccSetResponse
	if withData {
		switch {
		case m.PID == pidDeviceInfo && m.PDL == 19:
			return dissectDeviceInfo(d, pd, sub)
		case m.PID == pidDMXStart && m.PDL == 2:
			_, err := d.AddUint(pd, sub, hfStartAddr)
			return err
		case m.PID == pidIdentifyDevice && m.PDL == 1:
			_, err := d.AddUint(pd, sub, hfIdentify)
			return err
		case isLabelPID(m.PID) && m.PDL <= labelMaxLen:
			_, err := d.AddString(pd, sub, hfLabel, m.PDL)
			return err
		}
	}
	d.Opaque(pd, sub, hfPD)
	return nil
}

func isLabelPID(pid uint64) bool {
	switch pid {
	case pidDeviceModel, pidManufacturer, pidDeviceLabel, pidSoftwareLabel:
		return true
	}
	return false
}

func dissectDeviceInfo(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	for _, def := range []*field.Def{
		hfInfoVersion, hfInfoModel, hfInfoCategory, hfInfoSoftware, hfInfoFootprint,
		hfInfoPersonality, hfInfoPersonCount, hfInfoStartAddr, hfInfoSubDevices, hfInfoSensors,
	} {
		if _, err := d.AddUint(c, parent, def); err != nil {
			return err
		}
	}
	return nil
}
