package artnet

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/dissector/internal/core/bitmask"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/valtab"
	"firestige.xyz/dissector/internal/protocols/rdm"
)

func u8(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Width: 1}
}

func u16(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Width: 2}
}

func u32(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Width: 4}
}

func hex16(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Width: 2, Base: field.BaseHex}
}

func enum(name, abbrev string, width int, base field.Base, values valtab.Lookup) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindEnum, Width: width, Base: base, Values: values}
}

func str(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindString}
}

func raw(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindBytes}
}

func ipv4(name, abbrev string) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindIPv4}
}

func flag(name, abbrev string, mask uint64) *field.Def {
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindBool, Mask: mask}
}

func bitsOf(name, abbrev string, mask uint64, values valtab.Lookup) *field.Def {
	if values == nil {
		return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindUint, Mask: mask}
	}
	return &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindEnum, Mask: mask, Values: values}
}

func mask8(name, abbrev string, spec ...*field.Def) *decoder.Bitmask {
	return &decoder.Bitmask{
		Def:  &field.Def{Name: name, Abbrev: abbrev, Kind: field.KindBitmask, Width: 1},
		Spec: bitmask.Spec(spec),
	}
}

func formatVersion(v uint64) string {
	return fmt.Sprintf("%d.%d", v>>8, v&0xff)
}

// Header and common fields
var (
	hfID      = str("ID", "artnet.header.id")
	hfOpcode  = &field.Def{Name: "OpCode", Abbrev: "artnet.header.opcode", Kind: field.KindEnum, Width: 2, Order: binary.LittleEndian, Base: field.BaseHex, Values: opcodes}
	hfProtVer = u16("ProtVer", "artnet.protver")
	hfFiller  = raw("Filler", "artnet.filler")
	hfSpare   = raw("Spare", "artnet.spare")
	hfPayload = raw("Data", "artnet.data")
	hfEstaMan = enum("ESTA Manufacturer", "artnet.esta_man", 2, field.BaseHex, estaManufacturers)
	hfOem     = hex16("OEM", "artnet.oem")
	hfNet     = u8("Net", "artnet.net")
	hfUni     = &field.Def{Name: "Port-Address", Abbrev: "artnet.universe", Kind: field.KindUint, Width: 2, Base: field.BaseDec}
)

// ArtPoll
var (
	pollFlags = mask8("Flags", "artnet.poll.flags",
		flag("Targeted mode", "artnet.poll.flags.targeted", 0x20),
		flag("VLC transmission disabled", "artnet.poll.flags.vlc_disabled", 0x10),
		flag("Diagnostics unicast", "artnet.poll.flags.diag_unicast", 0x08),
		flag("Send diagnostics", "artnet.poll.flags.diag", 0x04),
		flag("Send ArtPollReply on change", "artnet.poll.flags.reply_on_change", 0x02),
	)
	hfPollPriority  = enum("DiagPriority", "artnet.poll.diag_priority", 1, field.BaseHex, diagPriorities)
	hfPollTargetTop = u16("Target Port-Address top", "artnet.poll.target_top")
	hfPollTargetBot = u16("Target Port-Address bottom", "artnet.poll.target_bottom")
)

// ArtPollReply
var (
	hfReplyIP          = ipv4("IP Address", "artnet.poll_reply.ip")
	hfReplyPort        = &field.Def{Name: "Port", Abbrev: "artnet.poll_reply.port", Kind: field.KindUint, Width: 2, Order: binary.LittleEndian}
	hfReplyVersInfo    = &field.Def{Name: "Firmware version", Abbrev: "artnet.poll_reply.vers_info", Kind: field.KindUint, Width: 2, FormatUint: formatVersion}
	hfReplyNetSwitch   = u8("NetSwitch", "artnet.poll_reply.net_switch")
	hfReplySubSwitch   = u8("SubSwitch", "artnet.poll_reply.sub_switch")
	hfReplyUbeaVersion = u8("UBEA version", "artnet.poll_reply.ubea_version")
	hfReplyEstaMan     = &field.Def{Name: "ESTA Manufacturer", Abbrev: "artnet.poll_reply.esta_man", Kind: field.KindEnum, Width: 2, Order: binary.LittleEndian, Base: field.BaseHex, Values: estaManufacturers}
	hfReplyShortName   = str("Short Name", "artnet.poll_reply.short_name")
	hfReplyLongName    = str("Long Name", "artnet.poll_reply.long_name")
	hfReplyNodeReport  = str("Node Report", "artnet.poll_reply.node_report")
	hfReplyReportCode  = enum("Status code", "artnet.poll_reply.node_report.code", 2, field.BaseHex, nodeReportCodes)
	hfReplyReportCount = &field.Def{Name: "Counter", Abbrev: "artnet.poll_reply.node_report.counter", Kind: field.KindUint, Width: 4}
	hfReplyReportText  = str("Text", "artnet.poll_reply.node_report.text")
	hfReplyNumPorts    = u16("Number of ports", "artnet.poll_reply.num_ports")
	hfReplySwIn        = u8("Input Universe", "artnet.poll_reply.sw_in")
	hfReplySwOut       = u8("Output Universe", "artnet.poll_reply.sw_out")
	hfReplyInAddress   = &field.Def{Name: "Input Port-Address", Abbrev: "artnet.poll_reply.in_address", Kind: field.KindUint, Width: 2}
	hfReplyOutAddress  = &field.Def{Name: "Output Port-Address", Abbrev: "artnet.poll_reply.out_address", Kind: field.KindUint, Width: 2}
	hfReplyAcnPriority = u8("sACN priority", "artnet.poll_reply.acn_priority")
	hfReplyStyle       = enum("Style", "artnet.poll_reply.style", 1, field.BaseHex, styles)
	hfReplyMAC         = &field.Def{Name: "MAC", Abbrev: "artnet.poll_reply.mac", Kind: field.KindEther}
	hfReplyBindIP      = ipv4("Bind IP Address", "artnet.poll_reply.bind_ip")
	hfReplyBindIndex   = u8("Bind Index", "artnet.poll_reply.bind_index")
	hfReplyDefaultUID  = &field.Def{Name: "Default responder UID", Abbrev: "artnet.poll_reply.default_uid", Kind: field.KindBytes, FormatBytes: rdm.FormatUID}
	hfReplyUser        = hex16("User", "artnet.poll_reply.user")
	hfReplyRefreshRate = u16("Refresh rate", "artnet.poll_reply.refresh_rate")

	replyStatus1 = mask8("Status1", "artnet.poll_reply.status1",
		bitsOf("Indicator state", "artnet.poll_reply.status1.indicator", 0xc0, indicatorStates),
		bitsOf("Port-Address authority", "artnet.poll_reply.status1.authority", 0x30, addressAuthorities),
		flag("Booted from ROM", "artnet.poll_reply.status1.rom_boot", 0x04),
		flag("RDM capable", "artnet.poll_reply.status1.rdm", 0x02),
		flag("UBEA present", "artnet.poll_reply.status1.ubea", 0x01),
	)
	replyStatus2 = mask8("Status2", "artnet.poll_reply.status2",
		flag("RDM switchable via ArtCommand", "artnet.poll_reply.status2.rdm_switch", 0x80),
		flag("Output style switchable via ArtCommand", "artnet.poll_reply.status2.style_switch", 0x40),
		flag("Squawking", "artnet.poll_reply.status2.squawking", 0x20),
		flag("sACN switchable", "artnet.poll_reply.status2.sacn_switch", 0x10),
		flag("15-bit Port-Address supported", "artnet.poll_reply.status2.port_address_15", 0x08),
		flag("DHCP capable", "artnet.poll_reply.status2.dhcp_capable", 0x04),
		flag("DHCP configured", "artnet.poll_reply.status2.dhcp_used", 0x02),
		flag("Web configuration supported", "artnet.poll_reply.status2.web", 0x01),
	)
	replyStatus3 = mask8("Status3", "artnet.poll_reply.status3",
		bitsOf("Failsafe state", "artnet.poll_reply.status3.failsafe", 0xc0, failsafeStates),
		flag("Failover supported", "artnet.poll_reply.status3.failover", 0x20),
		flag("LLRP supported", "artnet.poll_reply.status3.llrp", 0x10),
		flag("Port direction switchable", "artnet.poll_reply.status3.direction_switch", 0x08),
		flag("RDMnet supported", "artnet.poll_reply.status3.rdmnet", 0x04),
		flag("Background queue supported", "artnet.poll_reply.status3.bg_queue", 0x02),
		flag("Background discovery switchable", "artnet.poll_reply.status3.bg_discovery", 0x01),
	)
	replyPortType = mask8("Port type", "artnet.poll_reply.port_type",
		flag("Output", "artnet.poll_reply.port_type.output", 0x80),
		flag("Input", "artnet.poll_reply.port_type.input", 0x40),
		bitsOf("Direction", "artnet.poll_reply.port_type.direction", 0xc0, portDirections),
		bitsOf("Protocol", "artnet.poll_reply.port_type.protocol", 0x3f, portProtocols),
	)
	replyGoodInput = mask8("Input status", "artnet.poll_reply.good_input",
		flag("Data received", "artnet.poll_reply.good_input.data", 0x80),
		flag("Test packets", "artnet.poll_reply.good_input.test", 0x40),
		flag("SIPs", "artnet.poll_reply.good_input.sip", 0x20),
		flag("Text packets", "artnet.poll_reply.good_input.text", 0x10),
		flag("Input disabled", "artnet.poll_reply.good_input.disabled", 0x08),
		flag("Receive errors", "artnet.poll_reply.good_input.errors", 0x04),
		flag("Converting to sACN", "artnet.poll_reply.good_input.sacn", 0x01),
	)
	replyGoodOutputA = mask8("Output status", "artnet.poll_reply.good_output_a",
		flag("Data transmitting", "artnet.poll_reply.good_output_a.data", 0x80),
		flag("Test packets", "artnet.poll_reply.good_output_a.test", 0x40),
		flag("SIPs", "artnet.poll_reply.good_output_a.sip", 0x20),
		flag("Text packets", "artnet.poll_reply.good_output_a.text", 0x10),
		flag("Merging", "artnet.poll_reply.good_output_a.merging", 0x08),
		flag("Short detected", "artnet.poll_reply.good_output_a.short", 0x04),
		flag("Merge mode LTP", "artnet.poll_reply.good_output_a.ltp", 0x02),
		flag("Output is sACN", "artnet.poll_reply.good_output_a.sacn", 0x01),
	)
	replyGoodOutputB = mask8("Output status B", "artnet.poll_reply.good_output_b",
		flag("RDM disabled", "artnet.poll_reply.good_output_b.rdm_disabled", 0x80),
		flag("Continuous output style", "artnet.poll_reply.good_output_b.continuous", 0x40),
		flag("Discovery not running", "artnet.poll_reply.good_output_b.discovery_idle", 0x20),
		flag("Background discovery disabled", "artnet.poll_reply.good_output_b.bg_disabled", 0x10),
	)
	replySwMacro = mask8("Macro keys", "artnet.poll_reply.sw_macro",
		bitsOf("Active macros", "artnet.poll_reply.sw_macro.active", 0xff, nil),
	)
	replySwRemote = mask8("Remote triggers", "artnet.poll_reply.sw_remote",
		bitsOf("Active triggers", "artnet.poll_reply.sw_remote.active", 0xff, nil),
	)
)

// ArtDmx, ArtNzs, ArtSync
var (
	hfDmxSequence  = u8("Sequence", "artnet.dmx.sequence")
	hfDmxPhysical  = u8("Physical", "artnet.dmx.physical")
	hfDmxSubUni    = u8("SubUni", "artnet.dmx.sub_uni")
	hfDmxLength    = u16("Length", "artnet.dmx.length")
	hfNzsStartCode = &field.Def{Name: "Start code", Abbrev: "artnet.nzs.start_code", Kind: field.KindUint, Width: 1, Base: field.BaseHex}
	hfNzsData      = raw("Alternate start code data", "artnet.nzs.data")
	hfSyncAux1     = u8("Aux1", "artnet.sync.aux1")
	hfSyncAux2     = u8("Aux2", "artnet.sync.aux2")
)

// ArtAddress, ArtInput
var (
	hfAddressBindIndex   = u8("Bind Index", "artnet.address.bind_index")
	hfAddressShortName   = str("Short Name", "artnet.address.short_name")
	hfAddressLongName    = str("Long Name", "artnet.address.long_name")
	hfAddressAcnPriority = u8("sACN priority", "artnet.address.acn_priority")
	hfAddressCommand     = enum("Command", "artnet.address.command", 1, field.BaseHex, addressCommands)

	addressNetSwitch = mask8("NetSwitch", "artnet.address.net_switch",
		flag("Program", "artnet.address.net_switch.program", 0x80),
		bitsOf("Net", "artnet.address.net_switch.net", 0x7f, nil),
	)
	addressSubSwitch = mask8("SubSwitch", "artnet.address.sub_switch",
		flag("Program", "artnet.address.sub_switch.program", 0x80),
		bitsOf("Sub-Net", "artnet.address.sub_switch.sub_net", 0x0f, nil),
	)
	addressSwIn = mask8("Input Universe", "artnet.address.sw_in",
		flag("Program", "artnet.address.sw_in.program", 0x80),
		bitsOf("Universe", "artnet.address.sw_in.universe", 0x0f, nil),
	)
	addressSwOut = mask8("Output Universe", "artnet.address.sw_out",
		flag("Program", "artnet.address.sw_out.program", 0x80),
		bitsOf("Universe", "artnet.address.sw_out.universe", 0x0f, nil),
	)

	hfInputBindIndex = u8("Bind Index", "artnet.input.bind_index")
	hfInputNumPorts  = u16("Number of ports", "artnet.input.num_ports")
	inputPort        = mask8("Input", "artnet.input.input",
		flag("Disabled", "artnet.input.input.disabled", 0x01),
	)
)

// ArtTodRequest, ArtTodData, ArtTodControl, ArtRdm, ArtRdmSub
var (
	hfTodReqCommand  = enum("Command", "artnet.tod_request.command", 1, field.BaseHex, todRequestCommands)
	hfTodReqAddCount = u8("Address count", "artnet.tod_request.add_count")
	hfTodReqAddress  = u8("Address", "artnet.tod_request.address")

	hfTodDataRdmVer    = enum("RDM version", "artnet.tod_data.rdm_ver", 1, field.BaseHex, rdmVersions)
	hfTodDataPort      = u8("Port", "artnet.tod_data.port")
	hfTodDataBindIndex = u8("Bind Index", "artnet.tod_data.bind_index")
	hfTodDataCommand   = enum("Command response", "artnet.tod_data.command_response", 1, field.BaseHex, todDataCommands)
	hfTodDataAddress   = u8("Address", "artnet.tod_data.address")
	hfTodDataUIDTotal  = u16("UID total", "artnet.tod_data.uid_total")
	hfTodDataBlock     = u8("Block count", "artnet.tod_data.block_count")
	hfTodDataUIDCount  = u8("UID count", "artnet.tod_data.uid_count")
	hfTodDataUID       = &field.Def{Name: "UID", Abbrev: "artnet.tod_data.uid", Kind: field.KindBytes, FormatBytes: rdm.FormatUID}

	hfTodCtlCommand = enum("Command", "artnet.tod_control.command", 1, field.BaseHex, todControlCommands)
	hfTodCtlAddress = u8("Address", "artnet.tod_control.address")

	hfRdmVer       = enum("RDM version", "artnet.rdm.rdm_ver", 1, field.BaseHex, rdmVersions)
	hfRdmFifoAvail = u8("FIFO available", "artnet.rdm.fifo_avail")
	hfRdmFifoMax   = u8("FIFO max", "artnet.rdm.fifo_max")
	hfRdmCommand   = enum("Command", "artnet.rdm.command", 1, field.BaseHex, rdmCommands)
	hfRdmAddress   = u8("Address", "artnet.rdm.address")

	hfRdmSubVer    = enum("RDM version", "artnet.rdm_sub.rdm_ver", 1, field.BaseHex, rdmVersions)
	hfRdmSubUID    = &field.Def{Name: "UID", Abbrev: "artnet.rdm_sub.uid", Kind: field.KindBytes, FormatBytes: rdm.FormatUID}
	hfRdmSubClass  = enum("Command class", "artnet.rdm_sub.command_class", 1, field.BaseHex, rdmSubCommandClasses)
	hfRdmSubPID    = enum("Parameter ID", "artnet.rdm_sub.pid", 2, field.BaseHex, rdm.ParameterIDs)
	hfRdmSubDevice = u16("Sub-device", "artnet.rdm_sub.sub_device")
	hfRdmSubCount  = u16("Sub count", "artnet.rdm_sub.sub_count")
	hfRdmSubValue  = u16("Value", "artnet.rdm_sub.value")
)

// ArtDiagData, ArtCommand, ArtTrigger
var (
	hfDiagPriority = enum("DiagPriority", "artnet.diag_data.priority", 1, field.BaseHex, diagPriorities)
	hfDiagPort     = u8("Logical port", "artnet.diag_data.logical_port")
	hfDiagLength   = u16("Length", "artnet.diag_data.length")
	hfDiagText     = str("Text", "artnet.diag_data.text")

	hfCommandLength = u16("Length", "artnet.command.length")
	hfCommandData   = str("Data", "artnet.command.data")
	hfCommandKey    = str("Key", "artnet.command.key")
	hfCommandValue  = str("Value", "artnet.command.value")

	hfTriggerOem    = hex16("OEM", "artnet.trigger.oem")
	hfTriggerKey    = u8("Key", "artnet.trigger.key")
	hfTriggerKeyStd = enum("Key", "artnet.trigger.key_std", 1, field.BaseDec, triggerKeys)
	hfTriggerSubKey = u8("SubKey", "artnet.trigger.sub_key")
	hfTriggerData   = raw("Payload", "artnet.trigger.data")
)

// ArtTimeCode, ArtTimeSync
var (
	hfTimeCodeStream  = u8("Stream ID", "artnet.timecode.stream_id")
	hfTimeCodeFrames  = u8("Frames", "artnet.timecode.frames")
	hfTimeCodeSeconds = u8("Seconds", "artnet.timecode.seconds")
	hfTimeCodeMinutes = u8("Minutes", "artnet.timecode.minutes")
	hfTimeCodeHours   = u8("Hours", "artnet.timecode.hours")
	hfTimeCodeType    = enum("Type", "artnet.timecode.type", 1, field.BaseDec, timecodeTypes)

	hfTimeSyncProg    = u8("Prog", "artnet.time_sync.prog")
	hfTimeSyncSec     = u8("Seconds", "artnet.time_sync.sec")
	hfTimeSyncMin     = u8("Minutes", "artnet.time_sync.min")
	hfTimeSyncHour    = u8("Hours", "artnet.time_sync.hour")
	hfTimeSyncMday    = u8("Day of month", "artnet.time_sync.mday")
	hfTimeSyncMon     = u8("Month", "artnet.time_sync.mon")
	hfTimeSyncYear    = u16("Year", "artnet.time_sync.year")
	hfTimeSyncWday    = u8("Day of week", "artnet.time_sync.wday")
	hfTimeSyncIsDST   = &field.Def{Name: "Daylight saving", Abbrev: "artnet.time_sync.isdst", Kind: field.KindBool, Width: 1}
)

// ArtDataRequest, ArtDataReply
var (
	hfDataRequest = enum("Request", "artnet.data.request", 2, field.BaseHex, dataRequests)
	hfDataPayLen  = u16("Payload length", "artnet.data.pay_len")
	hfDataURL     = str("URL", "artnet.data.url")
)

// ArtIpProg, ArtIpProgReply
var (
	hfIPProgIP      = ipv4("IP Address", "artnet.ip_prog.ip")
	hfIPProgMask    = ipv4("Subnet mask", "artnet.ip_prog.mask")
	hfIPProgPort    = u16("Port", "artnet.ip_prog.port")
	hfIPProgGateway = ipv4("Default gateway", "artnet.ip_prog.gateway")

	ipProgCommand = mask8("Command", "artnet.ip_prog.command",
		flag("Enable programming", "artnet.ip_prog.command.enable", 0x80),
		flag("Enable DHCP", "artnet.ip_prog.command.dhcp", 0x40),
		flag("Program default gateway", "artnet.ip_prog.command.gateway", 0x10),
		flag("Reset to default", "artnet.ip_prog.command.reset", 0x08),
		flag("Program IP address", "artnet.ip_prog.command.ip", 0x04),
		flag("Program subnet mask", "artnet.ip_prog.command.mask", 0x02),
		flag("Program port", "artnet.ip_prog.command.port", 0x01),
	)
	ipProgReplyStatus = mask8("Status", "artnet.ip_prog_reply.status",
		flag("DHCP enabled", "artnet.ip_prog_reply.status.dhcp", 0x40),
	)
)

// ArtFirmwareMaster, ArtFirmwareReply
var (
	hfFirmwareType    = enum("Type", "artnet.firmware_master.type", 1, field.BaseHex, firmwareMasterTypes)
	hfFirmwareBlockID = u8("Block ID", "artnet.firmware_master.block_id")
	hfFirmwareLength  = u32("Firmware length (words)", "artnet.firmware_master.length")
	hfFirmwareData    = raw("Firmware data", "artnet.firmware_master.data")
	hfFirmwareReply   = enum("Type", "artnet.firmware_reply.type", 1, field.BaseHex, firmwareReplyTypes)
)

// ArtVideoSetup, ArtVideoPalette, ArtVideoData
var (
	hfVideoFontHeight = u8("Font height", "artnet.video_setup.font_height")
	hfVideoFirstFont  = u8("First font", "artnet.video_setup.first_font")
	hfVideoLastFont   = u8("Last font", "artnet.video_setup.last_font")
	hfVideoWinFont    = str("Windows font name", "artnet.video_setup.win_font_name")
	hfVideoLinuxFont  = str("Linux font name", "artnet.video_setup.linux_font_name")
	hfVideoFontData   = raw("Font data", "artnet.video_setup.font_data")
	videoControl      = mask8("Control", "artnet.video_setup.control",
		flag("Video enabled", "artnet.video_setup.control.enabled", 0x01),
	)

	hfPaletteRed   = raw("Red", "artnet.video_palette.red")
	hfPaletteGreen = raw("Green", "artnet.video_palette.green")
	hfPaletteBlue  = raw("Blue", "artnet.video_palette.blue")

	hfVideoPosX = u8("Position X", "artnet.video_data.pos_x")
	hfVideoPosY = u8("Position Y", "artnet.video_data.pos_y")
	hfVideoLenX = u8("Length X", "artnet.video_data.len_x")
	hfVideoLenY = u8("Length Y", "artnet.video_data.len_y")
	hfVideoData = raw("Data", "artnet.video_data.data")
)

var fields = []*field.Def{
	hfID, hfOpcode, hfProtVer, hfFiller, hfSpare, hfPayload, hfEstaMan, hfOem, hfNet, hfUni,
	hfPollPriority, hfPollTargetTop, hfPollTargetBot,
	hfReplyIP, hfReplyPort, hfReplyVersInfo, hfReplyNetSwitch, hfReplySubSwitch, hfReplyUbeaVersion,
	hfReplyEstaMan, hfReplyShortName, hfReplyLongName, hfReplyNodeReport, hfReplyReportCode,
	hfReplyReportCount, hfReplyReportText, hfReplyNumPorts, hfReplySwIn, hfReplySwOut,
	hfReplyInAddress, hfReplyOutAddress, hfReplyAcnPriority, hfReplyStyle, hfReplyMAC,
	hfReplyBindIP, hfReplyBindIndex, hfReplyDefaultUID, hfReplyUser, hfReplyRefreshRate,
	hfDmxSequence, hfDmxPhysical, hfDmxSubUni, hfDmxLength, hfNzsStartCode, hfNzsData,
	hfSyncAux1, hfSyncAux2,
	hfAddressBindIndex, hfAddressShortName, hfAddressLongName, hfAddressAcnPriority, hfAddressCommand,
	hfInputBindIndex, hfInputNumPorts,
	hfTodReqCommand, hfTodReqAddCount, hfTodReqAddress,
	hfTodDataRdmVer, hfTodDataPort, hfTodDataBindIndex, hfTodDataCommand, hfTodDataAddress,
	hfTodDataUIDTotal, hfTodDataBlock, hfTodDataUIDCount, hfTodDataUID,
	hfTodCtlCommand, hfTodCtlAddress,
	hfRdmVer, hfRdmFifoAvail, hfRdmFifoMax, hfRdmCommand, hfRdmAddress,
	hfRdmSubVer, hfRdmSubUID, hfRdmSubClass, hfRdmSubPID, hfRdmSubDevice, hfRdmSubCount,
	hfRdmSubValue,
	hfDiagPriority, hfDiagPort, hfDiagLength, hfDiagText,
	hfCommandLength, hfCommandData, hfCommandKey, hfCommandValue,
	hfTriggerOem, hfTriggerKey, hfTriggerKeyStd, hfTriggerSubKey, hfTriggerData,
	hfTimeCodeStream, hfTimeCodeFrames, hfTimeCodeSeconds, hfTimeCodeMinutes, hfTimeCodeHours, hfTimeCodeType,
	hfTimeSyncProg, hfTimeSyncSec, hfTimeSyncMin, hfTimeSyncHour, hfTimeSyncMday, hfTimeSyncMon,
	hfTimeSyncYear, hfTimeSyncWday, hfTimeSyncIsDST,
	hfDataRequest, hfDataPayLen, hfDataURL,
	hfIPProgIP, hfIPProgMask, hfIPProgPort, hfIPProgGateway,
	hfFirmwareType, hfFirmwareBlockID, hfFirmwareLength, hfFirmwareData, hfFirmwareReply,
	hfVideoFontHeight, hfVideoFirstFont, hfVideoLastFont, hfVideoWinFont, hfVideoLinuxFont, hfVideoFontData,
	hfPaletteRed, hfPaletteGreen, hfPaletteBlue,
	hfVideoPosX, hfVideoPosY, hfVideoLenX, hfVideoLenY, hfVideoData,
}

var bitmasks = []*decoder.Bitmask{
	pollFlags,
	replyStatus1, replyStatus2, replyStatus3, replyPortType, replyGoodInput,
	replyGoodOutputA, replyGoodOutputB, replySwMacro, replySwRemote,
	addressNetSwitch, addressSubSwitch, addressSwIn, addressSwOut, inputPort,
	ipProgCommand, ipProgReplyStatus, videoControl,
}
