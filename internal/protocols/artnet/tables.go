package artnet

import "firestige.xyz/dissector/internal/core/valtab"

var diagPriorities = valtab.Table{
	{0x10, "DpLow"},
	{0x40, "DpMed"},
	{0x80, "DpHigh"},
	{0xe0, "DpCritical"},
	{0xf0, "DpVolatile"},
}

var nodeReportCodes = valtab.Table{
	{0x0000, "RcDebug"},
	{0x0001, "RcPowerOk"},
	{0x0002, "RcPowerFail"},
	{0x0003, "RcSocketWr1"},
	{0x0004, "RcParseFail"},
	{0x0005, "RcUdpFail"},
	{0x0006, "RcShNameOk"},
	{0x0007, "RcLoNameOk"},
	{0x0008, "RcDmxError"},
	{0x0009, "RcDmxUdpFull"},
	{0x000a, "RcDmxRxFull"},
	{0x000b, "RcSwitchErr"},
	{0x000c, "RcConfigErr"},
	{0x000d, "RcDmxShort"},
	{0x000e, "RcFirmwareFail"},
	{0x000f, "RcUserFail"},
	{0x0010, "RcFactoryRes"},
}

var styles = valtab.Table{
	{0x00, "StNode"},
	{0x01, "StController"},
	{0x02, "StMedia"},
	{0x03, "StRoute"},
	{0x04, "StBackup"},
	{0x05, "StConfig"},
	{0x06, "StVisual"},
}

// A few ESTA manufacturer codes, plus the blocks reserved for prototypes.
var estaManufacturers = valtab.Chain{
	valtab.Table{
		{0x0000, "ESTA"},
		{0x414c, "Artistic Licence"},
	},
	valtab.RangeTable{
		{Low: 0x7ff0, High: 0x7fff, Label: "Prototype / experimental"},
		{Low: 0xfff0, High: 0xffff, Label: "Prototype / experimental"},
	},
}

var portProtocols = valtab.Table{
	{0x00, "DMX512"},
	{0x01, "MIDI"},
	{0x02, "Avab"},
	{0x03, "Colortran CMX"},
	{0x04, "ADB 62.5"},
	{0x05, "Art-Net"},
	{0x06, "DALI"},
}

var portDirections = valtab.Table{
	{0, "None"},
	{1, "Input"},
	{2, "Output"},
	{3, "Input and output"},
}

var indicatorStates = valtab.Table{
	{0, "Unknown"},
	{1, "Locate / identify"},
	{2, "Mute"},
	{3, "Normal"},
}

var addressAuthorities = valtab.Table{
	{0, "Unknown"},
	{1, "Front panel"},
	{2, "Network or web browser"},
	{3, "Not used"},
}

var failsafeStates = valtab.Table{
	{0, "Hold last state"},
	{1, "All outputs to zero"},
	{2, "All outputs to full"},
	{3, "Playback fail safe scene"},
}

var addressCommands = valtab.RangeTable{
	{Low: 0x00, High: 0x00, Label: "AcNone"},
	{Low: 0x01, High: 0x01, Label: "AcCancelMerge"},
	{Low: 0x02, High: 0x02, Label: "AcLedNormal"},
	{Low: 0x03, High: 0x03, Label: "AcLedMute"},
	{Low: 0x04, High: 0x04, Label: "AcLedLocate"},
	{Low: 0x05, High: 0x05, Label: "AcResetRxFlags"},
	{Low: 0x06, High: 0x06, Label: "AcAnalysisOn"},
	{Low: 0x07, High: 0x07, Label: "AcAnalysisOff"},
	{Low: 0x08, High: 0x08, Label: "AcFailHold"},
	{Low: 0x09, High: 0x09, Label: "AcFailZero"},
	{Low: 0x0a, High: 0x0a, Label: "AcFailFull"},
	{Low: 0x0b, High: 0x0b, Label: "AcFailScene"},
	{Low: 0x0c, High: 0x0c, Label: "AcFailRecord"},
	{Low: 0x10, High: 0x13, Build: valtab.Indexed("AcMergeLtp", 0x10)},
	{Low: 0x20, High: 0x23, Build: valtab.Indexed("AcDirectionTx", 0x20)},
	{Low: 0x30, High: 0x33, Build: valtab.Indexed("AcDirectionRx", 0x30)},
	{Low: 0x50, High: 0x53, Build: valtab.Indexed("AcMergeHtp", 0x50)},
	{Low: 0x60, High: 0x63, Build: valtab.Indexed("AcArtNetSel", 0x60)},
	{Low: 0x70, High: 0x73, Build: valtab.Indexed("AcAcnSel", 0x70)},
	{Low: 0x90, High: 0x93, Build: valtab.Indexed("AcClearOp", 0x90)},
	{Low: 0xa0, High: 0xa3, Build: valtab.Indexed("AcStyleDelta", 0xa0)},
	{Low: 0xb0, High: 0xb3, Build: valtab.Indexed("AcStyleConst", 0xb0)},
	{Low: 0xc0, High: 0xc3, Build: valtab.Indexed("AcRdmEnable", 0xc0)},
	{Low: 0xd0, High: 0xd3, Build: valtab.Indexed("AcRdmDisable", 0xd0)},
}

var todRequestCommands = valtab.Table{
	{0x00, "TodFull"},
}

var todDataCommands = valtab.Table{
	{0x00, "TodFull"},
	{0xff, "TodNak"},
}

var todControlCommands = valtab.Table{
	{0x00, "AtcNone"},
	{0x01, "AtcFlush"},
	{0x02, "AtcEnd"},
	{0x03, "AtcIncOn"},
	{0x04, "AtcIncOff"},
}

var rdmVersions = valtab.Table{
	{0x00, "Draft"},
	{0x01, "Standard"},
}

var rdmCommands = valtab.Table{
	{0x00, "ArProcess"},
}

var rdmSubCommandClasses = valtab.Table{
	{0x20, "Get"},
	{0x21, "GetResponse"},
	{0x30, "Set"},
	{0x31, "SetResponse"},
}

var timecodeTypes = valtab.Table{
	{0x00, "Film (24fps)"},
	{0x01, "EBU (25fps)"},
	{0x02, "DF (29.97fps)"},
	{0x03, "SMPTE (30fps)"},
}

// framesPerSecond is indexed by timecode type.
var framesPerSecond = [...]uint64{24, 25, 30, 30}

var triggerKeys = valtab.Table{
	{0x00, "KeyAscii"},
	{0x01, "KeyMacro"},
	{0x02, "KeySoft"},
	{0x03, "KeyShow"},
}

var firmwareMasterTypes = valtab.Table{
	{0x00, "FirmFirst"},
	{0x01, "FirmCont"},
	{0x02, "FirmLast"},
	{0x03, "UbeaFirst"},
	{0x04, "UbeaCont"},
	{0x05, "UbeaLast"},
}

var firmwareReplyTypes = valtab.Table{
	{0x00, "FirmBlockGood"},
	{0x01, "FirmAllGood"},
	{0xff, "FirmFail"},
}

var dataRequests = valtab.Chain{
	valtab.Table{
		{0x0000, "DrPoll"},
		{0x0001, "DrUrlProduct"},
		{0x0002, "DrUrlUserGuide"},
		{0x0003, "DrUrlSupport"},
		{0x0004, "DrUrlPersUdr"},
		{0x0005, "DrUrlPersGdtf"},
	},
	valtab.RangeTable{
		{Low: 0x8000, High: 0xffff, Label: "DrManSpec"},
	},
}

var vlcLanguages = valtab.Table{
	{0x0000, "BeaconURL"},
	{0x0001, "BeaconText"},
	{0x0002, "BeaconLocationID"},
}
