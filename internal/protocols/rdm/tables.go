package rdm

import "firestige.xyz/dissector/internal/core/valtab"

var commandClasses = valtab.Table{
	{0x10, "DISCOVERY_COMMAND"},
	{0x11, "DISCOVERY_COMMAND_RESPONSE"},
	{0x20, "GET_COMMAND"},
	{0x21, "GET_COMMAND_RESPONSE"},
	{0x30, "SET_COMMAND"},
	{0x31, "SET_COMMAND_RESPONSE"},
}

var responseTypes = valtab.Table{
	{0x00, "RESPONSE_TYPE_ACK"},
	{0x01, "RESPONSE_TYPE_ACK_TIMER"},
	{0x02, "RESPONSE_TYPE_NACK_REASON"},
	{0x03, "RESPONSE_TYPE_ACK_OVERFLOW"},
}

var nackReasons = valtab.Table{
	{0x0000, "NR_UNKNOWN_PID"},
	{0x0001, "NR_FORMAT_ERROR"},
	{0x0002, "NR_HARDWARE_FAULT"},
	{0x0003, "NR_PROXY_REJECT"},
	{0x0004, "NR_WRITE_PROTECT"},
	{0x0005, "NR_UNSUPPORTED_COMMAND_CLASS"},
	{0x0006, "NR_DATA_OUT_OF_RANGE"},
	{0x0007, "NR_BUFFER_FULL"},
	{0x0008, "NR_PACKET_SIZE_UNSUPPORTED"},
	{0x0009, "NR_SUB_DEVICE_OUT_OF_RANGE"},
	{0x000a, "NR_PROXY_BUFFER_FULL"},
}

var productCategories = valtab.Table{
	{0x0000, "PRODUCT_CATEGORY_NOT_DECLARED"},
	{0x0100, "PRODUCT_CATEGORY_FIXTURE"},
	{0x0101, "PRODUCT_CATEGORY_FIXTURE_FIXED"},
	{0x0102, "PRODUCT_CATEGORY_FIXTURE_MOVING_YOKE"},
	{0x0103, "PRODUCT_CATEGORY_FIXTURE_MOVING_MIRROR"},
	{0x01ff, "PRODUCT_CATEGORY_FIXTURE_OTHER"},
	{0x0200, "PRODUCT_CATEGORY_FIXTURE_ACCESSORY"},
	{0x0300, "PRODUCT_CATEGORY_PROJECTOR"},
	{0x0400, "PRODUCT_CATEGORY_ATMOSPHERIC"},
	{0x0500, "PRODUCT_CATEGORY_DIMMER"},
	{0x0600, "PRODUCT_CATEGORY_POWER"},
	{0x0700, "PRODUCT_CATEGORY_SCENIC"},
	{0x0800, "PRODUCT_CATEGORY_DATA"},
	{0x0900, "PRODUCT_CATEGORY_AV"},
	{0x0a00, "PRODUCT_CATEGORY_MONITOR"},
	{0x7000, "PRODUCT_CATEGORY_CONTROL"},
	{0x7100, "PRODUCT_CATEGORY_TEST"},
	{0x7fff, "PRODUCT_CATEGORY_OTHER"},
}

var standardPIDs = valtab.Table{
	{0x0001, "DISC_UNIQUE_BRANCH"},
	{0x0002, "DISC_MUTE"},
	{0x0003, "DISC_UN_MUTE"},
	{0x0010, "PROXIED_DEVICES"},
	{0x0011, "PROXIED_DEVICE_COUNT"},
	{0x0015, "COMMS_STATUS"},
	{0x0020, "QUEUED_MESSAGE"},
	{0x0030, "STATUS_MESSAGES"},
	{0x0031, "STATUS_ID_DESCRIPTION"},
	{0x0032, "CLEAR_STATUS_ID"},
	{0x0033, "SUB_DEVICE_STATUS_REPORT_THRESHOLD"},
	{0x0050, "SUPPORTED_PARAMETERS"},
	{0x0051, "PARAMETER_DESCRIPTION"},
	{0x0060, "DEVICE_INFO"},
	{0x0070, "PRODUCT_DETAIL_ID_LIST"},
	{0x0080, "DEVICE_MODEL_DESCRIPTION"},
	{0x0081, "MANUFACTURER_LABEL"},
	{0x0082, "DEVICE_LABEL"},
	{0x0090, "FACTORY_DEFAULTS"},
	{0x00a0, "LANGUAGE_CAPABILITIES"},
	{0x00b0, "LANGUAGE"},
	{0x00c0, "SOFTWARE_VERSION_LABEL"},
	{0x00c1, "BOOT_SOFTWARE_VERSION_ID"},
	{0x00c2, "BOOT_SOFTWARE_VERSION_LABEL"},
	{0x00e0, "DMX_PERSONALITY"},
	{0x00e1, "DMX_PERSONALITY_DESCRIPTION"},
	{0x00f0, "DMX_START_ADDRESS"},
	{0x0120, "SLOT_INFO"},
	{0x0121, "SLOT_DESCRIPTION"},
	{0x0122, "DEFAULT_SLOT_VALUE"},
	{0x0200, "SENSOR_DEFINITION"},
	{0x0201, "SENSOR_VALUE"},
	{0x0202, "RECORD_SENSORS"},
	{0x0400, "DEVICE_HOURS"},
	{0x0401, "LAMP_HOURS"},
	{0x0402, "LAMP_STRIKES"},
	{0x0403, "LAMP_STATE"},
	{0x0404, "LAMP_ON_MODE"},
	{0x0405, "DEVICE_POWER_CYCLES"},
	{0x0500, "DISPLAY_INVERT"},
	{0x0501, "DISPLAY_LEVEL"},
	{0x0600, "PAN_INVERT"},
	{0x0601, "TILT_INVERT"},
	{0x0602, "PAN_TILT_SWAP"},
	{0x0603, "REAL_TIME_CLOCK"},
	{0x1000, "IDENTIFY_DEVICE"},
	{0x1001, "RESET_DEVICE"},
	{0x1010, "POWER_STATE"},
	{0x1020, "PERFORM_SELFTEST"},
	{0x1021, "SELF_TEST_DESCRIPTION"},
	{0x1030, "CAPTURE_PRESET"},
	{0x1031, "PRESET_PLAYBACK"},
}

// ParameterIDs labels standard parameter IDs and the manufacturer
// specific block.
var ParameterIDs = valtab.Chain{
	standardPIDs,
	valtab.RangeTable{
		{Low: 0x8000, High: 0xffdf, Label: "Manufacturer specific"},
	},
}
