// Package core defines core types.
package core

// Labels represents key-value metadata attached to a Record.
type Labels map[string]string

// Label naming constants following {scope}.{field} convention.
const (
	LabelProtocol  = "dissector.protocol"
	LabelOpcode    = "dissector.opcode"     // Opcode label, e.g. "OpPoll"
	LabelSeverity  = "dissector.severity"   // Highest diagnostic severity ("note", "warning", "error")
	LabelDiagCount = "dissector.diag_count" // Number of diagnostics (decimal)
	LabelFlow      = "dissector.flow"       // src>dst flow key

	// Art-Net labels
	LabelArtNetUniverse  = "artnet.universe"   // 15-bit port address (decimal)
	LabelArtNetShortName = "artnet.short_name" // PollReply short name
)
