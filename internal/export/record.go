package export

import (
	"strconv"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/tree"
)

// Labels derives the record labels of a dissected packet.
func Labels(t *tree.Tree) core.Labels {
	labels := core.Labels{core.LabelProtocol: t.Protocol()}
	if op := t.Opcode(); op != "" {
		labels[core.LabelOpcode] = op
	}
	if sev, ok := t.MaxSeverity(); ok {
		labels[core.LabelSeverity] = sev.String()
		labels[core.LabelDiagCount] = strconv.Itoa(len(t.Diagnostics()))
	}
	if flow := t.Packet().Meta.FlowKey(); flow != "" {
		labels[core.LabelFlow] = flow
	}
	if v, ok := t.UintValue(core.LabelArtNetUniverse); ok {
		labels[core.LabelArtNetUniverse] = strconv.FormatUint(v, 10)
	}
	if v, ok := t.StringValue("artnet.poll_reply.short_name"); ok && v != "" {
		labels[core.LabelArtNetShortName] = v
	}
	return labels
}

// Record packages t for reporters. Body carries the exported Document.
func Record(t *tree.Tree, opts Options) *core.Record {
	pkt := t.Packet()
	return &core.Record{
		Number:    pkt.Meta.Number,
		Timestamp: pkt.Meta.Timestamp,
		SrcAddr:   pkt.Meta.SrcAddr,
		DstAddr:   pkt.Meta.DstAddr,
		Protocol:  t.Protocol(),
		Info:      t.Info(),
		Labels:    Labels(t),
		Body:      Build(t, opts),
	}
}
