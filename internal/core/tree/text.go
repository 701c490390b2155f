package tree

import (
	"encoding/hex"
	"math/bits"
	"net/netip"
	"strings"

	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/valtab"
)

// maxBytesShown caps the hex rendering of byte fields.
const maxBytesShown = 24

// Text returns the display line for a node. It has no side effects.
func (t *Tree) Text(ref NodeRef) string {
	n := &t.nodes[ref]
	switch n.Kind {
	case field.KindText, field.KindProtocol, field.KindSubtree:
		if n.Def != nil && n.Label != "" {
			return n.Def.Name + ": " + n.Label
		}
		return n.Name()
	}

	var b strings.Builder
	if n.Def != nil && n.Def.Mask != 0 {
		raw := n.Uint << uint(bits.TrailingZeros64(n.Def.Mask))
		b.WriteString(bitPattern(raw, n.Def.Mask, n.Range.Len))
		b.WriteString(" = ")
	}
	b.WriteString(n.Name())
	b.WriteString(": ")
	b.WriteString(t.value(n))
	return b.String()
}

func (t *Tree) value(n *Node) string {
	def := n.Def
	if def == nil {
		def = &field.Def{}
	}
	switch n.Kind {
	case field.KindUint, field.KindEnum:
		return def.Uint(n.Uint, n.Range.Len)
	case field.KindBool:
		if def.Values != nil {
			return valtab.LookupOr(def.Values, n.Uint, "%d")
		}
		if n.Uint != 0 {
			return "True"
		}
		return "False"
	case field.KindBitmask:
		return (&field.Def{Base: field.BaseHex}).Uint(n.Uint, n.Range.Len)
	case field.KindString:
		return n.Str
	case field.KindIPv4:
		if a, ok := netip.AddrFromSlice(n.Bytes); ok {
			return a.String()
		}
	case field.KindEther:
		if len(n.Bytes) == 6 {
			return formatMAC(n.Bytes)
		}
	}
	if def.FormatBytes != nil {
		return def.FormatBytes(n.Bytes)
	}
	if len(n.Bytes) == 0 {
		return "<empty>"
	}
	if len(n.Bytes) > maxBytesShown {
		return hex.EncodeToString(n.Bytes[:maxBytesShown]) + "..."
	}
	return hex.EncodeToString(n.Bytes)
}

// bitPattern renders raw under mask in nibble groups, e.g. "..1. ....".
func bitPattern(raw, mask uint64, width int) string {
	nbits := width * 8
	if nbits <= 0 || nbits > 64 {
		nbits = 64 - bits.LeadingZeros64(mask)
		nbits = (nbits + 7) &^ 7
	}
	var b strings.Builder
	b.Grow(nbits + nbits/4)
	for i := nbits - 1; i >= 0; i-- {
		bit := uint64(1) << uint(i)
		switch {
		case mask&bit == 0:
			b.WriteByte('.')
		case raw&bit != 0:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func formatMAC(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, 17)
	for i, v := range b {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, digits[v>>4], digits[v&0x0f])
	}
	return string(out)
}
