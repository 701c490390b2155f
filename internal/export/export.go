// Package export renders field trees as text, JSON or YAML documents and
// builds the records handed to reporters.
package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (must be text/json/yaml): %w", s, core.ErrConfigInvalid)
}

// Options tunes rendering.
type Options struct {
	HexDump bool // append a hex dump of the packet
}

// Node is the serialisable form of a tree node.
type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Abbrev   string  `json:"abbrev,omitempty" yaml:"abbrev,omitempty"`
	Kind     string  `json:"kind" yaml:"kind"`
	Offset   int     `json:"offset" yaml:"offset"`
	Length   int     `json:"length" yaml:"length"`
	Value    any     `json:"value,omitempty" yaml:"value,omitempty"`
	Text     string  `json:"text" yaml:"text"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Diagnostic is the serialisable form of a diagnostic.
type Diagnostic struct {
	Severity tree.Severity `json:"severity" yaml:"severity"`
	Code     string        `json:"code" yaml:"code"`
	Message  string        `json:"message" yaml:"message"`
	Offset   int           `json:"offset" yaml:"offset"`
	Length   int           `json:"length" yaml:"length"`
}

// Document is one dissected packet.
type Document struct {
	Number      uint64       `json:"number,omitempty" yaml:"number,omitempty"`
	Timestamp   time.Time    `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`
	Source      string       `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string       `json:"destination,omitempty" yaml:"destination,omitempty"`
	Protocol    string       `json:"protocol" yaml:"protocol"`
	Opcode      string       `json:"opcode,omitempty" yaml:"opcode,omitempty"`
	Info        string       `json:"info,omitempty" yaml:"info,omitempty"`
	Length      int          `json:"length" yaml:"length"`
	Tree        *Node        `json:"tree" yaml:"tree"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	HexDump     string       `json:"hexdump,omitempty" yaml:"hexdump,omitempty"`
}

// Build converts t into a Document.
func Build(t *tree.Tree, opts Options) *Document {
	pkt := t.Packet()
	doc := &Document{
		Number:    pkt.Meta.Number,
		Timestamp: pkt.Meta.Timestamp,
		Protocol:  t.Protocol(),
		Opcode:    t.Opcode(),
		Info:      t.Info(),
		Length:    len(pkt.Data),
		Tree:      buildNode(t, tree.Root),
	}
	if pkt.Meta.SrcAddr.IsValid() {
		doc.Source = pkt.Meta.SrcAddr.String()
		doc.Destination = pkt.Meta.DstAddr.String()
	}
	for _, d := range t.Diagnostics() {
		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Severity: d.Severity,
			Code:     d.Code,
			Message:  d.Message,
			Offset:   d.Range.Start,
			Length:   d.Range.Len,
		})
	}
	if opts.HexDump {
		doc.HexDump = HexDump(pkt.Data)
	}
	return doc
}

func buildNode(t *tree.Tree, ref tree.NodeRef) *Node {
	n := t.Node(ref)
	out := &Node{
		Name:   n.Name(),
		Abbrev: n.Abbrev(),
		Kind:   n.Kind.String(),
		Offset: n.Range.Start,
		Length: n.Range.Len,
		Value:  value(n),
		Text:   t.Text(ref),
	}
	for c := t.FirstChild(ref); c != tree.None; c = t.NextSibling(c) {
		out.Children = append(out.Children, buildNode(t, c))
	}
	return out
}

// value maps a node value onto JSON and YAML friendly types: integers
// stay integers, addresses and byte strings become text.
func value(n tree.Node) any {
	switch n.Kind {
	case field.KindUint, field.KindEnum, field.KindBitmask:
		return n.Uint
	case field.KindBool:
		return n.Uint != 0
	case field.KindString:
		return n.Str
	case field.KindIPv4:
		if a, ok := netip.AddrFromSlice(n.Bytes); ok {
			return a.String()
		}
	case field.KindEther:
		parts := make([]string, len(n.Bytes))
		for i, b := range n.Bytes {
			parts[i] = fmt.Sprintf("%02x", b)
		}
		return strings.Join(parts, ":")
	case field.KindBytes:
		if len(n.Bytes) > 0 {
			return hex.EncodeToString(n.Bytes)
		}
	}
	return nil
}

// Write renders t to w in the given format.
func Write(w io.Writer, format Format, t *tree.Tree, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Build(t, opts))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Build(t, opts)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return WriteText(w, t, opts)
	}
}
