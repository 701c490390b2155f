// Package tree implements the field tree produced by one dissection call.
//
// Nodes live in a single slice owned by the Tree and refer to each other by
// index (NodeRef), so growing the arena never invalidates a reference held
// by a decoder. Children keep insertion order. Every node records the byte
// range of the packet it was decoded from.
package tree

import (
	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/field"
)

// NodeRef addresses a node inside its Tree.
type NodeRef int32

const (
	// Root is the protocol root every tree starts with.
	Root NodeRef = 0
	// None is returned when no node matches.
	None NodeRef = -1
)

// Range is a half-open byte range [Start, Start+Len) of the packet.
type Range struct {
	Start int
	Len   int
}

// End returns Start+Len.
func (r Range) End() int { return r.Start + r.Len }

// Contains reports whether off falls inside the range.
func (r Range) Contains(off int) bool { return off >= r.Start && off < r.End() }

// Node is one decoded field.
type Node struct {
	Def   *field.Def // nil for text, protocol and ad hoc subtree nodes
	Label string     // display name (or full text for KindText) when Def is nil
	Kind  field.Kind
	Range Range

	Uint  uint64 // for mask sub-fields, the value shifted down to bit 0
	Str   string
	Bytes []byte // aliases the packet

	Parent NodeRef

	first, last, next NodeRef
}

// Name returns the display name of the node.
func (n Node) Name() string {
	if n.Def != nil {
		return n.Def.Name
	}
	return n.Label
}

// Abbrev returns the filter abbreviation, empty for ad hoc nodes.
func (n Node) Abbrev() string {
	if n.Def != nil {
		return n.Def.Abbrev
	}
	return ""
}

// Value returns the decoded value as a Go value: uint64, bool, string or
// []byte depending on Kind; nil for structural nodes.
func (n Node) Value() any {
	switch n.Kind {
	case field.KindUint, field.KindEnum, field.KindBitmask:
		return n.Uint
	case field.KindBool:
		return n.Uint != 0
	case field.KindString:
		return n.Str
	case field.KindBytes, field.KindIPv4, field.KindEther:
		return n.Bytes
	}
	return nil
}

// Tree is the output of one dissection call.
type Tree struct {
	packet   *core.Packet
	protocol string
	info     string
	opcode   string
	nodes    []Node
	diags    []Diagnostic
}

// New returns a tree whose root node is a protocol node spanning the whole
// packet.
func New(pkt *core.Packet, protocol, title string) *Tree {
	t := &Tree{
		packet:   pkt,
		protocol: protocol,
		nodes:    make([]Node, 1, 64),
	}
	t.nodes[0] = Node{
		Label:  title,
		Kind:   field.KindProtocol,
		Range:  Range{Start: 0, Len: len(pkt.Data)},
		Parent: None,
		first:  None,
		last:   None,
		next:   None,
	}
	return t
}

// Packet returns the packet the tree was built from.
func (t *Tree) Packet() *core.Packet { return t.packet }

// Protocol returns the name of the top-level protocol.
func (t *Tree) Protocol() string { return t.protocol }

// Info returns the one-line summary.
func (t *Tree) Info() string { return t.info }

// SetInfo sets the one-line summary.
func (t *Tree) SetInfo(s string) { t.info = s }

// Opcode returns the name of the top-level opcode, empty when the
// protocol has no opcode table or the opcode was unknown.
func (t *Tree) Opcode() string { return t.opcode }

// SetOpcode records the top-level opcode name.
func (t *Tree) SetOpcode(s string) { t.opcode = s }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether ref addresses a node of this tree.
func (t *Tree) Valid(ref NodeRef) bool { return ref >= 0 && int(ref) < len(t.nodes) }

// Node returns a copy of the node at ref.
func (t *Tree) Node(ref NodeRef) Node { return t.nodes[ref] }

// Append adds n as the last child of parent and returns its reference.
func (t *Tree) Append(parent NodeRef, n Node) NodeRef {
	ref := NodeRef(len(t.nodes))
	n.Parent = parent
	n.first, n.last, n.next = None, None, None
	t.nodes = append(t.nodes, n)

	p := &t.nodes[parent]
	if p.last == None {
		p.first = ref
	} else {
		t.nodes[p.last].next = ref
	}
	p.last = ref
	return ref
}

// SetLen fixes the length of a container once its contents are decoded.
func (t *Tree) SetLen(ref NodeRef, n int) { t.nodes[ref].Range.Len = n }

// SetRootLength sets the length of the root node.
func (t *Tree) SetRootLength(n int) { t.nodes[Root].Range.Len = n }

// SetLabel replaces the display name of an ad hoc node.
func (t *Tree) SetLabel(ref NodeRef, s string) { t.nodes[ref].Label = s }

// FirstChild returns the first child of ref or None.
func (t *Tree) FirstChild(ref NodeRef) NodeRef { return t.nodes[ref].first }

// LastChild returns the most recently appended child of ref, or None.
func (t *Tree) LastChild(ref NodeRef) NodeRef { return t.nodes[ref].last }

// NextSibling returns the sibling following ref or None.
func (t *Tree) NextSibling(ref NodeRef) NodeRef { return t.nodes[ref].next }

// Children returns the children of ref in insertion order.
func (t *Tree) Children(ref NodeRef) []NodeRef {
	var out []NodeRef
	for c := t.nodes[ref].first; c != None; c = t.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// Walk visits nodes depth first in decode order. Returning false from fn
// stops the walk.
func (t *Tree) Walk(fn func(ref NodeRef, depth int) bool) {
	type frame struct {
		ref   NodeRef
		depth int
	}
	stack := []frame{{Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.ref, f.depth) {
			return
		}
		// Push children in reverse so the first child is visited first.
		mark := len(stack)
		for c := t.nodes[f.ref].first; c != None; c = t.nodes[c].next {
			stack = append(stack, frame{c, f.depth + 1})
		}
		for i, j := mark, len(stack)-1; i < j; i, j = i+1, j-1 {
			stack[i], stack[j] = stack[j], stack[i]
		}
	}
}

// Find returns the first node in decode order with the given abbreviation.
func (t *Tree) Find(abbrev string) (NodeRef, bool) {
	found := None
	t.Walk(func(ref NodeRef, _ int) bool {
		if t.nodes[ref].Abbrev() == abbrev {
			found = ref
			return false
		}
		return true
	})
	return found, found != None
}

// FindAll returns every node with the given abbreviation in decode order.
func (t *Tree) FindAll(abbrev string) []NodeRef {
	var out []NodeRef
	t.Walk(func(ref NodeRef, _ int) bool {
		if t.nodes[ref].Abbrev() == abbrev {
			out = append(out, ref)
		}
		return true
	})
	return out
}

// UintValue returns the integer value of the first node named abbrev.
func (t *Tree) UintValue(abbrev string) (uint64, bool) {
	ref, ok := t.Find(abbrev)
	if !ok || !t.nodes[ref].Kind.IsInteger() {
		return 0, false
	}
	return t.nodes[ref].Uint, true
}

// StringValue returns the string value of the first node named abbrev.
func (t *Tree) StringValue(abbrev string) (string, bool) {
	ref, ok := t.Find(abbrev)
	if !ok || t.nodes[ref].Kind != field.KindString {
		return "", false
	}
	return t.nodes[ref].Str, true
}

// At returns, in decode order, every node whose range covers the absolute
// packet offset off. The last element is the most specific field.
func (t *Tree) At(off int) []NodeRef {
	var out []NodeRef
	t.Walk(func(ref NodeRef, _ int) bool {
		if t.nodes[ref].Range.Contains(off) {
			out = append(out, ref)
		}
		return true
	})
	return out
}
