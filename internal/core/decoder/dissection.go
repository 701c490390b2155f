package decoder

import (
	"fmt"
	"net/netip"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/bitmask"
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

// Dissection is the state of one dissection call. Decode routines add
// fields through it; it is never shared between calls.
type Dissection struct {
	engine *Engine
	tree   *tree.Tree
	meta   core.Metadata
	depth  int
}

// Tree returns the tree being built.
func (d *Dissection) Tree() *tree.Tree { return d.tree }

// Meta returns the packet metadata.
func (d *Dissection) Meta() core.Metadata { return d.meta }

// Depth returns the current sub-dissector nesting depth.
func (d *Dissection) Depth() int { return d.depth }

// body runs p over c under node, then flags unconsumed bytes.
func (d *Dissection) body(p *Protocol, c *cursor.Cursor, node tree.NodeRef) error {
	var err error
	if p.Dissect != nil {
		err = p.Dissect(d, c, node)
	} else {
		err = d.dispatch(p, c, node)
	}
	if err != nil {
		return err
	}
	if rem := c.Remaining(); rem > 0 {
		start := c.Abs()
		b, _ := c.Bytes(rem)
		d.tree.Append(node, tree.Node{Def: hfExcess, Kind: field.KindBytes, Bytes: b, Range: tree.Range{Start: start, Len: rem}})
		d.tree.Report(tree.SeverityWarning, tree.CodeExcessData,
			fmt.Sprintf("%d bytes of excess data after %s", rem, p.Title),
			tree.Range{Start: start, Len: rem})
	}
	return nil
}

// dispatch peeks the discriminant, decodes the header and runs the opcode
// routine. Unknown opcodes end in an opaque leaf.
func (d *Dissection) dispatch(p *Protocol, c *cursor.Cursor, node tree.NodeRef) error {
	var op *Opcode
	code, perr := p.Peek(c)
	if perr == nil {
		op = p.Opcodes.Get(code)
	}

	hdr := d.Subtree(node, p.headerName(), c)
	err := p.Header(d, c, hdr, op)
	d.Close(hdr, c)
	if err != nil {
		return err
	}

	if op == nil {
		d.SetInfo("Unknown opcode %#x", code)
		if d.engine.opts.AuditUnknown {
			d.Report(tree.SeverityNote, tree.CodeUnknownOpcode, tree.Range{Start: c.Abs(), Len: c.Remaining()},
				"%s: unknown opcode %#x", p.Title, code)
		}
		if c.Remaining() > 0 {
			d.Opaque(c, node, hfUnparsed)
		}
		return nil
	}

	if d.depth == 0 {
		d.tree.SetOpcode(op.Name)
	}
	body := d.Subtree(node, op.Name, c)
	if rem := c.Remaining(); rem < op.MinLen {
		d.Report(tree.SeverityWarning, tree.CodeShortBody, tree.Range{Start: c.Abs(), Len: rem},
			"%s body is %d bytes, expected at least %d", op.Name, rem, op.MinLen)
	}
	err = op.Routine(d, c, body)
	d.Close(body, c)
	return err
}

// Delegate hands c to the protocol registered under name and splices its
// tree under parent. The sub-dissector only sees c. When name is not
// registered the bytes become an opaque leaf.
func (d *Dissection) Delegate(name string, c *cursor.Cursor, parent tree.NodeRef) error {
	p, ok := d.engine.reg.Find(name)
	if !ok {
		if d.engine.opts.AuditUnknown {
			d.Report(tree.SeverityNote, tree.CodeUnregistered, tree.Range{Start: c.Abs(), Len: c.Remaining()},
				"no dissector registered for %s", name)
		}
		if c.Remaining() > 0 {
			d.Opaque(c, parent, hfData)
		}
		return nil
	}
	if d.depth >= d.engine.opts.MaxDepth {
		return &RecursionError{
			Protocol: name,
			Depth:    d.depth + 1,
			Range:    tree.Range{Start: c.Abs(), Len: c.Remaining()},
		}
	}

	d.depth++
	defer func() { d.depth-- }()
	node := d.tree.Append(parent, tree.Node{
		Label: p.Title,
		Kind:  field.KindProtocol,
		Range: tree.Range{Start: c.Abs(), Len: c.Remaining()},
	})
	return d.body(p, c, node)
}

// SetInfo sets the tree summary. Only the top-level protocol writes it.
func (d *Dissection) SetInfo(format string, args ...any) {
	if d.depth == 0 {
		d.tree.SetInfo(fmt.Sprintf(format, args...))
	}
}

// Report attaches a diagnostic. Decoding continues.
func (d *Dissection) Report(sev tree.Severity, code string, rng tree.Range, format string, args ...any) {
	d.tree.Report(sev, code, fmt.Sprintf(format, args...), rng)
}

// Malformed reports a field whose content breaks a protocol rule.
func (d *Dissection) Malformed(rng tree.Range, format string, args ...any) {
	d.Report(tree.SeverityWarning, tree.CodeMalformed, rng, format, args...)
}

// Note reports an informational finding.
func (d *Dissection) Note(rng tree.Range, format string, args ...any) {
	d.Report(tree.SeverityNote, tree.CodeMalformed, rng, format, args...)
}

// Subtree opens a container at the cursor position. Close it with Close.
func (d *Dissection) Subtree(parent tree.NodeRef, label string, c *cursor.Cursor) tree.NodeRef {
	return d.tree.Append(parent, tree.Node{Label: label, Kind: field.KindSubtree, Range: tree.Range{Start: c.Abs()}})
}

// Close sets a container's length to the bytes consumed since it opened.
func (d *Dissection) Close(ref tree.NodeRef, c *cursor.Cursor) {
	n := d.tree.Node(ref)
	d.tree.SetLen(ref, max(c.Abs()-n.Range.Start, 0))
}

// Text appends a free-text node.
func (d *Dissection) Text(parent tree.NodeRef, rng tree.Range, format string, args ...any) tree.NodeRef {
	return d.tree.Append(parent, tree.Node{Label: fmt.Sprintf(format, args...), Kind: field.KindText, Range: rng})
}

// AddUint reads an integer field of def.Width bytes in def's byte order.
func (d *Dissection) AddUint(c *cursor.Cursor, parent tree.NodeRef, def *field.Def) (uint64, error) {
	start := c.Abs()
	v, err := c.Uint(def.Width, def.ByteOrder())
	if err != nil {
		return 0, err
	}
	stored := v
	if def.Kind == field.KindBool && v != 0 {
		stored = 1
	}
	d.tree.Append(parent, tree.Node{Def: def, Kind: def.Kind, Uint: stored, Range: tree.Range{Start: start, Len: def.Width}})
	return v, nil
}

// AddGenerated appends an integer derived from other fields. It covers the
// bytes it was derived from and consumes nothing.
func (d *Dissection) AddGenerated(parent tree.NodeRef, def *field.Def, rng tree.Range, v uint64) tree.NodeRef {
	return d.tree.Append(parent, tree.Node{Def: def, Kind: def.Kind, Uint: v, Range: rng})
}

// AddBytes reads n raw bytes.
func (d *Dissection) AddBytes(c *cursor.Cursor, parent tree.NodeRef, def *field.Def, n int) ([]byte, error) {
	start := c.Abs()
	b, err := c.Bytes(n)
	if err != nil {
		return nil, err
	}
	d.tree.Append(parent, tree.Node{Def: def, Kind: def.Kind, Bytes: b, Range: tree.Range{Start: start, Len: n}})
	return b, nil
}

// AddString reads an n-byte NUL-padded string.
func (d *Dissection) AddString(c *cursor.Cursor, parent tree.NodeRef, def *field.Def, n int) (string, error) {
	start := c.Abs()
	s, err := c.FixedString(n)
	if err != nil {
		return "", err
	}
	d.tree.Append(parent, tree.Node{Def: def, Kind: field.KindString, Str: s, Range: tree.Range{Start: start, Len: n}})
	return s, nil
}

// AddCString reads a NUL-terminated string of at most maxLen bytes.
func (d *Dissection) AddCString(c *cursor.Cursor, parent tree.NodeRef, def *field.Def, maxLen int) (string, error) {
	start := c.Abs()
	s, err := c.CString(maxLen)
	if err != nil {
		return "", err
	}
	d.tree.Append(parent, tree.Node{Def: def, Kind: field.KindString, Str: s, Range: tree.Range{Start: start, Len: c.Abs() - start}})
	return s, nil
}

// AddIPv4 reads a 4-byte IPv4 address.
func (d *Dissection) AddIPv4(c *cursor.Cursor, parent tree.NodeRef, def *field.Def) (netip.Addr, error) {
	start := c.Abs()
	b, err := c.Bytes(4)
	if err != nil {
		return netip.Addr{}, err
	}
	d.tree.Append(parent, tree.Node{Def: def, Kind: field.KindIPv4, Bytes: b, Range: tree.Range{Start: start, Len: 4}})
	return netip.AddrFrom4([4]byte(b)), nil
}

// AddEther reads a 6-byte MAC address.
func (d *Dissection) AddEther(c *cursor.Cursor, parent tree.NodeRef, def *field.Def) ([]byte, error) {
	start := c.Abs()
	b, err := c.Bytes(6)
	if err != nil {
		return nil, err
	}
	d.tree.Append(parent, tree.Node{Def: def, Kind: field.KindEther, Bytes: b, Range: tree.Range{Start: start, Len: 6}})
	return b, nil
}

// AddBitmask reads bm's scalar and appends the container with one child
// per sub-field.
func (d *Dissection) AddBitmask(c *cursor.Cursor, parent tree.NodeRef, bm *Bitmask) (uint64, error) {
	start := c.Abs()
	raw, children, err := bitmask.Decode(c, bm.Def.Width, bm.Def.ByteOrder(), bm.Spec)
	if err != nil {
		return 0, err
	}
	ref := d.tree.Append(parent, tree.Node{Def: bm.Def, Kind: field.KindBitmask, Uint: raw, Range: tree.Range{Start: start, Len: bm.Def.Width}})
	for _, child := range children {
		d.tree.Append(ref, child)
	}
	return raw, nil
}

// Opaque consumes the rest of c as one byte leaf.
func (d *Dissection) Opaque(c *cursor.Cursor, parent tree.NodeRef, def *field.Def) tree.NodeRef {
	start := c.Abs()
	rest := c.Rest()
	b, _ := rest.Bytes(rest.Remaining())
	return d.tree.Append(parent, tree.Node{Def: def, Kind: field.KindBytes, Bytes: b, Range: tree.Range{Start: start, Len: len(b)}})
}
