// Package decoder implements the dissection engine: protocol registration,
// opcode dispatch, sub-dissector delegation and heuristic probing.
package decoder

import (
	"fmt"
	"sort"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/bitmask"
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

// Routine decodes the bytes under c into children of parent. The number of
// bytes it consumed is the cursor position when it returns. A returned
// error stops the dissection; the partial tree is kept.
type Routine func(d *Dissection, c *cursor.Cursor, parent tree.NodeRef) error

// Header decodes a protocol's common header. op is the descriptor selected
// from the peeked discriminant, nil when the discriminant is unknown or
// could not be peeked.
type Header func(d *Dissection, c *cursor.Cursor, parent tree.NodeRef, op *Opcode) error

// Peek returns the discriminant without consuming input.
type Peek func(c *cursor.Cursor) (uint64, error)

// Probe decides from content alone whether a buffer belongs to a protocol.
// It must not allocate and must return false for short buffers.
type Probe func(buf []byte) bool

// Opcode describes one packet type of an opcode-framed protocol.
type Opcode struct {
	Code    uint64
	Name    string
	Routine Routine
	MinLen  int // body bytes expected after the header
}

// OpcodeTable is a protocol's opcode set sorted ascending by Code.
type OpcodeTable []Opcode

// Get returns the descriptor for code, or nil.
func (t OpcodeTable) Get(code uint64) *Opcode {
	i := sort.Search(len(t), func(i int) bool { return t[i].Code >= code })
	if i < len(t) && t[i].Code == code {
		return &t[i]
	}
	return nil
}

// Lookup labels code with the opcode name, so the table can be attached to
// the discriminant field as its value table.
func (t OpcodeTable) Lookup(code uint64) (string, bool) {
	if op := t.Get(code); op != nil {
		return op.Name, true
	}
	return "", false
}

// Validate checks the table is sorted, unique and fully populated.
func (t OpcodeTable) Validate() error {
	for i := range t {
		op := &t[i]
		if op.Name == "" || op.Routine == nil {
			return fmt.Errorf("opcode %#x: missing name or routine: %w", op.Code, core.ErrInvalidField)
		}
		if op.MinLen < 0 {
			return fmt.Errorf("opcode %s: negative minimum length: %w", op.Name, core.ErrInvalidField)
		}
		if i > 0 && op.Code <= t[i-1].Code {
			if op.Code == t[i-1].Code {
				return fmt.Errorf("opcode %#x (%s, %s): %w", op.Code, t[i-1].Name, op.Name, core.ErrDuplicateOpcode)
			}
			return fmt.Errorf("opcode %#x (%s) not after %#x: %w", op.Code, op.Name, t[i-1].Code, core.ErrInvalidTable)
		}
	}
	return nil
}

// Bitmask pairs a container field with its sub-field spec.
type Bitmask struct {
	Def  *field.Def
	Spec bitmask.Spec
}

// Protocol is a registered protocol description.
//
// Opcode-framed protocols set Peek, Header and Opcodes; the dispatcher
// peeks the discriminant, decodes the header and runs the selected
// routine. Other protocols set Dissect.
type Protocol struct {
	Name  string // registry key, also the root of field abbreviations
	Title string // display name

	Ports []uint16 // UDP ports claimed by the protocol
	Probe Probe

	Peek       Peek
	Header     Header
	HeaderName string
	Opcodes    OpcodeTable

	Dissect Routine

	Fields   []*field.Def
	Bitmasks []*Bitmask
}

func (p *Protocol) headerName() string {
	if p.HeaderName != "" {
		return p.HeaderName
	}
	return "Header"
}

func (p *Protocol) validate() error {
	if p.Name == "" {
		return fmt.Errorf("protocol without name: %w", core.ErrInvalidField)
	}
	framed := p.Peek != nil || p.Header != nil || len(p.Opcodes) > 0
	switch {
	case framed && p.Dissect != nil:
		return fmt.Errorf("protocol %s: both opcode framing and Dissect set: %w", p.Name, core.ErrInvalidField)
	case framed && (p.Peek == nil || p.Header == nil || len(p.Opcodes) == 0):
		return fmt.Errorf("protocol %s: opcode framing needs Peek, Header and Opcodes: %w", p.Name, core.ErrInvalidField)
	case !framed && p.Dissect == nil:
		return fmt.Errorf("protocol %s: no decode routine: %w", p.Name, core.ErrInvalidField)
	}
	if err := p.Opcodes.Validate(); err != nil {
		return fmt.Errorf("protocol %s: %w", p.Name, err)
	}

	defs := append([]*field.Def{}, p.Fields...)
	for _, bm := range p.Bitmasks {
		if bm == nil || bm.Def == nil {
			return fmt.Errorf("protocol %s: nil bitmask: %w", p.Name, core.ErrInvalidBitmask)
		}
		if bm.Def.Kind != field.KindBitmask {
			return fmt.Errorf("protocol %s: %s is not a bitmask field: %w", p.Name, bm.Def.Abbrev, core.ErrInvalidBitmask)
		}
		if err := bm.Spec.Validate(bm.Def.Width); err != nil {
			return fmt.Errorf("protocol %s: %s: %w", p.Name, bm.Def.Abbrev, err)
		}
		defs = append(defs, bm.Def)
		defs = append(defs, bm.Spec...)
	}
	if err := field.ValidateAll(defs); err != nil {
		return fmt.Errorf("protocol %s: %w", p.Name, err)
	}
	return nil
}
