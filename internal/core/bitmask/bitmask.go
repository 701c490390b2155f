// Package bitmask decomposes one scalar wire field into named sub-fields.
package bitmask

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

// Spec lists the sub-fields of a bitmask in display order. Each entry's
// Mask selects its bits; masks may overlap.
type Spec []*field.Def

// Validate rejects specs that cannot be decoded from a field of the given
// width in bytes.
func (s Spec) Validate(width int) error {
	if len(s) == 0 {
		return fmt.Errorf("empty spec: %w", core.ErrInvalidBitmask)
	}
	var limit uint64 = ^uint64(0)
	if width < 8 {
		limit = uint64(1)<<(uint(width)*8) - 1
	}
	for i, d := range s {
		if d == nil {
			return fmt.Errorf("entry %d is nil: %w", i, core.ErrInvalidBitmask)
		}
		if d.Mask == 0 {
			return fmt.Errorf("%s: zero mask: %w", d.Abbrev, core.ErrInvalidBitmask)
		}
		if d.Mask&^limit != 0 {
			return fmt.Errorf("%s: mask %#x wider than %d bytes: %w", d.Abbrev, d.Mask, width, core.ErrInvalidBitmask)
		}
		switch d.Kind {
		case field.KindBool, field.KindUint, field.KindEnum:
		default:
			return fmt.Errorf("%s: kind %s cannot be a sub-field: %w", d.Abbrev, d.Kind, core.ErrInvalidBitmask)
		}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Extract returns the bits of raw selected by mask, shifted down to bit 0.
func Extract(raw, mask uint64) uint64 {
	return (raw & mask) >> uint(bits.TrailingZeros64(mask))
}

// Decode reads one scalar of width bytes and returns it together with one
// node per spec entry, in spec order. Every child covers the full range of
// the scalar. Boolean entries store 0 or 1.
func Decode(c *cursor.Cursor, width int, order binary.ByteOrder, spec Spec) (uint64, []tree.Node, error) {
	if order == nil {
		order = binary.BigEndian
	}
	start := c.Abs()
	raw, err := c.Uint(width, order)
	if err != nil {
		return 0, nil, err
	}
	rng := tree.Range{Start: start, Len: width}
	children := make([]tree.Node, len(spec))
	for i, d := range spec {
		v := Extract(raw, d.Mask)
		if d.Kind == field.KindBool && v != 0 {
			v = 1
		}
		children[i] = tree.Node{Def: d, Kind: d.Kind, Uint: v, Range: rng}
	}
	return raw, children, nil
}

// Encode builds a scalar from one value per spec entry. Values wider than
// their mask are cut to fit.
func Encode(spec Spec, values []uint64) uint64 {
	var raw uint64
	for i, d := range spec {
		if i >= len(values) {
			break
		}
		raw |= (values[i] << uint(bits.TrailingZeros64(d.Mask))) & d.Mask
	}
	return raw
}
