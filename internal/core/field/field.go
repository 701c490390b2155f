// Package field holds header-field definitions: the static description of
// one decodable field (display name, filter abbreviation, type, width,
// byte order, display base and value table).
//
// Definitions are declared as package-level values by protocol
// descriptions and validated once when the protocol is registered.
package field

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/valtab"
)

// Kind is the semantic type of a decoded value.
type Kind uint8

const (
	KindText     Kind = iota // free text, no value
	KindProtocol             // protocol root or sub-protocol subtree
	KindSubtree              // structural container
	KindUint
	KindEnum
	KindBool
	KindString
	KindBytes
	KindBitmask
	KindIPv4
	KindEther
)

var kindNames = [...]string{
	KindText:     "text",
	KindProtocol: "protocol",
	KindSubtree:  "subtree",
	KindUint:     "uint",
	KindEnum:     "enum",
	KindBool:     "bool",
	KindString:   "string",
	KindBytes:    "bytes",
	KindBitmask:  "bitmask",
	KindIPv4:     "ipv4",
	KindEther:    "ether",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsInteger reports whether values of this kind are read as scalars.
func (k Kind) IsInteger() bool {
	switch k {
	case KindUint, KindEnum, KindBool, KindBitmask:
		return true
	}
	return false
}

// Base selects how integers are displayed.
type Base uint8

const (
	BaseDec Base = iota
	BaseHex
	BaseDecHex
	BaseHexDec
)

// Def describes one field.
type Def struct {
	Name   string
	Abbrev string
	Kind   Kind
	Width  int              // bytes, for integer kinds
	Order  binary.ByteOrder // nil means big-endian
	Base   Base
	Values valtab.Lookup
	Mask   uint64 // bitmask sub-fields only

	// Optional custom renderers.
	FormatUint  func(v uint64) string
	FormatBytes func(b []byte) string
}

// ByteOrder returns the field's byte order, defaulting to big-endian.
func (d *Def) ByteOrder() binary.ByteOrder {
	if d.Order == nil {
		return binary.BigEndian
	}
	return d.Order
}

// Validate checks a single definition.
func (d *Def) Validate() error {
	if d.Name == "" || d.Abbrev == "" {
		return fmt.Errorf("field %q/%q: missing name or abbreviation: %w", d.Name, d.Abbrev, core.ErrInvalidField)
	}
	if !validAbbrev(d.Abbrev) {
		return fmt.Errorf("field %s: malformed abbreviation: %w", d.Abbrev, core.ErrInvalidField)
	}
	if d.Kind.IsInteger() && d.Mask == 0 {
		switch d.Width {
		case 1, 2, 3, 4, 8:
		default:
			return fmt.Errorf("field %s: width %d: %w", d.Abbrev, d.Width, core.ErrInvalidField)
		}
	}
	if d.Kind == KindEnum && d.Values == nil && d.FormatUint == nil {
		return fmt.Errorf("field %s: enum without value table: %w", d.Abbrev, core.ErrInvalidField)
	}
	if d.Values != nil {
		if err := d.Values.Validate(); err != nil {
			return fmt.Errorf("field %s: %w: %w", d.Abbrev, core.ErrInvalidField, err)
		}
	}
	return nil
}

func validAbbrev(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return s[0] != '.' && s[len(s)-1] != '.'
}

// ValidateAll validates every definition and rejects duplicate
// abbreviations.
func ValidateAll(defs []*Def) error {
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d == nil {
			return fmt.Errorf("nil field definition: %w", core.ErrInvalidField)
		}
		if err := d.Validate(); err != nil {
			return err
		}
		if _, dup := seen[d.Abbrev]; dup {
			return fmt.Errorf("field %s: duplicate abbreviation: %w", d.Abbrev, core.ErrInvalidField)
		}
		seen[d.Abbrev] = struct{}{}
	}
	return nil
}

// Uint formats an integer value according to the definition. width is the
// number of bytes the value was read from and sizes hex output.
func (d *Def) Uint(v uint64, width int) string {
	if d.FormatUint != nil {
		return d.FormatUint(v)
	}
	digits := width * 2
	if digits == 0 {
		digits = 2
	}
	if d.Values != nil {
		label, ok := d.Values.Lookup(v)
		if !ok {
			label = "Unknown"
		}
		switch d.Base {
		case BaseHex, BaseHexDec:
			return fmt.Sprintf("%s (0x%0*x)", label, digits, v)
		default:
			return fmt.Sprintf("%s (%d)", label, v)
		}
	}
	switch d.Base {
	case BaseHex:
		return fmt.Sprintf("0x%0*x", digits, v)
	case BaseDecHex:
		return fmt.Sprintf("%d (0x%0*x)", v, digits, v)
	case BaseHexDec:
		return fmt.Sprintf("0x%0*x (%d)", digits, v, v)
	default:
		return fmt.Sprintf("%d", v)
	}
}
