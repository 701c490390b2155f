// Package valtab maps integer codes to human-readable labels.
//
// Tables are plain values built once when a protocol description is
// constructed and never mutated afterwards, so any number of dissections
// may look them up concurrently. Validate is run once at registration.
package valtab

import (
	"fmt"
	"sort"
	"strings"

	"firestige.xyz/dissector/internal/core"
)

// Lookup is implemented by every table flavour.
type Lookup interface {
	Lookup(code uint64) (string, bool)
	Validate() error
}

// LookupOr returns the label for code, or fallback when the table has
// none. A fallback holding a verb is rendered with code; a plain one is
// returned as is. A nil table always yields the fallback.
func LookupOr(l Lookup, code uint64, fallback string) string {
	if l != nil {
		if s, ok := l.Lookup(code); ok {
			return s
		}
	}
	if !strings.Contains(fallback, "%") {
		return fallback
	}
	return fmt.Sprintf(fallback, code)
}

// Entry is one code/label pair.
type Entry struct {
	Code  uint64
	Label string
}

// Table is a plain table sorted ascending by Code.
type Table []Entry

// Lookup binary searches the table.
func (t Table) Lookup(code uint64) (string, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Code >= code })
	if i < len(t) && t[i].Code == code {
		return t[i].Label, true
	}
	return "", false
}

// LookupOr is shorthand for LookupOr(t, code, fallback).
func (t Table) LookupOr(code uint64, fallback string) string {
	return LookupOr(t, code, fallback)
}

// Validate checks codes are strictly ascending.
func (t Table) Validate() error {
	for i := 1; i < len(t); i++ {
		if t[i].Code <= t[i-1].Code {
			return fmt.Errorf("code %#x (%q) not after %#x (%q): %w",
				t[i].Code, t[i].Label, t[i-1].Code, t[i-1].Label, core.ErrInvalidTable)
		}
	}
	return nil
}

// Range is an inclusive code range. When Build is set the label is
// computed from the code, otherwise Label is returned as is.
type Range struct {
	Low, High uint64
	Label     string
	Build     func(code uint64) string
}

// RangeTable is a set of non-overlapping ranges sorted ascending.
type RangeTable []Range

// Lookup finds the range containing code.
func (t RangeTable) Lookup(code uint64) (string, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].High >= code })
	if i < len(t) && t[i].Low <= code {
		if t[i].Build != nil {
			return t[i].Build(code), true
		}
		return t[i].Label, true
	}
	return "", false
}

// LookupOr is shorthand for LookupOr(t, code, fallback).
func (t RangeTable) LookupOr(code uint64, fallback string) string {
	return LookupOr(t, code, fallback)
}

// Validate checks every range is well formed, sorted and disjoint.
func (t RangeTable) Validate() error {
	for i, r := range t {
		if r.Low > r.High {
			return fmt.Errorf("range %#x-%#x (%q) inverted: %w", r.Low, r.High, r.Label, core.ErrInvalidTable)
		}
		if r.Label == "" && r.Build == nil {
			return fmt.Errorf("range %#x-%#x has no label: %w", r.Low, r.High, core.ErrInvalidTable)
		}
		if i > 0 && r.Low <= t[i-1].High {
			return fmt.Errorf("range %#x-%#x overlaps %#x-%#x: %w",
				r.Low, r.High, t[i-1].Low, t[i-1].High, core.ErrInvalidTable)
		}
	}
	return nil
}

// Indexed returns a Build func labelling code as prefix followed by its
// distance from low, e.g. Indexed("AcMergeLtp", 0x10) gives "AcMergeLtp2"
// for 0x12.
func Indexed(prefix string, low uint64) func(uint64) string {
	return func(code uint64) string {
		return fmt.Sprintf("%s%d", prefix, code-low)
	}
}

// Func computes a label from the code.
type Func func(code uint64) (string, bool)

// Lookup calls f.
func (f Func) Lookup(code uint64) (string, bool) { return f(code) }

// Validate rejects a nil func.
func (f Func) Validate() error {
	if f == nil {
		return fmt.Errorf("nil label func: %w", core.ErrInvalidTable)
	}
	return nil
}

// Chain consults each table in order; the first hit wins.
type Chain []Lookup

// Lookup walks the chain.
func (c Chain) Lookup(code uint64) (string, bool) {
	for _, l := range c {
		if s, ok := l.Lookup(code); ok {
			return s, true
		}
	}
	return "", false
}

// Validate validates every member.
func (c Chain) Validate() error {
	for i, l := range c {
		if l == nil {
			return fmt.Errorf("chain member %d is nil: %w", i, core.ErrInvalidTable)
		}
		if err := l.Validate(); err != nil {
			return fmt.Errorf("chain member %d: %w", i, err)
		}
	}
	return nil
}

// Bool labels zero and non-zero values.
func Bool(trueLabel, falseLabel string) Func {
	return func(code uint64) (string, bool) {
		if code != 0 {
			return trueLabel, true
		}
		return falseLabel, true
	}
}
