// Package dmx renders DMX512 slot data as rows of channel levels.
package dmx

import (
	"strconv"
	"strings"

	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

// Name is the registry key of the protocol.
const Name = "dmx"

// RowWidth is the number of channels shown per row.
const RowWidth = 16

var (
	hfLevels = &field.Def{Name: "Levels", Abbrev: "dmx.levels", Kind: field.KindBytes}
	hfActive = &field.Def{Name: "Active channels", Abbrev: "dmx.active", Kind: field.KindUint, Width: 2}
	hfCount  = &field.Def{Name: "Channel count", Abbrev: "dmx.count", Kind: field.KindUint, Width: 2}
)

// New builds the DMX512 channel data description.
func New() *decoder.Protocol {
	return &decoder.Protocol{
		Name:    Name,
		Title:   "DMX Channels",
		Dissect: dissect,
		Fields:  []*field.Def{hfLevels, hfActive, hfCount},
	}
}

func dissect(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	start := c.Abs()
	n := c.Remaining()
	levels, err := d.AddBytes(c, parent, hfLevels, n)
	if err != nil {
		return err
	}
	ref := d.Tree().LastChild(parent)
	whole := tree.Range{Start: start, Len: n}
	d.AddGenerated(parent, hfCount, whole, uint64(n))
	d.AddGenerated(parent, hfActive, whole, uint64(Active(levels)))

	for row := 0; row < n; row += RowWidth {
		end := min(row+RowWidth, n)
		d.Text(ref, tree.Range{Start: start + row, Len: end - row}, "%s", FormatRow(row, levels[row:end]))
	}
	return nil
}

// Active counts channels with a non-zero level.
func Active(levels []byte) int {
	n := 0
	for _, v := range levels {
		if v != 0 {
			n++
		}
	}
	return n
}

// FormatRow renders one row of levels, numbering channels from 1, e.g.
// "  1-4:   0 255  12   0".
func FormatRow(first int, levels []byte) string {
	var b strings.Builder
	b.WriteString(pad(strconv.Itoa(first+1), 3))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(first + len(levels)))
	b.WriteByte(':')
	for _, v := range levels {
		b.WriteByte(' ')
		b.WriteString(pad(strconv.Itoa(int(v)), 3))
	}
	return b.String()
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return strings.Repeat(" ", w-len(s)) + s
}
