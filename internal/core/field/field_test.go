package field

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/valtab"
)

var opcodes = valtab.Table{{0x2000, "OpPoll"}, {0x2100, "OpPollReply"}}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     Def
		wantErr bool
	}{
		{"uint ok", Def{Name: "Sequence", Abbrev: "artnet.dmx.sequence", Kind: KindUint, Width: 1}, false},
		{"enum ok", Def{Name: "OpCode", Abbrev: "artnet.header.opcode", Kind: KindEnum, Width: 2, Values: opcodes}, false},
		{"string ok", Def{Name: "Short Name", Abbrev: "artnet.poll_reply.short_name", Kind: KindString}, false},
		{"mask child ok", Def{Name: "RDM", Abbrev: "artnet.status1.rdm", Kind: KindBool, Mask: 0x02}, false},
		{"missing name", Def{Abbrev: "x.y", Kind: KindUint, Width: 1}, true},
		{"missing abbrev", Def{Name: "x", Kind: KindUint, Width: 1}, true},
		{"bad abbrev", Def{Name: "x", Abbrev: "Art Net", Kind: KindUint, Width: 1}, true},
		{"trailing dot", Def{Name: "x", Abbrev: "artnet.", Kind: KindUint, Width: 1}, true},
		{"bad width", Def{Name: "x", Abbrev: "x.y", Kind: KindUint, Width: 5}, true},
		{"enum without table", Def{Name: "x", Abbrev: "x.y", Kind: KindEnum, Width: 1}, true},
		{"bad table", Def{Name: "x", Abbrev: "x.y", Kind: KindEnum, Width: 1, Values: valtab.Table{{2, "b"}, {1, "a"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidField)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBadTableWrapsBothSentinels(t *testing.T) {
	d := Def{Name: "x", Abbrev: "x.y", Kind: KindEnum, Width: 1, Values: valtab.Table{{2, "b"}, {1, "a"}}}
	err := d.Validate()
	assert.ErrorIs(t, err, core.ErrInvalidTable)
	assert.ErrorIs(t, err, core.ErrInvalidField)
}

func TestValidateAllRejectsDuplicates(t *testing.T) {
	a := &Def{Name: "A", Abbrev: "p.a", Kind: KindUint, Width: 1}
	b := &Def{Name: "B", Abbrev: "p.a", Kind: KindUint, Width: 1}
	require.NoError(t, ValidateAll([]*Def{a}))
	assert.ErrorIs(t, ValidateAll([]*Def{a, b}), core.ErrInvalidField)
	assert.ErrorIs(t, ValidateAll([]*Def{nil}), core.ErrInvalidField)
}

func TestByteOrderDefault(t *testing.T) {
	d := &Def{}
	assert.Equal(t, binary.BigEndian, d.ByteOrder())
	d.Order = binary.LittleEndian
	assert.Equal(t, binary.LittleEndian, d.ByteOrder())
}

func TestUintFormatting(t *testing.T) {
	tests := []struct {
		name  string
		def   Def
		v     uint64
		width int
		want  string
	}{
		{"dec", Def{Base: BaseDec}, 14, 2, "14"},
		{"hex", Def{Base: BaseHex}, 0x2000, 2, "0x2000"},
		{"hex padded", Def{Base: BaseHex}, 0x0e, 2, "0x000e"},
		{"dec hex", Def{Base: BaseDecHex}, 255, 1, "255 (0xff)"},
		{"hex dec", Def{Base: BaseHexDec}, 255, 1, "0xff (255)"},
		{"enum hex", Def{Base: BaseHex, Values: opcodes}, 0x2000, 2, "OpPoll (0x2000)"},
		{"enum dec", Def{Values: opcodes}, 0x2100, 2, "OpPollReply (8448)"},
		{"enum unknown", Def{Base: BaseHex, Values: opcodes}, 0x1234, 2, "Unknown (0x1234)"},
		{"enum unknown dec", Def{Values: opcodes}, 7, 1, "Unknown (7)"},
		{"custom", Def{FormatUint: func(v uint64) string { return "v" }}, 1, 1, "v"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.def.Uint(tt.v, tt.width))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "bitmask", KindBitmask.String())
	assert.Equal(t, "kind(200)", Kind(200).String())
	assert.True(t, KindEnum.IsInteger())
	assert.False(t, KindBytes.IsInteger())
}
