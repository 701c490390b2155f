package valtab

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/core"
)

var priorities = Table{
	{0x10, "DpLow"},
	{0x40, "DpMed"},
	{0x80, "DpHigh"},
	{0xe0, "DpCritical"},
	{0xf0, "DpVolatile"},
}

func TestTableLookup(t *testing.T) {
	require.NoError(t, priorities.Validate())

	for _, e := range priorities {
		got, ok := priorities.Lookup(e.Code)
		assert.True(t, ok, "code %#x", e.Code)
		assert.Equal(t, e.Label, got)
	}

	for _, code := range []uint64{0, 0x11, 0x7f, 0xef, 0xff, 1 << 40} {
		_, ok := priorities.Lookup(code)
		assert.False(t, ok, "code %#x must miss", code)
		assert.Equal(t, fmt.Sprintf("Unknown (%#x)", code), priorities.LookupOr(code, "Unknown (%#x)"))
	}
}

func TestLookupOrRendersFallbackOnce(t *testing.T) {
	assert.Equal(t, "DpHigh", priorities.LookupOr(0x80, "Unknown (%#x)"))
	assert.Equal(t, "Unknown (0x81)", priorities.LookupOr(0x81, "Unknown (%#x)"))
	assert.Equal(t, "Reserved 5", LookupOr(nil, 5, "Reserved %d"))
	assert.Equal(t, "Unknown", priorities.LookupOr(0x81, "Unknown"))
	assert.Equal(t, "Unknown", LookupOr(nil, 0x1234, "Unknown"))
}

func TestEmptyTable(t *testing.T) {
	var empty Table
	require.NoError(t, empty.Validate())
	_, ok := empty.Lookup(0)
	assert.False(t, ok)
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"unsorted", Table{{2, "b"}, {1, "a"}}},
		{"duplicate", Table{{1, "a"}, {1, "again"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.table.Validate(), core.ErrInvalidTable)
		})
	}
}

func TestRangeTable(t *testing.T) {
	commands := RangeTable{
		{Low: 0x00, High: 0x00, Label: "AcNone"},
		{Low: 0x10, High: 0x13, Build: Indexed("AcMergeLtp", 0x10)},
		{Low: 0x20, High: 0x23, Build: Indexed("AcDirectionTx", 0x20)},
		{Low: 0x8000, High: 0xffdf, Label: "Manufacturer specific"},
	}
	require.NoError(t, commands.Validate())

	tests := []struct {
		code uint64
		want string
		ok   bool
	}{
		{0x00, "AcNone", true},
		{0x10, "AcMergeLtp0", true},
		{0x13, "AcMergeLtp3", true},
		{0x14, "", false},
		{0x22, "AcDirectionTx2", true},
		{0x8000, "Manufacturer specific", true},
		{0x9abc, "Manufacturer specific", true},
		{0xffdf, "Manufacturer specific", true},
		{0xffe0, "", false},
	}
	for _, tt := range tests {
		got, ok := commands.Lookup(tt.code)
		assert.Equal(t, tt.ok, ok, "code %#x", tt.code)
		assert.Equal(t, tt.want, got, "code %#x", tt.code)
	}
}

func TestRangeTableValidate(t *testing.T) {
	tests := []struct {
		name  string
		table RangeTable
	}{
		{"inverted", RangeTable{{Low: 5, High: 1, Label: "x"}}},
		{"overlap", RangeTable{{Low: 0, High: 5, Label: "a"}, {Low: 5, High: 9, Label: "b"}}},
		{"unsorted", RangeTable{{Low: 10, High: 12, Label: "a"}, {Low: 0, High: 1, Label: "b"}}},
		{"no label", RangeTable{{Low: 0, High: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.table.Validate(), core.ErrInvalidTable)
		})
	}
}

func TestChain(t *testing.T) {
	pids := Chain{
		Table{{0x0060, "DEVICE_INFO"}, {0x00f0, "DMX_START_ADDRESS"}},
		RangeTable{{Low: 0x8000, High: 0xffdf, Label: "Manufacturer specific"}},
	}
	require.NoError(t, pids.Validate())

	s, ok := pids.Lookup(0x0060)
	assert.True(t, ok)
	assert.Equal(t, "DEVICE_INFO", s)

	s, ok = pids.Lookup(0x8123)
	assert.True(t, ok)
	assert.Equal(t, "Manufacturer specific", s)

	assert.Equal(t, "Unknown PID 0x61", LookupOr(pids, 0x61, "Unknown PID %#x"))

	bad := Chain{Table{{2, "b"}, {1, "a"}}}
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidTable)
	assert.ErrorIs(t, Chain{nil}.Validate(), core.ErrInvalidTable)
}

func TestFuncAndBool(t *testing.T) {
	yesNo := Bool("Yes", "No")
	require.NoError(t, yesNo.Validate())
	assert.Equal(t, "Yes", LookupOr(yesNo, 1, "%d"))
	assert.Equal(t, "No", LookupOr(yesNo, 0, "%d"))

	var nilFunc Func
	assert.ErrorIs(t, nilFunc.Validate(), core.ErrInvalidTable)
}

func BenchmarkTableLookup(b *testing.B) {
	table := make(Table, 1024)
	for i := range table {
		table[i] = Entry{Code: uint64(i * 3), Label: "x"}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = table.Lookup(uint64(i % 3072))
	}
}
