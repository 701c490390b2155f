package link

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
)

func ipv4Header(ihl byte, total uint16, flags uint16) []byte {
	h := make([]byte, int(ihl)*4)
	h[0] = 0x40 | ihl
	h[2], h[3] = byte(total>>8), byte(total)
	h[6], h[7] = byte(flags>>8), byte(flags)
	h[8] = 32 // TTL
	h[9] = core.IPProtoUDP
	copy(h[12:16], []byte{192, 168, 1, 1})
	copy(h[16:20], []byte{192, 168, 1, 2})
	return h
}

func TestDecodeIPv4Header(t *testing.T) {
	data := append(ipv4Header(5, 24, 0), 1, 2, 3, 4, 0, 0) // two bytes of padding
	ip, pl, err := decodeIP(cursor.New(data))
	require.NoError(t, err)

	assert.Equal(t, uint8(4), ip.Version)
	assert.Equal(t, uint8(32), ip.TTL)
	assert.Equal(t, netip.MustParseAddr("192.168.1.1"), ip.SrcIP)
	assert.Equal(t, netip.MustParseAddr("192.168.1.2"), ip.DstIP)
	assert.Equal(t, 4, pl.Remaining())
	assert.Equal(t, 20, pl.Abs())
}

func TestDecodeIPv4Options(t *testing.T) {
	data := append(ipv4Header(6, 26, 0), 9, 9)
	_, pl, err := decodeIP(cursor.New(data))
	require.NoError(t, err)
	assert.Equal(t, 24, pl.Abs())
	assert.Equal(t, 2, pl.Remaining())
}

func TestDecodeIPErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, core.ErrTruncated},
		{"version", []byte{0x50, 0, 0, 0}, core.ErrMalformedFrame},
		{"short ihl", ipv4Header(5, 20, 0)[:19], core.ErrTruncated},
		{"ihl below minimum", func() []byte { h := ipv4Header(5, 20, 0); h[0] = 0x44; return h }(), core.ErrMalformedFrame},
		{"total below header", ipv4Header(5, 10, 0), core.ErrMalformedFrame},
		{"more fragments", ipv4Header(5, 20, 0x2000), core.ErrFragmented},
		{"fragment offset", ipv4Header(5, 20, 0x0010), core.ErrFragmented},
		{"ipv6 short", []byte{0x60, 0, 0, 0}, core.ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeIP(cursor.New(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeIPv6Header(t *testing.T) {
	h := make([]byte, ipv6HeaderLen)
	h[0] = 0x60
	h[5] = 3 // payload length
	h[6] = core.IPProtoUDP
	h[7] = 1
	h[23] = 1
	h[39] = 2
	ip, pl, err := decodeIP(cursor.New(append(h, 7, 8, 9)))
	require.NoError(t, err)
	assert.Equal(t, uint8(6), ip.Version)
	assert.Equal(t, uint16(43), ip.TotalLen)
	assert.Equal(t, netip.MustParseAddr("::1"), ip.SrcIP)
	assert.Equal(t, 3, pl.Remaining())

	h[6] = ipv6NextFragment
	_, _, err = decodeIP(cursor.New(h))
	assert.ErrorIs(t, err, core.ErrFragmented)
}
