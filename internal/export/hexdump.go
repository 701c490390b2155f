package export

import (
	"fmt"
	"strings"
)

// HexDump formats data as offset, 16 hex bytes and printable ASCII per
// line.
func HexDump(data []byte) string {
	var sb strings.Builder
	for offset := 0; offset < len(data); offset += 16 {
		sb.WriteString(fmt.Sprintf("%04x  ", offset))

		end := min(offset+16, len(data))
		for i := offset; i < offset+16; i++ {
			if i < end {
				sb.WriteString(fmt.Sprintf("%02x ", data[i]))
			} else {
				sb.WriteString("   ")
			}
			if i == offset+7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(" |")

		for _, b := range data[offset:end] {
			if b >= 0x20 && b <= 0x7e {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}
