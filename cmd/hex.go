package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// parseHex decodes a hex dump typed on the command line. Whitespace, ':'
// and '-' separators and a leading 0x are ignored.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, fmt.Errorf("empty hex input")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}
