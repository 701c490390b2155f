//go:build !linux

package source

import (
	"fmt"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core"
)

// OpenAFPacket is only available on Linux.
func OpenAFPacket(cfg config.CaptureConfig) (Source, error) {
	return nil, fmt.Errorf("afpacket capture requires linux: %w", core.ErrConfigInvalid)
}
