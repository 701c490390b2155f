// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors shared by the engine, protocol descriptions and the
// capture side. Wrap with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// Packet-dependent decoding errors. These never escape a dissection
	// call; the dispatcher turns them into diagnostics.
	ErrTruncated      = errors.New("dissector: truncated")
	ErrRecursionLimit = errors.New("dissector: sub-dissector recursion limit exceeded")

	// Registration errors (protocol-description bugs)
	ErrInvalidField      = errors.New("dissector: invalid field definition")
	ErrInvalidTable      = errors.New("dissector: invalid value table")
	ErrInvalidBitmask    = errors.New("dissector: invalid bitmask spec")
	ErrDuplicateProtocol = errors.New("dissector: protocol already registered")
	ErrDuplicateOpcode   = errors.New("dissector: duplicate opcode")
	ErrProtocolNotFound  = errors.New("dissector: protocol not found")
	ErrRegistrySealed    = errors.New("dissector: registry sealed")

	// Link layer errors
	ErrNotUDP          = errors.New("dissector: not a udp datagram")
	ErrUnsupportedLink = errors.New("dissector: unsupported link type")
	ErrMalformedFrame  = errors.New("dissector: malformed frame")
	ErrFragmented      = errors.New("dissector: ip fragment")

	// Capture errors
	ErrSourceClosed = errors.New("dissector: source closed")

	// Configuration errors
	ErrConfigInvalid = errors.New("dissector: invalid configuration")
)
