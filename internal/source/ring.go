package source

import "fmt"

// ring describes a PACKET_MMAP ring buffer layout.
type ring struct {
	frameSize int
	blockSize int
	numBlocks int
}

const (
	tpacketAlignment = 16 // TPACKET_ALIGNMENT
	tpacketHdrLen    = 52 // approximate TPACKET3_HDRLEN
	maxBlockSize     = 4 << 20
)

// ringSize lays out a ring of about bufferMB megabytes for frames of up to
// snaplen bytes. PACKET_MMAP requires the frame size to be a multiple of
// TPACKET_ALIGNMENT and the block size to be a multiple of both the page
// size and the frame size.
func ringSize(bufferMB, snaplen, pageSize int) (ring, error) {
	if bufferMB <= 0 {
		return ring{}, fmt.Errorf("ring buffer size must be positive, got %d MB", bufferMB)
	}
	if snaplen <= 0 {
		return ring{}, fmt.Errorf("snaplen must be positive, got %d", snaplen)
	}
	if pageSize <= 0 || pageSize%tpacketAlignment != 0 {
		return ring{}, fmt.Errorf("page size must be a positive multiple of %d, got %d", tpacketAlignment, pageSize)
	}

	frameSize := (tpacketHdrLen + snaplen + tpacketAlignment - 1) / tpacketAlignment * tpacketAlignment

	blockSize := lcm(pageSize, frameSize)
	if blockSize > maxBlockSize {
		// Whole-page frames keep a block of whole frames page aligned.
		frameSize = (frameSize + pageSize - 1) / pageSize * pageSize
		blockSize = max(maxBlockSize/frameSize, 1) * frameSize
	}

	numBlocks := max(bufferMB<<20/blockSize, 1)
	return ring{frameSize: frameSize, blockSize: blockSize, numBlocks: numBlocks}, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}
