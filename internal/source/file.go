package source

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
)

// pcapng section header block type, as it appears at the start of a file.
var ngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// OpenFile opens a pcap or pcapng capture file. The format is detected
// from the leading bytes.
func OpenFile(path string) (Source, error) {
	if path == "" {
		return nil, fmt.Errorf("capture file path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file %s: %w", path, err)
	}
	br := bufio.NewReader(f)
	head, err := br.Peek(4)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read capture file header %s: %w", path, err)
	}

	var (
		src      gopacket.PacketDataSource
		linkType uint32
	)
	if bytes.Equal(head, ngMagic) {
		r, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open pcapng file %s: %w", path, err)
		}
		src, linkType = r, uint32(r.LinkType())
	} else {
		r, err := pcapgo.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open pcap file %s: %w", path, err)
		}
		src, linkType = r, uint32(r.LinkType())
	}

	return &reader{
		name:     "file",
		src:      src,
		linkType: linkType,
		close:    f.Close,
	}, nil
}
