package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core"
)

var frames = [][]byte{
	{0x01, 0x02, 0x03, 0x04},
	{0x05, 0x06},
	{0x07, 0x08, 0x09},
}

func frameTime(i int) time.Time {
	return time.Unix(1700000000+int64(i), 250000000).UTC()
}

func writePcap(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frames.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	for i, data := range frames {
		ci := gopacket.CaptureInfo{Timestamp: frameTime(i), CaptureLength: len(data), Length: len(data) + 10}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return path
}

func writePcapng(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frames.pcapng")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := pcapgo.NewNgWriter(f, layers.LinkTypeRaw)
	require.NoError(t, err)
	for i, data := range frames {
		ci := gopacket.CaptureInfo{Timestamp: frameTime(i), CaptureLength: len(data), Length: len(data), InterfaceIndex: 0}
		require.NoError(t, w.WritePacket(ci, data))
	}
	require.NoError(t, w.Flush())
	return path
}

func readAll(t *testing.T, s Source) []core.Frame {
	t.Helper()
	var out []core.Frame
	for {
		f, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, f)
	}
}

func TestOpenFilePcap(t *testing.T) {
	s, err := Open(config.CaptureConfig{Source: "file", Path: writePcap(t)})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "file", s.Name())
	assert.Equal(t, uint32(layers.LinkTypeEthernet), s.LinkType())

	got := readAll(t, s)
	require.Len(t, got, len(frames))
	for i, f := range got {
		assert.Equal(t, frames[i], f.Data)
		assert.Equal(t, uint64(i+1), f.Number)
		assert.Equal(t, uint32(len(frames[i])), f.CaptureLen)
		assert.Equal(t, uint32(len(frames[i])+10), f.OrigLen)
		assert.Equal(t, uint32(layers.LinkTypeEthernet), f.LinkType)
		assert.True(t, frameTime(i).Equal(f.Timestamp), "frame %d timestamp %v", i, f.Timestamp)
	}

	// Exhausted files keep returning EOF.
	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenFilePcapng(t *testing.T) {
	s, err := OpenFile(writePcapng(t))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, uint32(layers.LinkTypeRaw), s.LinkType())
	got := readAll(t, s)
	require.Len(t, got, len(frames))
	assert.Equal(t, frames[2], got[2].Data)
	assert.Equal(t, uint64(3), got[2].Number)
}

func TestOpenFileErrors(t *testing.T) {
	_, err := OpenFile("")
	assert.Error(t, err)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.pcap"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage.pcap")
	require.NoError(t, os.WriteFile(garbage, []byte("not a capture file"), 0o644))
	_, err = OpenFile(garbage)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.pcap")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = OpenFile(empty)
	assert.Error(t, err)
}

func TestOpenUnknownSource(t *testing.T) {
	_, err := Open(config.CaptureConfig{Source: "tape"})
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestOpenLiveRequiresInterface(t *testing.T) {
	_, err := Open(config.CaptureConfig{Source: "live"})
	assert.Error(t, err)
}

func TestNextAfterClose(t *testing.T) {
	s, err := OpenFile(writePcap(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, core.ErrSourceClosed)
}

func TestNextCancelled(t *testing.T) {
	s, err := OpenFile(writePcap(t))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type flakySource struct {
	timeouts int
	data     []byte
}

var errTimeout = errors.New("timeout")

func (f *flakySource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if f.timeouts > 0 {
		f.timeouts--
		return nil, gopacket.CaptureInfo{}, errTimeout
	}
	if f.data == nil {
		return nil, gopacket.CaptureInfo{}, errors.New("device gone")
	}
	data := f.data
	f.data = nil
	return data, gopacket.CaptureInfo{CaptureLength: len(data), Length: len(data)}, nil
}

func TestReaderRetriesTimeouts(t *testing.T) {
	r := &reader{
		name:  "test",
		src:   &flakySource{timeouts: 3, data: []byte{1}},
		retry: func(err error) bool { return errors.Is(err, errTimeout) },
	}
	f, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, f.Data)
	assert.Equal(t, uint64(1), f.Number)

	_, err = r.Next(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "device gone")
}

func TestRingSize(t *testing.T) {
	tests := []struct {
		name     string
		bufferMB int
		snaplen  int
	}{
		{"mtu", 8, 1500},
		{"jumbo", 16, 9000},
		{"full snaplen", 8, 65535},
		{"tiny buffer", 1, 65535},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ringSize(tt.bufferMB, tt.snaplen, 4096)
			require.NoError(t, err)
			assert.Zero(t, r.frameSize%tpacketAlignment)
			assert.GreaterOrEqual(t, r.frameSize, tt.snaplen+tpacketHdrLen)
			assert.Zero(t, r.blockSize%4096)
			assert.Zero(t, r.blockSize%r.frameSize)
			assert.LessOrEqual(t, r.blockSize, maxBlockSize)
			assert.GreaterOrEqual(t, r.numBlocks, 1)
		})
	}

	r, err := ringSize(8, 1500, 4096)
	require.NoError(t, err)
	assert.Equal(t, ring{frameSize: 1552, blockSize: 397312, numBlocks: 21}, r)

	for _, bad := range [][3]int{{0, 1500, 4096}, {8, 0, 4096}, {8, 1500, 0}, {8, 1500, 4000}} {
		_, err := ringSize(bad[0], bad[1], bad[2])
		assert.Error(t, err, "%v", bad)
	}
}
