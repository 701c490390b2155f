package pipeline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/export"
	"firestige.xyz/dissector/internal/protocols"
)

// sliceSource replays prepared frames.
type sliceSource struct {
	linkType uint32
	frames   [][]byte
	next     int
}

func (s *sliceSource) Name() string     { return "slice" }
func (s *sliceSource) LinkType() uint32 { return s.linkType }
func (s *sliceSource) Close() error     { return nil }

func (s *sliceSource) Next(ctx context.Context) (core.Frame, error) {
	if err := ctx.Err(); err != nil {
		return core.Frame{}, err
	}
	if s.next >= len(s.frames) {
		return core.Frame{}, io.EOF
	}
	data := s.frames[s.next]
	s.next++
	return core.Frame{
		Data:      data,
		Timestamp: time.Unix(1700000000, int64(s.next)),
		LinkType:  s.linkType,
		Number:    uint64(s.next),
	}, nil
}

// collector records what the workers report.
type collector struct {
	mu      sync.Mutex
	records []*core.Record
	err     error
}

func (c *collector) Report(_ context.Context, r *core.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, r)
	return nil
}

func ethernet(t testing.TB, src, dst string, transport gopacket.SerializableLayer, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		SrcIP:    net.ParseIP(src).To4(),
		DstIP:    net.ParseIP(dst).To4(),
		Protocol: layers.IPProtocolUDP,
	}
	switch l := transport.(type) {
	case *layers.UDP:
		require.NoError(t, l.SetNetworkLayerForChecksum(ip))
	case *layers.TCP:
		ip.Protocol = layers.IPProtocolTCP
		require.NoError(t, l.SetNetworkLayerForChecksum(ip))
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, transport, gopacket.Payload(payload)))
	return buf.Bytes()
}

func udpFrame(t testing.TB, src, dst string, dport uint16, payload []byte) []byte {
	return ethernet(t, src, dst, &layers.UDP{SrcPort: 6454, DstPort: layers.UDPPort(dport)}, payload)
}

func artPacket(opcode uint16, body ...byte) []byte {
	b := append([]byte("Art-Net\x00"), 0, 0)
	binary.LittleEndian.PutUint16(b[8:], opcode)
	return append(b, body...)
}

func dmx(seq byte, levels ...byte) []byte {
	body := []byte{0x00, 0x0e, seq, 0x00, 0x01, 0x00, byte(len(levels) >> 8), byte(len(levels))}
	return artPacket(0x5000, append(body, levels...)...)
}

func pollReply() []byte {
	b := artPacket(0x2100, make([]byte, 191)...)
	copy(b[10:], []byte{192, 168, 1, 20})
	b[14], b[15] = 0x36, 0x19
	b[18], b[19] = 0x01, 0x02
	copy(b[26:], "Node")
	copy(b[44:], "Test Node Long Name")
	b[173] = 1
	b[174] = 0x80
	b[186] = 0x03
	b[190] = 0x05
	return b
}

func newEngine(t testing.TB) *decoder.Engine {
	t.Helper()
	reg, err := protocols.NewRegistry(nil)
	require.NoError(t, err)
	return decoder.New(reg, decoder.Options{})
}

func TestRunDissectsAndReports(t *testing.T) {
	tcp := ethernet(t, "10.0.0.1", "10.0.0.2", &layers.TCP{SrcPort: 1000, DstPort: 80}, []byte("GET"))
	src := &sliceSource{
		linkType: uint32(layers.LinkTypeEthernet),
		frames: [][]byte{
			udpFrame(t, "10.0.0.1", "10.0.0.255", 6454, artPacket(0x2000, 0x00, 0x0e)),
			tcp,
			udpFrame(t, "10.0.0.1", "10.0.0.255", 6454, dmx(1, 0, 255)),
			udpFrame(t, "10.0.0.1", "10.0.0.255", 6454, artPacket(0x2000)[:9]),
		},
	}
	rep := &collector{}
	p := NewBuilder().
		WithSource(src).
		WithEngine(newEngine(t)).
		WithReporter(rep).
		Build()

	require.NoError(t, p.Run(context.Background()))

	st := p.Stats()
	assert.EqualValues(t, 4, st.Frames)
	assert.EqualValues(t, 1, st.Skipped)
	assert.EqualValues(t, 3, st.Dissected)
	assert.EqualValues(t, 3, st.Reported)
	assert.NotZero(t, st.Diagnostics)
	assert.EqualValues(t, 1, p.LinkStats().NotUDP)

	require.Len(t, rep.records, 3)
	assert.Equal(t, "OpPoll", rep.records[0].Labels[core.LabelOpcode])
	assert.Equal(t, "OpDmx", rep.records[1].Labels[core.LabelOpcode])
	assert.Equal(t, "1", rep.records[1].Labels[core.LabelArtNetUniverse])
	assert.Equal(t, "error", rep.records[2].Labels[core.LabelSeverity])
	assert.EqualValues(t, 3, rep.records[1].Number)
	assert.Equal(t, "10.0.0.1:6454", rep.records[0].SrcAddr.String())
	_, ok := rep.records[0].Body.(*export.Document)
	assert.True(t, ok)
}

func TestRunKeepsFlowOrder(t *testing.T) {
	var frames [][]byte
	for i := 0; i < 200; i++ {
		src := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}[i%4]
		frames = append(frames, udpFrame(t, src, "10.0.0.255", 6454, dmx(byte(i), 1, 2)))
	}
	rep := &collector{}
	p := New(Config{
		Source:   &sliceSource{linkType: uint32(layers.LinkTypeEthernet), frames: frames},
		Engine:   newEngine(t),
		Reporter: rep,
		Workers:  4,
	})
	require.NoError(t, p.Run(context.Background()))
	require.Len(t, rep.records, 200)

	last := map[string]uint64{}
	for _, r := range rep.records {
		flow := r.Labels[core.LabelFlow]
		assert.Greater(t, r.Number, last[flow], "flow %s out of order", flow)
		last[flow] = r.Number
	}
	assert.Len(t, last, 4)
}

func TestRunLimit(t *testing.T) {
	frames := make([][]byte, 10)
	for i := range frames {
		frames[i] = udpFrame(t, "10.0.0.1", "10.0.0.255", 6454, dmx(byte(i), 1, 2))
	}
	rep := &collector{}
	p := NewBuilder().
		WithSource(&sliceSource{linkType: uint32(layers.LinkTypeEthernet), frames: frames}).
		WithEngine(newEngine(t)).
		WithReporter(rep).
		WithLimit(3).
		Build()
	require.NoError(t, p.Run(context.Background()))
	assert.EqualValues(t, 3, p.Stats().Frames)
	assert.Len(t, rep.records, 3)
}

func TestRunForcedProtocol(t *testing.T) {
	src := &sliceSource{
		linkType: uint32(layers.LinkTypeEthernet),
		frames:   [][]byte{udpFrame(t, "10.0.0.1", "10.0.0.2", 9999, []byte{1, 2, 3, 4})},
	}
	rep := &collector{}
	p := NewBuilder().WithSource(src).WithEngine(newEngine(t)).WithReporter(rep).WithProtocol("dmx").Build()
	require.NoError(t, p.Run(context.Background()))
	require.Len(t, rep.records, 1)
	assert.Equal(t, "dmx", rep.records[0].Protocol)

	src.next = 0
	rep = &collector{}
	p = NewBuilder().WithSource(src).WithEngine(newEngine(t)).WithReporter(rep).Build()
	require.NoError(t, p.Run(context.Background()))
	require.Len(t, rep.records, 1)
	assert.Equal(t, "data", rep.records[0].Protocol)
}

func TestRunUnsupportedLink(t *testing.T) {
	p := New(Config{Source: &sliceSource{linkType: 147}, Engine: newEngine(t)})
	assert.ErrorIs(t, p.Run(context.Background()), core.ErrUnsupportedLink)
}

type failingSource struct{ sliceSource }

func (f *failingSource) Next(context.Context) (core.Frame, error) {
	return core.Frame{}, errors.New("device gone")
}

func TestRunSourceError(t *testing.T) {
	src := &failingSource{sliceSource{linkType: uint32(layers.LinkTypeEthernet)}}
	p := New(Config{Source: src, Engine: newEngine(t)})
	assert.ErrorContains(t, p.Run(context.Background()), "device gone")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &sliceSource{
		linkType: uint32(layers.LinkTypeEthernet),
		frames:   [][]byte{udpFrame(t, "10.0.0.1", "10.0.0.255", 6454, dmx(1, 1, 2))},
	}
	p := New(Config{Source: src, Engine: newEngine(t)})
	require.NoError(t, p.Run(ctx))
	assert.Zero(t, p.Stats().Frames)
}

func TestReportErrorsCounted(t *testing.T) {
	src := &sliceSource{
		linkType: uint32(layers.LinkTypeEthernet),
		frames:   [][]byte{udpFrame(t, "10.0.0.1", "10.0.0.255", 6454, dmx(1, 1, 2))},
	}
	p := New(Config{Source: src, Engine: newEngine(t), Reporter: &collector{err: errors.New("down")}})
	require.NoError(t, p.Run(context.Background()))
	assert.EqualValues(t, 1, p.Stats().ReportErrors)
	assert.Zero(t, p.Stats().Reported)
}

func TestDispatchDropsWhenFull(t *testing.T) {
	p := New(Config{Workers: 1, BufferSize: 1, DropWhenFull: true})
	pkt := core.Packet{Data: []byte{1}}
	p.dispatch(context.Background(), pkt)
	p.dispatch(context.Background(), pkt)
	assert.Len(t, p.queues[0], 1)
	assert.EqualValues(t, 1, p.Stats().Dropped)
}

func TestShardIsStable(t *testing.T) {
	p := New(Config{Workers: 8})
	keys := []string{"10.0.0.1:6454>10.0.0.255:6454", "10.0.0.2:6454>10.0.0.255:6454", ""}
	for _, k := range keys {
		first := p.shard(k)
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, 8)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, p.shard(k))
		}
	}
}

func TestNodeDirectory(t *testing.T) {
	src := &sliceSource{
		linkType: uint32(layers.LinkTypeEthernet),
		frames: [][]byte{
			udpFrame(t, "192.168.1.20", "192.168.1.255", 6454, pollReply()),
			udpFrame(t, "192.168.1.20", "192.168.1.255", 6454, dmx(1, 1, 2)),
		},
	}
	nodes := NewNodeDirectory(time.Minute)
	p := NewBuilder().WithSource(src).WithEngine(newEngine(t)).WithNodes(nodes).Build()
	require.NoError(t, p.Run(context.Background()))

	require.Equal(t, 1, nodes.Len())
	n, ok := nodes.Get("192.168.1.20/0")
	require.True(t, ok)
	assert.Equal(t, "Node", n.ShortName)
	assert.Equal(t, "Test Node Long Name", n.LongName)
	assert.Equal(t, "192.168.1.20:6454", n.Source.String())
	assert.Equal(t, []uint64{0x123}, n.InUniverses)
	assert.Equal(t, []uint64{0x125}, n.OutUniverses)
	assert.Equal(t, []Node{n}, nodes.Nodes())

	rec := httptest.NewRecorder()
	nodes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artnet/nodes", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "192.168.1.20", listed[0]["ip"])
	assert.Equal(t, "Node", listed[0]["short_name"])
}

func TestNodeDirectoryExpires(t *testing.T) {
	e := newEngine(t)
	nodes := NewNodeDirectory(20 * time.Millisecond)
	pkt := &core.Packet{Data: pollReply()}
	require.True(t, nodes.Observe(e.Dissect(pkt)))
	assert.Equal(t, 1, nodes.Len())

	assert.False(t, nodes.Observe(e.Dissect(&core.Packet{Data: dmx(1, 1, 2)})))
	assert.Eventually(t, func() bool {
		_, ok := nodes.Get("192.168.1.20/0")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func BenchmarkPipeline(b *testing.B) {
	frame := udpFrame(b, "10.0.0.1", "10.0.0.255", 6454, dmx(1, make([]byte, 512)...))
	frames := make([][]byte, b.N)
	for i := range frames {
		frames[i] = frame
	}
	p := New(Config{
		Source:  &sliceSource{linkType: uint32(layers.LinkTypeEthernet), frames: frames},
		Engine:  newEngine(b),
		Workers: 4,
	})
	b.ResetTimer()
	if err := p.Run(context.Background()); err != nil {
		b.Fatal(err)
	}
}
