package artnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
	"firestige.xyz/dissector/internal/protocols/dmx"
	"firestige.xyz/dissector/internal/protocols/rdm"
)

var protVer = []byte{0x00, 0x0e}

func body(parts ...[]byte) []byte {
	out := append([]byte{}, protVer...)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func fixed(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func TestDmx(t *testing.T) {
	e := newEngine(t)
	data := artPacket(0x5000, body([]byte{0x01, 0x00, 0x12, 0x01, 0x00, 0x04}, []byte{0, 255, 0, 10})...)
	tr := dissect(t, e, data)

	assert.Empty(t, tr.Diagnostics())
	assert.Equal(t, "OpDmx Port-Address 274, 4 channels", tr.Info())
	uni, _ := tr.UintValue("artnet.universe")
	assert.EqualValues(t, 274, uni)

	levels, ok := tr.Find("dmx.levels")
	require.True(t, ok)
	assert.Equal(t, tree.Range{Start: 18, Len: 4}, tr.Node(levels).Range)
	sub := tr.Node(levels).Parent
	assert.Equal(t, "DMX Channels", tr.Node(sub).Name())
	assert.Equal(t, tree.Range{Start: 18, Len: 4}, tr.Node(sub).Range)

	active, _ := tr.UintValue("dmx.active")
	assert.EqualValues(t, 2, active)
}

func TestDmxLengthRules(t *testing.T) {
	e := newEngine(t)
	tests := []struct {
		name   string
		length byte
		data   []byte
		want   []string
	}{
		{"even", 2, []byte{1, 2}, nil},
		{"odd", 3, []byte{1, 2, 3}, []string{tree.CodeMalformed}},
		{"zero", 0, nil, []string{tree.CodeMalformed}},
		{"beyond packet", 8, []byte{1, 2}, []string{tree.CodeTruncated}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := dissect(t, e, artPacket(0x5000, body([]byte{0, 0, 0, 0, 0, tt.length}, tt.data)...))
			assert.Equal(t, tt.want, codes(tr))
		})
	}

	tr := dissect(t, e, artPacket(0x5000, body([]byte{0, 0, 0, 0, 0x02, 0x02})...))
	require.NotEmpty(t, tr.Diagnostics())
	assert.Equal(t, tree.Range{Start: 16, Len: 2}, tr.Diagnostics()[0].Range)
}

func vlcPayload(text string, check uint16) []byte {
	b := []byte{0x41, 0x4c, 0x45, 0x20, 0x00, 0x01, 0x00, 0x00}
	b = append(b, byte(len(text)>>8), byte(len(text)))
	b = append(b, byte(check>>8), byte(check))
	b = append(b, 0x00, 50, 0x03, 0xe8, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00)
	return append(b, text...)
}

func TestNzsVLC(t *testing.T) {
	e := newEngine(t)
	payload := vlcPayload("hello", vlcChecksum([]byte("hello")))
	data := artPacket(0x5100, body([]byte{0x00, vlcStartCode, 0x00, 0x00, 0x00, byte(len(payload))}, payload)...)
	tr := dissect(t, e, data)

	assert.Empty(t, tr.Diagnostics())
	assert.Equal(t, "OpNzs VLC Port-Address 0", tr.Info())
	text, ok := tr.StringValue("artnet-vlc.text")
	require.True(t, ok)
	assert.Equal(t, "hello", text)
	beacon, _ := tr.UintValue("artnet-vlc.flags.beacon")
	assert.EqualValues(t, 1, beacon)

	payload = vlcPayload("hello", 0x1234)
	data = artPacket(0x5100, body([]byte{0x00, vlcStartCode, 0x00, 0x00, 0x00, byte(len(payload))}, payload)...)
	tr = dissect(t, e, data)
	require.Equal(t, []string{tree.CodeMalformed}, codes(tr))
	assert.Equal(t, tree.Range{Start: 28, Len: 2}, tr.Diagnostics()[0].Range)
}

func TestNzsPlain(t *testing.T) {
	e := newEngine(t)
	tr := dissect(t, e, artPacket(0x5100, body([]byte{0x00, 0x17, 0x01, 0x00, 0x00, 0x03}, []byte{1, 2, 3})...))
	assert.Empty(t, tr.Diagnostics())
	ref, ok := tr.Find("artnet.nzs.data")
	require.True(t, ok)
	assert.Equal(t, 3, tr.Node(ref).Range.Len)
	_, ok = tr.Find("artnet-vlc.magic")
	assert.False(t, ok)
}

func TestAddress(t *testing.T) {
	e := newEngine(t)
	data := artPacket(0x6000, body(
		[]byte{0x81, 0x01},
		fixed("Short", 18),
		fixed("Long", 64),
		[]byte{0x7f, 0x7f, 0x7f, 0x7f},
		[]byte{0x82, 0x7f, 0x7f, 0x7f},
		[]byte{0x7f, 100, 0x12},
	)...)
	tr := dissect(t, e, data)

	assert.Empty(t, tr.Diagnostics())
	assert.Equal(t, "OpAddress AcMergeLtp2", tr.Info())
	ref, _ := tr.Find("artnet.address.command")
	assert.Equal(t, "Command: AcMergeLtp2 (0x12)", tr.Text(ref))
	prog, _ := tr.UintValue("artnet.address.net_switch.program")
	assert.EqualValues(t, 1, prog)
	outs := tr.FindAll("artnet.address.sw_out.universe")
	require.Len(t, outs, 4)
	assert.EqualValues(t, 2, tr.Node(outs[0]).Uint)
}

func TestTodRequestAddressCount(t *testing.T) {
	e := newEngine(t)
	addrs := make([]byte, maxTodAddresses)
	tr := dissect(t, e, artPacket(0x8000, body(make([]byte, 9), []byte{0x00, 0x00, 40}, addrs)...))
	assert.Equal(t, []string{tree.CodeMalformed}, codes(tr))
	assert.Len(t, tr.FindAll("artnet.tod_request.address"), maxTodAddresses)
}

func TestTodData(t *testing.T) {
	e := newEngine(t)
	head := []byte{0x01, 0x01, 0, 0, 0, 0, 0, 0, 0x01, 0x00, 0x00, 0x03, 0x00, 0x02, 0x00, 0x02}
	uids := []byte{0x41, 0x4c, 0, 0, 0, 1, 0x41, 0x4c, 0, 0, 0, 2}
	tr := dissect(t, e, artPacket(0x8100, body(head, uids)...))

	assert.Empty(t, tr.Diagnostics())
	assert.Equal(t, "OpTodData Port-Address 3, 2 of 2 UIDs", tr.Info())
	refs := tr.FindAll("artnet.tod_data.uid")
	require.Len(t, refs, 2)
	assert.Equal(t, "UID: 414c:00000002", tr.Text(refs[1]))

	// A UID count beyond the packet stops at the last whole UID.
	head[15] = 3
	tr = dissect(t, e, artPacket(0x8100, body(head, uids)...))
	assert.Equal(t, []string{tree.CodeTruncated}, codes(tr))
	assert.Len(t, tr.FindAll("artnet.tod_data.uid"), 2)
}

func rdmMessage(cc byte, pid uint16, pd []byte) []byte {
	msg := []byte{rdm.SubStartCode, byte(24 + len(pd))}
	msg = append(msg, 0x41, 0x4c, 0, 0, 0, 1) // destination
	msg = append(msg, 0x41, 0x4c, 0, 0, 0, 2) // source
	msg = append(msg, 0x00, 0x00, 0x00, 0x00, 0x00, cc, byte(pid>>8), byte(pid), byte(len(pd)))
	msg = append(msg, pd...)
	sum := uint16(rdm.StartCode)
	for _, v := range msg {
		sum += uint16(v)
	}
	return append(msg, byte(sum>>8), byte(sum))
}

func TestRdmDelegation(t *testing.T) {
	e := newEngine(t)
	head := []byte{0x01, 0x00, 0, 0, 0, 0, 0, 0x10, 0x20, 0x00, 0x00, 0x05}
	msg := rdmMessage(0x21, 0x0082, []byte("Spot1"))
	tr := dissect(t, e, artPacket(0x8300, body(head, msg)...))

	assert.Empty(t, tr.Diagnostics())
	assert.Equal(t, "OpRdm Port-Address 5", tr.Info())
	label, ok := tr.StringValue("rdm.pd.label")
	require.True(t, ok)
	assert.Equal(t, "Spot1", label)
	ref, _ := tr.Find("rdm.parameter_id")
	assert.Equal(t, "Parameter ID: DEVICE_LABEL (0x0082)", tr.Text(ref))
	ref, _ = tr.Find("rdm.src_uid")
	assert.Equal(t, tree.Range{Start: 12 + len(head) + 8, Len: 6}, tr.Node(ref).Range)

	msg[len(msg)-1]++
	tr = dissect(t, e, artPacket(0x8300, body(head, msg)...))
	assert.Equal(t, []string{tree.CodeMalformed}, codes(tr))
}

func TestRdmSub(t *testing.T) {
	e := newEngine(t)
	b := body(
		[]byte{0x01, 0x00},
		[]byte{0x41, 0x4c, 0, 0, 0, 1},
		[]byte{0x00, 0x30, 0x00, 0xf0, 0x00, 0x01, 0x00, 0x02},
		make([]byte, 4),
		[]byte{0x00, 0x01, 0x00, 0x11},
	)
	tr := dissect(t, e, artPacket(0x8400, b...))
	assert.Empty(t, tr.Diagnostics())
	vals := tr.FindAll("artnet.rdm_sub.value")
	require.Len(t, vals, 2)
	assert.EqualValues(t, 0x11, tr.Node(vals[1]).Uint)
	ref, _ := tr.Find("artnet.rdm_sub.pid")
	assert.Equal(t, "Parameter ID: DMX_START_ADDRESS (0x00f0)", tr.Text(ref))

	// Get carries no values.
	b[11] = 0x20
	tr = dissect(t, e, artPacket(0x8400, b[:len(b)-4]...))
	assert.Empty(t, tr.Diagnostics())
	assert.Empty(t, tr.FindAll("artnet.rdm_sub.value"))
}

func TestDiagData(t *testing.T) {
	e := newEngine(t)
	tr := dissect(t, e, artPacket(0x2300, body([]byte{0, 0x10, 0, 0, 0x00, 0x06}, []byte("hello\x00"))...))
	assert.Empty(t, tr.Diagnostics())
	assert.Equal(t, `OpDiagData "hello"`, tr.Info())
	ref, _ := tr.Find("artnet.diag_data.priority")
	assert.Equal(t, "DiagPriority: DpLow (0x10)", tr.Text(ref))
}

func TestCommand(t *testing.T) {
	e := newEngine(t)
	text := "SwoutText=Playback&SwinText=Record&"
	tr := dissect(t, e, artPacket(0x2400, body([]byte{0xff, 0xff, 0x00, byte(len(text))}, []byte(text))...))
	assert.Empty(t, tr.Diagnostics())

	keys := tr.FindAll("artnet.command.key")
	values := tr.FindAll("artnet.command.value")
	require.Len(t, keys, 2)
	require.Len(t, values, 2)
	assert.Equal(t, "SwinText", tr.Node(keys[1]).Str)
	assert.Equal(t, "Record", tr.Node(values[1]).Str)
	// "SwinText" starts after "SwoutText=Playback&" at offset 16.
	assert.Equal(t, tree.Range{Start: 16 + 19, Len: 8}, tr.Node(keys[1]).Range)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want []Command
	}{
		{"", nil},
		{"a=1", []Command{{Key: "a", Value: "1"}}},
		{"a=1&b=&", []Command{{Key: "a", Value: "1"}, {Key: "b", Value: "", at: 4}}},
		{"junk&=x&c=3", []Command{{Key: "c", Value: "3", at: 8}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.in))
		})
	}
}

func TestTrigger(t *testing.T) {
	e := newEngine(t)
	tr := dissect(t, e, artPacket(0x9900, body([]byte{0, 0, 0xff, 0xff, 0x01, 0x05}, []byte{1, 2})...))
	assert.Empty(t, tr.Diagnostics())
	ref, ok := tr.Find("artnet.trigger.key_std")
	require.True(t, ok)
	assert.Equal(t, "Key: KeyMacro (1)", tr.Text(ref))

	tr = dissect(t, e, artPacket(0x9900, body([]byte{0, 0, 0x12, 0x34, 0x01, 0x05})...))
	_, ok = tr.Find("artnet.trigger.key")
	assert.True(t, ok)
}

func TestTimeCodeRanges(t *testing.T) {
	e := newEngine(t)
	tests := []struct {
		name                      string
		frames, sec, min, hr, typ byte
		want                      []string
	}{
		{"valid ebu", 24, 59, 59, 23, 1, nil},
		{"frame beyond ebu", 25, 0, 0, 0, 1, []string{tree.CodeMalformed}},
		{"frame valid smpte", 29, 0, 0, 0, 3, nil},
		{"bad seconds and hours", 0, 60, 0, 24, 0, []string{tree.CodeMalformed, tree.CodeMalformed}},
		{"unknown type", 0, 0, 0, 0, 7, []string{tree.CodeMalformed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := dissect(t, e, artPacket(0x9700, body([]byte{0, 0, tt.frames, tt.sec, tt.min, tt.hr, tt.typ})...))
			assert.Equal(t, tt.want, codes(tr))
		})
	}
}

func TestDataReply(t *testing.T) {
	e := newEngine(t)
	url := "https://example.com"
	tr := dissect(t, e, artPacket(0x2800, body([]byte{0x41, 0x4c, 0, 1, 0x00, 0x01, 0x00, byte(len(url))}, []byte(url))...))
	assert.Empty(t, tr.Diagnostics())
	got, _ := tr.StringValue("artnet.data.url")
	assert.Equal(t, url, got)
	assert.Equal(t, "OpDataReply DrUrlProduct", tr.Info())

	// Manufacturer-specific payloads go to artnet-data-<esta>, here not registered.
	tr = dissect(t, e, artPacket(0x2800, body([]byte{0x41, 0x4c, 0, 1, 0x80, 0x01, 0x00, 0x03}, []byte{1, 2, 3})...))
	assert.Empty(t, tr.Diagnostics())
	ref, ok := tr.Find("data.data")
	require.True(t, ok)
	assert.Equal(t, tree.Range{Start: 20, Len: 3}, tr.Node(ref).Range)
	assert.Equal(t, "artnet-data-414c", DataProtocolName(0x414c))
}

func TestDataReplyAudit(t *testing.T) {
	reg := decoder.NewRegistry()
	require.NoError(t, reg.Register(New(DefaultOptions())))
	e := decoder.New(reg, decoder.Options{AuditUnknown: true})
	tr := e.Dissect(&core.Packet{Data: artPacket(0x2800, body([]byte{0x41, 0x4c, 0, 1, 0x80, 0x01, 0x00, 0x01}, []byte{9})...)})
	assert.Equal(t, []string{tree.CodeUnregistered}, codes(tr))
}

func TestDataReplyManufacturerProtocol(t *testing.T) {
	hfPayload := &field.Def{Name: "Payload", Abbrev: "artnet-data-414c.payload", Kind: field.KindBytes}
	reg := decoder.NewRegistry()
	require.NoError(t, reg.Register(New(DefaultOptions())))
	require.NoError(t, reg.Register(&decoder.Protocol{
		Name:  DataProtocolName(0x414c),
		Title: "Artistic Licence Data",
		Dissect: func(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
			_, err := d.AddBytes(c, parent, hfPayload, c.Remaining())
			return err
		},
		Fields: []*field.Def{hfPayload},
	}))
	e := decoder.New(reg, decoder.Options{AuditUnknown: true})

	tr := e.Dissect(&core.Packet{Data: artPacket(0x2800, body([]byte{0x41, 0x4c, 0, 1, 0x80, 0x01, 0x00, 0x03}, []byte{1, 2, 3})...)})
	assert.Empty(t, tr.Diagnostics())
	_, ok := tr.Find("data.data")
	assert.False(t, ok)

	var sub tree.NodeRef
	found := false
	tr.Walk(func(ref tree.NodeRef, _ int) bool {
		n := tr.Node(ref)
		if n.Kind == field.KindProtocol && n.Label == "Artistic Licence Data" {
			sub, found = ref, true
			return false
		}
		return true
	})
	require.True(t, found)
	assert.Equal(t, tree.Range{Start: 20, Len: 3}, tr.Node(sub).Range)

	ref, ok := tr.Find("artnet-data-414c.payload")
	require.True(t, ok)
	assert.Equal(t, []tree.NodeRef{ref}, tr.Children(sub))
	assert.Equal(t, []byte{1, 2, 3}, tr.Node(ref).Value())
}

func TestVideoDerivedLengths(t *testing.T) {
	e := newEngine(t)
	setup := body(make([]byte, 4), []byte{0x01, 3, 0, 2}, fixed("Arial", 64), fixed("sans", 64), []byte{1, 2, 3, 4, 5, 6})
	tr := dissect(t, e, artPacket(0xa010, setup...))
	assert.Empty(t, tr.Diagnostics())
	ref, ok := tr.Find("artnet.video_setup.font_data")
	require.True(t, ok)
	assert.Equal(t, 6, tr.Node(ref).Range.Len)

	video := body([]byte{0, 0, 1, 1, 2, 2}, make([]byte, 8))
	tr = dissect(t, e, artPacket(0xa040, video...))
	assert.Empty(t, tr.Diagnostics())
	ref, _ = tr.Find("artnet.video_data.data")
	assert.Equal(t, 8, tr.Node(ref).Range.Len)

	// 255 x 255 x 2 bytes are claimed but absent.
	video = body([]byte{0, 0, 0, 0, 0xff, 0xff}, make([]byte, 8))
	tr = dissect(t, e, artPacket(0xa040, video...))
	assert.Equal(t, []string{tree.CodeTruncated}, codes(tr))
}

func TestIPProg(t *testing.T) {
	e := newEngine(t)
	b := body([]byte{0, 0, 0x84, 0}, []byte{10, 0, 0, 9}, []byte{255, 0, 0, 0}, []byte{0x19, 0x36}, []byte{10, 0, 0, 1})
	tr := dissect(t, e, artPacket(0xf800, b...))
	assert.Empty(t, tr.Diagnostics())
	enable, _ := tr.UintValue("artnet.ip_prog.command.enable")
	assert.EqualValues(t, 1, enable)
	ref, ok := tr.Find("artnet.ip_prog.gateway")
	require.True(t, ok)
	assert.Equal(t, "Default gateway: 10.0.0.1", tr.Text(ref))

	// Older programmers stop after the port.
	tr = dissect(t, e, artPacket(0xf800, b[:len(b)-4]...))
	assert.Empty(t, tr.Diagnostics())
	_, ok = tr.Find("artnet.ip_prog.gateway")
	assert.False(t, ok)
}

func TestDmxSubDissectorAlone(t *testing.T) {
	reg := decoder.NewRegistry()
	require.NoError(t, reg.Register(dmx.New()))
	e := decoder.New(reg, decoder.Options{})
	tr, err := e.DissectAs(dmx.Name, &core.Packet{Data: make([]byte, 20)})
	require.NoError(t, err)
	assert.Empty(t, tr.Diagnostics())
}
