package artnet

import (
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
	"firestige.xyz/dissector/internal/protocols/dmx"
)

const (
	minDmxLength = 2
	maxDmxLength = 512
)

// dissectUniverse decodes the Sequence..Length block shared by ArtDmx and
// ArtNzs. The second byte is Physical for ArtDmx and the start code for
// ArtNzs.
func dissectUniverse(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef, second *fieldRef) (uni, length uint64, err error) {
	if _, err = d.AddUint(c, parent, hfDmxSequence); err != nil {
		return
	}
	if second.value, err = d.AddUint(c, parent, second.def); err != nil {
		return
	}
	start := c.Abs()
	sub, err := d.AddUint(c, parent, hfDmxSubUni)
	if err != nil {
		return
	}
	net, err := d.AddUint(c, parent, hfNet)
	if err != nil {
		return
	}
	uni = (net&0x7f)<<8 | sub
	d.AddGenerated(parent, hfUni, tree.Range{Start: start, Len: 2}, uni)

	length, err = d.AddUint(c, parent, hfDmxLength)
	return
}

func dissectDmx(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	uni, length, err := dissectUniverse(d, c, parent, &fieldRef{def: hfDmxPhysical})
	if err != nil {
		return err
	}
	if length < minDmxLength || length > maxDmxLength || length%2 != 0 {
		d.Malformed(tree.Range{Start: c.Abs() - 2, Len: 2},
			"DMX length %d must be an even number between %d and %d", length, minDmxLength, maxDmxLength)
	}
	d.SetInfo("OpDmx Port-Address %d, %d channels", uni, length)
	data, err := c.Take(int(length))
	if err != nil {
		return err
	}
	return d.Delegate(dmx.Name, data, parent)
}

func dissectNzs(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	start := &fieldRef{def: hfNzsStartCode}
	uni, length, err := dissectUniverse(d, c, parent, start)
	if err != nil {
		return err
	}
	if length < 1 || length > maxDmxLength {
		d.Malformed(tree.Range{Start: c.Abs() - 2, Len: 2},
			"Slot count %d must be between 1 and %d", length, maxDmxLength)
	}
	data, err := c.Take(int(length))
	if err != nil {
		return err
	}
	if start.value == vlcStartCode && isVLC(data) {
		d.SetInfo("OpNzs VLC Port-Address %d", uni)
		return d.Delegate(VLCName, data, parent)
	}
	d.SetInfo("OpNzs start code %#02x Port-Address %d", start.value, uni)
	if data.Remaining() > 0 {
		d.Opaque(data, parent, hfNzsData)
	}
	return nil
}

// fieldRef carries a field definition and receives its decoded value.
type fieldRef struct {
	def   *field.Def
	value uint64
}

func dissectSync(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddUint(c, parent, hfSyncAux1); err != nil {
		return err
	}
	_, err := d.AddUint(c, parent, hfSyncAux2)
	return err
}

func dissectAddress(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBitmask(c, parent, addressNetSwitch); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfAddressBindIndex); err != nil {
		return err
	}
	if _, err := d.AddString(c, parent, hfAddressShortName, 18); err != nil {
		return err
	}
	if _, err := d.AddString(c, parent, hfAddressLongName, 64); err != nil {
		return err
	}
	if err := portColumn(d, c, parent, "Input universes", func(p tree.NodeRef) error {
		_, err := d.AddBitmask(c, p, addressSwIn)
		return err
	}); err != nil {
		return err
	}
	if err := portColumn(d, c, parent, "Output universes", func(p tree.NodeRef) error {
		_, err := d.AddBitmask(c, p, addressSwOut)
		return err
	}); err != nil {
		return err
	}
	if _, err := d.AddBitmask(c, parent, addressSubSwitch); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfAddressAcnPriority); err != nil {
		return err
	}
	cmd, err := d.AddUint(c, parent, hfAddressCommand)
	if err != nil {
		return err
	}
	if name, ok := addressCommands.Lookup(cmd); ok {
		d.SetInfo("OpAddress %s", name)
	}
	return nil
}

func dissectInput(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddUint(c, parent, hfInputBindIndex); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfFiller, 1); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfInputNumPorts); err != nil {
		return err
	}
	return portColumn(d, c, parent, "Inputs", func(p tree.NodeRef) error {
		_, err := d.AddBitmask(c, p, inputPort)
		return err
	})
}
