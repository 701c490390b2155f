package artnet

import (
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/tree"
	"firestige.xyz/dissector/internal/protocols/rdm"
)

const (
	maxTodAddresses = 32
	uidLen          = 6
)

func dissectTodRequest(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 7); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfNet); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTodReqCommand); err != nil {
		return err
	}
	countStart := c.Abs()
	count, err := d.AddUint(c, parent, hfTodReqAddCount)
	if err != nil {
		return err
	}
	if count > maxTodAddresses {
		d.Malformed(tree.Range{Start: countStart, Len: 1}, "Address count %d exceeds %d", count, maxTodAddresses)
		count = maxTodAddresses
	}
	sub := d.Subtree(parent, "Addresses", c)
	defer d.Close(sub, c)
	for range count {
		if _, err := d.AddUint(c, sub, hfTodReqAddress); err != nil {
			return err
		}
	}
	return nil
}

func dissectTodData(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddUint(c, parent, hfTodDataRdmVer); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTodDataPort); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 6); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTodDataBindIndex); err != nil {
		return err
	}
	uniStart := c.Abs()
	net, err := d.AddUint(c, parent, hfNet)
	if err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTodDataCommand); err != nil {
		return err
	}
	addr, err := d.AddUint(c, parent, hfTodDataAddress)
	if err != nil {
		return err
	}
	uni := (net&0x7f)<<8 | addr
	d.AddGenerated(parent, hfUni, tree.Range{Start: uniStart, Len: 3}, uni)
	total, err := d.AddUint(c, parent, hfTodDataUIDTotal)
	if err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTodDataBlock); err != nil {
		return err
	}
	count, err := d.AddUint(c, parent, hfTodDataUIDCount)
	if err != nil {
		return err
	}
	d.SetInfo("OpTodData Port-Address %d, %d of %d UIDs", uni, count, total)

	sub := d.Subtree(parent, "Table of devices", c)
	defer d.Close(sub, c)
	for range count {
		if _, err := d.AddBytes(c, sub, hfTodDataUID, uidLen); err != nil {
			return err
		}
	}
	return nil
}

func dissectTodControl(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddBytes(c, parent, hfFiller, 2); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 7); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfNet); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfTodCtlCommand); err != nil {
		return err
	}
	_, err := d.AddUint(c, parent, hfTodCtlAddress)
	return err
}

func dissectRdm(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddUint(c, parent, hfRdmVer); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfFiller, 1); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 5); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfRdmFifoAvail); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfRdmFifoMax); err != nil {
		return err
	}
	uniStart := c.Abs()
	net, err := d.AddUint(c, parent, hfNet)
	if err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfRdmCommand); err != nil {
		return err
	}
	addr, err := d.AddUint(c, parent, hfRdmAddress)
	if err != nil {
		return err
	}
	uni := (net&0x7f)<<8 | addr
	d.AddGenerated(parent, hfUni, tree.Range{Start: uniStart, Len: 3}, uni)
	d.SetInfo("OpRdm Port-Address %d", uni)
	if c.Remaining() == 0 {
		return nil
	}
	return d.Delegate(rdm.Name, c.Rest(), parent)
}

func dissectRdmSub(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	if _, err := d.AddUint(c, parent, hfRdmSubVer); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfFiller, 1); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfRdmSubUID, uidLen); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 1); err != nil {
		return err
	}
	class, err := d.AddUint(c, parent, hfRdmSubClass)
	if err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfRdmSubPID); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfRdmSubDevice); err != nil {
		return err
	}
	count, err := d.AddUint(c, parent, hfRdmSubCount)
	if err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 4); err != nil {
		return err
	}
	// Only Set and GetResponse carry values.
	if class != 0x21 && class != 0x30 {
		return nil
	}
	sub := d.Subtree(parent, "Values", c)
	defer d.Close(sub, c)
	for range count {
		if _, err := d.AddUint(c, sub, hfRdmSubValue); err != nil {
			return err
		}
	}
	return nil
}
