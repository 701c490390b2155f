package artnet

import (
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

const (
	maxPorts        = 4
	pollReplyMinLen = 191
)

// trailing decodes the optional groups that later protocol revisions
// appended to a packet. Older senders stop early, so decoding ends at the
// first group with no bytes left. A group that is only partly present
// fails as truncated, since its fields are read through the cursor.
func trailing(c *cursor.Cursor, groups ...func() error) error {
	for _, g := range groups {
		if c.Remaining() == 0 {
			return nil
		}
		if err := g(); err != nil {
			return err
		}
	}
	return nil
}

func dissectPoll(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	return trailing(c,
		func() error {
			if _, err := d.AddBitmask(c, parent, pollFlags); err != nil {
				return err
			}
			_, err := d.AddUint(c, parent, hfPollPriority)
			return err
		},
		func() error {
			top, err := d.AddUint(c, parent, hfPollTargetTop)
			if err != nil {
				return err
			}
			bottom, err := d.AddUint(c, parent, hfPollTargetBot)
			if err != nil {
				return err
			}
			if bottom > top {
				d.Malformed(tree.Range{Start: c.Abs() - 4, Len: 4},
					"Target Port-Address bottom %d is above top %d", bottom, top)
			}
			return nil
		},
		func() error {
			if _, err := d.AddUint(c, parent, hfEstaMan); err != nil {
				return err
			}
			_, err := d.AddUint(c, parent, hfOem)
			return err
		},
	)
}

func dissectPollReply(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	ip, err := d.AddIPv4(c, parent, hfReplyIP)
	if err != nil {
		return err
	}
	for _, def := range []*field.Def{hfReplyPort, hfReplyVersInfo} {
		if _, err := d.AddUint(c, parent, def); err != nil {
			return err
		}
	}
	netSwitch, err := d.AddUint(c, parent, hfReplyNetSwitch)
	if err != nil {
		return err
	}
	subSwitch, err := d.AddUint(c, parent, hfReplySubSwitch)
	if err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfOem); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfReplyUbeaVersion); err != nil {
		return err
	}
	if _, err := d.AddBitmask(c, parent, replyStatus1); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfReplyEstaMan); err != nil {
		return err
	}
	shortName, err := d.AddString(c, parent, hfReplyShortName, 18)
	if err != nil {
		return err
	}
	if _, err := d.AddString(c, parent, hfReplyLongName, 64); err != nil {
		return err
	}
	if err := dissectNodeReport(d, c, parent); err != nil {
		return err
	}
	numPorts, err := d.AddUint(c, parent, hfReplyNumPorts)
	if err != nil {
		return err
	}
	if err := portColumn(d, c, parent, "Port types", func(p tree.NodeRef) error {
		_, err := d.AddBitmask(c, p, replyPortType)
		return err
	}); err != nil {
		return err
	}
	if err := portColumn(d, c, parent, "Input status", func(p tree.NodeRef) error {
		_, err := d.AddBitmask(c, p, replyGoodInput)
		return err
	}); err != nil {
		return err
	}
	if err := portColumn(d, c, parent, "Output status", func(p tree.NodeRef) error {
		_, err := d.AddBitmask(c, p, replyGoodOutputA)
		return err
	}); err != nil {
		return err
	}

	base := (netSwitch&0x7f)<<8 | (subSwitch&0x0f)<<4
	ports := int(min(numPorts, maxPorts))
	for _, col := range []struct {
		label string
		def   *field.Def
		gen   *field.Def
	}{
		{"Input universes", hfReplySwIn, hfReplyInAddress},
		{"Output universes", hfReplySwOut, hfReplyOutAddress},
	} {
		sub := d.Subtree(parent, col.label, c)
		for i := range maxPorts {
			start := c.Abs()
			v, err := d.AddUint(c, sub, col.def)
			if err != nil {
				d.Close(sub, c)
				return err
			}
			if i < ports {
				d.AddGenerated(sub, col.gen, tree.Range{Start: start, Len: 1}, base|v&0x0f)
			}
		}
		d.Close(sub, c)
	}

	if _, err := d.AddUint(c, parent, hfReplyAcnPriority); err != nil {
		return err
	}
	if _, err := d.AddBitmask(c, parent, replySwMacro); err != nil {
		return err
	}
	if _, err := d.AddBitmask(c, parent, replySwRemote); err != nil {
		return err
	}
	if _, err := d.AddBytes(c, parent, hfSpare, 3); err != nil {
		return err
	}
	if _, err := d.AddUint(c, parent, hfReplyStyle); err != nil {
		return err
	}
	d.SetInfo("OpPollReply %s %q", ip, shortName)

	err = trailing(c,
		func() error {
			_, err := d.AddEther(c, parent, hfReplyMAC)
			return err
		},
		func() error {
			bindStart := c.Abs()
			bindIP, err := d.AddIPv4(c, parent, hfReplyBindIP)
			if err != nil {
				return err
			}
			bindIndex, err := d.AddUint(c, parent, hfReplyBindIndex)
			if err != nil {
				return err
			}
			if !bindIP.IsUnspecified() && bindIndex == 0 {
				d.Malformed(tree.Range{Start: bindStart, Len: 5}, "Bind IP %s given without a bind index", bindIP)
			}
			_, err = d.AddBitmask(c, parent, replyStatus2)
			return err
		},
		func() error {
			if err := portColumn(d, c, parent, "Output status B", func(p tree.NodeRef) error {
				_, err := d.AddBitmask(c, p, replyGoodOutputB)
				return err
			}); err != nil {
				return err
			}
			_, err := d.AddBitmask(c, parent, replyStatus3)
			return err
		},
		func() error {
			_, err := d.AddBytes(c, parent, hfReplyDefaultUID, 6)
			return err
		},
		func() error {
			if _, err := d.AddUint(c, parent, hfReplyUser); err != nil {
				return err
			}
			_, err := d.AddUint(c, parent, hfReplyRefreshRate)
			return err
		},
	)
	if err != nil {
		return err
	}
	if c.Remaining() > 0 {
		d.Opaque(c, parent, hfFiller)
	}
	return nil
}

// portColumn decodes one per-port array of the reply.
func portColumn(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef, label string, fn func(tree.NodeRef) error) error {
	sub := d.Subtree(parent, label, c)
	defer d.Close(sub, c)
	for range maxPorts {
		if err := fn(sub); err != nil {
			return err
		}
	}
	return nil
}

func dissectNodeReport(d *decoder.Dissection, c *cursor.Cursor, parent tree.NodeRef) error {
	start := c.Abs()
	s, err := d.AddString(c, parent, hfReplyNodeReport, 64)
	if err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	ref := d.Tree().LastChild(parent)
	r, err := ParseNodeReport(s)
	if err != nil {
		d.Malformed(tree.Range{Start: start, Len: len(s)}, "Node report does not match \"#xxxx [dddd] text\"")
		return nil
	}
	d.AddGenerated(ref, hfReplyReportCode, tree.Range{Start: start + r.codeAt, Len: 4}, uint64(r.Code))
	d.AddGenerated(ref, hfReplyReportCount, tree.Range{Start: start + r.counterAt, Len: r.counterLen}, uint64(r.Counter))
	d.Tree().Append(ref, tree.Node{
		Def:   hfReplyReportText,
		Kind:  field.KindString,
		Str:   r.Text,
		Range: tree.Range{Start: start + r.textAt, Len: len(s) - r.textAt},
	})
	return nil
}
