package decoder

import (
	"errors"
	"fmt"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/core/cursor"
	"firestige.xyz/dissector/internal/core/field"
	"firestige.xyz/dissector/internal/core/tree"
)

// DefaultMaxDepth bounds sub-dissector nesting.
const DefaultMaxDepth = 8

// Options tunes an Engine.
type Options struct {
	// MaxDepth is the deepest allowed sub-dissector nesting; the top-level
	// protocol is depth 0.
	MaxDepth int
	// AuditUnknown adds a note for unknown opcodes and unregistered
	// sub-protocols.
	AuditUnknown bool
}

// Engine dissects packets with the protocols of a sealed Registry.
// Dissect is safe for concurrent use.
type Engine struct {
	reg  *Registry
	opts Options
}

// New seals reg and returns an engine over it.
func New(reg *Registry, opts Options) *Engine {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	reg.seal()
	return &Engine{reg: reg, opts: opts}
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry { return e.reg }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

var (
	hfData     = &field.Def{Name: "Data", Abbrev: "data.data", Kind: field.KindBytes}
	hfUnparsed = &field.Def{Name: "Unparsed data", Abbrev: "dissector.unparsed", Kind: field.KindBytes}
	hfExcess   = &field.Def{Name: "Excess data", Abbrev: "dissector.excess", Kind: field.KindBytes}
)

// Dissect decodes pkt with the protocol chosen by, in order: the
// Metadata.Protocol hint, the UDP destination then source port, and the
// registered heuristics. Packets nobody claims become an opaque data tree.
// Dissect never fails: packet-dependent problems are diagnostics.
func (e *Engine) Dissect(pkt *core.Packet) *tree.Tree {
	if p := e.resolve(pkt); p != nil {
		return e.dissectWith(p, pkt)
	}
	t := tree.New(pkt, "data", "Data")
	if len(pkt.Data) > 0 {
		t.Append(tree.Root, tree.Node{Def: hfData, Kind: field.KindBytes, Bytes: pkt.Data, Range: tree.Range{Start: 0, Len: len(pkt.Data)}})
	}
	t.SetInfo(fmt.Sprintf("%d bytes", len(pkt.Data)))
	return t
}

// DissectAs decodes pkt with the named protocol.
func (e *Engine) DissectAs(name string, pkt *core.Packet) (*tree.Tree, error) {
	p, ok := e.reg.Find(name)
	if !ok {
		return nil, fmt.Errorf("dissect as %q: %w", name, core.ErrProtocolNotFound)
	}
	return e.dissectWith(p, pkt), nil
}

// Probe returns the first registered protocol whose heuristic claims buf.
func (e *Engine) Probe(buf []byte) (string, bool) {
	if p := e.probe(buf); p != nil {
		return p.Name, true
	}
	return "", false
}

func (e *Engine) probe(buf []byte) *Protocol {
	for _, p := range e.reg.protocols {
		if p.Probe != nil && p.Probe(buf) {
			return p
		}
	}
	return nil
}

func (e *Engine) resolve(pkt *core.Packet) *Protocol {
	if name := pkt.Meta.Protocol; name != "" {
		if p, ok := e.reg.Find(name); ok {
			return p
		}
	}
	if pkt.Meta.DstAddr.IsValid() {
		if p, ok := e.reg.ForPort(pkt.Meta.DstAddr.Port()); ok {
			return p
		}
	}
	if pkt.Meta.SrcAddr.IsValid() {
		if p, ok := e.reg.ForPort(pkt.Meta.SrcAddr.Port()); ok {
			return p
		}
	}
	return e.probe(pkt.Data)
}

func (e *Engine) dissectWith(p *Protocol, pkt *core.Packet) *tree.Tree {
	t := tree.New(pkt, p.Name, p.Title)
	d := &Dissection{engine: e, tree: t, meta: pkt.Meta}
	c := cursor.New(pkt.Data)
	if err := d.protect(func() error { return d.body(p, c, tree.Root) }); err != nil {
		d.fail(err, c)
	}
	return t
}

// RecursionError reports a sub-dissector call beyond Options.MaxDepth.
type RecursionError struct {
	Protocol string
	Depth    int
	Range    tree.Range
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("dissector: sub-dissector %s at depth %d exceeds the nesting limit", e.Protocol, e.Depth)
}

// Is makes errors.Is(err, core.ErrRecursionLimit) hold.
func (e *RecursionError) Is(target error) bool { return target == core.ErrRecursionLimit }

type bugError struct{ v any }

func (e *bugError) Error() string { return fmt.Sprintf("dissector bug: %v", e.v) }

// protect turns a panic inside a protocol routine into an error so the
// caller still receives the partial tree.
func (d *Dissection) protect(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &bugError{v: v}
		}
	}()
	return fn()
}

// fail records the error that stopped the dissection.
func (d *Dissection) fail(err error, c *cursor.Cursor) {
	var te *cursor.TruncatedError
	var re *RecursionError
	var be *bugError
	switch {
	case errors.As(err, &te):
		d.tree.Report(tree.SeverityError, tree.CodeTruncated,
			fmt.Sprintf("Packet truncated: %d bytes needed at offset %d, %d available",
				te.Need, te.Offset, max(te.End-te.Offset, 0)),
			tree.Range{Start: te.End, Len: 0})
	case errors.As(err, &re):
		d.tree.Report(tree.SeverityError, tree.CodeRecursionLimit,
			fmt.Sprintf("Sub-dissector %s not called: nesting limit %d reached", re.Protocol, d.engine.opts.MaxDepth),
			re.Range)
	case errors.As(err, &be):
		d.tree.Report(tree.SeverityError, tree.CodeDissectorBug, be.Error(), tree.Range{Start: c.Abs(), Len: 0})
	default:
		d.tree.Report(tree.SeverityError, tree.CodeMalformed, err.Error(), tree.Range{Start: c.Abs(), Len: 0})
	}
}
