package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"firestige.xyz/dissector/internal/core/tree"
)

const indent = "    "

// WriteText renders t the way a packet analyser's detail pane does: a
// summary line, one indented line per node, then diagnostics.
func WriteText(w io.Writer, t *tree.Tree, opts Options) error {
	return Build(t, opts).WriteText(w)
}

// WriteText renders the document as text.
func (d *Document) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(d.Summary())
	bw.WriteByte('\n')
	writeNode(bw, d.Tree, 0)
	for _, diag := range d.Diagnostics {
		fmt.Fprintf(bw, "  ! [%s] %s (offset %d, length %d)\n", diag.Severity, diag.Message, diag.Offset, diag.Length)
	}
	bw.WriteString(d.HexDump)
	bw.WriteByte('\n')
	return bw.Flush()
}

func writeNode(bw *bufio.Writer, n *Node, depth int) {
	if n == nil {
		return
	}
	bw.WriteString(strings.Repeat(indent, depth))
	bw.WriteString(n.Text)
	bw.WriteByte('\n')
	for _, c := range n.Children {
		writeNode(bw, c, depth+1)
	}
}

// Summary is the one-line header: number, time, addresses, protocol, info.
func (d *Document) Summary() string {
	var b strings.Builder
	if d.Number > 0 {
		b.WriteString("#")
		b.WriteString(strconv.FormatUint(d.Number, 10))
		b.WriteByte(' ')
	}
	if !d.Timestamp.IsZero() {
		b.WriteString(d.Timestamp.Format("15:04:05.000000"))
		b.WriteByte(' ')
	}
	if d.Source != "" {
		b.WriteString(d.Source)
		b.WriteString(" → ")
		b.WriteString(d.Destination)
		b.WriteByte(' ')
	}
	b.WriteString(d.Protocol)
	if d.Info != "" {
		b.WriteString(" ")
		b.WriteString(d.Info)
	}
	return b.String()
}
