package artnet

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeReport is the parsed form of the PollReply node report text,
// "#xxxx [dddd] text": a hex status code, a decimal poll counter and free
// text.
type NodeReport struct {
	Code    uint16
	Counter uint32
	Text    string

	// byte offsets of the parts inside the report string
	codeAt, counterAt, counterLen, textAt int
}

// ParseNodeReport splits s into its parts. It fails when s does not follow
// the grammar.
func ParseNodeReport(s string) (NodeReport, error) {
	var r NodeReport
	if len(s) < 9 || s[0] != '#' {
		return r, fmt.Errorf("node report %q: missing #code", s)
	}
	code, err := strconv.ParseUint(s[1:5], 16, 16)
	if err != nil {
		return r, fmt.Errorf("node report %q: bad status code: %w", s, err)
	}
	rest := s[5:]
	if !strings.HasPrefix(rest, " [") {
		return r, fmt.Errorf("node report %q: missing [counter]", s)
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return r, fmt.Errorf("node report %q: unterminated counter", s)
	}
	digits := rest[2:end]
	counter, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return r, fmt.Errorf("node report %q: bad counter: %w", s, err)
	}
	r.Code = uint16(code)
	r.Counter = uint32(counter)
	r.codeAt = 1
	r.counterAt = 7
	r.counterLen = len(digits)
	r.textAt = 5 + end + 1
	text := s[r.textAt:]
	if strings.HasPrefix(text, " ") {
		text = text[1:]
		r.textAt++
	}
	r.Text = text
	return r, nil
}

// String renders the report back in wire form.
func (r NodeReport) String() string {
	return fmt.Sprintf("#%04x [%04d] %s", r.Code, r.Counter, r.Text)
}
