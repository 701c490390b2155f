package tree

import "fmt"

// Severity of a diagnostic. Advisory only: decoding never branches on it.
type Severity uint8

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", s)
}

// MarshalText renders the severity by name in JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Diagnostic codes.
const (
	CodeTruncated      = "truncated"
	CodeMalformed      = "malformed"
	CodeExcessData     = "excess-data"
	CodeShortBody      = "short-body"
	CodeRecursionLimit = "recursion-limit"
	CodeUnknownOpcode  = "unknown-opcode"
	CodeUnregistered   = "unregistered-subprotocol"
	CodeDissectorBug   = "dissector-bug"
)

// Diagnostic is a non-fatal finding attached to a byte range.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Range    Range
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s (offset %d, length %d)", d.Severity, d.Message, d.Range.Start, d.Range.Len)
}

// Report appends a diagnostic. It never affects decoding.
func (t *Tree) Report(sev Severity, code, msg string, rng Range) {
	t.diags = append(t.diags, Diagnostic{Severity: sev, Code: code, Message: msg, Range: rng})
}

// Diagnostics returns the diagnostics in the order they were reported.
func (t *Tree) Diagnostics() []Diagnostic { return t.diags }

// MaxSeverity returns the highest severity reported, and false when there
// are no diagnostics.
func (t *Tree) MaxSeverity() (Severity, bool) {
	if len(t.diags) == 0 {
		return 0, false
	}
	maxSev := t.diags[0].Severity
	for _, d := range t.diags[1:] {
		if d.Severity > maxSev {
			maxSev = d.Severity
		}
	}
	return maxSev, true
}

// Count returns the number of diagnostics of the given severity.
func (t *Tree) Count(sev Severity) int {
	n := 0
	for _, d := range t.diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
