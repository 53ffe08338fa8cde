package engine

import (
	"fmt"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/rtnparse/grammar"
)

// ValueKind tags which of the four shapes a ParseValue currently
// holds.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueTerminal
	ValueNonterminal
	ValueUserdata
)

// Terminal is a (name, offset, length) lexical token: a byte span of
// the input the IntFA engine recognized, tagged with the terminal
// name the grammar gave that span.
type Terminal struct {
	Name   string
	Offset int
	Length int
}

// ParseValue is a slot cell: a tagged union of empty, a terminal
// reference, a completed child RTN's slot record, or an opaque
// fixed-size userdata blob written by a callback. Userdata is inline,
// matching the C interpreter's `char userdata[8]` -- no heap pointer
// lives inside a ParseValue.
type ParseValue struct {
	Kind     ValueKind
	Term     Terminal
	Nonterm  *SlotRecord
	Userdata [8]byte
}

// SlotRecord is the result of completing one RTN call: a reference to
// the RTN that produced it, plus its fixed-size array of slot cells,
// one per declared slot.
type SlotRecord struct {
	RTN   *grammar.RTN
	Slots []ParseValue
}

// newSlotRecord allocates a SlotRecord sized to rtn's declared arity,
// every cell starting empty.
func newSlotRecord(rtn *grammar.RTN) *SlotRecord {
	return &SlotRecord{RTN: rtn, Slots: make([]ParseValue, rtn.NumSlots)}
}

// DebugString renders the slot record as an indented tree, for test
// failure output and the demo CLI's --dump-tree flag. Each cell's text
// is wrapped with rosed the same way the teacher's parse-tree and AST
// node String() methods wrap their own free-text fields, instead of
// hand-rolling line wrapping the way types.ParseTree.leveledStr did.
func (sr *SlotRecord) DebugString() string {
	return sr.debugStringIndented("")
}

func (sr *SlotRecord) debugStringIndented(indent string) string {
	if sr == nil {
		return "(nil)"
	}

	s := fmt.Sprintf("(%s\n", sr.RTN.Name)
	childIndent := indent + "  "
	for i, v := range sr.Slots {
		var cellText string
		switch v.Kind {
		case ValueEmpty:
			cellText = fmt.Sprintf("[%d] <empty>", i)
		case ValueTerminal:
			cellText = fmt.Sprintf("[%d] terminal %q @%d+%d", i, v.Term.Name, v.Term.Offset, v.Term.Length)
		case ValueNonterminal:
			cellText = fmt.Sprintf("[%d] %s", i, v.Nonterm.debugStringIndented(childIndent))
		case ValueUserdata:
			cellText = fmt.Sprintf("[%d] userdata %x", i, v.Userdata)
		}
		wrapped := rosed.Edit(cellText).Wrap(72).String()
		s += childIndent + spaceIndentNewlines(wrapped, len(childIndent)) + "\n"
	}
	s += indent + ")"

	return s
}

// spaceIndentNewlines prefixes every line after the first in s with n
// spaces, mirroring the helper of the same purpose used throughout
// the teacher's AST String() methods.
func spaceIndentNewlines(s string, n int) string {
	pad := ""
	for i := 0; i < n; i++ {
		pad += " "
	}
	out := ""
	for i, line := range splitLines(s) {
		if i > 0 {
			out += "\n" + pad
		}
		out += line
	}
	return out
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
