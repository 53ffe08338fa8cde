package bytecode_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/rtnparse/bytecode"
	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/rtnerr"
)

// scriptedReader is a bytecode.Reader built from a fixed sequence of
// values, standing in for a real grammar file's bytes without
// depending on rezi's actual on-wire encoding: Load only ever calls
// through the Reader interface, so a reader that just plays back a
// scripted sequence exercises the same decoding logic a real one
// would.
type scriptedReader struct {
	vals []interface{}
	pos  int
}

func newScript(vals ...interface{}) *scriptedReader {
	return &scriptedReader{vals: vals}
}

func (r *scriptedReader) Done() bool {
	return r.pos >= len(r.vals)
}

func (r *scriptedReader) next() (interface{}, error) {
	if r.pos >= len(r.vals) {
		return nil, io.ErrUnexpectedEOF
	}
	v := r.vals[r.pos]
	r.pos++
	return v, nil
}

func (r *scriptedReader) ReadByte() (byte, error) {
	v, err := r.next()
	if err != nil {
		return 0, err
	}
	return v.(byte), nil
}

func (r *scriptedReader) ReadInt() (int, error) {
	v, err := r.next()
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (r *scriptedReader) ReadString() (string, error) {
	v, err := r.next()
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

const (
	blockStringTable byte = 0
	blockIntFA       byte = 1
	blockGLA         byte = 2
	blockRTN         byte = 3
)

// minimalGrammarScript encodes one RTN, "S", with a single state that
// is immediately final and takes no transitions: the smallest
// structurally valid grammar file, matching only the empty string.
func minimalGrammarScript() *scriptedReader {
	return newScript(
		blockStringTable, 1, "S",
		blockRTN,
		0,    // name string idx -> "S"
		0,    // numSlots
		0,    // numIgnore
		1,    // numStates
		byte(1), byte(grammar.LookaheadNone), // state 0: final, no lookahead
		0, // numTrans
	)
}

func TestLoad_MinimalGrammar(t *testing.T) {
	g, err := bytecode.Load(minimalGrammarScript())
	require.NoError(t, err)
	require.NotNil(t, g)

	start := g.StartRTN()
	assert.Equal(t, "S", start.Name)
	assert.Equal(t, 0, start.NumSlots)
	require.Len(t, start.States, 1)
	assert.True(t, start.States[0].IsFinal)
	assert.Equal(t, grammar.LookaheadNone, start.States[0].Lookahead)
}

func TestLoad_WithIntFAAndTerminalTransition(t *testing.T) {
	// String table: 0="S" 1="A" 2="val"
	// IntFA 0: state0 --['a','a']--> state1(final="A")
	// RTN "S": state0 (lookahead=intfa 0) --terminal A, slot "val"--> state1(final)
	r := newScript(
		blockStringTable, 3, "S", "A", "val",
		blockIntFA,
		2,                        // numStates
		byte(0),                  // state0: not final
		1,                        // numTrans for state0
		byte('a'), byte('a'), 1, // range ['a','a'] -> dest 1
		byte(1), 1, // state1: final, finalStrIdx=1 ("A")
		0, // numTrans for state1
		blockRTN,
		0, // name -> "S"
		1, // numSlots
		0, // numIgnore
		2, // numStates
		byte(0), byte(grammar.LookaheadIntFA), 0, // state0: not final, lookahead=intfa, automaton idx 0
		1,                        // numTrans
		byte(0), 1, 1, 2, 0,      // terminal: labelStrIdx=1("A"), dest=1, slotNameIdx=2("val"), slotNum=0
		byte(1), byte(grammar.LookaheadNone), // state1: final, no lookahead
		0, // numTrans
	)

	g, err := bytecode.Load(r)
	require.NoError(t, err)

	start := g.StartRTN()
	require.Len(t, start.States, 2)
	st0 := start.States[0]
	assert.Equal(t, grammar.LookaheadIntFA, st0.Lookahead)
	require.NotNil(t, st0.IntFA)
	require.Len(t, st0.Transitions, 1)

	tr := st0.Transitions[0]
	assert.Equal(t, grammar.TransitionTerminal, tr.Kind)
	assert.Equal(t, "A", tr.Terminal)
	assert.True(t, tr.HasSlot)
	assert.Equal(t, "val", tr.SlotName)
	assert.Same(t, start.States[1], tr.Dest)
}

func TestLoad_UnknownBlockKind(t *testing.T) {
	r := newScript(byte(99))
	_, err := bytecode.Load(r)
	require.Error(t, err)
	var gerr *rtnerr.GrammarError
	assert.ErrorAs(t, err, &gerr)
}

func TestLoad_NoRTNs(t *testing.T) {
	r := newScript(blockStringTable, 0)
	_, err := bytecode.Load(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no RTNs")
}

func TestLoad_DanglingStringIndex(t *testing.T) {
	r := newScript(
		blockStringTable, 0,
		blockRTN,
		5, // name string idx, out of range
		0,
		0,
		0, // numStates
	)
	_, err := bytecode.Load(r)
	require.Error(t, err)
	var gerr *rtnerr.GrammarError
	assert.ErrorAs(t, err, &gerr)
}
