package engine_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/rtnparse/engine"
	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/rtnerr"
)

func runOneShot(t *testing.T, g *grammar.Grammar, input string) (*engine.ParseState, engine.Status, error) {
	t.Helper()
	s := engine.NewParseState()
	s.Init(g)
	status, consumed, err := engine.Parse(g, s, []byte(input), true)
	assert.LessOrEqual(t, consumed, len(input))
	return s, status, err
}

func TestBalancedParens_Empty(t *testing.T) {
	g := grammar.BalancedParens()
	s, status, err := runOneShot(t, g, "")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusEOF, status)
	result := s.Result()
	assert.Equal(t, engine.ValueEmpty, result.Slots[0].Kind)
}

func TestBalancedParens_OnePair(t *testing.T) {
	g := grammar.BalancedParens()
	s, status, err := runOneShot(t, g, "()")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusEOF, status)
	result := s.Result()
	require.Equal(t, engine.ValueNonterminal, result.Slots[0].Kind)
	assert.Equal(t, engine.ValueEmpty, result.Slots[0].Nonterm.Slots[0].Kind)
}

func TestBalancedParens_Nested(t *testing.T) {
	g := grammar.BalancedParens()
	s, status, err := runOneShot(t, g, "(())")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusEOF, status)

	outer := s.Result()
	require.Equal(t, engine.ValueNonterminal, outer.Slots[0].Kind)
	inner := outer.Slots[0].Nonterm
	require.Equal(t, engine.ValueNonterminal, inner.Slots[0].Kind)
	innermost := inner.Slots[0].Nonterm
	assert.Equal(t, engine.ValueEmpty, innermost.Slots[0].Kind)
}

func TestBalancedParens_Unbalanced(t *testing.T) {
	g := grammar.BalancedParens()
	_, _, err := runOneShot(t, g, "(")
	require.Error(t, err)
	var perr *rtnerr.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestBalancedParens_TrailingGarbage(t *testing.T) {
	g := grammar.BalancedParens()
	_, _, err := runOneShot(t, g, "()x")
	require.Error(t, err)
}

// TestBalancedParens_Streamed feeds "(())" one byte at a time and
// checks the result matches the one-shot parse: resumability across
// arbitrary chunk boundaries (spec.md §8 property 1). A trace sink is
// attached to each run so the exact callback firing order -- not just
// the final tree -- can be diffed between the two.
func TestBalancedParens_Streamed(t *testing.T) {
	g := grammar.BalancedParens()
	input := "(())"

	streamedTracePath := filepath.Join(t.TempDir(), "streamed.db")
	oneShotTracePath := filepath.Join(t.TempDir(), "oneshot.db")

	s := engine.NewParseState()
	require.NoError(t, s.WithTraceDB(streamedTracePath))
	engine.RegisterCallback(s, "S", func(state *engine.ParseState, userData interface{}) engine.CallbackResult {
		return engine.CallbackContinue
	}, nil)
	s.Init(g)

	var finalStatus engine.Status
	totalConsumed := 0
	for i := 0; i < len(input); i++ {
		eof := i == len(input)-1
		status, consumed, err := engine.Parse(g, s, []byte{input[i]}, eof)
		require.NoError(t, err)
		totalConsumed += consumed
		finalStatus = status
		if status != engine.StatusOK {
			break
		}
	}

	assert.Equal(t, engine.StatusEOF, finalStatus)

	oneShotState := engine.NewParseState()
	require.NoError(t, oneShotState.WithTraceDB(oneShotTracePath))
	engine.RegisterCallback(oneShotState, "S", func(state *engine.ParseState, userData interface{}) engine.CallbackResult {
		return engine.CallbackContinue
	}, nil)
	oneShotState.Init(g)
	oneShotStatus, _, err := engine.Parse(g, oneShotState, []byte(input), true)
	require.NoError(t, err)
	require.Equal(t, engine.StatusEOF, oneShotStatus)

	assert.Equal(t, oneShotState.Result().Slots[0].Kind, s.Result().Slots[0].Kind)

	streamedTrace, err := engine.ReadTrace(streamedTracePath)
	require.NoError(t, err)
	oneShotTrace, err := engine.ReadTrace(oneShotTracePath)
	require.NoError(t, err)

	require.NotEmpty(t, streamedTrace)
	assert.Equal(t, oneShotTrace, streamedTrace)
}

func TestBalancedParens_Cancellation(t *testing.T) {
	g := grammar.BalancedParens()
	s := engine.NewParseState()
	s.Init(g)

	engine.RegisterCallback(s, "S", func(state *engine.ParseState, userData interface{}) engine.CallbackResult {
		return engine.CallbackCancel
	}, nil)

	status, _, err := engine.Parse(g, s, []byte("()"), true)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusCancelled, status)

	_, _, err = engine.Parse(g, s, []byte(""), true)
	assert.ErrorIs(t, err, rtnerr.ErrAlreadyCancelled)

	s.Reinit()
	status, _, err = engine.Parse(g, s, []byte("()"), true)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusCancelled, status)
}

func TestBalancedParens_StackDepthLimit(t *testing.T) {
	g := grammar.BalancedParens()
	s := engine.NewParseState()
	s.Init(g)
	s.MaxStackDepth = 3

	_, _, err := engine.Parse(g, s, []byte("(((())))"), true)
	require.Error(t, err)
	var lerr *rtnerr.LimitError
	assert.ErrorAs(t, err, &lerr)
}

func TestDisambiguation_ChoosesA(t *testing.T) {
	g := grammar.Disambiguation()
	s, status, err := runOneShot(t, g, "ab")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusEOF, status)

	result := s.Result()
	require.Equal(t, engine.ValueNonterminal, result.Slots[0].Kind)
	assert.Equal(t, "A", result.Slots[0].Nonterm.RTN.Name)
}

func TestDisambiguation_ChoosesB(t *testing.T) {
	g := grammar.Disambiguation()
	s, status, err := runOneShot(t, g, "ac")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusEOF, status)

	result := s.Result()
	require.Equal(t, engine.ValueNonterminal, result.Slots[0].Kind)
	assert.Equal(t, "B", result.Slots[0].Nonterm.RTN.Name)
}

func TestArithmeticSum_SingleNumber(t *testing.T) {
	g := grammar.ArithmeticSum()
	s, status, err := runOneShot(t, g, "42")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusEOF, status)

	result := s.Result()
	first := result.Slots[0].Nonterm
	require.Equal(t, engine.ValueTerminal, first.Slots[0].Kind)
	assert.Equal(t, "NUM", first.Slots[0].Term.Name)
	assert.Equal(t, 0, first.Slots[0].Term.Offset)
	assert.Equal(t, 2, first.Slots[0].Term.Length)

	rest := result.Slots[1].Nonterm
	assert.Equal(t, engine.ValueEmpty, rest.Slots[0].Kind)
}

func TestArithmeticSum_RepeatedSumWithWhitespace(t *testing.T) {
	g := grammar.ArithmeticSum()
	input := "1 + 2 + 3"
	s, status, err := runOneShot(t, g, input)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusEOF, status)

	expr := s.Result()
	require.Equal(t, engine.ValueTerminal, expr.Slots[0].Nonterm.Slots[0].Kind)
	term := expr.Slots[0].Nonterm.Slots[0].Term
	terms := []string{input[term.Offset : term.Offset+term.Length]}

	rest := expr.Slots[1].Nonterm
	for rest.Slots[0].Kind == engine.ValueNonterminal {
		term := rest.Slots[0].Nonterm.Slots[0].Term
		terms = append(terms, input[term.Offset:term.Offset+term.Length])
		rest = rest.Slots[1].Nonterm
	}

	assert.Equal(t, []string{"1", "2", "3"}, terms)
}

func TestArithmeticSum_UnexpectedByte(t *testing.T) {
	g := grammar.ArithmeticSum()
	_, _, err := runOneShot(t, g, "1+x")
	require.Error(t, err)
}
