package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/internal/util"
)

func TestNew_DuplicateRTNName(t *testing.T) {
	a := &grammar.RTN{Name: "S", Ignore: util.NewStringSet(), States: []*grammar.RTNState{{IsFinal: true}}}
	b := &grammar.RTN{Name: "S", Ignore: util.NewStringSet(), States: []*grammar.RTNState{{IsFinal: true}}}
	_, err := grammar.New([]*grammar.RTN{a, b}, nil, nil, nil, "S")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate RTN name")
}

func TestNew_UnknownStartSymbol(t *testing.T) {
	a := &grammar.RTN{Name: "S", Ignore: util.NewStringSet(), States: []*grammar.RTNState{{IsFinal: true}}}
	_, err := grammar.New([]*grammar.RTN{a}, nil, nil, nil, "NoSuchRule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a defined RTN")
}

func TestNew_LooksUpRTNsAndStartSymbol(t *testing.T) {
	s := &grammar.RTN{Name: "S", Ignore: util.NewStringSet(), States: []*grammar.RTNState{{IsFinal: true}}}
	t2 := &grammar.RTN{Name: "T", Ignore: util.NewStringSet(), States: []*grammar.RTNState{{IsFinal: true}}}
	g, err := grammar.New([]*grammar.RTN{s, t2}, nil, nil, []string{"x"}, "T")
	require.NoError(t, err)

	assert.Same(t, t2, g.StartRTN())
	found, ok := g.RTNNamed("S")
	require.True(t, ok)
	assert.Same(t, s, found)
	_, ok = g.RTNNamed("nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"x"}, g.Strings)
	assert.ElementsMatch(t, []*grammar.RTN{s, t2}, g.RTNs())
}

func TestIntFAState_TransitionForAndIsFinal(t *testing.T) {
	final := &grammar.IntFAState{Final: "NUM"}
	start := &grammar.IntFAState{
		Transitions: []grammar.IntFATransition{
			{Low: '0', High: '9', Dest: final},
		},
	}
	assert.False(t, start.IsFinal())
	assert.True(t, final.IsFinal())

	assert.Same(t, final, start.TransitionFor('5'))
	assert.Nil(t, start.TransitionFor('x'))
}

func TestRTNState_TransitionForTerminal(t *testing.T) {
	dest := &grammar.RTNState{IsFinal: true}
	st := &grammar.RTNState{
		Transitions: []*grammar.RTNTransition{
			{Kind: grammar.TransitionTerminal, Terminal: "PLUS", Dest: dest},
			{Kind: grammar.TransitionNonterminal, Target: &grammar.RTN{Name: "T"}, Dest: dest},
		},
	}
	tr := st.TransitionForTerminal("PLUS")
	require.NotNil(t, tr)
	assert.Same(t, dest, tr.Dest)

	assert.Nil(t, st.TransitionForTerminal("MINUS"))
	// a nonterminal transition sharing a terminal-like name must never match
	assert.Nil(t, st.TransitionForTerminal("T"))
}

func TestRTN_Ignores(t *testing.T) {
	ignore := util.NewStringSet()
	ignore.Add("WS")
	r := &grammar.RTN{Name: "Expr", Ignore: ignore}
	assert.True(t, r.Ignores("WS"))
	assert.False(t, r.Ignores("NUM"))
}

func TestGLAState_TransitionFor(t *testing.T) {
	dest := &grammar.GLAState{IsFinal: true, Selectors: []int{1}}
	st := &grammar.GLAState{
		Transitions: map[string]*grammar.GLAState{"LET_A": dest},
	}
	assert.Same(t, dest, st.TransitionFor("LET_A"))
	assert.Nil(t, st.TransitionFor("LET_B"))
}

func TestFixtureGrammars_BuildWithoutPanicking(t *testing.T) {
	assert.NotPanics(t, func() { grammar.BalancedParens() })
	assert.NotPanics(t, func() { grammar.ArithmeticSum() })
	assert.NotPanics(t, func() { grammar.Disambiguation() })
}
