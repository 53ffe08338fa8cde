package grammar

import "github.com/dekarrin/rtnparse/internal/util"

// This file hand-assembles a handful of small grammars directly out of
// the automaton types above, the way a developer would build a fixture
// by hand rather than through the (out-of-scope) grammar compiler.
// They back both package engine's tests and the demo CLI.

// faAlt describes one alternative an IntFA recognizes: a single byte
// range, optionally repeated to coalesce a whole run into one
// terminal (digit runs, whitespace runs). Every fixture terminal here
// is simple enough to need only this one shape.
type faAlt struct {
	name        string
	low, high   byte
	repeating   bool
}

// buildAltFA builds a one-level IntFA: a start state with one outgoing
// edge per alternative, each landing directly on a final state for
// that alternative's terminal name. A repeating alternative's final
// state also loops on its own byte range, giving maximal-munch runs.
func buildAltFA(alts ...faAlt) *IntFA {
	start := &IntFAState{}
	states := []*IntFAState{start}
	for _, alt := range alts {
		final := &IntFAState{Final: alt.name}
		states = append(states, final)
		start.Transitions = append(start.Transitions, IntFATransition{Low: alt.low, High: alt.high, Dest: final})
		if alt.repeating {
			final.Transitions = append(final.Transitions, IntFATransition{Low: alt.low, High: alt.high, Dest: final})
		}
	}
	return &IntFA{States: states}
}

// emptyFA recognizes nothing at all: every byte is unmatched, and the
// only way to progress past a state using it is end-of-input (which
// the IntFA engine synthesizes independent of the automaton's own
// transition table). Used for final states that expect nothing more.
func emptyFA() *IntFA {
	return &IntFA{States: []*IntFAState{{}}}
}

const (
	byteLParen = '('
	byteRParen = ')'
	bytePlus   = '+'
	byteSpace  = ' '
	byteDigit0 = '0'
	byteDigit9 = '9'
	byteA      = 'a'
	byteB      = 'b'
	byteC      = 'c'
)

// BalancedParens builds S -> '(' S ')' | epsilon, with no slot content
// beyond the nesting itself. It exercises: the epsilon/zero-length
// completion path, a trivial (zero-lookahead) GLA standing in for an
// unconditional nonterminal call, the final-but-unmatched-terminal
// pop-with-pushback rule across nested frames, and end-of-text
// detection at the bottom frame.
func BalancedParens() *Grammar {
	parenFA := buildAltFA(
		faAlt{name: "LPAREN", low: byteLParen, high: byteLParen},
		faAlt{name: "RPAREN", low: byteRParen, high: byteRParen},
	)

	s := &RTN{Name: "S", NumSlots: 1, Ignore: util.NewStringSet()}
	st0 := &RTNState{IsFinal: true, Lookahead: LookaheadIntFA, IntFA: parenFA}
	st1 := &RTNState{}
	st2 := &RTNState{Lookahead: LookaheadIntFA, IntFA: parenFA}
	st3 := &RTNState{IsFinal: true, Lookahead: LookaheadIntFA, IntFA: parenFA}
	s.States = []*RTNState{st0, st1, st2, st3}

	// st0 lexes directly: seeing '(' advances to st1, whose trivial
	// (zero-lookahead) GLA unconditionally recurses into S; seeing
	// anything else, or end-of-text, pops st0 (it is final).
	recurseGLA := &GLA{States: []*GLAState{{IsFinal: true, Selectors: []int{1}}}}
	st1.Lookahead = LookaheadGLA
	st1.GLA = recurseGLA

	st0.Transitions = []*RTNTransition{
		{Kind: TransitionTerminal, Terminal: "LPAREN", Dest: st1},
	}

	st1.Transitions = []*RTNTransition{
		{Kind: TransitionNonterminal, Target: s, Dest: st2, HasSlot: true, SlotName: "inner", SlotNum: 0},
	}

	st2.Transitions = []*RTNTransition{
		{Kind: TransitionTerminal, Terminal: "RPAREN", Dest: st3},
	}

	g, err := New([]*RTN{s}, []*GLA{recurseGLA}, []*IntFA{parenFA}, nil, "S")
	if err != nil {
		panic(err)
	}
	return g
}

// ArithmeticSum builds a small LL(1) expression grammar:
//
//	Expr   -> T EPrime
//	EPrime -> '+' T EPrime | epsilon
//	T      -> NUM
//
// with whitespace ignored around every token. It exercises ignore
// sets, maximal-munch digit runs, and right-recursive repetition built
// from plain RTN recursion (no special "loop" construct).
func ArithmeticSum() *Grammar {
	ws := util.NewStringSet()
	ws.Add("WS")

	numOrWS := buildAltFA(
		faAlt{name: "NUM", low: byteDigit0, high: byteDigit9, repeating: true},
		faAlt{name: "WS", low: byteSpace, high: byteSpace, repeating: true},
	)
	plusOrWS := buildAltFA(
		faAlt{name: "PLUS", low: bytePlus, high: bytePlus},
		faAlt{name: "WS", low: byteSpace, high: byteSpace, repeating: true},
	)
	doneFA := buildAltFA(
		faAlt{name: "NUM", low: byteDigit0, high: byteDigit9, repeating: true},
		faAlt{name: "PLUS", low: bytePlus, high: bytePlus},
		faAlt{name: "WS", low: byteSpace, high: byteSpace, repeating: true},
	)

	unconditional := func(transitionIdx int) *GLA {
		return &GLA{States: []*GLAState{{IsFinal: true, Selectors: []int{transitionIdx}}}}
	}

	t := &RTN{Name: "T", NumSlots: 1, Ignore: ws}
	tSt0 := &RTNState{Lookahead: LookaheadIntFA, IntFA: numOrWS}
	tSt1 := &RTNState{IsFinal: true}
	t.States = []*RTNState{tSt0, tSt1}
	tSt0.Transitions = []*RTNTransition{
		{Kind: TransitionTerminal, Terminal: "NUM", Dest: tSt1, HasSlot: true, SlotName: "value", SlotNum: 0},
	}

	eprime := &RTN{Name: "EPrime", NumSlots: 2, Ignore: ws}
	eSt0 := &RTNState{IsFinal: true, Lookahead: LookaheadIntFA, IntFA: plusOrWS}
	eSt1 := &RTNState{}
	eSt2 := &RTNState{}
	eSt3 := &RTNState{IsFinal: true}
	eprime.States = []*RTNState{eSt0, eSt1, eSt2, eSt3}

	eSt0.Transitions = []*RTNTransition{
		{Kind: TransitionTerminal, Terminal: "PLUS", Dest: eSt1},
	}
	eprimeCallT := unconditional(1)
	eprimeCallEPrime := unconditional(1)
	eSt1.Lookahead = LookaheadGLA
	eSt1.GLA = eprimeCallT
	eSt1.Transitions = []*RTNTransition{
		{Kind: TransitionNonterminal, Target: t, Dest: eSt2, HasSlot: true, SlotName: "term", SlotNum: 0},
	}
	eSt2.Lookahead = LookaheadGLA
	eSt2.GLA = eprimeCallEPrime
	eSt2.Transitions = []*RTNTransition{
		{Kind: TransitionNonterminal, Target: eprime, Dest: eSt3, HasSlot: true, SlotName: "rest", SlotNum: 1},
	}

	expr := &RTN{Name: "Expr", NumSlots: 2, Ignore: ws}
	exSt0 := &RTNState{}
	exSt1 := &RTNState{}
	exSt2 := &RTNState{IsFinal: true, Lookahead: LookaheadIntFA, IntFA: doneFA}
	expr.States = []*RTNState{exSt0, exSt1, exSt2}

	exprCallT := unconditional(1)
	exprCallEPrime := unconditional(1)
	exSt0.Lookahead = LookaheadGLA
	exSt0.GLA = exprCallT
	exSt0.Transitions = []*RTNTransition{
		{Kind: TransitionNonterminal, Target: t, Dest: exSt1, HasSlot: true, SlotName: "first", SlotNum: 0},
	}
	exSt1.Lookahead = LookaheadGLA
	exSt1.GLA = exprCallEPrime
	exSt1.Transitions = []*RTNTransition{
		{Kind: TransitionNonterminal, Target: eprime, Dest: exSt2, HasSlot: true, SlotName: "rest", SlotNum: 1},
	}

	glas := []*GLA{eprimeCallT, eprimeCallEPrime, exprCallT, exprCallEPrime}
	intfas := []*IntFA{numOrWS, plusOrWS, doneFA}

	g, err := New([]*RTN{expr, t, eprime}, glas, intfas, nil, "Expr")
	if err != nil {
		panic(err)
	}
	return g
}

// Disambiguation builds the two-terminal-lookahead scenario from
// spec.md §8: Start -> A | B where A = "ab" and B = "ac", requiring a
// real (non-trivial) GLA to see past the shared leading 'a' before
// choosing which nonterminal to call. The chosen child then replays
// the terminals the GLA already buffered on its behalf.
func Disambiguation() *Grammar {
	aFA := buildAltFA(faAlt{name: "LET_A", low: byteA, high: byteA})
	bFA := buildAltFA(faAlt{name: "LET_B", low: byteB, high: byteB})
	cFA := buildAltFA(faAlt{name: "LET_C", low: byteC, high: byteC})
	bOrCFA := buildAltFA(
		faAlt{name: "LET_B", low: byteB, high: byteB},
		faAlt{name: "LET_C", low: byteC, high: byteC},
	)

	a := &RTN{Name: "A", NumSlots: 0, Ignore: util.NewStringSet()}
	aSt0 := &RTNState{Lookahead: LookaheadIntFA, IntFA: aFA}
	aSt1 := &RTNState{Lookahead: LookaheadIntFA, IntFA: bFA}
	aSt2 := &RTNState{IsFinal: true}
	a.States = []*RTNState{aSt0, aSt1, aSt2}
	aSt0.Transitions = []*RTNTransition{{Kind: TransitionTerminal, Terminal: "LET_A", Dest: aSt1}}
	aSt1.Transitions = []*RTNTransition{{Kind: TransitionTerminal, Terminal: "LET_B", Dest: aSt2}}

	b := &RTN{Name: "B", NumSlots: 0, Ignore: util.NewStringSet()}
	bSt0 := &RTNState{Lookahead: LookaheadIntFA, IntFA: aFA}
	bSt1 := &RTNState{Lookahead: LookaheadIntFA, IntFA: cFA}
	bSt2 := &RTNState{IsFinal: true}
	b.States = []*RTNState{bSt0, bSt1, bSt2}
	bSt0.Transitions = []*RTNTransition{{Kind: TransitionTerminal, Terminal: "LET_A", Dest: bSt1}}
	bSt1.Transitions = []*RTNTransition{{Kind: TransitionTerminal, Terminal: "LET_C", Dest: bSt2}}

	gla := &GLA{}
	gSt2 := &GLAState{IsFinal: true, Selectors: []int{1}}
	gSt3 := &GLAState{IsFinal: true, Selectors: []int{2}}
	gSt1 := &GLAState{IntFA: bOrCFA, Transitions: map[string]*GLAState{"LET_B": gSt2, "LET_C": gSt3}}
	gSt0 := &GLAState{IntFA: aFA, Transitions: map[string]*GLAState{"LET_A": gSt1}}
	gla.States = []*GLAState{gSt0, gSt1, gSt2, gSt3}

	start := &RTN{Name: "Start", NumSlots: 1, Ignore: util.NewStringSet()}
	stSt0 := &RTNState{Lookahead: LookaheadGLA, GLA: gla}
	stSt1 := &RTNState{IsFinal: true, Lookahead: LookaheadIntFA, IntFA: emptyFA()}
	start.States = []*RTNState{stSt0, stSt1}
	stSt0.Transitions = []*RTNTransition{
		{Kind: TransitionNonterminal, Target: a, Dest: stSt1, HasSlot: true, SlotName: "choice", SlotNum: 0},
		{Kind: TransitionNonterminal, Target: b, Dest: stSt1, HasSlot: true, SlotName: "choice", SlotNum: 0},
	}

	g, err := New(
		[]*RTN{start, a, b},
		[]*GLA{gla},
		[]*IntFA{aFA, bFA, cFA, bOrCFA, emptyFA()},
		nil,
		"Start",
	)
	if err != nil {
		panic(err)
	}
	return g
}
