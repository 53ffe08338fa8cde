package engine

import "github.com/dekarrin/rtnparse/grammar"

// frameKind tags which of the three shapes a parse-stack frame is.
// Go has no native union type, so the three variants are carried as
// separate, mutually-exclusive pointer fields on one struct rather
// than as an interface hierarchy -- the dispatcher in driver.go is a
// small, dense switch on kind, exactly as spec.md §9 ("Tagged
// frames") asks for.
type frameKind int

const (
	frameRTN frameKind = iota
	frameGLA
	frameIntFA
)

// frame is one element of the parse stack.
type frame struct {
	kind  frameKind
	rtn   *rtnFrame
	gla   *glaFrame
	intfa *intFAFrame
}

// rtnFrame is the RTN frame shape from spec.md §3: the RTN, its
// current state, the transition being explored (set once a
// nonterminal transition has been committed and we are waiting for
// the pushed child frame to return), the slot record under
// construction, and the offset this frame was pushed at.
type rtnFrame struct {
	rtn         *grammar.RTN
	state       *grammar.RTNState
	transition  *grammar.RTNTransition
	slots       *SlotRecord
	startOffset int
}

// glaFrame is the GLA frame shape: the GLA, its current state, the
// offset lookahead began at, and the RTN frame whose state invoked it
// (selectors resolve against that frame's current state).
type glaFrame struct {
	gla         *grammar.GLA
	state       *grammar.GLAState
	startOffset int
	owner       *rtnFrame
}

// intFAFrame is the IntFA frame shape: the automaton, its current
// state, the offset the current lex attempt began at, and the
// (offset, state) of the most recent final state seen, for
// longest-match reconstruction per spec.md §4.1.
type intFAFrame struct {
	fa              *grammar.IntFA
	state           *grammar.IntFAState
	startOffset     int
	cur             int
	lastMatchOffset int // -1 if no match yet
	lastMatchState  *grammar.IntFAState
}
