package grammar

// GLA is a Grammar Lookahead Automaton: a DFA over terminals (not
// bytes) used to disambiguate which outgoing RTN transition an
// RTN state in lookahead-driven mode should take. Each nonfinal state
// lexes its next terminal via an IntFA of its own.
type GLA struct {
	States []*GLAState
}

// Start returns the GLA's start state.
func (g *GLA) Start() *GLAState {
	return g.States[0]
}

// GLAState is one state of a GLA. A nonfinal state carries the IntFA
// used to lex the next terminal plus a transition table keyed by that
// terminal's name; a final state carries the list of RTN-transition
// selectors to act on once reached.
type GLAState struct {
	IsFinal bool

	// IntFA and Transitions are valid only when IsFinal is false.
	IntFA       *IntFA
	Transitions map[string]*GLAState

	// Selectors is valid only when IsFinal is true. A value of 0 means
	// "return from the enclosing RTN without taking a transition"; a
	// value k>0 identifies the k-th (1-based) outgoing transition of
	// the RTN state that invoked this GLA. The grammar's compiler is
	// expected to emit exactly one selector per final state; a length
	// other than 1 here is an internal invariant violation (see
	// rtnerr.InternalError and spec Open Questions).
	Selectors []int
}

// TransitionFor returns the GLA state reached by consuming a terminal
// of the given name from this (nonfinal) state, or nil if there is no
// such transition -- which is a parse error, not an internal one.
func (s *GLAState) TransitionFor(terminalName string) *GLAState {
	return s.Transitions[terminalName]
}
