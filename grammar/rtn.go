package grammar

import "github.com/dekarrin/rtnparse/internal/util"

// LookaheadKind says how an RTNState chooses its outgoing transition.
type LookaheadKind int

const (
	// LookaheadNone means the state has no outgoing transitions; it
	// must be final.
	LookaheadNone LookaheadKind = iota
	// LookaheadIntFA means the state is terminal-driven: it lexes one
	// terminal directly via IntFA and dispatches on its name.
	LookaheadIntFA
	// LookaheadGLA means the state is lookahead-driven: a GLA consumes
	// a bounded run of terminals to choose the transition.
	LookaheadGLA
)

func (k LookaheadKind) String() string {
	switch k {
	case LookaheadIntFA:
		return "intfa"
	case LookaheadGLA:
		return "gla"
	default:
		return "neither"
	}
}

// TransitionKind says whether an RTNTransition is labelled by a
// terminal or by a nonterminal (another RTN).
type TransitionKind int

const (
	TransitionTerminal TransitionKind = iota
	TransitionNonterminal
)

// RTN is a Recursive Transition Network: the automaton for a single
// grammar rule. Its states and transitions are held as contiguous
// arrays; States[0] is always the start state.
type RTN struct {
	Name string

	// NumSlots is the fixed arity of this rule's result record: every
	// SlotRecord produced by completing this RTN has exactly this
	// many cells.
	NumSlots int

	// Ignore is the set of terminal names silently discarded wherever
	// they appear while parsing this rule, both by the RTN directly
	// and by any GLA it invokes.
	Ignore util.StringSet

	States []*RTNState
}

// Start returns the RTN's start state.
func (r *RTN) Start() *RTNState {
	return r.States[0]
}

// Ignores reports whether the named terminal is in this RTN's ignore
// set.
func (r *RTN) Ignores(terminalName string) bool {
	return r.Ignore.Has(terminalName)
}

// RTNState is one state of an RTN.
type RTNState struct {
	IsFinal   bool
	Lookahead LookaheadKind

	// IntFA is set when Lookahead == LookaheadIntFA.
	IntFA *IntFA
	// GLA is set when Lookahead == LookaheadGLA.
	GLA *GLA

	Transitions []*RTNTransition
}

// TransitionForTerminal returns the unique outgoing transition
// labelled with the given terminal name, or nil if there is none.
func (s *RTNState) TransitionForTerminal(name string) *RTNTransition {
	for _, t := range s.Transitions {
		if t.Kind == TransitionTerminal && t.Terminal == name {
			return t
		}
	}
	return nil
}

// RTNTransition is one outgoing edge of an RTNState.
type RTNTransition struct {
	Kind TransitionKind

	// Terminal is set when Kind == TransitionTerminal.
	Terminal string
	// Target is set when Kind == TransitionNonterminal: the RTN this
	// transition calls into.
	Target *RTN

	Dest *RTNState

	// HasSlot reports whether a match taken on this transition is
	// recorded into the producing frame's slot record. When false,
	// SlotName and SlotNum are meaningless.
	HasSlot  bool
	SlotName string
	SlotNum  int
}
