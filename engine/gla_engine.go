package engine

import (
	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/rtnerr"
)

// glaOutcome is what resolving a GLA frame to its next step produces.
type glaOutcome int

const (
	// glaNeedsLex means the frame is still nonfinal and stepIntFA must
	// be driven (by the caller pushing an intFAFrame) before this GLA
	// frame can make further progress.
	glaNeedsLex glaOutcome = iota
	// glaResolvedPop means selector 0 was chosen: the owning RTN frame
	// is to be popped as if its current state were final, regardless
	// of the grammar's IsFinal flag for that state.
	glaResolvedPop
	// glaResolvedTerminal means a terminal-kind transition on the
	// owner's current state was chosen; resolution.term and
	// resolution.tr are set.
	glaResolvedTerminal
	// glaResolvedNonterminal means a nonterminal-kind transition on the
	// owner's current state was chosen; resolution.tr is set.
	glaResolvedNonterminal
)

// glaResolution is what a final GLA state decided, without having
// acted on it yet -- acting requires first removing the GLA frame
// itself from the parse stack, which only the driver loop can safely
// sequence (see stepGLA's doc comment).
type glaResolution struct {
	owner *rtnFrame
	tr    *grammar.RTNTransition
	term  Terminal
}

// stepGLA inspects a GLA frame already at the top of the parse stack.
// It never reads bytes itself (that's the adjoining intFAFrame's job)
// and, critically, never mutates the parse stack itself: the GLA frame
// is still on top of it while this runs, and both commitNonterminalTransition
// (pushes) and popRTNFrame (pops, assuming its argument is on top) need
// the GLA frame gone first. The driver pops it, then applies the
// glaResolution this returns.
func (s *ParseState) stepGLA(f *glaFrame) (glaOutcome, glaResolution, error) {
	if !f.state.IsFinal {
		return glaNeedsLex, glaResolution{}, nil
	}

	if len(f.state.Selectors) != 1 {
		return 0, glaResolution{}, rtnerr.NewInternalError("GLA final state has %d selectors, expected exactly 1", len(f.state.Selectors))
	}
	selector := f.state.Selectors[0]

	if selector == 0 {
		return glaResolvedPop, glaResolution{owner: f.owner}, nil
	}

	idx := selector - 1
	if idx < 0 || idx >= len(f.owner.state.Transitions) {
		return 0, glaResolution{}, rtnerr.NewInternalError("GLA selector %d out of range for %d transitions", selector, len(f.owner.state.Transitions))
	}
	tr := f.owner.state.Transitions[idx]

	switch tr.Kind {
	case grammar.TransitionTerminal:
		term, ok := s.dequeueToken()
		if !ok {
			return 0, glaResolution{}, rtnerr.NewInternalError("GLA committed a terminal transition with an empty token buffer")
		}
		return glaResolvedTerminal, glaResolution{owner: f.owner, tr: tr, term: term}, nil
	default:
		return glaResolvedNonterminal, glaResolution{owner: f.owner, tr: tr}, nil
	}
}

// pushGLAFollowup starts the next lookahead lex for a still-nonfinal
// GLA frame by pushing an IntFA frame for its current state.
func (s *ParseState) pushGLAFollowup(f *glaFrame) error {
	if err := s.checkStackDepth(); err != nil {
		return err
	}
	s.pushFrame(frame{kind: frameIntFA, intfa: &intFAFrame{
		fa:              f.state.IntFA,
		state:           f.state.IntFA.Start(),
		startOffset:     s.offset,
		cur:             s.offset,
		lastMatchOffset: -1,
	}})
	return nil
}
