package engine

import (
	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/rtnerr"
)

// rtnStepOutcome is what advancing one frame by one step produces,
// once any stack mutation it implies has already been applied.
type rtnStepOutcome int

const (
	// rtnContinue means the driver's main loop should simply inspect
	// the (possibly new) top frame again.
	rtnContinue rtnStepOutcome = iota
	// rtnCancelled means a callback vetoed the parse; s.wasCancelled
	// is already set.
	rtnCancelled
	// rtnDone means the start-symbol frame popped at end of input.
	rtnDone
)

// stepRTN advances an RTN frame that is at the top of the stack and
// not mid-transition (f.transition == nil is the driver's invariant
// for ever calling this -- a frame with a pending transition is never
// itself on top; its pushed child is).
func (s *ParseState) stepRTN(f *rtnFrame) (rtnStepOutcome, error) {
	switch f.state.Lookahead {
	case grammar.LookaheadNone:
		if !f.state.IsFinal {
			return 0, rtnerr.NewInternalError("RTN state %s has no transitions and is not final", f.rtn.Name)
		}
		return s.popRTNAndReport(f)

	case grammar.LookaheadGLA:
		if err := s.checkStackDepth(); err != nil {
			return 0, err
		}
		s.pushFrame(frame{kind: frameGLA, gla: &glaFrame{
			gla:         f.state.GLA,
			state:       f.state.GLA.Start(),
			startOffset: s.offset,
			owner:       f,
		}})
		return rtnContinue, nil

	case grammar.LookaheadIntFA:
		if term, ok := s.dequeueToken(); ok {
			return s.dispatchRTNTerminal(f, term)
		}
		if err := s.checkStackDepth(); err != nil {
			return 0, err
		}
		s.pushFrame(frame{kind: frameIntFA, intfa: &intFAFrame{
			fa:              f.state.IntFA,
			state:           f.state.IntFA.Start(),
			startOffset:     s.offset,
			cur:             s.offset,
			lastMatchOffset: -1,
		}})
		return rtnContinue, nil

	default:
		return 0, rtnerr.NewInternalError("RTN state %s has unrecognized lookahead kind %d", f.rtn.Name, f.state.Lookahead)
	}
}

// dispatchRTNTerminal is the single decision point of spec.md §4.3's
// per-state dispatch once a terminal is in hand, used identically
// whether the terminal arrived fresh off the IntFA or was dequeued
// from a GLA's lookahead buffer after being pushed back by a popped
// child.
func (s *ParseState) dispatchRTNTerminal(f *rtnFrame, term Terminal) (rtnStepOutcome, error) {
	if tr := f.state.TransitionForTerminal(term.Name); tr != nil {
		s.commitTerminalTransition(f, tr, term)
		return rtnContinue, nil
	}

	if !f.state.IsFinal {
		return 0, rtnerr.NewParseError(term.Offset, "unexpected terminal %q in rule %s", term.Name, f.rtn.Name)
	}

	if len(s.stack) == 1 {
		if term.Name == EndOfText {
			return s.popRTNAndReport(f)
		}
		return 0, rtnerr.NewParseError(term.Offset, "unexpected trailing input %q after %s completed", term.Name, f.rtn.Name)
	}

	// S is final but doesn't expect this terminal itself: hand it back
	// to whoever called us and let them decide, exactly as if they had
	// lexed it themselves (spec.md §4.3's "pop this frame without
	// consuming").
	s.pushFrontToken(term)
	return s.popRTNAndReport(f)
}

// deliverTerminal routes a terminal just produced by a completed
// IntFA frame to whichever frame is now on top (the frame that pushed
// the IntFA frame in the first place): either the RTN frame
// dispatching on it directly, or the GLA frame folding it into its own
// lookahead DFA. Ignored terminals are silently discarded and relexed
// from the same offset, for both kinds of consumer alike (spec.md
// §4.1's ignore-set note).
func (s *ParseState) deliverTerminal(term Terminal) (rtnStepOutcome, error) {
	top := s.topFrame()
	if top == nil {
		return 0, rtnerr.NewInternalError("terminal lexed with no consumer frame on stack")
	}

	switch top.kind {
	case frameRTN:
		f := top.rtn
		if term.Name != EndOfText && f.rtn.Ignores(term.Name) {
			return rtnContinue, s.relex(f.state.IntFA)
		}
		return s.dispatchRTNTerminal(f, term)

	case frameGLA:
		g := top.gla
		if term.Name != EndOfText && g.owner.rtn.Ignores(term.Name) {
			return rtnContinue, s.relex(g.state.IntFA)
		}
		dest := g.state.TransitionFor(term.Name)
		if dest == nil {
			return 0, rtnerr.NewParseError(term.Offset, "unexpected terminal %q in lookahead for rule %s", term.Name, g.owner.rtn.Name)
		}
		if err := s.queueToken(term); err != nil {
			return 0, err
		}
		g.state = dest
		return rtnContinue, nil

	default:
		return 0, rtnerr.NewInternalError("terminal lexed with unexpected consumer frame kind %d", top.kind)
	}
}

// relex pushes a fresh IntFA frame for fa starting at the current
// offset, used to restart lexing after discarding an ignored terminal.
func (s *ParseState) relex(fa *grammar.IntFA) error {
	if err := s.checkStackDepth(); err != nil {
		return err
	}
	s.pushFrame(frame{kind: frameIntFA, intfa: &intFAFrame{
		fa:              fa,
		state:           fa.Start(),
		startOffset:     s.offset,
		cur:             s.offset,
		lastMatchOffset: -1,
	}})
	return nil
}

// commitTerminalTransition advances f across tr, recording term into
// f's slot record if the transition names one.
func (s *ParseState) commitTerminalTransition(f *rtnFrame, tr *grammar.RTNTransition, term Terminal) {
	f.state = tr.Dest
	if tr.HasSlot {
		f.slots.Slots[tr.SlotNum] = ParseValue{Kind: ValueTerminal, Term: term}
	}
}

// commitNonterminalTransition marks f mid-transition on tr and pushes
// a fresh frame for the called RTN. Safe to call only when f is
// currently the top of the stack.
func (s *ParseState) commitNonterminalTransition(f *rtnFrame, tr *grammar.RTNTransition) error {
	if err := s.checkStackDepth(); err != nil {
		return err
	}
	f.transition = tr
	child := &rtnFrame{
		rtn:         tr.Target,
		state:       tr.Target.Start(),
		startOffset: s.offset,
		slots:       newSlotRecord(tr.Target),
	}
	s.pushFrame(frame{kind: frameRTN, rtn: child})
	s.slotStack = append(s.slotStack, child.slots)
	return nil
}

// popRTNAndReport pops f (which must currently be the top frame),
// fires its callbacks, and folds cancellation/completion into an
// rtnStepOutcome for the driver loop.
func (s *ParseState) popRTNAndReport(f *rtnFrame) (rtnStepOutcome, error) {
	done, err := s.popRTNFrame(f)
	if err != nil {
		return 0, err
	}
	if s.wasCancelled {
		return rtnCancelled, nil
	}
	if done {
		return rtnDone, nil
	}
	return rtnContinue, nil
}

// popRTNFrame implements spec.md §4.3's frame-pop: fire every callback
// registered against f.rtn.Name while f's slot record is still the
// top of the slot stack, then either leave the start-symbol frame in
// place (so Result() can read it) or fold f's finished slot record
// into the parent frame's slot at the transition that called it.
func (s *ParseState) popRTNFrame(f *rtnFrame) (done bool, err error) {
	cancelled, err := s.fireCallbacks(f)
	if err != nil {
		return false, err
	}
	if cancelled {
		s.wasCancelled = true
		return true, nil
	}

	if len(s.stack) == 1 {
		return true, nil
	}

	s.popFrame()
	s.slotStack = s.slotStack[:len(s.slotStack)-1]

	parent := s.topFrame()
	if parent == nil || parent.kind != frameRTN {
		return false, rtnerr.NewInternalError("RTN frame's parent is not an RTN frame")
	}
	pf := parent.rtn
	tr := pf.transition
	if tr == nil {
		return false, rtnerr.NewInternalError("RTN frame for %s completed with no recorded calling transition", f.rtn.Name)
	}
	pf.state = tr.Dest
	if tr.HasSlot {
		pf.slots.Slots[tr.SlotNum] = ParseValue{Kind: ValueNonterminal, Nonterm: f.slots}
	}
	pf.transition = nil
	return false, nil
}

// fireCallbacks runs every registered callback for f.rtn.Name, in
// registration order, recording each into the trace sink if one is
// attached. It stops after the first callback that returns
// CallbackCancel; later callbacks for the same RTN do not fire.
func (s *ParseState) fireCallbacks(f *rtnFrame) (cancelled bool, err error) {
	for _, rc := range s.callbacks {
		if rc.rtnName != f.rtn.Name {
			continue
		}
		result := rc.callback(s, rc.userData)
		if s.trace != nil {
			s.traceSeq++
			if terr := s.trace.RecordCallback(s.traceSeq, f.rtn.Name, f.startOffset); terr != nil {
				return cancelled, terr
			}
		}
		if result == CallbackCancel {
			return true, nil
		}
	}
	return cancelled, nil
}

// --- parse-stack and token-buffer primitives ---

func (s *ParseState) pushFrame(f frame) {
	s.stack = append(s.stack, f)
}

func (s *ParseState) popFrame() frame {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return f
}

func (s *ParseState) topFrame() *frame {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

func (s *ParseState) dequeueToken() (Terminal, bool) {
	if len(s.tokenBuffer) == 0 {
		return Terminal{}, false
	}
	t := s.tokenBuffer[0]
	s.tokenBuffer = s.tokenBuffer[1:]
	return t, true
}

func (s *ParseState) queueToken(t Terminal) error {
	if err := s.checkTokenBufferLen(); err != nil {
		return err
	}
	s.tokenBuffer = append(s.tokenBuffer, t)
	return nil
}

func (s *ParseState) pushFrontToken(t Terminal) {
	s.tokenBuffer = append([]Terminal{t}, s.tokenBuffer...)
}
