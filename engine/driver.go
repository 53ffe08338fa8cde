// Package engine implements the incremental RTN/GLA/IntFA parsing
// engine: the interpreter that walks a grammar.Grammar over an input
// stream delivered in arbitrary chunks, suspending between calls to
// Parse and resuming exactly where it left off.
package engine

import (
	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/rtnerr"
)

// Parse feeds chunk to s, advancing the parse as far as the currently
// available input allows. eof tells the engine no further bytes will
// ever follow chunk; it may be set on any call, including one with a
// zero-length chunk, to signal "that was everything."
//
// Parse returns the number of input bytes consumed during this call and
// folded into s's cumulative offset. Bytes held by a lex attempt that
// is still in flight when Parse suspends are counted by the call that
// finishes that lex. On StatusOK, the unconsumed suffix of chunk
// (if any is retained internally) should simply not be resent; the
// caller's next call only needs to supply genuinely new bytes. On
// StatusEOF, s.Result() returns the completed parse tree. On
// StatusCancelled, a registered callback vetoed the parse; s remains
// inspectable but must not be resumed without a call to s.Reinit.
func Parse(g *grammar.Grammar, s *ParseState, chunk []byte, eof bool) (Status, int, error) {
	if s.lastStatus == StatusCancelled {
		return StatusCancelled, 0, rtnerr.ErrAlreadyCancelled
	}
	s.grammar = g

	startBase := s.baseOffset
	s.buf = append(s.buf, chunk...)
	s.isEOF = eof

	for {
		top := s.topFrame()
		if top == nil {
			return StatusOK, s.baseOffset - startBase, rtnerr.NewInternalError("parse stack unexpectedly empty")
		}

		switch top.kind {
		case frameIntFA:
			res, err := s.stepIntFA(top.intfa)
			if err != nil {
				return StatusOK, s.baseOffset - startBase, err
			}
			if res.needMore {
				s.trimBuffer()
				s.lastStatus = StatusOK
				return StatusOK, s.baseOffset - startBase, nil
			}
			s.popFrame()
			outcome, err := s.deliverTerminal(res.term)
			if err != nil {
				return StatusOK, s.baseOffset - startBase, err
			}
			if done, status := s.finishOutcome(outcome); done {
				return status, s.baseOffset - startBase, nil
			}

		case frameGLA:
			glaF := top.gla
			outcome, res, err := s.stepGLA(glaF)
			if err != nil {
				return StatusOK, s.baseOffset - startBase, err
			}
			if outcome == glaNeedsLex {
				if err := s.pushGLAFollowup(glaF); err != nil {
					return StatusOK, s.baseOffset - startBase, err
				}
				continue
			}

			// The GLA frame is resolved; pop it before acting on the
			// resolution, so any stack mutation the resolution
			// implies (a push or a pop of res.owner) happens with
			// res.owner back on top, not buried under this frame.
			s.popFrame()

			var rOutcome rtnStepOutcome
			switch outcome {
			case glaResolvedPop:
				rOutcome, err = s.popRTNAndReport(res.owner)
			case glaResolvedTerminal:
				s.commitTerminalTransition(res.owner, res.tr, res.term)
				rOutcome = rtnContinue
			case glaResolvedNonterminal:
				err = s.commitNonterminalTransition(res.owner, res.tr)
				rOutcome = rtnContinue
			}
			if err != nil {
				return StatusOK, s.baseOffset - startBase, err
			}
			if done, status := s.finishOutcome(rOutcome); done {
				return status, s.baseOffset - startBase, nil
			}

		case frameRTN:
			outcome, err := s.stepRTN(top.rtn)
			if err != nil {
				return StatusOK, s.baseOffset - startBase, err
			}
			if done, status := s.finishOutcome(outcome); done {
				return status, s.baseOffset - startBase, nil
			}
		}
	}
}

// finishOutcome translates a terminal rtnStepOutcome (cancelled or
// done) into a Status the driver should return right away, recording
// it on s and releasing the bytes consumed so far. For rtnContinue it
// reports nothing and the main loop keeps going.
func (s *ParseState) finishOutcome(outcome rtnStepOutcome) (done bool, status Status) {
	switch outcome {
	case rtnCancelled:
		s.trimBuffer()
		s.lastStatus = StatusCancelled
		return true, StatusCancelled
	case rtnDone:
		s.trimBuffer()
		s.lastStatus = StatusEOF
		return true, StatusEOF
	default:
		return false, StatusOK
	}
}

// trimBuffer drops bytes that no frame can possibly need to re-read.
// At most one IntFA frame is ever suspended at a time, and it is
// always the top of the stack when it is (nothing is ever pushed above
// an incomplete lex); everything below startOffset for that frame, or
// below the current offset when no IntFA frame is active, is safe to
// discard.
func (s *ParseState) trimBuffer() {
	cut := s.offset
	if top := s.topFrame(); top != nil && top.kind == frameIntFA {
		cut = top.intfa.startOffset
	}
	if cut <= s.baseOffset {
		return
	}
	drop := cut - s.baseOffset
	if drop > len(s.buf) {
		drop = len(s.buf)
	}
	s.buf = s.buf[drop:]
	s.baseOffset += drop
}
