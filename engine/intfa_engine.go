package engine

import "github.com/dekarrin/rtnparse/rtnerr"

// EndOfText is the sentinel terminal name synthesized when an IntFA is
// asked to lex with zero bytes available and the underlying stream is
// known to be at EOF. It plays the role the teacher's lex package
// gives types.TokenEndOfText ("$"): a terminal like any other that
// RTN states may or may not have a transition for, letting "pop
// because we're at the end of input" reuse the exact same dispatch
// logic as any other unexpected-terminal pop.
const EndOfText = "$"

// intfaStepResult is what one call to stepIntFA produces: exactly one
// of a matched terminal, a request for more input, or a fatal error.
// needMore is true only when there genuinely might be more bytes
// coming (isEOF is false); the frame keeps the cursor, state and last
// match reached so far in that case, so the next Parse call resumes
// the scan exactly where it left off.
type intfaStepResult struct {
	term     Terminal
	needMore bool
}

// stepIntFA runs the maximal-munch byte DFA described in spec.md §4.1
// as far as currently-available input allows. It consumes bytes
// directly from s's sliding buffer via f.cur, never copying them.
func (s *ParseState) stepIntFA(f *intFAFrame) (intfaStepResult, error) {
	for {
		b, ok := s.byteAt(f.cur)
		if !ok {
			if !s.isEOF {
				return intfaStepResult{needMore: true}, nil
			}
			return s.finishIntFAAtEOF(f)
		}

		dest := f.state.TransitionFor(b)
		if dest == nil {
			if f.lastMatchOffset >= 0 {
				return intfaStepResult{term: s.emitIntFAMatch(f)}, nil
			}
			return intfaStepResult{}, rtnerr.NewParseError(f.startOffset, "unexpected input")
		}

		f.cur++
		f.state = dest
		if dest.IsFinal() {
			f.lastMatchOffset = f.cur
			f.lastMatchState = dest
		}
	}
}

// finishIntFAAtEOF handles spec.md §4.1's three EOF outcomes: emit the
// last-accepted match, emit a zero-length epsilon terminal, or
// synthesize the end-of-text sentinel so the caller's ordinary
// "unexpected terminal while final" pop logic can decide whether
// stopping here is actually valid.
func (s *ParseState) finishIntFAAtEOF(f *intFAFrame) (intfaStepResult, error) {
	if f.lastMatchOffset >= 0 {
		return intfaStepResult{term: s.emitIntFAMatch(f)}, nil
	}
	if f.cur == f.startOffset && f.state.IsFinal() {
		term := Terminal{Name: f.state.Final, Offset: f.startOffset, Length: 0}
		s.offset = f.startOffset
		return intfaStepResult{term: term}, nil
	}
	if f.cur == f.startOffset {
		// No bytes at all were available and nothing was matched: let
		// the RTN/GLA dispatch above decide whether EndOfText is
		// acceptable here rather than failing unconditionally.
		return intfaStepResult{term: Terminal{Name: EndOfText, Offset: f.startOffset, Length: 0}}, nil
	}
	return intfaStepResult{}, rtnerr.NewParseError(f.startOffset, "unexpected end of input")
}

// emitIntFAMatch builds the Terminal for the most recently accepted
// state and rewinds the global offset to cover exactly
// [startOffset, lastMatchOffset).
func (s *ParseState) emitIntFAMatch(f *intFAFrame) Terminal {
	term := Terminal{
		Name:   f.lastMatchState.Final,
		Offset: f.startOffset,
		Length: f.lastMatchOffset - f.startOffset,
	}
	s.offset = f.lastMatchOffset
	return term
}

// byteAt returns the byte at absolute offset off and whether it is
// currently available in the sliding buffer.
func (s *ParseState) byteAt(off int) (byte, bool) {
	idx := off - s.baseOffset
	if idx < 0 || idx >= len(s.buf) {
		return 0, false
	}
	return s.buf[idx], true
}
