package bytecode

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/internal/util"
	"github.com/dekarrin/rtnparse/rtnerr"
)

// blockKind tags each logical record in the grammar file so the
// loader can consume records in any order, per spec.md §6.
type blockKind byte

const (
	blockStringTable blockKind = iota
	blockIntFA
	blockGLA
	blockRTN
)

const noIndex = -1

// rawIntFATransition and friends hold file-order indices before the
// loader resolves them to direct pointers. They exist only during
// Load; nothing outside this file sees them.
type rawIntFATransition struct {
	low, high byte
	dest      int
}

type rawIntFAState struct {
	finalStrIdx int // noIndex if not final
	trans       []rawIntFATransition
}

type rawIntFA struct {
	states []rawIntFAState
}

type rawGLATransition struct {
	termStrIdx int
	dest       int
}

type rawGLAState struct {
	isFinal    bool
	intfaIdx   int // valid when !isFinal
	trans      []rawGLATransition
	selectors  []int
}

type rawGLA struct {
	states []rawGLAState
}

type rawRTNTransition struct {
	isNonterminal bool
	labelStrIdx   int // terminal name index, when !isNonterminal
	labelRTNIdx   int // target RTN index, when isNonterminal
	dest          int
	slotNameIdx   int // noIndex if no slot
	slotNum       int
}

type rawRTNState struct {
	isFinal    bool
	lookahead  grammar.LookaheadKind
	automaton  int // intfa or gla index depending on lookahead, -1 if LookaheadNone
	transitions []rawRTNTransition
}

type rawRTN struct {
	nameStrIdx int
	numSlots   int
	ignoreIdxs []int
	states     []rawRTNState
}

// Load decodes a complete grammar file from r and resolves all string
// and automaton indices into a ready-to-use *grammar.Grammar. It is
// the Go counterpart of the C interpreter's load_grammar: the only
// thing consumed from the external grammar-compiler toolchain is the
// sequence of bytes r exposes.
func Load(r Reader) (*grammar.Grammar, error) {
	var strings []string
	var rawIntFAs []rawIntFA
	var rawGLAs []rawGLA
	var rawRTNs []rawRTN

	for !r.Done() {
		kindByte, err := r.ReadByte()
		if err != nil {
			return nil, rtnerr.WrapGrammarError(err, "reading block kind")
		}

		switch blockKind(kindByte) {
		case blockStringTable:
			n, err := r.ReadInt()
			if err != nil {
				return nil, rtnerr.WrapGrammarError(err, "reading string table length")
			}
			for i := 0; i < n; i++ {
				s, err := r.ReadString()
				if err != nil {
					return nil, rtnerr.WrapGrammarError(err, "reading string table entry %d", i)
				}
				if !utf8.ValidString(s) {
					return nil, rtnerr.NewGrammarError("string pool entry %d is not well-formed UTF-8", i)
				}
				// normalize so two grammars that spell the same name
				// with different combining-character orders compare
				// equal as Go strings; names are looked up by map key
				// throughout package engine.
				strings = append(strings, norm.NFC.String(s))
			}
		case blockIntFA:
			fa, err := readRawIntFA(r)
			if err != nil {
				return nil, err
			}
			rawIntFAs = append(rawIntFAs, fa)
		case blockGLA:
			g, err := readRawGLA(r)
			if err != nil {
				return nil, err
			}
			rawGLAs = append(rawGLAs, g)
		case blockRTN:
			rtn, err := readRawRTN(r)
			if err != nil {
				return nil, err
			}
			rawRTNs = append(rawRTNs, rtn)
		default:
			return nil, rtnerr.NewGrammarError("unknown block kind %d", kindByte)
		}
	}

	if len(rawRTNs) == 0 {
		return nil, rtnerr.NewGrammarError("grammar file defines no RTNs")
	}

	str := func(idx int) (string, error) {
		if idx < 0 || idx >= len(strings) {
			return "", rtnerr.NewGrammarError("dangling string index %d", idx)
		}
		return strings[idx], nil
	}

	// pass 1: materialize IntFAs (self-contained, no cross-references
	// besides their own states).
	intfas := make([]*grammar.IntFA, len(rawIntFAs))
	for i, raw := range rawIntFAs {
		fa := &grammar.IntFA{States: make([]*grammar.IntFAState, len(raw.states))}
		for j := range raw.states {
			fa.States[j] = &grammar.IntFAState{}
		}
		for j, rs := range raw.states {
			if rs.finalStrIdx != noIndex {
				name, err := str(rs.finalStrIdx)
				if err != nil {
					return nil, err
				}
				fa.States[j].Final = name
			}
			for _, rt := range rs.trans {
				if rt.dest < 0 || rt.dest >= len(fa.States) {
					return nil, rtnerr.NewGrammarError("intfa %d: dangling dest state %d", i, rt.dest)
				}
				fa.States[j].Transitions = append(fa.States[j].Transitions, grammar.IntFATransition{
					Low: rt.low, High: rt.high, Dest: fa.States[rt.dest],
				})
			}
		}
		intfas[i] = fa
	}

	// pass 2: materialize GLAs, referencing already-built IntFAs.
	glas := make([]*grammar.GLA, len(rawGLAs))
	for i, raw := range rawGLAs {
		g := &grammar.GLA{States: make([]*grammar.GLAState, len(raw.states))}
		for j := range raw.states {
			g.States[j] = &grammar.GLAState{}
		}
		for j, rs := range raw.states {
			gs := g.States[j]
			gs.IsFinal = rs.isFinal
			if rs.isFinal {
				gs.Selectors = append([]int(nil), rs.selectors...)
				continue
			}
			if rs.intfaIdx < 0 || rs.intfaIdx >= len(intfas) {
				return nil, rtnerr.NewGrammarError("gla %d state %d: dangling intfa index %d", i, j, rs.intfaIdx)
			}
			gs.IntFA = intfas[rs.intfaIdx]
			gs.Transitions = make(map[string]*grammar.GLAState, len(rs.trans))
			for _, rt := range rs.trans {
				name, err := str(rt.termStrIdx)
				if err != nil {
					return nil, err
				}
				if rt.dest < 0 || rt.dest >= len(g.States) {
					return nil, rtnerr.NewGrammarError("gla %d: dangling dest state %d", i, rt.dest)
				}
				gs.Transitions[name] = g.States[rt.dest]
			}
		}
		glas[i] = g
	}

	// pass 3a: allocate RTN shells so nonterminal transitions (which
	// may reference an RTN defined later in the file, or itself, for
	// recursive rules) can be resolved.
	rtns := make([]*grammar.RTN, len(rawRTNs))
	for i, raw := range rawRTNs {
		name, err := str(raw.nameStrIdx)
		if err != nil {
			return nil, err
		}
		rtns[i] = &grammar.RTN{
			Name:     name,
			NumSlots: raw.numSlots,
			Ignore:   util.NewStringSet(),
			States:   make([]*grammar.RTNState, len(raw.states)),
		}
		for _, idx := range raw.ignoreIdxs {
			ignoreName, err := str(idx)
			if err != nil {
				return nil, err
			}
			rtns[i].Ignore.Add(ignoreName)
		}
		for j := range raw.states {
			rtns[i].States[j] = &grammar.RTNState{}
		}
	}

	// pass 3b: fill in RTN states and transitions now that every RTN
	// (and its automata) can be referenced by pointer.
	for i, raw := range rawRTNs {
		rtn := rtns[i]
		for j, rs := range raw.states {
			st := rtn.States[j]
			st.IsFinal = rs.isFinal
			st.Lookahead = rs.lookahead
			switch rs.lookahead {
			case grammar.LookaheadIntFA:
				if rs.automaton < 0 || rs.automaton >= len(intfas) {
					return nil, rtnerr.NewGrammarError("rtn %q state %d: dangling intfa index %d", rtn.Name, j, rs.automaton)
				}
				st.IntFA = intfas[rs.automaton]
			case grammar.LookaheadGLA:
				if rs.automaton < 0 || rs.automaton >= len(glas) {
					return nil, rtnerr.NewGrammarError("rtn %q state %d: dangling gla index %d", rtn.Name, j, rs.automaton)
				}
				st.GLA = glas[rs.automaton]
			}
			for _, rt := range rs.transitions {
				if rt.dest < 0 || rt.dest >= len(rtn.States) {
					return nil, rtnerr.NewGrammarError("rtn %q: dangling dest state %d", rtn.Name, rt.dest)
				}
				tr := &grammar.RTNTransition{Dest: rtn.States[rt.dest]}
				if rt.isNonterminal {
					tr.Kind = grammar.TransitionNonterminal
					if rt.labelRTNIdx < 0 || rt.labelRTNIdx >= len(rtns) {
						return nil, rtnerr.NewGrammarError("rtn %q: dangling target rtn index %d", rtn.Name, rt.labelRTNIdx)
					}
					tr.Target = rtns[rt.labelRTNIdx]
				} else {
					tr.Kind = grammar.TransitionTerminal
					name, err := str(rt.labelStrIdx)
					if err != nil {
						return nil, err
					}
					tr.Terminal = name
				}
				if rt.slotNameIdx != noIndex {
					name, err := str(rt.slotNameIdx)
					if err != nil {
						return nil, err
					}
					tr.HasSlot = true
					tr.SlotName = name
					tr.SlotNum = rt.slotNum
				}
				st.Transitions = append(st.Transitions, tr)
			}
		}
	}

	return grammar.New(rtns, glas, intfas, strings, rtns[0].Name)
}

func readRawIntFA(r Reader) (rawIntFA, error) {
	var fa rawIntFA
	numStates, err := r.ReadInt()
	if err != nil {
		return fa, rtnerr.WrapGrammarError(err, "reading intfa state count")
	}
	fa.states = make([]rawIntFAState, numStates)
	for i := 0; i < numStates; i++ {
		finalFlag, err := r.ReadByte()
		if err != nil {
			return fa, rtnerr.WrapGrammarError(err, "reading intfa state %d final flag", i)
		}
		idx := noIndex
		if finalFlag != 0 {
			idx, err = r.ReadInt()
			if err != nil {
				return fa, rtnerr.WrapGrammarError(err, "reading intfa state %d final string index", i)
			}
		}
		fa.states[i].finalStrIdx = idx

		numTrans, err := r.ReadInt()
		if err != nil {
			return fa, rtnerr.WrapGrammarError(err, "reading intfa state %d transition count", i)
		}
		fa.states[i].trans = make([]rawIntFATransition, numTrans)
		for t := 0; t < numTrans; t++ {
			low, err := r.ReadByte()
			if err != nil {
				return fa, rtnerr.WrapGrammarError(err, "reading intfa transition %d/%d low byte", i, t)
			}
			high, err := r.ReadByte()
			if err != nil {
				return fa, rtnerr.WrapGrammarError(err, "reading intfa transition %d/%d high byte", i, t)
			}
			dest, err := r.ReadInt()
			if err != nil {
				return fa, rtnerr.WrapGrammarError(err, "reading intfa transition %d/%d dest", i, t)
			}
			fa.states[i].trans[t] = rawIntFATransition{low: low, high: high, dest: dest}
		}
	}
	return fa, nil
}

func readRawGLA(r Reader) (rawGLA, error) {
	var g rawGLA
	numStates, err := r.ReadInt()
	if err != nil {
		return g, rtnerr.WrapGrammarError(err, "reading gla state count")
	}
	g.states = make([]rawGLAState, numStates)
	for i := 0; i < numStates; i++ {
		finalFlag, err := r.ReadByte()
		if err != nil {
			return g, rtnerr.WrapGrammarError(err, "reading gla state %d final flag", i)
		}
		if finalFlag != 0 {
			numSel, err := r.ReadInt()
			if err != nil {
				return g, rtnerr.WrapGrammarError(err, "reading gla state %d selector count", i)
			}
			sels := make([]int, numSel)
			for s := 0; s < numSel; s++ {
				sels[s], err = r.ReadInt()
				if err != nil {
					return g, rtnerr.WrapGrammarError(err, "reading gla state %d selector %d", i, s)
				}
			}
			g.states[i] = rawGLAState{isFinal: true, selectors: sels}
			continue
		}

		intfaIdx, err := r.ReadInt()
		if err != nil {
			return g, rtnerr.WrapGrammarError(err, "reading gla state %d intfa index", i)
		}
		numTrans, err := r.ReadInt()
		if err != nil {
			return g, rtnerr.WrapGrammarError(err, "reading gla state %d transition count", i)
		}
		trans := make([]rawGLATransition, numTrans)
		for t := 0; t < numTrans; t++ {
			termIdx, err := r.ReadInt()
			if err != nil {
				return g, rtnerr.WrapGrammarError(err, "reading gla transition %d/%d term index", i, t)
			}
			dest, err := r.ReadInt()
			if err != nil {
				return g, rtnerr.WrapGrammarError(err, "reading gla transition %d/%d dest", i, t)
			}
			trans[t] = rawGLATransition{termStrIdx: termIdx, dest: dest}
		}
		g.states[i] = rawGLAState{isFinal: false, intfaIdx: intfaIdx, trans: trans}
	}
	return g, nil
}

func readRawRTN(r Reader) (rawRTN, error) {
	var rtn rawRTN
	var err error

	rtn.nameStrIdx, err = r.ReadInt()
	if err != nil {
		return rtn, rtnerr.WrapGrammarError(err, "reading rtn name index")
	}
	rtn.numSlots, err = r.ReadInt()
	if err != nil {
		return rtn, rtnerr.WrapGrammarError(err, "reading rtn slot count")
	}

	numIgnore, err := r.ReadInt()
	if err != nil {
		return rtn, rtnerr.WrapGrammarError(err, "reading rtn ignore-list count")
	}
	rtn.ignoreIdxs = make([]int, numIgnore)
	for i := 0; i < numIgnore; i++ {
		rtn.ignoreIdxs[i], err = r.ReadInt()
		if err != nil {
			return rtn, rtnerr.WrapGrammarError(err, "reading rtn ignore-list entry %d", i)
		}
	}

	numStates, err := r.ReadInt()
	if err != nil {
		return rtn, rtnerr.WrapGrammarError(err, "reading rtn state count")
	}
	rtn.states = make([]rawRTNState, numStates)
	for i := 0; i < numStates; i++ {
		finalFlag, err := r.ReadByte()
		if err != nil {
			return rtn, rtnerr.WrapGrammarError(err, "reading rtn state %d final flag", i)
		}
		lookaheadByte, err := r.ReadByte()
		if err != nil {
			return rtn, rtnerr.WrapGrammarError(err, "reading rtn state %d lookahead kind", i)
		}
		lookahead := grammar.LookaheadKind(lookaheadByte)

		automaton := noIndex
		if lookahead != grammar.LookaheadNone {
			automaton, err = r.ReadInt()
			if err != nil {
				return rtn, rtnerr.WrapGrammarError(err, "reading rtn state %d automaton index", i)
			}
		}

		numTrans, err := r.ReadInt()
		if err != nil {
			return rtn, rtnerr.WrapGrammarError(err, "reading rtn state %d transition count", i)
		}
		trans := make([]rawRTNTransition, numTrans)
		for t := 0; t < numTrans; t++ {
			kindByte, err := r.ReadByte()
			if err != nil {
				return rtn, rtnerr.WrapGrammarError(err, "reading rtn transition %d/%d kind", i, t)
			}
			isNonterm := kindByte != 0

			labelStrIdx, labelRTNIdx := noIndex, noIndex
			if isNonterm {
				labelRTNIdx, err = r.ReadInt()
			} else {
				labelStrIdx, err = r.ReadInt()
			}
			if err != nil {
				return rtn, rtnerr.WrapGrammarError(err, "reading rtn transition %d/%d label", i, t)
			}

			dest, err := r.ReadInt()
			if err != nil {
				return rtn, rtnerr.WrapGrammarError(err, "reading rtn transition %d/%d dest", i, t)
			}

			slotNameIdx, err := r.ReadInt()
			if err != nil {
				return rtn, rtnerr.WrapGrammarError(err, "reading rtn transition %d/%d slot name index", i, t)
			}
			slotNum := 0
			if slotNameIdx != noIndex {
				slotNum, err = r.ReadInt()
				if err != nil {
					return rtn, rtnerr.WrapGrammarError(err, "reading rtn transition %d/%d slot number", i, t)
				}
			}

			trans[t] = rawRTNTransition{
				isNonterminal: isNonterm,
				labelStrIdx:   labelStrIdx,
				labelRTNIdx:   labelRTNIdx,
				dest:          dest,
				slotNameIdx:   slotNameIdx,
				slotNum:       slotNum,
			}
		}

		rtn.states[i] = rawRTNState{
			isFinal:     finalFlag != 0,
			lookahead:   lookahead,
			automaton:   automaton,
			transitions: trans,
		}
	}

	return rtn, nil
}
