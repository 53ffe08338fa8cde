// Package grammar holds the immutable, load-once representation of a
// compiled grammar: a string pool plus the RTN, GLA, and IntFA arenas
// that the parsing engine drives. Nothing in this package mutates a
// Grammar after it has been returned from a loader; every parse state
// that references a Grammar may do so concurrently with any other.
package grammar

import "fmt"

// Grammar is an immutable bundle of automata: an ordered arena of
// RTNs, GLAs, and IntFAs, each resolved to direct pointers at load
// time (see package bytecode). The grammar compiler that produces the
// binary form this is decoded from, and the binary format itself, are
// both external collaborators; this package only holds the result.
type Grammar struct {
	// Strings is the string pool the grammar was built from, kept
	// around for diagnostics and debug dumps. Terminal, nonterminal,
	// and slot names stored on the types below are already resolved
	// to Go strings; nothing at runtime re-indexes into this slice.
	Strings []string

	rtns   []*RTN
	glas   []*GLA
	intfas []*IntFA

	rtnByName map[string]*RTN

	// start is the grammar's start symbol, the RTN named by New's
	// startName. Package bytecode always names the first RTN block in
	// the file.
	start *RTN
}

// New assembles a Grammar from already-constructed automata. It is
// the low-level constructor used by package bytecode once indices
// have been resolved to pointers; grammar builders for tests and the
// demo CLI (see fixtures.go) call this too.
//
// startName must name one of the given RTNs; that RTN becomes the
// grammar's start symbol.
func New(rtns []*RTN, glas []*GLA, intfas []*IntFA, strings []string, startName string) (*Grammar, error) {
	g := &Grammar{
		Strings:   strings,
		rtns:      rtns,
		glas:      glas,
		intfas:    intfas,
		rtnByName: make(map[string]*RTN, len(rtns)),
	}

	for _, r := range rtns {
		if _, exists := g.rtnByName[r.Name]; exists {
			return nil, fmt.Errorf("grammar: duplicate RTN name %q", r.Name)
		}
		g.rtnByName[r.Name] = r
	}

	start, ok := g.rtnByName[startName]
	if !ok {
		return nil, fmt.Errorf("grammar: start symbol %q is not a defined RTN", startName)
	}
	g.start = start

	return g, nil
}

// StartRTN returns the grammar's start symbol, the RTN the bottom
// frame of any parse stack is pushed for.
func (g *Grammar) StartRTN() *RTN {
	return g.start
}

// RTNNamed looks up an RTN by name, for use by nonterminal transitions
// and by callback registration.
func (g *Grammar) RTNNamed(name string) (*RTN, bool) {
	r, ok := g.rtnByName[name]
	return r, ok
}

// RTNs returns the grammar's full RTN arena in load order.
func (g *Grammar) RTNs() []*RTN { return g.rtns }

// GLAs returns the grammar's full GLA arena in load order.
func (g *Grammar) GLAs() []*GLA { return g.glas }

// IntFAs returns the grammar's full IntFA arena in load order.
func (g *Grammar) IntFAs() []*IntFA { return g.intfas }
