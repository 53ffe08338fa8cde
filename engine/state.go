package engine

import (
	"github.com/google/uuid"

	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/rtnerr"
)

// Status is the outcome of a single Parse call.
type Status int

const (
	// StatusOK means input was exhausted (and eof was false); the
	// parse state is preserved for a follow-up call with more bytes.
	StatusOK Status = iota
	// StatusCancelled means a callback vetoed the parse.
	StatusCancelled
	// StatusEOF means the start-symbol frame popped at end of input;
	// the parse completed successfully.
	StatusEOF
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusCancelled:
		return "CANCELLED"
	case StatusEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Default resource bounds, used unless overridden on the ParseState
// before the first call to Parse. See spec.md §5 "Bounds".
const (
	DefaultMaxStackDepth     = 10000
	DefaultMaxTokenBufferLen = 4096
)

// ParseState is the full resumable state of an in-progress parse
// (spec.md §3 "Parse state"). Each ParseState is owned single-threaded
// by its caller; it is never safe to call Parse on the same
// ParseState from two goroutines concurrently, and a ParseState must
// not outlive the Grammar it was initialized against.
type ParseState struct {
	// ID uniquely identifies this parse session. Neither the parser,
	// the trace sink nor the demo CLI reads it; it plays no role in
	// parsing semantics.
	ID uuid.UUID

	grammar *grammar.Grammar

	// offset is the current absolute input offset: spec.md's "Current
	// absolute input offset."
	offset int

	stack []frame

	// tokenBuffer is the lazy queue of terminals already lexed by a
	// GLA but not yet consumed by the RTN.
	tokenBuffer []Terminal

	// slotStack tracks the slot record under construction at each RTN
	// frame; its depth always equals the number of RTN frames on
	// stack.
	slotStack []*SlotRecord

	// buf/baseOffset form the sliding input-buffer window: buf[i]
	// corresponds to absolute offset baseOffset+i. Bytes before
	// baseOffset have already been trimmed and may not be
	// re-examined.
	buf        []byte
	baseOffset int
	isEOF      bool

	callbacks []registeredCallback

	lastStatus   Status
	wasCancelled bool
	traceSeq     int

	// MaxStackDepth and MaxTokenBufferLen are the configurable upper
	// bounds from spec.md §5; Parse returns an *rtnerr.LimitError when
	// either would be exceeded.
	MaxStackDepth     int
	MaxTokenBufferLen int

	trace TraceSink
}

// NewParseState allocates a ParseState. It must be initialized with
// Init before use.
func NewParseState() *ParseState {
	return &ParseState{
		ID:                uuid.New(),
		MaxStackDepth:     DefaultMaxStackDepth,
		MaxTokenBufferLen: DefaultMaxTokenBufferLen,
	}
}

// Init initializes state to begin a fresh parse of g's start symbol.
// Any callbacks already registered are retained.
func (s *ParseState) Init(g *grammar.Grammar) {
	s.grammar = g
	s.resetTransient()
}

// Reinit resets state for reuse against the same grammar, without
// reallocating the ParseState itself. Registered callbacks and the
// grammar reference survive; everything else -- offset, stack, token
// buffer, slot stack, input buffer, cancellation latch -- is reset to
// what Init would produce. Reinit followed by the same input sequence
// yields the same callbacks and final state as a fresh Init (spec.md
// §8 property 6).
func (s *ParseState) Reinit() {
	s.resetTransient()
}

func (s *ParseState) resetTransient() {
	start := s.grammar.StartRTN()
	root := &rtnFrame{rtn: start, state: start.Start(), startOffset: 0, slots: newSlotRecord(start)}

	s.offset = 0
	s.stack = []frame{{kind: frameRTN, rtn: root}}
	s.tokenBuffer = nil
	s.slotStack = []*SlotRecord{root.slots}
	s.buf = nil
	s.baseOffset = 0
	s.isEOF = false
	s.lastStatus = StatusOK
	s.wasCancelled = false
	s.traceSeq = 0
}

// WithTraceDB attaches a sqlite-backed trace sink recording every
// fired callback, for the resumability property test to diff across
// split/unsplit runs. It replaces any previously-attached sink.
func (s *ParseState) WithTraceDB(path string) error {
	sink, err := newSQLiteTraceSink(path)
	if err != nil {
		return err
	}
	s.trace = sink
	return nil
}

// Result returns the completed top-level slot record once Parse has
// returned StatusEOF. It panics if called before that, since the slot
// stack is only ever length 1 (holding the finished start-symbol
// record) at that point.
func (s *ParseState) Result() *SlotRecord {
	if s.lastStatus != StatusEOF {
		panic("engine: Result called before parse reached StatusEOF")
	}
	return s.slotStack[0]
}

// checkStackDepth enforces MaxStackDepth before a push.
func (s *ParseState) checkStackDepth() error {
	if len(s.stack) >= s.MaxStackDepth {
		return rtnerr.NewLimitError("parse stack depth", len(s.stack)+1, s.MaxStackDepth)
	}
	return nil
}

// checkTokenBufferLen enforces MaxTokenBufferLen before appending.
func (s *ParseState) checkTokenBufferLen() error {
	if len(s.tokenBuffer) >= s.MaxTokenBufferLen {
		return rtnerr.NewLimitError("token buffer length", len(s.tokenBuffer)+1, s.MaxTokenBufferLen)
	}
	return nil
}
