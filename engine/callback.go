package engine

// CallbackResult is returned by a registered callback to tell the
// driver whether to keep parsing or to cancel.
type CallbackResult int

const (
	// CallbackContinue lets the parse proceed normally.
	CallbackContinue CallbackResult = iota
	// CallbackCancel causes Parse to return StatusCancelled
	// immediately; the parse state remains valid for inspection.
	CallbackCancel
)

// Callback is invoked after every completion of the RTN it was
// registered against, with the parse state (so the completed slot
// record at the top of the slot stack can be inspected) and the
// opaque user data supplied at registration time. The driver never
// interprets userData; a callback may freely type-assert it back to
// whatever it registered.
type Callback func(state *ParseState, userData interface{}) CallbackResult

// registeredCallback pairs one callback with the RTN name it fires
// for and the data it was registered with.
type registeredCallback struct {
	rtnName  string
	callback Callback
	userData interface{}
}

// RegisterCallback arranges for cb to be invoked, in registration
// order relative to other callbacks on the same RTN name, every time
// a frame for the named RTN pops. userData is opaque to the driver and
// passed back to cb verbatim.
func RegisterCallback(state *ParseState, rtnName string, cb Callback, userData interface{}) {
	state.callbacks = append(state.callbacks, registeredCallback{
		rtnName:  rtnName,
		callback: cb,
		userData: userData,
	})
}
