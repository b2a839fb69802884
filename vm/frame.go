package vm

import "github.com/aguila-lang/aguila/value"

// frame captures one call's register window and the state needed to resume
// its caller when it returns.
type frame struct {
	regs     [256]uint64 // raw bits; reinterpreted as value.Value at use sites
	returnPC int

	// deliver receives this frame's Return value and is responsible for
	// getting it wherever the caller expects it. For an ordinary Call it
	// writes into the caller's destination register; for a class
	// construction's implicit init() call it's a no-op, since the
	// constructed instance (not init's return value) is what the Call
	// instruction that triggered construction delivers. nil marks the
	// outermost program frame: its Return is Run's final result.
	deliver func(value.Value)
}

// tryEntry is one live PushTry handler: where to resume on a Throw, and how
// many call frames to unwind back to (a throw inside a deeper call unwinds
// straight past the intervening Return instructions).
type tryEntry struct {
	handlerPC  int
	frameDepth int
}
