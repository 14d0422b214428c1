//go:build !tinygo

package core

import "sync/atomic"

// State is the previous mask depth on regular Go
type State uint32

// maskDepth models the CPU interrupt mask for simulated hardware
var maskDepth uint32

// disableInterrupts masks interrupts and returns the previous state
func disableInterrupts() State {
	return State(atomic.AddUint32(&maskDepth, 1) - 1)
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state State) {
	atomic.StoreUint32(&maskDepth, uint32(state))
}

// InterruptsMasked reports whether a critical section is held.
// Simulated interrupt controllers defer delivery while it returns true.
func InterruptsMasked() bool {
	return atomic.LoadUint32(&maskDepth) != 0
}
