//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved CPSR interrupt mask on the board
type State = interrupt.State

// disableInterrupts masks IRQs on the calling core. Sections nest: each
// restore puts back exactly the mask its disable saw.
func disableInterrupts() State {
	return interrupt.Disable()
}

func restoreInterrupts(state State) {
	interrupt.Restore(state)
}
