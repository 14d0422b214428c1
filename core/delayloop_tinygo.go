//go:build tinygo

package core

import "runtime/volatile"

var loopSink volatile.Register32

// delayLoop spins for count iterations
func delayLoop(count uint32) {
	for i := uint32(0); i < count; i++ {
		loopSink.Set(i)
	}
}
