//go:build !tinygo

package core

// loopSink keeps the compiler from removing the delay loop
var loopSink uint32

// delayLoop spins for count iterations
func delayLoop(count uint32) {
	for i := uint32(0); i < count; i++ {
		loopSink++
	}
}
