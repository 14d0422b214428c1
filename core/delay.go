package core

import (
	"math"
	"math/bits"
)

// SimpleMsDelay busy-waits on the free-running counter.
// It does not need a timer device. Waits longer than the 32-bit counter
// range (about 71 minutes) are cut to that range.
func SimpleMsDelay(milliseconds uint32) {
	if milliseconds > 0 {
		SimpleUsDelay(mulSat(milliseconds, 1000))
	}
}

// SimpleUsDelay busy-waits on the free-running counter.
// It does not need a timer device.
func SimpleUsDelay(microseconds uint32) {
	if microseconds > 0 {
		spinMicroseconds(MustClock(), microseconds)
	}
}

func spinMicroseconds(hw ClockHardware, microseconds uint32) {
	ticks := microseconds * (ClockHz / 1000000)

	dataMemBarrier()

	start := hw.ReadCounter()
	for hw.ReadCounter()-start < ticks {
	}

	dataMemBarrier()
}

// mulSat multiplies, saturating at math.MaxUint32
func mulSat(a, b uint32) uint32 {
	hi, lo := bits.Mul32(a, b)
	if hi != 0 {
		return math.MaxUint32
	}
	return lo
}

// MsDelay spins the calibrated delay loop. The iteration count saturates
// at 32 bits.
func (d *TimerDevice) MsDelay(milliseconds uint32) {
	d.mustBeLive()
	if milliseconds > 0 {
		delayLoop(mulSat(d.msDelay, milliseconds))
	}
}

// UsDelay spins the calibrated delay loop
func (d *TimerDevice) UsDelay(microseconds uint32) {
	d.mustBeLive()
	if microseconds > 0 {
		delayLoop(mulSat(d.usDelay, microseconds))
	}
}
