package core

// timerInterruptHandler is the trampoline registered with the controller
func timerInterruptHandler(param any) {
	d, _ := param.(*TimerDevice)
	d.mustBeLive()
	d.handleInterrupt()
}

// handleInterrupt reprograms the compare register before acknowledging the
// match, then advances the clock and runs due kernel timers.
func (d *TimerDevice) handleInterrupt() {
	dataMemBarrier()

	assert(d.hw.MatchPending(), "timer interrupt without compare match status")

	compare := d.hw.ReadCompare() + TicksPerInterrupt
	d.hw.WriteCompare(compare)

	// If the handler ran late the new deadline may already have passed;
	// restart the period from the live counter or the next match is a
	// full counter wrap away.
	if now := d.hw.ReadCounter(); int32(compare-now) <= 0 {
		stale := compare
		compare = d.hw.ReadCounter() + TicksPerInterrupt
		d.hw.WriteCompare(compare)

		d.driftCorrections.Add(1)
		recordTrace(EvtDrift, InvalidHandle, d.ticks.Load(), stale, compare)
	}

	d.hw.AckMatch()

	dataMemBarrier()

	if d.ticks.Add(1)%HZ == 0 {
		d.seconds.Add(1)
	}

	d.pollKernelTimers()
}
