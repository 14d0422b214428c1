package core

import "systimer/protocol"

// Status is a consistent snapshot of the timer device for telemetry
type Status struct {
	Ticks            uint32
	Seconds          uint32
	ClockTicks       uint32
	ActiveTimers     uint32
	MsDelay          uint32
	UsDelay          uint32
	SpeedFactor      uint32
	DriftCorrections uint32
}

// Status captures the clock and table state under the critical section
func (d *TimerDevice) Status() Status {
	d.mustBeLive()

	state := disableInterrupts()
	defer restoreInterrupts(state)

	dataMemBarrier()
	clock := d.hw.ReadCounter()
	dataMemBarrier()

	return Status{
		Ticks:            d.ticks.Load(),
		Seconds:          d.seconds.Load(),
		ClockTicks:       clock,
		ActiveTimers:     uint32(d.activeKernelTimers()),
		MsDelay:          d.msDelay,
		UsDelay:          d.usDelay,
		SpeedFactor:      d.speedFactor,
		DriftCorrections: d.driftCorrections.Load(),
	}
}

// Report converts the snapshot to its telemetry form
func (s Status) Report() protocol.StatusReport {
	return protocol.StatusReport{
		Ticks:            s.Ticks,
		Seconds:          s.Seconds,
		ClockTicks:       s.ClockTicks,
		ActiveTimers:     s.ActiveTimers,
		MsDelay:          s.MsDelay,
		UsDelay:          s.UsDelay,
		SpeedFactor:      s.SpeedFactor,
		DriftCorrections: s.DriftCorrections,
	}
}
