package core

// calibrationMs is the reference wait used to measure the tick rate
const calibrationMs = 1000

// speedFactor returns HZ over the measured tick count, scaled by 100
func speedFactor(measuredTicks uint32) (uint32, error) {
	if measuredTicks == 0 {
		return 0, ErrClockStalled
	}
	return 100 * HZ / measuredTicks, nil
}

// scaleDelays applies a speed factor to the loop constants
func scaleDelays(msDelay, factor uint32) (ms, us uint32) {
	ms = msDelay * factor / 100
	us = (ms + 500) / 1000
	return ms, us
}

// tuneMsDelay counts ticks across a one second counter-timed wait and
// rescales the delay loop constants by the ratio to HZ.
func (d *TimerDevice) tuneMsDelay() error {
	start := d.ticks.Load()
	spinMicroseconds(d.hw, calibrationMs*1000)
	measured := d.ticks.Load() - start

	factor, err := speedFactor(measured)
	if err != nil {
		return err
	}

	d.speedFactor = factor
	d.msDelay, d.usDelay = scaleDelays(d.msDelay, factor)

	LogWrite(LogNotice, "timer", "SpeedFactor is "+formatSpeedFactor(factor))
	return nil
}

// SpeedFactor returns the last calibration factor, scaled by 100
func (d *TimerDevice) SpeedFactor() uint32 {
	d.mustBeLive()
	return d.speedFactor
}
