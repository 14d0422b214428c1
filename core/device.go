package core

import (
	"errors"
	"sync/atomic"
)

var (
	ErrIRQRegister  = errors.New("failed to register timer interrupt handler")
	ErrClockStalled = errors.New("timer interrupt not advancing during calibration")
)

// counterPreset is -(30 * ClockHz): the counter wraps 30 seconds after load
const counterPreset = ^uint32(30*ClockHz - 1)

// TimerDevice owns the software clock and the kernel timer table.
// Only one device may be live at a time.
type TimerDevice struct {
	hw  ClockHardware
	irq InterruptController
	cfg DeviceConfig

	ticks   atomic.Uint32 // interrupts since Initialize
	seconds atomic.Uint32 // ticks / HZ

	msDelay     uint32 // delay loop iterations per millisecond
	usDelay     uint32 // delay loop iterations per microsecond
	speedFactor uint32 // last calibration factor, scaled by 100

	driftCorrections atomic.Uint32

	kernelTimers [KernelTimers]kernelTimer
}

var activeDevice *TimerDevice

// NewTimerDevice creates the process-wide timer device on top of hw and ic.
// Creating a second device while one is live is fatal.
func NewTimerDevice(hw ClockHardware, ic InterruptController, cfg DeviceConfig) *TimerDevice {
	assert(hw != nil && ic != nil, "timer device needs clock hardware and an interrupt controller")
	assert(activeDevice == nil, "timer device already exists")

	d := &TimerDevice{
		hw:          hw,
		irq:         ic,
		cfg:         cfg,
		msDelay:     cfg.initialMsDelay(),
		speedFactor: 100,
	}
	d.usDelay = d.msDelay / 1000

	activeDevice = d
	return d
}

// Get returns the live timer device
func Get() *TimerDevice {
	assert(activeDevice != nil, "no timer device")
	return activeDevice
}

// Destroy releases the device so a new one can be created
func (d *TimerDevice) Destroy() {
	assert(d != nil && activeDevice == d, "destroying a timer device that is not live")
	activeDevice = nil
}

func (d *TimerDevice) mustBeLive() {
	if d == nil || activeDevice != d {
		Crash("timer device used outside its lifetime")
	}
}

// Initialize hooks the compare interrupt, programs the first deadline and
// calibrates the delay loop constants. Any returned error is fatal to the
// caller: the system has no working clock.
//
// A calibration failure leaves the handler registered and the line enabled;
// nothing unregisters it, so a device destroyed after a failed Initialize
// must not be followed by a new one on the same controller.
func (d *TimerDevice) Initialize() error {
	d.mustBeLive()

	if err := d.irq.RegisterIRQ(d.cfg.IRQ, timerInterruptHandler, d); err != nil {
		return errors.Join(ErrIRQRegister, err)
	}
	d.irq.EnableIRQ(d.cfg.IRQ)

	dataMemBarrier()

	if d.cfg.PresetCounter {
		d.hw.WriteCounter(counterPreset)
	}
	d.hw.WriteCompare(d.hw.ReadCounter() + TicksPerInterrupt)

	err := d.tuneMsDelay()

	dataMemBarrier()

	return err
}

// GetClockTicks returns the raw free-running counter
func (d *TimerDevice) GetClockTicks() uint32 {
	d.mustBeLive()

	dataMemBarrier()
	result := d.hw.ReadCounter()
	dataMemBarrier()

	return result
}

// GetTicks returns the number of timer interrupts since Initialize
func (d *TimerDevice) GetTicks() uint32 {
	d.mustBeLive()
	return d.ticks.Load()
}

// GetTime returns the elapsed seconds since Initialize
func (d *TimerDevice) GetTime() uint32 {
	d.mustBeLive()
	return d.seconds.Load()
}

// GetTimeString formats the elapsed time as HH:MM:SS.hh.
// It reports false until the first tick.
func (d *TimerDevice) GetTimeString() (string, bool) {
	d.mustBeLive()

	state := disableInterrupts()
	seconds := d.seconds.Load()
	ticks := d.ticks.Load()
	restoreInterrupts(state)

	if ticks == 0 {
		return "", false
	}
	return FormatElapsed(seconds, ticks), true
}

// DelayConstants returns the calibrated loop counts per ms and per us
func (d *TimerDevice) DelayConstants() (ms, us uint32) {
	d.mustBeLive()
	return d.msDelay, d.usDelay
}

// DriftCorrections counts interrupts that had to reprogram the compare
// register from the live counter
func (d *TimerDevice) DriftCorrections() uint32 {
	d.mustBeLive()
	return d.driftCorrections.Load()
}
