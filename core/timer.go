// Package core implements the tick-driven system timer: a periodic compare
// interrupt that advances a tick/second clock and services a small table of
// one-shot kernel timers from interrupt context.
package core

// Timer frequencies
const (
	HZ      = 100     // software ticks per second
	ClockHz = 1000000 // free-running counter frequency (BCM2835 system timer)

	// TicksPerInterrupt is the compare increment programmed on every tick
	TicksPerInterrupt = ClockHz / HZ

	// KernelTimers is the capacity of the kernel timer table
	KernelTimers = 20
)

// Initial loop constants, tuned for a slow reference board and corrected
// by calibration during Initialize.
const (
	msDelayMMU   = 350000
	msDelayNoMMU = 12500
)

// DeviceConfig selects board specific behaviour of the timer device
type DeviceConfig struct {
	// IRQ is the interrupt line of the compare channel
	IRQ IRQ

	// MMUDisabled selects the conservative delay constant for boards
	// running without caches
	MMUDisabled bool

	// PresetCounter loads the free-running counter so that it wraps about
	// 30 seconds after Initialize
	PresetCounter bool
}

// DefaultDeviceConfig returns the configuration for system timer channel 3
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		IRQ:           IRQSystemTimer3,
		PresetCounter: true,
	}
}

func (c DeviceConfig) initialMsDelay() uint32 {
	if c.MMUDisabled {
		return msDelayNoMMU
	}
	return msDelayMMU
}
