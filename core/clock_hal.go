package core

// IRQ identifies an interrupt line on the interrupt controller
type IRQ uint32

// IRQSystemTimer3 is the BCM2835 system timer compare channel 3 line
const IRQSystemTimer3 IRQ = 3

// ClockHardware is the register block of the free-running counter and the
// compare channel used by the timer device.
// Platform-specific implementations handle actual hardware access.
type ClockHardware interface {
	// ReadCounter returns the low 32 bits of the free-running counter
	ReadCounter() uint32

	// WriteCounter loads the free-running counter
	WriteCounter(v uint32)

	// ReadCompare returns the compare register of our channel
	ReadCompare() uint32

	// WriteCompare programs the compare register of our channel
	WriteCompare(v uint32)

	// MatchPending reports whether the match status bit of our channel is set
	MatchPending() bool

	// AckMatch clears the match status bit of our channel
	AckMatch()
}

// IRQHandler is invoked in interrupt context with the parameter given at
// registration
type IRQHandler func(param any)

// InterruptController connects handlers to interrupt lines
type InterruptController interface {
	// RegisterIRQ installs handler for irq; param is passed back on every call
	RegisterIRQ(irq IRQ, handler IRQHandler, param any) error

	// EnableIRQ unmasks irq at the controller
	EnableIRQ(irq IRQ)
}

// Global singleton used by the busy-wait primitives.
var clockHardware ClockHardware

// SetClockHardware is called by target-specific code to register its counter.
func SetClockHardware(hw ClockHardware) {
	clockHardware = hw
}

// MustClock returns the configured counter or panics if missing.
func MustClock() ClockHardware {
	if clockHardware == nil {
		panic("clock hardware not configured")
	}
	return clockHardware
}
