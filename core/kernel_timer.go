package core

// TimerHandle identifies a kernel timer: slot index + 1
type TimerHandle uint32

// InvalidHandle is returned when no kernel timer could be allocated
const InvalidHandle TimerHandle = 0

// KernelTimerHandler runs in interrupt context when the timer elapses
type KernelTimerHandler func(handle TimerHandle, param, context any)

// kernelTimer is one table slot; a nil handler marks it free
type kernelTimer struct {
	handler   KernelTimerHandler
	elapsesAt uint32
	param     any
	context   any
}

// StartKernelTimer schedules handler to run delay ticks from now.
// It returns InvalidHandle when all KernelTimers slots are in use.
func (d *TimerDevice) StartKernelTimer(delay uint32, handler KernelTimerHandler, param, context any) TimerHandle {
	d.mustBeLive()
	assert(handler != nil, "kernel timer handler is nil")

	state := disableInterrupts()

	slot := 0
	for ; slot < KernelTimers; slot++ {
		if d.kernelTimers[slot].handler == nil {
			break
		}
	}

	if slot >= KernelTimers {
		restoreInterrupts(state)

		recordTrace(EvtTimerExhausted, InvalidHandle, d.ticks.Load(), delay, 0)
		LogWrite(LogPanic, "timer", "System limit of kernel timers exceeded")

		return InvalidHandle
	}

	t := &d.kernelTimers[slot]
	t.handler = handler
	t.elapsesAt = d.ticks.Load() + delay
	t.param = param
	t.context = context

	handle := TimerHandle(slot + 1)
	recordTrace(EvtTimerStart, handle, d.ticks.Load(), t.elapsesAt, 0)

	restoreInterrupts(state)

	return handle
}

// CancelKernelTimer frees the timer. Cancelling a timer that already fired
// or was already cancelled has no effect.
func (d *TimerDevice) CancelKernelTimer(handle TimerHandle) {
	d.mustBeLive()
	assert(1 <= handle && handle <= KernelTimers, "kernel timer handle out of range")

	state := disableInterrupts()
	defer restoreInterrupts(state)

	t := &d.kernelTimers[handle-1]
	if t.handler != nil {
		recordTrace(EvtTimerCancel, handle, d.ticks.Load(), t.elapsesAt, 0)
	}
	t.handler = nil
}

// ActiveKernelTimers returns the number of occupied slots
func (d *TimerDevice) ActiveKernelTimers() int {
	d.mustBeLive()

	state := disableInterrupts()
	defer restoreInterrupts(state)

	return d.activeKernelTimers()
}

func (d *TimerDevice) activeKernelTimers() int {
	n := 0
	for i := range d.kernelTimers {
		if d.kernelTimers[i].handler != nil {
			n++
		}
	}
	return n
}

// pollKernelTimers fires every due timer in table order.
// Called from the timer interrupt only.
func (d *TimerDevice) pollKernelTimers() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	now := d.ticks.Load()
	for slot := 0; slot < KernelTimers; slot++ {
		t := &d.kernelTimers[slot]

		handler := t.handler
		if handler == nil {
			continue
		}
		// signed difference tolerates tick counter wraparound
		if int32(t.elapsesAt-now) > 0 {
			continue
		}

		// free the slot first so the handler may restart itself
		t.handler = nil

		handle := TimerHandle(slot + 1)
		recordTrace(EvtTimerFire, handle, now, t.elapsesAt, 0)
		handler(handle, t.param, t.context)
	}
}
