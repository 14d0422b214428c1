package sim

import (
	"golang.org/x/exp/slices"

	"systimer/core"
)

// FiredEvent records one kernel timer expiry
type FiredEvent struct {
	Name   string
	Handle core.TimerHandle
	Due    uint32 // tick the timer was scheduled for
	Tick   uint32 // tick it actually ran at
}

// Report is the outcome of a simulated run
type Report struct {
	Fired     []FiredEvent
	Cancelled []string
	Rejected  []string

	// Samples holds one device snapshot per simulated second
	Samples []core.Status

	TimeString string
	Interrupts uint64
}

type liveTimer struct {
	handle   core.TimerHandle
	due      uint32
	cancelAt uint32
}

type runner struct {
	dev    *core.TimerDevice
	report *Report
	live   map[*TimerSpec]liveTimer
}

// Run drives a timer device on simulated hardware for sc.Seconds. The
// device is destroyed before Run returns.
func Run(sc *Scenario) (*Report, error) {
	hw := NewSystemTimer(sc.Step)
	hw.Latency = sc.Latency
	core.SetClockHardware(hw)

	dev := core.NewTimerDevice(hw, hw, sc.DeviceConfig())
	defer dev.Destroy()

	if err := dev.Initialize(); err != nil {
		return nil, err
	}

	r := &runner{
		dev:    dev,
		report: &Report{},
		live:   make(map[*TimerSpec]liveTimer),
	}
	for i := range sc.Timers {
		r.start(&sc.Timers[i])
	}

	for sec := uint32(0); sec < sc.Seconds; sec++ {
		for slice := 0; slice < core.HZ; slice++ {
			core.SimpleMsDelay(1000 / core.HZ)
			r.cancelDue()
		}
		r.report.Samples = append(r.report.Samples, dev.Status())
	}

	r.report.TimeString, _ = dev.GetTimeString()
	r.report.Interrupts = hw.Delivered

	slices.SortFunc(r.report.Fired, func(a, b FiredEvent) bool {
		if a.Tick != b.Tick {
			return a.Tick < b.Tick
		}
		return a.Name < b.Name
	})
	return r.report, nil
}

func (r *runner) start(spec *TimerSpec) {
	handle := r.dev.StartKernelTimer(spec.Delay, r.fire, spec, r)
	if handle == core.InvalidHandle {
		r.report.Rejected = append(r.report.Rejected, spec.Name)
		return
	}
	now := r.dev.GetTicks()
	r.live[spec] = liveTimer{
		handle:   handle,
		due:      now + spec.Delay,
		cancelAt: now + spec.CancelAfter,
	}
}

// fire runs in interrupt context
func (r *runner) fire(handle core.TimerHandle, param, context any) {
	spec := param.(*TimerSpec)
	lt := r.live[spec]
	delete(r.live, spec)

	r.report.Fired = append(r.report.Fired, FiredEvent{
		Name:   spec.Name,
		Handle: handle,
		Due:    lt.due,
		Tick:   r.dev.GetTicks(),
	})

	if spec.Repeat {
		r.start(spec)
		// the cancel deadline counts from the first start
		if next, ok := r.live[spec]; ok {
			next.cancelAt = lt.cancelAt
			r.live[spec] = next
		}
	}
}

func (r *runner) cancelDue() {
	now := r.dev.GetTicks()
	for spec, lt := range r.live {
		if spec.CancelAfter == 0 || int32(lt.cancelAt-now) > 0 {
			continue
		}
		r.dev.CancelKernelTimer(lt.handle)
		delete(r.live, spec)
		r.report.Cancelled = append(r.report.Cancelled, spec.Name)
	}
}
