package core

import "testing"

func TestInterruptAdvancesClock(t *testing.T) {
	d, clock := newFakeDevice(t)

	for _, n := range []uint32{0, 1, HZ - 1, HZ, 3*HZ + 7} {
		d.ticks.Store(0)
		d.seconds.Store(0)
		for i := uint32(0); i < n; i++ {
			clock.fire(d)
		}
		if d.GetTicks() != n {
			t.Errorf("After %d interrupts: expected ticks %d, got %d", n, n, d.GetTicks())
		}
		if d.GetTime() != n/HZ {
			t.Errorf("After %d interrupts: expected %d seconds, got %d", n, n/HZ, d.GetTime())
		}
	}
}

func TestInterruptReprogramsBeforeAck(t *testing.T) {
	d, clock := newFakeDevice(t)
	clock.compare = 5000
	clock.counter = 5000
	clock.matched = true

	d.handleInterrupt()

	if clock.compare != 5000+TicksPerInterrupt {
		t.Errorf("Expected compare %d, got %d", 5000+TicksPerInterrupt, clock.compare)
	}
	if clock.matched || clock.acks != 1 {
		t.Errorf("Expected match acknowledged once, matched=%v acks=%d", clock.matched, clock.acks)
	}
	if d.DriftCorrections() != 0 {
		t.Errorf("On-time interrupt counted as drift")
	}
}

func TestInterruptDriftCorrection(t *testing.T) {
	testCases := []struct {
		name    string
		compare uint32
		counter uint32
	}{
		{"late by several periods", 1000, 1000 + 5*TicksPerInterrupt},
		{"late by exactly one period", 1000, 1000 + TicksPerInterrupt},
		{"late across wraparound", 0xFFFFF000, 0x00006530}, // 0xFFFFF000 + 3 periods
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, clock := newFakeDevice(t)
			clock.compare = tc.compare
			clock.counter = tc.counter
			clock.matched = true

			d.handleInterrupt()

			if int32(clock.compare-clock.counter) <= 0 {
				t.Errorf("Compare 0x%08X not ahead of counter 0x%08X", clock.compare, clock.counter)
			}
			if want := tc.counter + TicksPerInterrupt; clock.compare != want {
				t.Errorf("Expected compare reprogrammed from counter to 0x%08X, got 0x%08X", want, clock.compare)
			}
			if d.DriftCorrections() != 1 {
				t.Errorf("Expected 1 drift correction, got %d", d.DriftCorrections())
			}
		})
	}
}

func TestInterruptNoDriftAcrossCounterWrap(t *testing.T) {
	d, clock := newFakeDevice(t)
	// next deadline wraps past zero while the counter has not
	start := uint32(0xFFFFFFFF - TicksPerInterrupt/2)
	clock.compare = start
	clock.counter = start + 10
	clock.matched = true

	d.handleInterrupt()

	if d.DriftCorrections() != 0 {
		t.Errorf("Wrapped deadline mistaken for a late interrupt")
	}
	if want := start + TicksPerInterrupt; clock.compare != want {
		t.Errorf("Expected compare 0x%08X, got 0x%08X", want, clock.compare)
	}
}

func TestInterruptWithoutMatchIsFatal(t *testing.T) {
	d, _ := newFakeDevice(t)
	expectFatal(t, "interrupt without match status", d.handleInterrupt)
}

func TestTrampolineRejectsForeignParam(t *testing.T) {
	newFakeDevice(t)
	expectFatal(t, "interrupt with a foreign parameter", func() {
		timerInterruptHandler("not a device")
	})
}

func TestKernelTimerAcrossTickWrap(t *testing.T) {
	d, clock := newFakeDevice(t)
	d.ticks.Store(0xFFFFFFF0)

	fired := 0
	d.StartKernelTimer(0x20, func(TimerHandle, any, any) { fired++ }, nil, nil)

	for i := 0; i < 0x1F; i++ {
		clock.fire(d)
	}
	if fired != 0 {
		t.Fatalf("Timer fired one tick early")
	}
	clock.fire(d)
	if fired != 1 {
		t.Errorf("Expected timer to fire once after wrap, fired %d", fired)
	}
	if d.GetTicks() != 0x10 {
		t.Errorf("Expected ticks to wrap to 0x10, got 0x%X", d.GetTicks())
	}
}
