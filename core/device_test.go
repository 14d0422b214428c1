package core_test

import (
	"errors"
	"testing"

	"systimer/core"
	"systimer/host/sim"
)

// newSimDevice brings up a timer device on a simulated system timer whose
// counter advances one microsecond per read
func newSimDevice(t *testing.T, cfg core.DeviceConfig) (*core.TimerDevice, *sim.SystemTimer) {
	t.Helper()
	hw := sim.NewSystemTimer(1)
	core.SetClockHardware(hw)
	d := core.NewTimerDevice(hw, hw, cfg)
	t.Cleanup(d.Destroy)

	if err := d.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return d, hw
}

func expectFatal(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("Expected %s to be fatal", what)
		}
	}()
	fn()
}

func TestSingleDevice(t *testing.T) {
	hw := sim.NewSystemTimer(1)
	d := core.NewTimerDevice(hw, hw, core.DefaultDeviceConfig())

	if core.Get() != d {
		t.Errorf("Get did not return the live device")
	}

	expectFatal(t, "a second device", func() {
		core.NewTimerDevice(hw, hw, core.DefaultDeviceConfig())
	})

	d.Destroy()

	expectFatal(t, "Get without a device", func() { core.Get() })
	expectFatal(t, "using a destroyed device", func() { d.GetTicks() })
	expectFatal(t, "destroying twice", d.Destroy)

	d2 := core.NewTimerDevice(hw, hw, core.DefaultDeviceConfig())
	d2.Destroy()
}

func TestInitializeRegisterFailure(t *testing.T) {
	errBusy := errors.New("line busy")
	hw := sim.NewSystemTimer(1)
	hw.RegisterErr = errBusy

	d := core.NewTimerDevice(hw, hw, core.DefaultDeviceConfig())
	defer d.Destroy()

	err := d.Initialize()
	if !errors.Is(err, core.ErrIRQRegister) || !errors.Is(err, errBusy) {
		t.Fatalf("Expected ErrIRQRegister, got %v", err)
	}
	if d.GetTicks() != 0 {
		t.Errorf("Clock advanced without a registered handler")
	}
}

func TestInitializeWrongLine(t *testing.T) {
	hw := sim.NewSystemTimer(1)
	cfg := core.DefaultDeviceConfig()
	cfg.IRQ = 7

	d := core.NewTimerDevice(hw, hw, cfg)
	defer d.Destroy()

	if err := d.Initialize(); !errors.Is(err, sim.ErrUnknownIRQ) {
		t.Fatalf("Expected ErrUnknownIRQ, got %v", err)
	}
}

func TestCalibration(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    core.DeviceConfig
		ms, us uint32
	}{
		{"mmu", core.DeviceConfig{IRQ: core.IRQSystemTimer3}, 350000, 350},
		{"no-mmu", core.DeviceConfig{IRQ: core.IRQSystemTimer3, MMUDisabled: true}, 12500, 13},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newSimDevice(t, tc.cfg)

			if f := d.SpeedFactor(); f != 100 {
				t.Errorf("Expected speed factor 100 on a nominal clock, got %d", f)
			}
			ms, us := d.DelayConstants()
			if ms != tc.ms || us != tc.us {
				t.Errorf("Expected delay constants (%d, %d), got (%d, %d)", tc.ms, tc.us, ms, us)
			}
			// calibration waits one second of counter time
			if ticks := d.GetTicks(); ticks < core.HZ || ticks > core.HZ+1 {
				t.Errorf("Expected about %d ticks after calibration, got %d", core.HZ, ticks)
			}
		})
	}
}

func TestCalibrationLogsSpeedFactor(t *testing.T) {
	var messages []string
	core.SetLogWriter(func(sev core.Severity, source, msg string) {
		messages = append(messages, msg)
	})
	defer core.SetLogWriter(func(core.Severity, string, string) {})

	newSimDevice(t, core.DefaultDeviceConfig())

	found := false
	for _, m := range messages {
		if m == "SpeedFactor is 1.00" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected speed factor message, got %q", messages)
	}
}

func TestPresetCounter(t *testing.T) {
	const preset = 1<<32 - 30*core.ClockHz

	t.Run("preset", func(t *testing.T) {
		d, _ := newSimDevice(t, core.DefaultDeviceConfig())
		if since := d.GetClockTicks() - preset; since > 2*core.ClockHz {
			t.Errorf("Counter 0x%08X not near the 30 second preset", d.GetClockTicks())
		}
	})

	t.Run("free", func(t *testing.T) {
		d, _ := newSimDevice(t, core.DeviceConfig{IRQ: core.IRQSystemTimer3})
		if c := d.GetClockTicks(); c > 2*core.ClockHz {
			t.Errorf("Counter 0x%08X should run from zero", c)
		}
	})
}

func TestTimeKeeping(t *testing.T) {
	d, hw := newSimDevice(t, core.DefaultDeviceConfig())

	start := d.GetTicks()
	hw.Ticks(3 * core.HZ)

	if got := d.GetTicks() - start; got != 3*core.HZ {
		t.Errorf("Expected %d ticks, got %d", 3*core.HZ, got)
	}
	if got, want := d.GetTime(), d.GetTicks()/core.HZ; got != want {
		t.Errorf("Expected %d seconds, got %d", want, got)
	}

	s, ok := d.GetTimeString()
	if !ok {
		t.Fatalf("Expected time string after ticks")
	}
	if want := core.FormatElapsed(d.GetTime(), d.GetTicks()); s != want {
		t.Errorf("Expected %q, got %q", want, s)
	}
}

func TestTimeStringBeforeFirstTick(t *testing.T) {
	hw := sim.NewSystemTimer(1)
	d := core.NewTimerDevice(hw, hw, core.DefaultDeviceConfig())
	defer d.Destroy()

	if s, ok := d.GetTimeString(); ok || s != "" {
		t.Errorf("Expected no time string before the first tick, got %q", s)
	}
}

func TestLateInterruptCorrectsDrift(t *testing.T) {
	d, hw := newSimDevice(t, core.DefaultDeviceConfig())

	before := d.DriftCorrections()

	// the counter runs past the next deadline before the handler gets to
	// reprogram it
	hw.Step = core.TicksPerInterrupt + 1
	hw.Tick()
	hw.Step = 1

	if got := d.DriftCorrections() - before; got != 1 {
		t.Fatalf("Expected one drift correction, got %d", got)
	}
	if ahead := int32(hw.ReadCompare() - hw.Counter()); ahead <= 0 {
		t.Errorf("Compare 0x%08X is not ahead of counter 0x%08X", hw.ReadCompare(), hw.Counter())
	}

	// the clock keeps running after the correction
	ticks := d.GetTicks()
	core.SimpleMsDelay(50)
	if d.GetTicks()-ticks < 4 {
		t.Errorf("Clock stalled after drift correction")
	}
}

func TestClockFollowsCounter(t *testing.T) {
	d, hw := newSimDevice(t, core.DefaultDeviceConfig())

	start := d.GetTicks()
	hw.Advance(2 * core.ClockHz)

	// the handler's own counter reads add a tick's worth of slack at most
	if got := d.GetTicks() - start; got < 2*core.HZ || got > 2*core.HZ+1 {
		t.Errorf("Expected %d ticks for two seconds of counter, got %d", 2*core.HZ, got)
	}
	if d.DriftCorrections() != 0 {
		t.Errorf("Unexpected drift corrections on an on-time interrupt path")
	}
}
