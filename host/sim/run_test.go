package sim

import (
	"testing"

	"systimer/core"
)

func TestRunDefaultScenario(t *testing.T) {
	sc := DefaultScenario()
	report, err := Run(sc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Samples) != int(sc.Seconds) {
		t.Fatalf("Expected %d samples, got %d", sc.Seconds, len(report.Samples))
	}
	for i := 1; i < len(report.Samples); i++ {
		if report.Samples[i].Ticks <= report.Samples[i-1].Ticks {
			t.Errorf("Sample %d did not advance the clock", i)
		}
	}

	heartbeats := 0
	for _, f := range report.Fired {
		if f.Tick != f.Due {
			t.Errorf("%s fired at tick %d, due %d", f.Name, f.Tick, f.Due)
		}
		switch f.Name {
		case "heartbeat":
			heartbeats++
		case "cancelled":
			t.Errorf("Cancelled timer fired at tick %d", f.Tick)
		}
	}
	if heartbeats < 4 {
		t.Errorf("Expected at least 4 heartbeats, got %d", heartbeats)
	}
	if report.Fired[0].Name != "oneshot" {
		t.Errorf("Expected the one-shot first, got %s", report.Fired[0].Name)
	}
	if len(report.Cancelled) != 1 || report.Cancelled[0] != "cancelled" {
		t.Errorf("Unexpected cancellations %v", report.Cancelled)
	}

	last := report.Samples[len(report.Samples)-1]
	if last.DriftCorrections != 0 || last.SpeedFactor != 100 {
		t.Errorf("Unexpected drift or calibration on an ideal clock: %+v", last)
	}
	if report.TimeString == "" || report.Interrupts < uint64(last.Ticks) {
		t.Errorf("Unexpected time %q with %d interrupts", report.TimeString, report.Interrupts)
	}

	// the device is released for the next run
	if _, err := Run(DefaultScenario()); err != nil {
		t.Errorf("Second run failed: %v", err)
	}
}

func TestRunSlowInterruptPath(t *testing.T) {
	sc := DefaultScenario()
	sc.Latency = core.TicksPerInterrupt + 1
	sc.Seconds = 2
	sc.Timers = nil

	report, err := Run(sc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	last := report.Samples[len(report.Samples)-1]
	if last.DriftCorrections == 0 {
		t.Errorf("Expected drift corrections with a slow interrupt path")
	}
	if last.SpeedFactor <= 100 {
		t.Errorf("Expected calibration to see fewer ticks, got factor %d", last.SpeedFactor)
	}
	if report.Samples[1].Ticks <= report.Samples[0].Ticks {
		t.Errorf("Clock stalled after drift corrections")
	}
}

func TestRunTooManyTimers(t *testing.T) {
	sc := &Scenario{}
	for i := 0; i < core.KernelTimers+2; i++ {
		sc.Timers = append(sc.Timers, TimerSpec{Delay: 1000})
	}
	applyDefaults(sc)
	sc.Seconds = 1

	report, err := Run(sc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Rejected) != 2 || report.Rejected[0] != "timer21" {
		t.Errorf("Expected the last two timers rejected, got %v", report.Rejected)
	}
	if got := report.Samples[0].ActiveTimers; got != core.KernelTimers {
		t.Errorf("Expected a full table, got %d active", got)
	}
}
