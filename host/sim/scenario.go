package sim

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"systimer/core"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario describes a simulated run
type Scenario struct {
	// Step is the counter advance per read, Latency the reads from match
	// to interrupt delivery
	Step    uint32 `yaml:"step"`
	Latency uint32 `yaml:"latency"`

	// Seconds of simulated time after Initialize
	Seconds uint32 `yaml:"seconds"`

	MMUDisabled   bool  `yaml:"mmuDisabled"`
	PresetCounter *bool `yaml:"presetCounter"`

	Timers []TimerSpec `yaml:"timers"`
}

// TimerSpec is a kernel timer started at the beginning of the run
type TimerSpec struct {
	Name string `yaml:"name"`

	// Delay in ticks
	Delay uint32 `yaml:"delay"`

	// CancelAfter cancels the timer this many ticks after it was started,
	// 0 never
	CancelAfter uint32 `yaml:"cancelAfter"`

	// Repeat restarts the timer from its own handler
	Repeat bool `yaml:"repeat"`
}

// LoadScenario parses a YAML scenario and applies defaults
func LoadScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	applyDefaults(&sc)

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// DefaultScenario returns a short run with a one-shot, a repeating and a
// cancelled timer
func DefaultScenario() *Scenario {
	sc := &Scenario{
		Timers: []TimerSpec{
			{Name: "oneshot", Delay: 50},
			{Name: "heartbeat", Delay: core.HZ, Repeat: true},
			{Name: "cancelled", Delay: 3 * core.HZ, CancelAfter: core.HZ},
		},
	}
	applyDefaults(sc)
	return sc
}

// applyDefaults fills in missing configuration values
func applyDefaults(sc *Scenario) {
	if sc.Step == 0 {
		sc.Step = 1
	}
	if sc.Seconds == 0 {
		sc.Seconds = 5
	}
	if sc.PresetCounter == nil {
		preset := true
		sc.PresetCounter = &preset
	}
	for i := range sc.Timers {
		if sc.Timers[i].Name == "" {
			sc.Timers[i].Name = fmt.Sprintf("timer%d", i+1)
		}
	}
}

// Validate checks the scenario against the device limits
func (sc *Scenario) Validate() error {
	if sc.Step > core.ClockHz {
		return fmt.Errorf("%w: step %d exceeds one second of counter ticks", ErrInvalidScenario, sc.Step)
	}
	for _, t := range sc.Timers {
		if t.Repeat && t.Delay == 0 {
			return fmt.Errorf("%w: repeating timer %q needs a delay", ErrInvalidScenario, t.Name)
		}
	}
	return nil
}

// DeviceConfig returns the timer device configuration for the scenario
func (sc *Scenario) DeviceConfig() core.DeviceConfig {
	cfg := core.DefaultDeviceConfig()
	cfg.MMUDisabled = sc.MMUDisabled
	if sc.PresetCounter != nil {
		cfg.PresetCounter = *sc.PresetCounter
	}
	return cfg
}
