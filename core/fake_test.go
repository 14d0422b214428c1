package core

import (
	"errors"
	"testing"
)

// fakeClock is a register block whose counter moves step per read and
// never raises interrupts on its own
type fakeClock struct {
	step    uint32
	counter uint32
	compare uint32
	matched bool
	acks    int
}

func (c *fakeClock) ReadCounter() uint32   { c.counter += c.step; return c.counter }
func (c *fakeClock) WriteCounter(v uint32) { c.counter = v }
func (c *fakeClock) ReadCompare() uint32   { return c.compare }
func (c *fakeClock) WriteCompare(v uint32) { c.compare = v }
func (c *fakeClock) MatchPending() bool    { return c.matched }
func (c *fakeClock) AckMatch()             { c.matched = false; c.acks++ }

// fakeIRQ records registrations without delivering anything
type fakeIRQ struct {
	handler IRQHandler
	param   any
	enabled bool
	err     error
}

func (f *fakeIRQ) RegisterIRQ(irq IRQ, handler IRQHandler, param any) error {
	if f.err != nil {
		return f.err
	}
	f.handler = handler
	f.param = param
	return nil
}

func (f *fakeIRQ) EnableIRQ(irq IRQ) { f.enabled = true }

var errNoLine = errors.New("no such line")

func newFakeDevice(t *testing.T) (*TimerDevice, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	d := NewTimerDevice(clock, &fakeIRQ{}, DefaultDeviceConfig())
	t.Cleanup(d.Destroy)
	return d, clock
}

// fire simulates one on-time compare match
func (c *fakeClock) fire(d *TimerDevice) {
	c.counter = c.compare
	c.matched = true
	d.handleInterrupt()
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
