// Package sim models the BCM2835 system timer and interrupt controller on
// the host so the timer core can run without a board.
//
// The model is single threaded: the counter advances on every read and a
// pending compare match is delivered synchronously from inside that read,
// the way an interrupt preempts the instruction stream on a single core.
package sim

import (
	"errors"

	"systimer/core"
)

var (
	ErrUnknownIRQ        = errors.New("irq is not wired to the system timer")
	ErrAlreadyRegistered = errors.New("irq handler already registered")
)

// SystemTimer implements core.ClockHardware and core.InterruptController
type SystemTimer struct {
	// Step is how far the counter advances on each read
	Step uint32

	// Latency is the number of counter reads between a match and its
	// delivery, modelling a slow interrupt path
	Latency uint32

	// RegisterErr makes RegisterIRQ fail when set
	RegisterErr error

	counter uint32
	compare uint32
	matched bool

	irq        core.IRQ
	handler    core.IRQHandler
	param      any
	enabled    bool
	inHandler  bool
	sinceMatch uint32

	// Reads counts counter reads, Delivered counts handler invocations
	Reads     uint64
	Delivered uint64
}

// NewSystemTimer creates a timer whose counter advances step per read
func NewSystemTimer(step uint32) *SystemTimer {
	if step == 0 {
		step = 1
	}
	return &SystemTimer{
		Step: step,
		irq:  core.IRQSystemTimer3,
	}
}

// ReadCounter advances the counter by Step and may deliver the interrupt
func (s *SystemTimer) ReadCounter() uint32 {
	s.Reads++
	s.advance(s.Step)
	v := s.counter
	s.deliver()
	return v
}

// WriteCounter loads the counter without raising a match
func (s *SystemTimer) WriteCounter(v uint32) {
	s.counter = v
}

func (s *SystemTimer) ReadCompare() uint32 {
	return s.compare
}

func (s *SystemTimer) WriteCompare(v uint32) {
	s.compare = v
}

func (s *SystemTimer) MatchPending() bool {
	return s.matched
}

func (s *SystemTimer) AckMatch() {
	s.matched = false
	s.sinceMatch = 0
}

// RegisterIRQ installs the handler for the system timer line
func (s *SystemTimer) RegisterIRQ(irq core.IRQ, handler core.IRQHandler, param any) error {
	if s.RegisterErr != nil {
		return s.RegisterErr
	}
	if irq != s.irq {
		return ErrUnknownIRQ
	}
	if s.handler != nil {
		return ErrAlreadyRegistered
	}
	s.handler = handler
	s.param = param
	return nil
}

func (s *SystemTimer) EnableIRQ(irq core.IRQ) {
	if irq == s.irq {
		s.enabled = true
	}
}

// Counter returns the counter without advancing it
func (s *SystemTimer) Counter() uint32 {
	return s.counter
}

// advance moves the counter forward n ticks, latching a match when the
// compare value is passed
func (s *SystemTimer) advance(n uint32) {
	if n == 0 {
		return
	}
	old := s.counter
	s.counter += n
	// compare in (old, old+n], modulo 2^32
	if s.compare-old-1 < n && !s.matched {
		s.matched = true
		s.sinceMatch = 0
	}
}

func (s *SystemTimer) deliver() {
	if !s.matched || !s.enabled || s.handler == nil || s.inHandler {
		return
	}
	if core.InterruptsMasked() {
		return
	}
	if s.sinceMatch < s.Latency {
		s.sinceMatch++
		return
	}

	s.inHandler = true
	defer func() { s.inHandler = false }()

	s.Delivered++
	s.handler(s.param)
}

// Tick jumps the counter to the compare value and delivers the resulting
// interrupt immediately, as if the handler ran with no latency
func (s *SystemTimer) Tick() {
	s.counter = s.compare
	s.RaiseMatch()
}

// Ticks delivers n interrupts back to back
func (s *SystemTimer) Ticks(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

// RaiseMatch latches the match status bit and delivers it now unless the
// critical section is held
func (s *SystemTimer) RaiseMatch() {
	s.matched = true
	s.sinceMatch = s.Latency
	s.deliver()
}

// Advance moves the counter n ticks, stopping at every compare value so
// no match is skipped
func (s *SystemTimer) Advance(n uint32) {
	for n > 0 {
		step := n
		if d := s.compare - s.counter; d > 0 && d < step {
			step = d
		}
		s.advance(step)
		n -= step
		s.deliver()
	}
}
