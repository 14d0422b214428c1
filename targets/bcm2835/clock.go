//go:build tinygo && bcm2835

package main

import (
	"runtime/volatile"
	"unsafe"

	"systimer/core"
)

// BCM2835 peripheral window as seen by the ARM (Raspberry Pi 1)
const peripheralBase = 0x20000000

// System timer register map (BCM2835 ARM Peripherals, chapter 12)
type sysTimerRegisterMap struct {
	ControlStatus volatile.Register32 // 0x00
	CounterLow    volatile.Register32 // 0x04
	CounterHigh   volatile.Register32 // 0x08
	Compare0      volatile.Register32 // 0x0C, used by the GPU
	Compare1      volatile.Register32 // 0x10
	Compare2      volatile.Register32 // 0x14, used by the GPU
	Compare3      volatile.Register32 // 0x18
}

const systemTimerMatch3 = 1 << 3

var sysTimer = (*sysTimerRegisterMap)(unsafe.Pointer(uintptr(peripheralBase + 0x3000)))

// systemTimer drives compare channel 3 for the timer core
type systemTimer struct {
	regs *sysTimerRegisterMap
}

var _ core.ClockHardware = (*systemTimer)(nil)

func (t *systemTimer) ReadCounter() uint32 {
	return t.regs.CounterLow.Get()
}

func (t *systemTimer) WriteCounter(v uint32) {
	t.regs.CounterLow.Set(v)
}

func (t *systemTimer) ReadCompare() uint32 {
	return t.regs.Compare3.Get()
}

func (t *systemTimer) WriteCompare(v uint32) {
	t.regs.Compare3.Set(v)
}

func (t *systemTimer) MatchPending() bool {
	return t.regs.ControlStatus.HasBits(systemTimerMatch3)
}

// AckMatch clears the match bit; the status register is write-one-to-clear
func (t *systemTimer) AckMatch() {
	t.regs.ControlStatus.Set(systemTimerMatch3)
}
