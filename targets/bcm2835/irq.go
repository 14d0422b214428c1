//go:build tinygo && bcm2835

package main

import (
	"errors"
	"runtime/volatile"
	"unsafe"

	"systimer/core"
)

// ARM interrupt controller register map
type irqRegisterMap struct {
	BasicPending     volatile.Register32 // 0x00
	Pending1         volatile.Register32 // 0x04
	Pending2         volatile.Register32 // 0x08
	FIQControl       volatile.Register32 // 0x0C
	EnableIRQs1      volatile.Register32 // 0x10
	EnableIRQs2      volatile.Register32 // 0x14
	EnableBasicIRQs  volatile.Register32 // 0x18
	DisableIRQs1     volatile.Register32 // 0x1C
	DisableIRQs2     volatile.Register32 // 0x20
	DisableBasicIRQs volatile.Register32 // 0x24
}

// GPU interrupt lines 0..63
const irqLines = 64

var (
	errIRQRange = errors.New("irq line out of range")
	errIRQInUse = errors.New("irq line already has a handler")
)

var irqRegs = (*irqRegisterMap)(unsafe.Pointer(uintptr(peripheralBase + 0xB200)))

type irqEntry struct {
	handler core.IRQHandler
	param   any
}

// interruptController dispatches GPU interrupt lines to registered handlers
type interruptController struct {
	regs  *irqRegisterMap
	table [irqLines]irqEntry
}

var intc = &interruptController{regs: irqRegs}

var _ core.InterruptController = (*interruptController)(nil)

func (c *interruptController) RegisterIRQ(irq core.IRQ, handler core.IRQHandler, param any) error {
	if irq >= irqLines {
		return errIRQRange
	}
	if c.table[irq].handler != nil {
		return errIRQInUse
	}
	c.table[irq] = irqEntry{handler: handler, param: param}
	return nil
}

func (c *interruptController) EnableIRQ(irq core.IRQ) {
	if irq < 32 {
		c.regs.EnableIRQs1.Set(1 << irq)
	} else if irq < irqLines {
		c.regs.EnableIRQs2.Set(1 << (irq - 32))
	}
}

// dispatch runs the handler of every pending line
func (c *interruptController) dispatch() {
	c.dispatchBank(c.regs.Pending1.Get(), 0)
	c.dispatchBank(c.regs.Pending2.Get(), 32)
}

func (c *interruptController) dispatchBank(pending uint32, base core.IRQ) {
	for bit := core.IRQ(0); pending != 0; bit++ {
		if pending&1 != 0 {
			if e := c.table[base+bit]; e.handler != nil {
				e.handler(e.param)
			}
		}
		pending >>= 1
	}
}

// handleIRQ is called from the IRQ exception vector with interrupts masked
//
//export handleIRQ
func handleIRQ() {
	intc.dispatch()
}
