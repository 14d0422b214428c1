//go:build tinygo && bcm2835

package main

import (
	"runtime/volatile"
	"unsafe"
)

// Auxiliary peripherals register map, mini UART part
type auxRegisterMap struct {
	InterruptStatus volatile.Register32 // 0x00
	Enables         volatile.Register32 // 0x04
	reserved00      [14]uint32
	MUData          volatile.Register32 // 0x40
	MUInterrupt     volatile.Register32 // 0x44
	MUIdentify      volatile.Register32 // 0x48
	MULineControl   volatile.Register32 // 0x4C
	MUModemControl  volatile.Register32 // 0x50
	MULineStatus    volatile.Register32 // 0x54
	MUModemStatus   volatile.Register32 // 0x58
	MUScratch       volatile.Register32 // 0x5C
	MUExtraControl  volatile.Register32 // 0x60
	MUExtraStatus   volatile.Register32 // 0x64
	MUBaud          volatile.Register32 // 0x68
}

type gpioRegisterMap struct {
	FunctionSelect [6]volatile.Register32 // 0x00
	reserved00     uint32
	Set            [2]volatile.Register32 // 0x1C
	reserved01     uint32
	Clear          [2]volatile.Register32 // 0x28
	reserved02     uint32
	Level          [2]volatile.Register32 // 0x34
	reserved03     [22]uint32
	Pull           volatile.Register32    // 0x94
	PullClock      [2]volatile.Register32 // 0x98
}

const (
	auxEnableMiniUART    = 1 << 0
	muDataLength8Bits    = 3
	muTransmitEnable     = 1 << 1
	muTransmitterEmpty   = 1 << 5
	muBaud115200At250MHz = 270
	gpioFunctionAlt5     = 2
	gpioFunctionOutput   = 1
	gpioPinTXD1          = 14
	gpioPinRXD1          = 15
	gpioPinActLED        = 16
)

var (
	aux  = (*auxRegisterMap)(unsafe.Pointer(uintptr(peripheralBase + 0x215000)))
	gpio = (*gpioRegisterMap)(unsafe.Pointer(uintptr(peripheralBase + 0x200000)))
)

func gpioSetFunction(pin, function uint32) {
	reg := &gpio.FunctionSelect[pin/10]
	shift := (pin % 10) * 3
	reg.ReplaceBits(function, 0x7, uint8(shift))
}

// initMiniUART configures the mini UART for 115200 8N1 transmit
func initMiniUART() {
	aux.Enables.SetBits(auxEnableMiniUART)
	aux.MUExtraControl.Set(0)
	aux.MUInterrupt.Set(0)
	aux.MULineControl.Set(muDataLength8Bits)
	aux.MUModemControl.Set(0)
	aux.MUBaud.Set(muBaud115200At250MHz)

	gpioSetFunction(gpioPinTXD1, gpioFunctionAlt5)
	gpioSetFunction(gpioPinRXD1, gpioFunctionAlt5)

	aux.MUExtraControl.Set(muTransmitEnable)
}

// uartWrite sends b, spinning while the transmit FIFO is full
func uartWrite(b []byte) {
	for _, c := range b {
		for !aux.MULineStatus.HasBits(muTransmitterEmpty) {
		}
		aux.MUData.Set(uint32(c))
	}
}

func setActLED(on bool) {
	// the Pi 1 ACT LED is active low
	if on {
		gpio.Clear[0].Set(1 << gpioPinActLED)
	} else {
		gpio.Set[0].Set(1 << gpioPinActLED)
	}
}
