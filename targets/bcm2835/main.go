//go:build tinygo && bcm2835

package main

import (
	"runtime"
	"runtime/interrupt"

	"systimer/core"
	"systimer/protocol"
)

var (
	timer  *core.TimerDevice
	output *protocol.ScratchOutput

	reportSeq uint8
	ledOn     bool
)

func main() {
	initMiniUART()
	gpioSetFunction(gpioPinActLED, gpioFunctionOutput)

	core.SetLogWriter(func(sev core.Severity, source, msg string) {
		writeLine(sev.String() + " " + source + ": " + msg)
	})
	core.SetFatalHandler(halt)

	clock := &systemTimer{regs: sysTimer}
	core.SetClockHardware(clock)

	timer = core.NewTimerDevice(clock, intc, core.DefaultDeviceConfig())
	if err := timer.Initialize(); err != nil {
		core.Crash(err.Error())
	}

	// From here on log lines may come from interrupt context
	core.InitAsyncLog()

	if timer.StartKernelTimer(core.HZ/2, blink, nil, nil) == core.InvalidHandle {
		core.Crash("cannot start blink timer")
	}

	output = protocol.NewScratchOutput()

	lastSecond := timer.GetTime()
	for {
		now := timer.GetTime()
		// the scheduler is cooperative: yield to the log worker and drain
		// whatever it has not written yet
		runtime.Gosched()
		core.FlushLog()

		if now == lastSecond {
			core.SimpleMsDelay(10)
			continue
		}
		lastSecond = now
		sendStatus()
	}
}

// blink toggles the ACT LED twice a second; runs in interrupt context
func blink(handle core.TimerHandle, param, context any) {
	ledOn = !ledOn
	setActLED(ledOn)
	timer.StartKernelTimer(core.HZ/2, blink, param, context)
}

func sendStatus() {
	output.Reset()
	err := protocol.EncodeFrame(output, reportSeq, func(out protocol.OutputBuffer) {
		protocol.EncodeStatus(out, timer.Status().Report())
	})
	if err != nil {
		core.LogWrite(core.LogError, "telemetry", err.Error())
		return
	}
	reportSeq++
	uartWrite(output.Result())
}

// writeLine sends a text line followed by a sync byte so a frame decoder
// sharing the UART is resynchronized before the next report
func writeLine(line string) {
	uartWrite([]byte(line + "\r\n"))
	uartWrite([]byte{protocol.MessageValueSync})
}

// halt stops the board after a fatal error with the trace on the UART
func halt(msg string) {
	interrupt.Disable()
	writeLine("PANIC: " + msg)
	core.SetLogWriter(func(sev core.Severity, source, msg string) {
		writeLine(source + ": " + msg)
	})
	core.FlushLog()
	core.DumpTraceRing()
	for {
	}
}
