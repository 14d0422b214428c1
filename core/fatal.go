package core

// FatalHandler halts the system. It must not return.
type FatalHandler func(msg string)

var fatalHandler FatalHandler = func(msg string) {
	panic("systimer: " + msg)
}

// SetFatalHandler installs the platform halt routine
func SetFatalHandler(h FatalHandler) {
	fatalHandler = h
}

// Crash reports an unrecoverable condition and halts
func Crash(msg string) {
	LogWrite(LogPanic, "timer", msg)
	fatalHandler(msg)
	// A returning handler still must not let the caller continue.
	panic("systimer: fatal handler returned: " + msg)
}

// assert crashes with msg unless cond holds
func assert(cond bool, msg string) {
	if !cond {
		Crash(msg)
	}
}
