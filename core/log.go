package core

import "sync/atomic"

// Severity orders log messages, most severe first
type Severity uint8

const (
	LogPanic Severity = iota
	LogError
	LogWarning
	LogNotice
	LogDebug
)

func (s Severity) String() string {
	switch s {
	case LogPanic:
		return "PANIC"
	case LogError:
		return "ERROR"
	case LogWarning:
		return "WARN"
	case LogNotice:
		return "NOTICE"
	case LogDebug:
		return "DEBUG"
	}
	return "UNKNOWN"
}

// LogWriter is a function type for writing log messages
type LogWriter func(sev Severity, source, msg string)

type logMessage struct {
	sev    Severity
	source string
	msg    string
}

// Trace event codes
const (
	EvtTimerStart     = 1 // kernel timer registered
	EvtTimerFire      = 2 // kernel timer handler invoked
	EvtTimerCancel    = 3 // kernel timer cancelled
	EvtDrift          = 4 // compare reprogrammed from the live counter
	EvtTimerExhausted = 5 // kernel timer table full
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

// TraceEvent captures a timer event for post-mortem analysis
type TraceEvent struct {
	EventType uint8
	Handle    uint8
	Tick      uint32 // software tick at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

var (
	// logWriter is the platform log sink (can be set by platform code)
	logWriter LogWriter = func(Severity, string, string) {} // No-op by default

	// logLevel drops messages less severe than this
	logLevel = LogNotice

	// Async log channel, nil until InitAsyncLog
	logChan    chan logMessage
	logDropped atomic.Uint32

	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
)

// SetLogWriter sets the platform-specific log output function
func SetLogWriter(writer LogWriter) {
	logWriter = writer
}

// SetLogLevel sets the least severe level that is still written
func SetLogLevel(sev Severity) {
	logLevel = sev
}

// logQueueSize bounds the messages buffered between interrupt context and
// the log output
const logQueueSize = 16

// InitAsyncLog starts the log output goroutine. After this call LogWrite
// never blocks, which makes it safe from interrupt context.
//
// On a cooperative scheduler the goroutine only runs when the foreground
// yields; a busy loop must call FlushLog instead.
func InitAsyncLog() {
	logChan = make(chan logMessage, logQueueSize)
	go logOutputWorker(logChan)
}

func logOutputWorker(ch chan logMessage) {
	for m := range ch {
		if logWriter != nil {
			logWriter(m.sev, m.source, m.msg)
		}
	}
}

// FlushLog writes every queued message from the calling goroutine and
// returns once the queue is empty
func FlushLog() {
	ch := logChan
	if ch == nil {
		return
	}
	for {
		select {
		case m := <-ch:
			if logWriter != nil {
				logWriter(m.sev, m.source, m.msg)
			}
		default:
			return
		}
	}
}

// DroppedLogMessages counts messages lost to a full queue
func DroppedLogMessages() uint32 {
	return logDropped.Load()
}

// LogWrite writes a message. With the async queue enabled the message is
// dropped when the queue is full.
func LogWrite(sev Severity, source, msg string) {
	if sev > logLevel {
		return
	}
	if logChan != nil {
		select {
		case logChan <- logMessage{sev: sev, source: source, msg: msg}:
		default:
			logDropped.Add(1)
		}
		return
	}
	if logWriter != nil {
		logWriter(sev, source, msg)
	}
}

// recordTrace captures an event in the ring buffer
func recordTrace(eventType uint8, handle TimerHandle, tick, value1, value2 uint32) {
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Handle:    uint8(handle),
		Tick:      tick,
		Value1:    value1,
		Value2:    value2,
	}
	traceRingHead = (idx + 1) % TraceRingSize
}

// TraceEvents returns the recorded events, oldest first
func TraceEvents() []TraceEvent {
	events := make([]TraceEvent, 0, TraceRingSize)
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue
		}
		events = append(events, evt)
	}
	return events
}

// DumpTraceRing writes the trace ring to the log writer, bypassing the
// level filter and the async queue (call on shutdown/error)
func DumpTraceRing() {
	if logWriter == nil {
		return
	}

	logWriter(LogDebug, "trace", "=== Trace Ring Dump ===")
	for _, evt := range TraceEvents() {
		var name string
		switch evt.EventType {
		case EvtTimerStart:
			name = "START"
		case EvtTimerFire:
			name = "FIRE"
		case EvtTimerCancel:
			name = "CANCEL"
		case EvtDrift:
			name = "DRIFT!"
		case EvtTimerExhausted:
			name = "EXHAUSTED!"
		default:
			name = "UNKNOWN"
		}
		logWriter(LogDebug, "trace", name+
			" handle="+utoa(uint32(evt.Handle))+
			" tick="+utoa(evt.Tick)+
			" v1="+utoa(evt.Value1)+
			" v2="+utoa(evt.Value2))
	}
	logWriter(LogDebug, "trace", "=== End Dump ===")
}

// ClearTraceRing clears the trace buffer
func ClearTraceRing() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
}
