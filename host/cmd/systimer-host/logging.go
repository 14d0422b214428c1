package main

import (
	"log"

	"systimer/core"
)

// installCoreLogger routes timer core messages to the standard logger
func installCoreLogger() {
	core.SetLogWriter(func(sev core.Severity, source, msg string) {
		log.Printf("%s %s: %s", sev, source, msg)
	})
	if verbose {
		core.SetLogLevel(core.LogDebug)
	}
}
