//go:build !tinygo || !arm

package core

// dataMemBarrier is a no-op where register accesses are plain memory
func dataMemBarrier() {}
