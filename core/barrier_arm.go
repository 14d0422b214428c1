//go:build tinygo && arm

package core

import "device/arm"

// dataMemBarrier orders peripheral accesses against normal memory
func dataMemBarrier() {
	arm.Asm("mcr p15, 0, r0, c7, c10, 5")
}
