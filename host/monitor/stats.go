package monitor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"systimer/core"
	"systimer/protocol"
)

// Stats summarises consecutive status reports
type Stats struct {
	Reports   int
	Intervals int

	// Tick rate in ticks per second of hardware counter time
	RateMean   float64
	RateStdDev float64
	RateMin    float64
	RateMax    float64

	// LostTicks sums the interrupts the counter says should have happened
	// but the software clock did not count
	LostTicks float64

	DriftCorrections uint32
	SpeedFactor      uint32
}

// Analyze computes tick rate statistics over successive reports
func Analyze(samples []protocol.StatusReport) Stats {
	st := Stats{Reports: len(samples)}
	if len(samples) == 0 {
		return st
	}

	last := samples[len(samples)-1]
	st.DriftCorrections = last.DriftCorrections
	st.SpeedFactor = last.SpeedFactor

	rates := make([]float64, 0, len(samples))
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]

		// unsigned deltas survive counter wraparound
		dClock := cur.ClockTicks - prev.ClockTicks
		dTicks := cur.Ticks - prev.Ticks
		if dClock == 0 {
			continue
		}

		rates = append(rates, float64(dTicks)*core.ClockHz/float64(dClock))
		if lost := float64(dClock)/core.TicksPerInterrupt - float64(dTicks); lost > 0 {
			st.LostTicks += lost
		}
	}

	st.Intervals = len(rates)
	if len(rates) == 0 {
		return st
	}

	st.RateMean, st.RateStdDev = stat.MeanStdDev(rates, nil)
	if len(rates) == 1 {
		st.RateStdDev = 0
	}
	st.RateMin = floats.Min(rates)
	st.RateMax = floats.Max(rates)
	return st
}
