package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"systimer/core"
	"systimer/host/monitor"
	"systimer/host/sim"
	"systimer/protocol"
)

var (
	simOpts = struct {
		config  string
		seconds uint32
		latency uint32
		step    uint32
		trace   bool
	}{}

	simCmd = &cobra.Command{
		Use:   "sim",
		Short: "Run the timer on simulated hardware",
		Long:  "Initialize and calibrate the timer on a simulated system timer, run kernel timers from a scenario and report the tick rate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			installCoreLogger()

			sc := sim.DefaultScenario()
			if simOpts.config != "" {
				data, err := os.ReadFile(simOpts.config)
				if err != nil {
					return fmt.Errorf("read scenario: %w", err)
				}
				if sc, err = sim.LoadScenario(data); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if flags.Changed("seconds") {
				sc.Seconds = simOpts.seconds
			}
			if flags.Changed("latency") {
				sc.Latency = simOpts.latency
			}
			if flags.Changed("step") {
				sc.Step = simOpts.step
			}
			if err := sc.Validate(); err != nil {
				return err
			}

			report, err := sim.Run(sc)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			printSimReport(report)

			stats, err := replayTelemetry(report.Samples)
			if err != nil {
				return err
			}
			printStats(stats)

			if simOpts.trace {
				core.DumpTraceRing()
			}
			return nil
		},
	}
)

func init() {
	simCmd.Flags().StringVarP(&simOpts.config, "config", "c", "", "YAML scenario file")
	simCmd.Flags().Uint32VarP(&simOpts.seconds, "seconds", "s", 5, "Simulated seconds")
	simCmd.Flags().Uint32Var(&simOpts.latency, "latency", 0, "Counter reads between compare match and interrupt delivery")
	simCmd.Flags().Uint32Var(&simOpts.step, "step", 1, "Counter ticks per read")
	simCmd.Flags().BoolVar(&simOpts.trace, "trace", false, "Dump the timer trace ring after the run")
}

// replayTelemetry pushes the samples through the wire format and the
// monitor, the same path a board's reports take
func replayTelemetry(samples []core.Status) (monitor.Stats, error) {
	var stream bytes.Buffer
	output := protocol.NewScratchOutput()
	for i, s := range samples {
		output.Reset()
		err := protocol.EncodeFrame(output, uint8(i), func(out protocol.OutputBuffer) {
			protocol.EncodeStatus(out, s.Report())
		})
		if err != nil {
			return monitor.Stats{}, fmt.Errorf("encode status %d: %w", i, err)
		}
		stream.Write(output.Result())
	}

	m := monitor.New(nil)
	m.Feed(stream.Bytes())
	if dropped := m.Dropped(); dropped != 0 {
		return monitor.Stats{}, fmt.Errorf("telemetry replay dropped %d frames", dropped)
	}
	return monitor.Analyze(m.Samples()), nil
}

func printSimReport(r *sim.Report) {
	fmt.Printf("Elapsed: %s after %d interrupts\n", r.TimeString, r.Interrupts)
	for _, f := range r.Fired {
		fmt.Printf("  fired     %-12s handle=%-2d due=%-6d tick=%d\n", f.Name, f.Handle, f.Due, f.Tick)
	}
	for _, name := range r.Cancelled {
		fmt.Printf("  cancelled %s\n", name)
	}
	for _, name := range r.Rejected {
		fmt.Printf("  rejected  %s (timer table full)\n", name)
	}
}

func printStats(st monitor.Stats) {
	fmt.Printf("Reports: %d, intervals: %d\n", st.Reports, st.Intervals)
	if st.Intervals > 0 {
		fmt.Printf("Tick rate: mean %.3f Hz, stddev %.3f, min %.3f, max %.3f (expected %d)\n",
			st.RateMean, st.RateStdDev, st.RateMin, st.RateMax, core.HZ)
	}
	fmt.Printf("Lost ticks: %.1f, drift corrections: %d, speed factor: %d.%02d\n",
		st.LostTicks, st.DriftCorrections, st.SpeedFactor/100, st.SpeedFactor%100)
}
