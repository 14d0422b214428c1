package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"systimer/core"
	"systimer/host/monitor"
	"systimer/host/serial"
	"systimer/protocol"
)

var (
	monitorOpts = struct {
		device string
		baud   int
		count  int
	}{}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Print the status reports of a board",
		Long:  "Read timer status frames from the board's UART, print each report and summarise the tick rate on exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serial.DefaultConfig(monitorOpts.device)
			cfg.Baud = monitorOpts.baud

			port, err := serial.Open(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			if err := port.Flush(); err != nil {
				return fmt.Errorf("flush %s: %w", cfg.Device, err)
			}

			fmt.Printf("Monitoring %s at %d baud...\n", cfg.Device, cfg.Baud)

			m := monitor.New(printStatus)
			runErr := m.Run(cmd.Context(), port, monitorOpts.count)

			printStats(monitor.Analyze(m.Samples()))
			if dropped := m.Dropped(); dropped > 0 {
				fmt.Printf("Dropped frames: %d\n", dropped)
			}
			if runErr != nil && cmd.Context().Err() == nil {
				return runErr
			}
			return nil
		},
	}
)

func init() {
	monitorCmd.Flags().StringVarP(&monitorOpts.device, "device", "d", "/dev/ttyUSB0", "Serial device path")
	monitorCmd.Flags().IntVarP(&monitorOpts.baud, "baud", "b", 115200, "Baud rate")
	monitorCmd.Flags().IntVarP(&monitorOpts.count, "count", "n", 0, "Stop after this many reports (0 = until interrupted)")
}

func printStatus(r protocol.StatusReport) {
	line := core.FormatElapsed(r.Seconds, r.Ticks) +
		fmt.Sprintf("  ticks=%d clock=%08x timers=%d", r.Ticks, r.ClockTicks, r.ActiveTimers)
	if verbose {
		line += fmt.Sprintf(" msDelay=%d usDelay=%d drift=%d", r.MsDelay, r.UsDelay, r.DriftCorrections)
	}
	fmt.Println(line)
}
