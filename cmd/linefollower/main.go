package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "linefollower",
	Short: "Simulate, monitor and tune the line follower",
	Long: `linefollower runs the steering controller against a simulated track, or follows the firmware's
telemetry over a serial port and publishes it to logs, Prometheus, Redis, TWChart and a dashboard.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
