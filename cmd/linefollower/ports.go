package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calvinmclean/linefollower/monitor"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "ports",
		Short: "List USB serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := monitor.SerialPorts()
			if errors.Is(err, monitor.ErrNoUSBSerial) {
				fmt.Fprintln(cmd.ErrOrStderr(), "no USB serial ports found")
				return nil
			}
			if err != nil {
				return err
			}

			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})
}
