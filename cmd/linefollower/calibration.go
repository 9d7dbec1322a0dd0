package main

import (
	"github.com/spf13/cobra"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/steering"
)

func init() {
	var check string

	cmd := &cobra.Command{
		Use:   "calibration",
		Short: "Print the default calibration as YAML, or validate a calibration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := steering.DefaultCalibration()
			if check != "" {
				var err error
				c, err = readCalibration(check, lf.DefaultPeriod)
				if err != nil {
					return err
				}
			}
			return steering.WriteCalibration(cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "Load and validate this file, then print the merged result")

	rootCmd.AddCommand(cmd)
}
