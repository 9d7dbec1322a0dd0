package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/console"
	"github.com/calvinmclean/linefollower/monitor"
)

func init() {
	var (
		port string
		baud int
	)

	cmd := &cobra.Command{
		Use:   "tune <state> <side> <direction> <duty>",
		Short: "Change one calibration entry on the running firmware",
		Example: `  linefollower tune l L B 3
  linefollower tune M R F 7`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, side, c, err := parseTuneArgs(args)
			if err != nil {
				return err
			}

			sp, err := monitor.OpenSerial(port, baud)
			if err != nil {
				return err
			}
			defer sp.Close()

			_, err = sp.Write(console.AppendTune(nil, state, side, c))
			if err != nil {
				return fmt.Errorf("error writing to serial port: %w", err)
			}
			return nil
		},
	}

	cfg := loadConfig()
	cmd.Flags().StringVar(&port, "port", cfg.SerialPort, "Serial port of the firmware. Empty picks the first USB port")
	cmd.Flags().IntVar(&baud, "baud", cfg.BaudRate, "Baud rate")

	rootCmd.AddCommand(cmd)
}

func parseTuneArgs(args []string) (lf.SteeringState, lf.Side, lf.MotorCommand, error) {
	var c lf.MotorCommand
	if len(args[0]) != 1 || len(args[1]) != 1 || len(args[2]) != 1 {
		return 0, 0, c, fmt.Errorf("expected single character codes: %w", console.ErrInvalidInput)
	}

	state, ok := lf.ParseSteeringState(args[0][0])
	if !ok {
		return 0, 0, c, fmt.Errorf("unknown state %q: %w", args[0], console.ErrInvalidInput)
	}
	side, ok := lf.ParseSide(args[1][0])
	if !ok {
		return 0, 0, c, fmt.Errorf("unknown side %q: %w", args[1], console.ErrInvalidInput)
	}
	c.Direction, ok = lf.ParseDirection(args[2][0])
	if !ok {
		return 0, 0, c, fmt.Errorf("unknown direction %q: %w", args[2], console.ErrInvalidInput)
	}

	duty, err := strconv.Atoi(args[3])
	if err != nil || duty < 0 || duty > lf.DefaultPeriod {
		return 0, 0, c, fmt.Errorf("invalid duty %q: %w", args[3], console.ErrInvalidInput)
	}
	c.Duty = uint8(duty)

	return state, side, c, nil
}
