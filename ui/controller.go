package ui

import (
	"io"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/console"
)

// deviceWrapper sends console commands to the firmware
type deviceWrapper struct {
	writer io.Writer
}

func (c *deviceWrapper) Debug() error {
	_, err := c.writer.Write([]byte{console.DebugCommand.Flag})
	return err
}

func (c *deviceWrapper) Verbose() error {
	_, err := c.writer.Write([]byte{console.VerboseCommand.Flag})
	return err
}

func (c *deviceWrapper) Tune(s lf.SteeringState, side lf.Side, cmd lf.MotorCommand) error {
	_, err := c.writer.Write(console.AppendTune(nil, s, side, cmd))
	return err
}
