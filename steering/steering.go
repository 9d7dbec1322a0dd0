package steering

import (
	"errors"
	"fmt"

	lf "github.com/calvinmclean/linefollower"
)

// ErrDutyOutOfRange is returned when a calibration asks for more ticks than the PWM period has
var ErrDutyOutOfRange = errors.New("duty out of range")

// priority is the order sensors are checked in. The center sensor always wins, then the search moves outwards
// alternating left and right
var priority = [lf.SensorCount]struct {
	sensor int
	state  lf.SteeringState
}{
	{lf.CenterSensor, lf.Centered},
	{lf.CenterSensor - 1, lf.SoftLeft},
	{lf.CenterSensor + 1, lf.SoftRight},
	{lf.CenterSensor - 2, lf.HardLeft},
	{lf.CenterSensor + 2, lf.HardRight},
	{lf.CenterSensor - 3, lf.LostLeft},
	{lf.CenterSensor + 3, lf.LostRight},
}

// Classify maps a reading to a state. The second return is false when no sensor sees the line
func Classify(r lf.SensorReading) (lf.SteeringState, bool) {
	for _, p := range priority {
		if r[p.sensor] {
			return p.state, true
		}
	}
	return lf.Centered, false
}

// Next returns the state following current for the reading. A reading where no sensor sees the line keeps the current
// state so a gap in the line does not snap the vehicle to a default
func Next(current lf.SteeringState, r lf.SensorReading) lf.SteeringState {
	s, ok := Classify(r)
	if !ok {
		return current
	}
	return s
}

// Calibration is the command issued for each SteeringState
type Calibration [len(lf.SteeringStates)]lf.DriveCommand

// DefaultCalibration returns the tuned defaults for a 90 tick period
func DefaultCalibration() Calibration {
	fwd := func(d uint8) lf.MotorCommand { return lf.MotorCommand{Direction: lf.Forward, Duty: d} }
	back := func(d uint8) lf.MotorCommand { return lf.MotorCommand{Direction: lf.Backward, Duty: d} }

	var c Calibration
	c[lf.Centered] = lf.DriveCommand{Left: fwd(7), Right: fwd(7)}
	c[lf.SoftLeft] = lf.DriveCommand{Left: back(3), Right: fwd(7)}
	c[lf.SoftRight] = lf.DriveCommand{Left: fwd(7), Right: back(3)}
	c[lf.HardLeft] = lf.DriveCommand{Left: back(7), Right: fwd(7)}
	c[lf.HardRight] = lf.DriveCommand{Left: fwd(7), Right: back(7)}
	// the line is almost out of the array, so the outer motor slows down for a wider recovery arc
	c[lf.LostLeft] = lf.DriveCommand{Left: back(7), Right: fwd(4)}
	c[lf.LostRight] = lf.DriveCommand{Left: fwd(4), Right: back(7)}
	return c
}

// Command returns the drive command for a state
func (c Calibration) Command(s lf.SteeringState) lf.DriveCommand {
	if int(s) >= len(c) {
		return lf.DriveCommand{}
	}
	return c[s]
}

// Set retunes one motor of one state
func (c *Calibration) Set(s lf.SteeringState, side lf.Side, cmd lf.MotorCommand) {
	if int(s) >= len(c) {
		return
	}
	if side == lf.Right {
		c[s].Right = cmd
		return
	}
	c[s].Left = cmd
}

// Validate checks every duty fits in period
func (c Calibration) Validate(period uint8) error {
	for _, s := range lf.SteeringStates {
		cmd := c[s]
		for _, side := range []lf.Side{lf.Left, lf.Right} {
			if d := cmd.Side(side).Duty; d > period {
				return fmt.Errorf("%s %s duty %d > period %d: %w", s, side, d, period, ErrDutyOutOfRange)
			}
		}
	}
	return nil
}

// Machine holds the current steering state between main loop iterations
type Machine struct {
	state       lf.SteeringState
	calibration Calibration
}

// New creates a Machine starting in the Centered state
func New(c Calibration) *Machine {
	return &Machine{state: lf.Centered, calibration: c}
}

// Step samples the new state and returns the command to issue for it
func (m *Machine) Step(r lf.SensorReading) (lf.SteeringState, lf.DriveCommand) {
	m.state = Next(m.state, r)
	return m.state, m.calibration.Command(m.state)
}

// State returns the state held since the last Step
func (m *Machine) State() lf.SteeringState {
	return m.state
}

// Calibration exposes the command table so it can be retuned at runtime
func (m *Machine) Calibration() *Calibration {
	return &m.calibration
}
