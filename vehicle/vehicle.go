// Package vehicle wires the sensors, the steering state machine, the motor driver and the PWM generator into the
// main control loop and the timer tick.
package vehicle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/hal"
	"github.com/calvinmclean/linefollower/motor"
	"github.com/calvinmclean/linefollower/pwm"
	"github.com/calvinmclean/linefollower/steering"
)

// ErrNilBoard is returned by New without a Board
var ErrNilBoard = errors.New("board is required")

// Transition is reported to an Observer after a main loop iteration
type Transition struct {
	From    lf.SteeringState
	To      lf.SteeringState
	Reading lf.SensorReading
	Command lf.DriveCommand
}

// Changed reports whether the state moved
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Observer is called synchronously from the main loop and must return quickly
type Observer interface {
	Observe(Transition)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Transition)

// Observe implements Observer
func (f ObserverFunc) Observe(t Transition) { f(t) }

// Config has everything needed besides the Board
type Config struct {
	PWM         pwm.Config
	Calibration steering.Calibration
	// Guard excludes the tick handler while a motor command is written
	Guard sync.Locker
	// Observer receives every iteration. Optional
	Observer Observer
}

// DefaultConfig uses the reference PWM window and calibration
func DefaultConfig() Config {
	return Config{
		PWM:         pwm.DefaultConfig(),
		Calibration: steering.DefaultCalibration(),
	}
}

// Vehicle is the line follower
type Vehicle struct {
	board    hal.Board
	machine  *steering.Machine
	driver   *motor.Driver
	pwm      *pwm.Generator
	observer Observer

	polarity lf.LinePolarity
	halted   bool
	booted   bool
}

// New creates a Vehicle. Nothing is read from the board until Boot
func New(board hal.Board, cfg Config) (*Vehicle, error) {
	if board == nil {
		return nil, ErrNilBoard
	}

	period := cfg.PWM.Period
	if period == 0 {
		period = lf.DefaultPeriod
	}
	if err := cfg.Calibration.Validate(period); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}

	driver := motor.New(board, cfg.Guard)
	gen, err := pwm.New(cfg.PWM, driver, board)
	if err != nil {
		return nil, fmt.Errorf("error creating pwm generator: %w", err)
	}

	return &Vehicle{
		board:    board,
		machine:  steering.New(cfg.Calibration),
		driver:   driver,
		pwm:      gen,
		observer: cfg.Observer,
	}, nil
}

// Boot reads the jumpers. It returns false when the halt jumper is set, and the Vehicle will never sense or drive
func (v *Vehicle) Boot() bool {
	if v.booted {
		return !v.halted
	}
	v.booted = true

	if v.board.HaltJumper() {
		v.halted = true
		return false
	}
	v.polarity = hal.Polarity(v.board)
	return true
}

// Step runs one iteration of the main loop: sense, decide, command. It boots the Vehicle first if needed and does
// nothing on a halted Vehicle
func (v *Vehicle) Step() Transition {
	if !v.Boot() {
		s := v.machine.State()
		return Transition{From: s, To: s}
	}

	reading := hal.Sample(v.board, v.polarity)

	from := v.machine.State()
	to, cmd := v.machine.Step(reading)
	v.driver.Apply(cmd)

	t := Transition{From: from, To: to, Reading: reading, Command: cmd}
	if v.observer != nil {
		v.observer.Observe(t)
	}
	return t
}

// Run boots and then loops until ctx is done. When the halt jumper is set it only waits for ctx
func (v *Vehicle) Run(ctx context.Context) {
	if !v.Boot() {
		<-ctx.Done()
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		v.Step()
	}
}

// Tick is the timer interrupt handler
func (v *Vehicle) Tick() {
	v.pwm.Tick()
}

// Halted reports whether Boot found the halt jumper set
func (v *Vehicle) Halted() bool {
	return v.halted
}

// Polarity is the line polarity read at Boot
func (v *Vehicle) Polarity() lf.LinePolarity {
	return v.polarity
}

// State is the current steering state
func (v *Vehicle) State() lf.SteeringState {
	return v.machine.State()
}

// Command returns the last command written for a side
func (v *Vehicle) Command(side lf.Side) lf.MotorCommand {
	return v.driver.Command(side)
}

// Calibration returns the live command table
func (v *Vehicle) Calibration() *steering.Calibration {
	return v.machine.Calibration()
}

// Counter returns the PWM counter for side. See pwm.Generator.Counter
func (v *Vehicle) Counter(side lf.Side) uint8 {
	return v.pwm.Counter(side)
}

// Period is the PWM window in ticks
func (v *Vehicle) Period() uint8 {
	return v.pwm.Period()
}
