package motor

import (
	"sync"
	"sync/atomic"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/hal"
)

// Driver translates MotorCommands into direction line patterns and holds the duty read by the PWM generator.
//
// Each side's (direction, duty) pair is packed into one word so the tick handler never sees half of an update, and the
// direction lines are written in the same critical section as the packed word.
type Driver struct {
	lines hal.DirectionWriter
	guard sync.Locker

	commands [2]atomic.Uint32
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// New creates a Driver. guard must exclude the tick handler, for example by disabling interrupts. A nil guard is only
// correct when the tick handler cannot preempt the caller
func New(lines hal.DirectionWriter, guard sync.Locker) *Driver {
	if guard == nil {
		guard = noopLocker{}
	}
	return &Driver{lines: lines, guard: guard}
}

// Lines returns the direction-selector pattern for a direction
func Lines(d lf.Direction) (a, b bool) {
	if d == lf.Backward {
		return true, false
	}
	return false, true
}

func pack(c lf.MotorCommand) uint32 {
	return uint32(c.Direction)<<8 | uint32(c.Duty)
}

func unpack(v uint32) lf.MotorCommand {
	return lf.MotorCommand{Direction: lf.Direction(v >> 8), Duty: uint8(v)}
}

// Set writes one motor's direction lines and duty together
func (d *Driver) Set(side lf.Side, c lf.MotorCommand) {
	a, b := Lines(c.Direction)

	d.guard.Lock()
	d.lines.SetDirection(side, a, b)
	d.commands[side].Store(pack(c))
	d.guard.Unlock()
}

// Apply sets both motors
func (d *Driver) Apply(c lf.DriveCommand) {
	d.Set(lf.Left, c.Left)
	d.Set(lf.Right, c.Right)
}

// Command returns the last command written for a side
func (d *Driver) Command(side lf.Side) lf.MotorCommand {
	return unpack(d.commands[side].Load())
}

// Duty implements pwm.DutySource. It is safe to call from the tick handler
func (d *Driver) Duty(side lf.Side) uint8 {
	return uint8(d.commands[side].Load())
}
