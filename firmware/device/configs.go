//go:build rp2040

package device

import (
	"machine"
	"time"
)

// MotorConfig has the H-bridge pins for one side
type MotorConfig struct {
	// Enable lines are driven together by the PWM tick
	Enable [2]machine.Pin
	DirA   machine.Pin
	DirB   machine.Pin
}

// JumperConfig has the configuration jumpers. Both pins are pulled up, and a jumper to ground selects run and a
// dark line
type JumperConfig struct {
	LineJumper machine.Pin
	HaltJumper machine.Pin
}

// BoardConfig maps every signal to a pin
type BoardConfig struct {
	// Sensors are listed left to right
	Sensors [7]machine.Pin
	Left    MotorConfig
	Right   MotorConfig
	Jumpers JumperConfig
}

// TimerConfig sets up the hardware alarm that drives the PWM tick
type TimerConfig struct {
	Interval time.Duration
}
