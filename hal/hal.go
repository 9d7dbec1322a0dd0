// Package hal is the boundary between the control code and the pins of a specific board.
// Implementations live in the firmware (real pins) and in the simulator (memory).
package hal

import "github.com/calvinmclean/linefollower"

// SensorReader samples the raw level of one line sensor. Index 0 is the leftmost sensor
type SensorReader interface {
	ReadSensor(index int) bool
}

// EnableWriter drives both enable lines of one motor side together: true energizes the bridge, false lets it coast
type EnableWriter interface {
	SetEnable(side linefollower.Side, on bool)
}

// DirectionWriter sets the two direction-selector lines of one motor side
type DirectionWriter interface {
	SetDirection(side linefollower.Side, a, b bool)
}

// JumperReader reads the configuration jumpers. They are only read once at boot
type JumperReader interface {
	// LineJumper is true when the board is configured for a light line on a dark background
	LineJumper() bool
	// HaltJumper is true when the board is configured to stay idle after power-up
	HaltJumper() bool
}

// Board is every signal the controller uses
type Board interface {
	SensorReader
	EnableWriter
	DirectionWriter
	JumperReader
}

// Polarity resolves the line polarity from the jumper
func Polarity(j JumperReader) linefollower.LinePolarity {
	if j.LineJumper() {
		return linefollower.ActiveLow
	}
	return linefollower.ActiveHigh
}

// Sample reads every sensor and applies the polarity
func Sample(r SensorReader, p linefollower.LinePolarity) linefollower.SensorReading {
	var reading linefollower.SensorReading
	for i := range reading {
		reading[i] = p.OnLine(r.ReadSensor(i))
	}
	return reading
}
