// Package sim runs the line follower on the host. Board replaces the pins, Track moves the line under the sensors in
// response to the motor commands and Interrupt stands in for the hardware timer.
package sim

import (
	"sync"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/hal"
)

// Board is an in-memory hal.Board. Sensor levels are raw: polarity is applied by the caller
type Board struct {
	mtx sync.Mutex

	sensors    [lf.SensorCount]bool
	lineJumper bool
	haltJumper bool

	enable    [2]bool
	direction [2][2]bool

	highTicks [2]uint64
	ticks     [2]uint64

	sensorReads     int
	directionWrites int
}

var _ hal.Board = (*Board)(nil)

// NewBoard creates a Board with both jumpers open: dark line, run mode
func NewBoard() *Board {
	return &Board{}
}

// SetJumpers sets the configuration jumpers read at boot
func (b *Board) SetJumpers(lightLine, halt bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.lineJumper = lightLine
	b.haltJumper = halt
}

// SetSensors sets all raw sensor levels
func (b *Board) SetSensors(levels [lf.SensorCount]bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.sensors = levels
}

// ReadSensor implements hal.SensorReader
func (b *Board) ReadSensor(index int) bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.sensorReads++
	return b.sensors[index]
}

// LineJumper implements hal.JumperReader
func (b *Board) LineJumper() bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.lineJumper
}

// HaltJumper implements hal.JumperReader
func (b *Board) HaltJumper() bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.haltJumper
}

// SetEnable implements hal.EnableWriter and counts the ticks each side spends energized
func (b *Board) SetEnable(side lf.Side, on bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.enable[side] = on
	b.ticks[side]++
	if on {
		b.highTicks[side]++
	}
}

// SetDirection implements hal.DirectionWriter
func (b *Board) SetDirection(side lf.Side, a, c bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.direction[side] = [2]bool{a, c}
	b.directionWrites++
}

// Enabled returns the last enable level written for side
func (b *Board) Enabled(side lf.Side) bool {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.enable[side]
}

// Direction returns the direction lines last written for side
func (b *Board) Direction(side lf.Side) (a, c bool) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.direction[side][0], b.direction[side][1]
}

// HighTicks returns how many enable writes for side were high, and how many writes there were in total
func (b *Board) HighTicks(side lf.Side) (high, total uint64) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.highTicks[side], b.ticks[side]
}

// ResetTicks clears the enable counters
func (b *Board) ResetTicks() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.highTicks = [2]uint64{}
	b.ticks = [2]uint64{}
}

// SensorReads is the number of ReadSensor calls
func (b *Board) SensorReads() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.sensorReads
}

// DirectionWrites is the number of SetDirection calls
func (b *Board) DirectionWrites() int {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.directionWrites
}
