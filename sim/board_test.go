package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/hal"
)

func TestBoard(t *testing.T) {
	b := NewBoard()
	assert.False(t, b.LineJumper())
	assert.False(t, b.HaltJumper())

	b.SetJumpers(true, true)
	assert.True(t, b.LineJumper())
	assert.True(t, b.HaltJumper())
	assert.Equal(t, lf.ActiveLow, hal.Polarity(b))

	b.SetSensors([lf.SensorCount]bool{false, true})
	assert.Equal(t, lf.SensorReading{true, false, true, true, true, true, true}, hal.Sample(b, lf.ActiveLow))
	assert.Equal(t, lf.SensorCount, b.SensorReads())

	b.SetDirection(lf.Right, true, false)
	a, c := b.Direction(lf.Right)
	assert.True(t, a)
	assert.False(t, c)
	assert.Equal(t, 1, b.DirectionWrites())

	b.SetEnable(lf.Left, true)
	b.SetEnable(lf.Left, false)
	b.SetEnable(lf.Left, true)
	assert.True(t, b.Enabled(lf.Left))
	assert.False(t, b.Enabled(lf.Right))

	high, total := b.HighTicks(lf.Left)
	assert.Equal(t, uint64(2), high)
	assert.Equal(t, uint64(3), total)

	b.ResetTicks()
	high, total = b.HighTicks(lf.Left)
	assert.Zero(t, high)
	assert.Zero(t, total)
}
