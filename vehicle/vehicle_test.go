package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/steering"
)

type fakeBoard struct {
	sensors    lf.SensorReading
	lineJumper bool
	haltJumper bool

	enable    [2]bool
	direction [2][2]bool

	sensorReads     int
	directionWrites int
	enableWrites    int
}

func (b *fakeBoard) ReadSensor(i int) bool {
	b.sensorReads++
	return b.sensors[i]
}

func (b *fakeBoard) SetEnable(side lf.Side, on bool) {
	b.enableWrites++
	b.enable[side] = on
}

func (b *fakeBoard) SetDirection(side lf.Side, a, c bool) {
	b.directionWrites++
	b.direction[side] = [2]bool{a, c}
}

func (b *fakeBoard) LineJumper() bool { return b.lineJumper }
func (b *fakeBoard) HaltJumper() bool { return b.haltJumper }

func newVehicle(t *testing.T, board *fakeBoard, observer Observer) *Vehicle {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Observer = observer
	v, err := New(board, cfg)
	require.NoError(t, err)
	return v
}

func TestNew(t *testing.T) {
	t.Run("NilBoard", func(t *testing.T) {
		_, err := New(nil, DefaultConfig())
		assert.True(t, errors.Is(err, ErrNilBoard))
	})

	t.Run("InvalidCalibration", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Calibration.Set(lf.Centered, lf.Left, lf.MotorCommand{Duty: 100})
		_, err := New(&fakeBoard{}, cfg)
		assert.True(t, errors.Is(err, steering.ErrDutyOutOfRange))
	})

	t.Run("InvalidPWM", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PWM.RightOffset = 90
		_, err := New(&fakeBoard{}, cfg)
		assert.EqualError(t, err, "error creating pwm generator: counter offset must be less than the period")
	})

	t.Run("NothingReadBeforeBoot", func(t *testing.T) {
		board := &fakeBoard{}
		_ = newVehicle(t, board, nil)
		assert.Zero(t, board.sensorReads)
		assert.Zero(t, board.directionWrites)
	})
}

func TestBoot(t *testing.T) {
	tests := []struct {
		name       string
		lineJumper bool
		haltJumper bool
		running    bool
		polarity   lf.LinePolarity
	}{
		{"DarkLine", false, false, true, lf.ActiveHigh},
		{"LightLine", true, false, true, lf.ActiveLow},
		{"Halt", false, true, false, lf.ActiveHigh},
		{"HaltLightLine", true, true, false, lf.ActiveHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVehicle(t, &fakeBoard{lineJumper: tt.lineJumper, haltJumper: tt.haltJumper}, nil)
			assert.Equal(t, tt.running, v.Boot())
			assert.Equal(t, !tt.running, v.Halted())
			assert.Equal(t, tt.polarity, v.Polarity())

			// jumpers are only read once
			assert.Equal(t, tt.running, v.Boot())
		})
	}
}

func TestHaltNeverSensesOrDrives(t *testing.T) {
	tests := []struct {
		name string
		boot bool
	}{
		{"Booted", true},
		{"StepWithoutBoot", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &fakeBoard{haltJumper: true}
			board.sensors[lf.CenterSensor] = true

			var observed int
			v := newVehicle(t, board, ObserverFunc(func(Transition) { observed++ }))
			if tt.boot {
				require.False(t, v.Boot())
			}

			for range 100 {
				v.Step()
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			v.Run(ctx)

			assert.True(t, v.Halted())
			assert.Zero(t, board.sensorReads)
			assert.Zero(t, board.directionWrites)
			assert.Zero(t, observed)
			assert.Equal(t, lf.Centered, v.State())
		})
	}
}

func TestStepBootsFirst(t *testing.T) {
	board := &fakeBoard{lineJumper: true}
	v := newVehicle(t, board, nil)

	tr := v.Step()
	assert.Equal(t, lf.ActiveLow, v.Polarity())
	assert.Equal(t, lf.SensorCount, board.sensorReads)
	// every raw sensor reads low, which is on the line for a light line
	assert.Equal(t, lf.Centered, tr.To)
}

func TestStep(t *testing.T) {
	board := &fakeBoard{}
	var transitions []Transition
	v := newVehicle(t, board, ObserverFunc(func(tr Transition) { transitions = append(transitions, tr) }))
	require.True(t, v.Boot())

	board.sensors = lf.SensorReading{true}
	tr := v.Step()
	assert.Equal(t, lf.Centered, tr.From)
	assert.Equal(t, lf.LostLeft, tr.To)
	assert.True(t, tr.Changed())
	assert.Equal(t, lf.SensorReading{true}, tr.Reading)
	assert.Equal(t, lf.DriveCommand{
		Left:  lf.MotorCommand{Direction: lf.Backward, Duty: 7},
		Right: lf.MotorCommand{Direction: lf.Forward, Duty: 4},
	}, tr.Command)

	// backward is (true, false) and forward is (false, true)
	assert.Equal(t, [2]bool{true, false}, board.direction[lf.Left])
	assert.Equal(t, [2]bool{false, true}, board.direction[lf.Right])
	assert.Equal(t, lf.SensorCount, board.sensorReads)

	// the line disappears: the state and command are held
	board.sensors = lf.SensorReading{}
	tr = v.Step()
	assert.Equal(t, lf.LostLeft, tr.To)
	assert.False(t, tr.Changed())
	assert.Equal(t, lf.MotorCommand{Direction: lf.Forward, Duty: 4}, v.Command(lf.Right))

	require.Len(t, transitions, 2)
}

func TestLightLinePolarity(t *testing.T) {
	board := &fakeBoard{lineJumper: true}
	v := newVehicle(t, board, nil)
	require.True(t, v.Boot())

	// every sensor sees the dark background except the one over the light line
	for i := range board.sensors {
		board.sensors[i] = true
	}
	board.sensors[4] = false

	tr := v.Step()
	assert.Equal(t, lf.SoftRight, tr.To)
}

func TestTick(t *testing.T) {
	board := &fakeBoard{}
	v := newVehicle(t, board, nil)
	require.True(t, v.Boot())

	board.sensors[lf.CenterSensor] = true
	v.Step()

	high := [2]int{}
	for range int(v.Period()) {
		v.Tick()
		for _, side := range []lf.Side{lf.Left, lf.Right} {
			if board.enable[side] {
				high[side]++
			}
		}
	}

	// Centered drives both sides at 7 which is 8 ticks per window
	assert.Equal(t, [2]int{8, 8}, high)
	assert.Equal(t, 2*int(v.Period()), board.enableWrites)
}

func TestRunStopsOnCancel(t *testing.T) {
	board := &fakeBoard{}
	board.sensors[2] = true
	v := newVehicle(t, board, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	v.Run(ctx)

	assert.False(t, v.Halted())
	assert.Equal(t, lf.SoftLeft, v.State())
	assert.Positive(t, board.sensorReads)
}
