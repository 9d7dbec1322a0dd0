package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lf "github.com/calvinmclean/linefollower"
)

func TestAppend(t *testing.T) {
	tests := []struct {
		name     string
		frame    Frame
		expected string
	}{
		{
			"Centered",
			Frame{
				State:   lf.Centered,
				Reading: lf.SensorReading{false, false, false, true},
				Command: lf.DriveCommand{
					Left:  lf.MotorCommand{Direction: lf.Forward, Duty: 7},
					Right: lf.MotorCommand{Direction: lf.Forward, Duty: 7},
				},
				Elapsed: 1520 * time.Millisecond,
			},
			"T M 0001000 LF7 RF7 @1520",
		},
		{
			"LostRightWithoutElapsed",
			Frame{
				State:   lf.LostRight,
				Reading: lf.SensorReading{false, false, false, false, false, false, true},
				Command: lf.DriveCommand{
					Left:  lf.MotorCommand{Direction: lf.Forward, Duty: 4},
					Right: lf.MotorCommand{Direction: lf.Backward, Duty: 7},
				},
			},
			"T > 0000001 LF4 RB7",
		},
		{
			"TwoDigitDuty",
			Frame{
				State: lf.SoftLeft,
				Command: lf.DriveCommand{
					Left:  lf.MotorCommand{Direction: lf.Backward, Duty: 90},
					Right: lf.MotorCommand{Direction: lf.Forward, Duty: 0},
				},
			},
			"T l 0000000 LB90 RF0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.frame.String())

			parsed, err := Parse(tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.frame, parsed)
		})
	}
}

func TestAppendDoesNotAllocate(t *testing.T) {
	buf := make([]byte, 0, 64)
	f := Frame{State: lf.HardRight, Elapsed: time.Hour}

	allocs := testing.AllocsPerRun(100, func() {
		buf = Append(buf[:0], f)
	})
	assert.Zero(t, allocs)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		expected    Frame
		expectedErr string
	}{
		{
			"SurroundingWhitespace",
			"  T R 0000010 LF7 RB7 @3\r\n",
			Frame{
				State:   lf.HardRight,
				Reading: lf.SensorReading{false, false, false, false, false, true, false},
				Command: lf.DriveCommand{
					Left:  lf.MotorCommand{Direction: lf.Forward, Duty: 7},
					Right: lf.MotorCommand{Direction: lf.Backward, Duty: 7},
				},
				Elapsed: 3 * time.Millisecond,
			},
			"",
		},
		{"NoPrefix", "[-] verbose=true", Frame{}, "malformed telemetry frame: missing prefix"},
		{"TooFewFields", "T M 0001000 LF7", Frame{}, "malformed telemetry frame: expected 4 or 5 fields, got 3"},
		{"TooManyFields", "T M 0001000 LF7 RF7 @1 x", Frame{}, "malformed telemetry frame: expected 4 or 5 fields, got 6"},
		{"UnknownState", "T X 0001000 LF7 RF7", Frame{}, `malformed telemetry frame: invalid state "X"`},
		{"LongState", "T MM 0001000 LF7 RF7", Frame{}, `malformed telemetry frame: invalid state "MM"`},
		{"ShortSensors", "T M 000100 LF7 RF7", Frame{}, `malformed telemetry frame: invalid sensors "000100"`},
		{"BadSensor", "T M 0002000 LF7 RF7", Frame{}, `malformed telemetry frame: invalid sensors "0002000"`},
		{"SidesSwapped", "T M 0001000 RF7 LF7", Frame{}, `malformed telemetry frame: invalid Left motor "RF7"`},
		{"BadDirection", "T M 0001000 LF7 RX7", Frame{}, `malformed telemetry frame: invalid Right direction "RX7"`},
		{"DutyOverflow", "T M 0001000 LF700 RF7", Frame{}, `malformed telemetry frame: invalid Left duty "LF700"`},
		{"ElapsedWithoutAt", "T M 0001000 LF7 RF7 15", Frame{}, `malformed telemetry frame: invalid elapsed "15"`},
		{"NegativeElapsed", "T M 0001000 LF7 RF7 @-1", Frame{}, `malformed telemetry frame: invalid elapsed "@-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.line)
			if tt.expectedErr != "" {
				require.EqualError(t, err, tt.expectedErr)
				assert.True(t, errors.Is(err, ErrMalformedFrame))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestIsFrame(t *testing.T) {
	assert.True(t, IsFrame("T M 0001000 LF7 RF7"))
	assert.False(t, IsFrame("T"))
	assert.False(t, IsFrame("error: invalid input"))
}
