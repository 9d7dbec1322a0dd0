package steering

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lf "github.com/calvinmclean/linefollower"
)

func TestLoadCalibration(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		check       func(*testing.T, Calibration)
		expectedErr string
	}{
		{
			"Empty",
			"",
			func(t *testing.T, c Calibration) {
				assert.Equal(t, DefaultCalibration(), c)
			},
			"",
		},
		{
			"PartialKeepsDefaults",
			`
SoftLeft:
  left: {direction: backward, duty: 5}
  right: {direction: forward, duty: 9}
`,
			func(t *testing.T, c Calibration) {
				assert.Equal(t, lf.DriveCommand{Left: back(5), Right: fwd(9)}, c.Command(lf.SoftLeft))
				assert.Equal(t, DefaultCalibration().Command(lf.Centered), c.Command(lf.Centered))
			},
			"",
		},
		{
			"CaseInsensitiveAndShortDirections",
			`
lostright:
  left: {direction: F, duty: 2}
  right: {direction: b, duty: 8}
`,
			func(t *testing.T, c Calibration) {
				assert.Equal(t, lf.DriveCommand{Left: fwd(2), Right: back(8)}, c.Command(lf.LostRight))
			},
			"",
		},
		{
			"UnknownState",
			"Spinning:\n  left: {direction: forward, duty: 1}\n  right: {direction: forward, duty: 1}\n",
			nil,
			`error decoding calibration: unknown steering state "Spinning"`,
		},
		{
			"InvalidDirection",
			"Centered:\n  left: {direction: up, duty: 1}\n  right: {direction: forward, duty: 1}\n",
			nil,
			`error decoding calibration: Centered left: invalid direction "up"`,
		},
		{
			"DutyAbovePeriod",
			"Centered:\n  left: {direction: forward, duty: 91}\n  right: {direction: forward, duty: 1}\n",
			nil,
			"Centered Left duty 91 > period 90: duty out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadCalibration(strings.NewReader(tt.input), lf.DefaultPeriod)
			if tt.expectedErr != "" {
				require.EqualError(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestLoadCalibrationDutyError(t *testing.T) {
	_, err := LoadCalibration(strings.NewReader("Centered:\n  left: {direction: forward, duty: 50}\n  right: {direction: forward, duty: 1}\n"), 40)
	assert.True(t, errors.Is(err, ErrDutyOutOfRange))
}

func TestWriteCalibration(t *testing.T) {
	c := DefaultCalibration()
	c.Set(lf.HardLeft, lf.Left, back(12))

	var buf bytes.Buffer
	require.NoError(t, WriteCalibration(&buf, c))
	assert.Contains(t, buf.String(), "HardLeft:\n  left:\n    direction: backward\n    duty: 12\n")

	loaded, err := LoadCalibration(&buf, lf.DefaultPeriod)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}
