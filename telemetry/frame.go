// Package telemetry encodes the steering state as one text line so it can be printed by the firmware and parsed by the
// host.
//
//	T <state> <sensors> L<dir><duty> R<dir><duty> [@<millis>]
//
// For example "T M 0001000 LF7 RF7 @1520".
package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	lf "github.com/calvinmclean/linefollower"
)

// Prefix starts every frame line
const Prefix = "T "

// ErrMalformedFrame is returned for a line that starts with Prefix but cannot be decoded
var ErrMalformedFrame = errors.New("malformed telemetry frame")

// Frame is one telemetry sample
type Frame struct {
	State   lf.SteeringState
	Reading lf.SensorReading
	Command lf.DriveCommand
	// Elapsed is the time since the vehicle started. Zero when the sender does not track time
	Elapsed time.Duration
}

// IsFrame reports whether the line is meant to be a frame
func IsFrame(line string) bool {
	return strings.HasPrefix(line, Prefix)
}

// Append encodes f into buf without the trailing newline. It does not allocate when buf has room
func Append(buf []byte, f Frame) []byte {
	buf = append(buf, Prefix...)
	buf = append(buf, f.State.Code(), ' ')
	buf = f.Reading.Append(buf)
	buf = appendMotor(buf, lf.Left, f.Command.Left)
	buf = appendMotor(buf, lf.Right, f.Command.Right)
	if f.Elapsed > 0 {
		buf = append(buf, ' ', '@')
		buf = strconv.AppendInt(buf, f.Elapsed.Milliseconds(), 10)
	}
	return buf
}

func appendMotor(buf []byte, side lf.Side, m lf.MotorCommand) []byte {
	buf = append(buf, ' ', side.Code(), m.Direction.Code())
	return strconv.AppendUint(buf, uint64(m.Duty), 10)
}

// String encodes the frame
func (f Frame) String() string {
	return string(Append(nil, f))
}

// Parse decodes a line produced by Append. Surrounding whitespace is ignored
func Parse(line string) (Frame, error) {
	line = strings.TrimSpace(line)
	if !IsFrame(line) {
		return Frame{}, fmt.Errorf("%w: missing prefix", ErrMalformedFrame)
	}

	fields := strings.Fields(line[len(Prefix):])
	if len(fields) != 4 && len(fields) != 5 {
		return Frame{}, fmt.Errorf("%w: expected 4 or 5 fields, got %d", ErrMalformedFrame, len(fields))
	}

	var f Frame
	if len(fields[0]) != 1 {
		return Frame{}, fmt.Errorf("%w: invalid state %q", ErrMalformedFrame, fields[0])
	}
	state, ok := lf.ParseSteeringState(fields[0][0])
	if !ok {
		return Frame{}, fmt.Errorf("%w: invalid state %q", ErrMalformedFrame, fields[0])
	}
	f.State = state

	f.Reading, ok = lf.ParseSensorReading(fields[1])
	if !ok {
		return Frame{}, fmt.Errorf("%w: invalid sensors %q", ErrMalformedFrame, fields[1])
	}

	var err error
	f.Command.Left, err = parseMotor(fields[2], lf.Left)
	if err != nil {
		return Frame{}, err
	}
	f.Command.Right, err = parseMotor(fields[3], lf.Right)
	if err != nil {
		return Frame{}, err
	}

	if len(fields) == 5 {
		ts, ok := strings.CutPrefix(fields[4], "@")
		if !ok {
			return Frame{}, fmt.Errorf("%w: invalid elapsed %q", ErrMalformedFrame, fields[4])
		}
		ms, err := strconv.ParseInt(ts, 10, 64)
		if err != nil || ms < 0 {
			return Frame{}, fmt.Errorf("%w: invalid elapsed %q", ErrMalformedFrame, fields[4])
		}
		f.Elapsed = time.Duration(ms) * time.Millisecond
	}

	return f, nil
}

func parseMotor(field string, side lf.Side) (lf.MotorCommand, error) {
	if len(field) < 3 || field[0] != side.Code() {
		return lf.MotorCommand{}, fmt.Errorf("%w: invalid %s motor %q", ErrMalformedFrame, side, field)
	}
	dir, ok := lf.ParseDirection(field[1])
	if !ok {
		return lf.MotorCommand{}, fmt.Errorf("%w: invalid %s direction %q", ErrMalformedFrame, side, field)
	}
	duty, err := strconv.ParseUint(field[2:], 10, 8)
	if err != nil {
		return lf.MotorCommand{}, fmt.Errorf("%w: invalid %s duty %q", ErrMalformedFrame, side, field)
	}
	return lf.MotorCommand{Direction: dir, Duty: uint8(duty)}, nil
}
