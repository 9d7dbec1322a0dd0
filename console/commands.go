// Package console reads single-byte commands from the serial port without blocking the control loop
package console

import (
	"errors"
	"io"

	lf "github.com/calvinmclean/linefollower"
)

// ErrInvalidInput is returned when a command's input bytes cannot be decoded
var ErrInvalidInput = errors.New("invalid input")

// inputError names the field that could not be decoded and wraps ErrInvalidInput
type inputError struct {
	field string
	value string
}

func (e *inputError) Error() string {
	return "invalid " + e.field + ": " + e.value
}

func (e *inputError) Unwrap() error {
	return ErrInvalidInput
}

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to inspect and tune a vehicle
type Controller interface {
	Debug()
	Verbose()
	Tune(lf.SteeringState, lf.Side, lf.MotorCommand) error

	// I/O
	ReadByte() (byte, error)
	Buffered() int
}

var (
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state, commands and PWM counters.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, b []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Toggle telemetry on every loop instead of only on state changes.",
	}
	TuneCommand = &Command{
		Flag:      'C',
		InputSize: 5,
		Run: func(c Controller, b []byte) error {
			state, side, cmd, err := ParseTune(b)
			if err != nil {
				return err
			}
			return c.Tune(state, side, cmd)
		},
		Description: "Retune one motor of one state. Input: state code, 'L' or 'R', 'F' or 'B', two digit duty. Example: CMLF07.",
	}
)

var commands = []*Command{
	DebugCommand,
	VerboseCommand,
	TuneCommand,
}

// ParseTune decodes the input of TuneCommand
func ParseTune(b []byte) (lf.SteeringState, lf.Side, lf.MotorCommand, error) {
	if len(b) != 5 {
		return 0, 0, lf.MotorCommand{}, ErrInvalidInput
	}

	state, ok := lf.ParseSteeringState(b[0])
	if !ok {
		return 0, 0, lf.MotorCommand{}, &inputError{field: "state", value: string(b[0])}
	}
	side, ok := lf.ParseSide(b[1])
	if !ok {
		return 0, 0, lf.MotorCommand{}, &inputError{field: "side", value: string(b[1])}
	}
	dir, ok := lf.ParseDirection(b[2])
	if !ok {
		return 0, 0, lf.MotorCommand{}, &inputError{field: "direction", value: string(b[2])}
	}
	tens, ones := b2i(b[3]), b2i(b[4])
	if tens < 0 || ones < 0 {
		return 0, 0, lf.MotorCommand{}, &inputError{field: "duty", value: string(b[3:5])}
	}

	return state, side, lf.MotorCommand{Direction: dir, Duty: uint8(tens*10 + ones)}, nil
}

// AppendTune encodes a full TuneCommand including its flag
func AppendTune(buf []byte, state lf.SteeringState, side lf.Side, cmd lf.MotorCommand) []byte {
	return append(buf,
		TuneCommand.Flag, state.Code(), side.Code(), cmd.Direction.Code(),
		'0'+cmd.Duty/10%10, '0'+cmd.Duty%10,
	)
}

func b2i(b byte) int {
	if b < '0' || b > '9' {
		return -1
	}
	return int(b - '0')
}

// Console is polled from the main loop. Input for a command can arrive over several polls
type Console struct {
	c      Controller
	out    io.Writer
	cmdMap map[byte]*Command

	pending *Command
	in      []byte
}

// New creates a Console that reads from c and writes help and errors to out
func New(c Controller, out io.Writer) *Console {
	con := &Console{
		c:      c,
		out:    out,
		cmdMap: map[byte]*Command{},
	}

	helpCommand := &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(Controller, []byte) error {
			con.help()
			return nil
		},
	}
	con.cmdMap[helpCommand.Flag] = helpCommand

	for _, cmd := range commands {
		con.cmdMap[cmd.Flag] = cmd
	}

	return con
}

// Poll consumes only the bytes already buffered and runs at most the commands they complete
func (con *Console) Poll() {
	for con.c.Buffered() > 0 {
		b, err := con.c.ReadByte()
		if err != nil {
			return
		}

		if con.pending == nil {
			cmd, ok := con.cmdMap[b]
			if !ok {
				continue
			}
			con.pending = cmd
			con.in = con.in[:0]
		} else {
			con.in = append(con.in, b)
		}

		if uint(len(con.in)) < con.pending.InputSize {
			continue
		}

		cmd := con.pending
		con.pending = nil
		if err := cmd.Run(con.c, con.in); err != nil {
			con.print("error: " + err.Error())
		}
	}
}

func (con *Console) help() {
	con.print("Available Commands:")
	con.print("H: " + con.cmdMap['H'].Description)
	for _, cmd := range commands {
		con.print(string(cmd.Flag) + ": " + cmd.Description)
	}
}

func (con *Console) print(s string) {
	if con.out == nil {
		return
	}
	_, _ = io.WriteString(con.out, s+"\r\n")
}
