package linefollower

// DefaultPeriod is the number of timer ticks in one PWM window
const DefaultPeriod = 90

// SensorCount is the number of line sensors in the array
const SensorCount = 7

// CenterSensor is the index of the middle sensor in a SensorReading
const CenterSensor = 3

// Side identifies one of the two drive motors
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// Code is the single byte used for the Side in telemetry and console input
func (s Side) Code() byte {
	if s == Right {
		return 'R'
	}
	return 'L'
}

// ParseSide is the reverse of Side.Code
func ParseSide(b byte) (Side, bool) {
	switch b {
	case 'L':
		return Left, true
	case 'R':
		return Right, true
	}
	return Left, false
}

// Direction is the H-bridge polarity for one motor
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	default:
		return "Unknown"
	}
}

// Code is the single byte used for the Direction in telemetry and console input
func (d Direction) Code() byte {
	if d == Backward {
		return 'B'
	}
	return 'F'
}

// ParseDirection is the reverse of Direction.Code
func ParseDirection(b byte) (Direction, bool) {
	switch b {
	case 'F':
		return Forward, true
	case 'B':
		return Backward, true
	}
	return Forward, false
}

// SteeringState classifies how far the guide line has drifted from the center of the array
type SteeringState uint8

const (
	Centered SteeringState = iota
	SoftLeft
	SoftRight
	HardLeft
	HardRight
	LostLeft
	LostRight
)

// SteeringStates lists every state in classification priority order
var SteeringStates = [...]SteeringState{Centered, SoftLeft, SoftRight, HardLeft, HardRight, LostLeft, LostRight}

func (s SteeringState) String() string {
	switch s {
	case Centered:
		return "Centered"
	case SoftLeft:
		return "SoftLeft"
	case SoftRight:
		return "SoftRight"
	case HardLeft:
		return "HardLeft"
	case HardRight:
		return "HardRight"
	case LostLeft:
		return "LostLeft"
	case LostRight:
		return "LostRight"
	default:
		return "Unknown"
	}
}

// Code returns the single byte that identifies the state on the serial link
func (s SteeringState) Code() byte {
	switch s {
	case SoftLeft:
		return 'l'
	case SoftRight:
		return 'r'
	case HardLeft:
		return 'L'
	case HardRight:
		return 'R'
	case LostLeft:
		return '<'
	case LostRight:
		return '>'
	default:
		return 'M'
	}
}

// ParseSteeringState is the reverse of SteeringState.Code
func ParseSteeringState(b byte) (SteeringState, bool) {
	for _, s := range SteeringStates {
		if s.Code() == b {
			return s, true
		}
	}
	return Centered, false
}

// SensorReading is one sample of the array, left to right. A true value means the sensor sees the line
// after LinePolarity has been applied
type SensorReading [SensorCount]bool

// Any reports whether at least one sensor is on the line
func (r SensorReading) Any() bool {
	for _, on := range r {
		if on {
			return true
		}
	}
	return false
}

// String formats the reading as seven '0'/'1' characters, leftmost first
func (r SensorReading) String() string {
	return string(r.Append(make([]byte, 0, SensorCount)))
}

// Append writes the String form into buf without allocating
func (r SensorReading) Append(buf []byte) []byte {
	for _, on := range r {
		if on {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
	}
	return buf
}

// ParseSensorReading parses the String form
func ParseSensorReading(s string) (SensorReading, bool) {
	var r SensorReading
	if len(s) != SensorCount {
		return r, false
	}
	for i := range SensorCount {
		switch s[i] {
		case '1':
			r[i] = true
		case '0':
		default:
			return r, false
		}
	}
	return r, true
}

// LinePolarity selects which raw sensor level means "on the line". It is read from a jumper at boot
type LinePolarity uint8

const (
	// ActiveHigh detects a dark line on a light background
	ActiveHigh LinePolarity = iota
	// ActiveLow detects a light line on a dark background
	ActiveLow
)

func (p LinePolarity) String() string {
	if p == ActiveLow {
		return "ActiveLow"
	}
	return "ActiveHigh"
}

// OnLine converts a raw sensor level into line detection
func (p LinePolarity) OnLine(level bool) bool {
	if p == ActiveLow {
		return !level
	}
	return level
}

// Level is the raw sensor level that OnLine maps to true
func (p LinePolarity) Level() bool {
	return p == ActiveHigh
}

// MotorCommand is the direction and duty for one motor. Duty is a numerator over the PWM period
type MotorCommand struct {
	Direction Direction
	Duty      uint8
}

// DriveCommand is a MotorCommand for each side
type DriveCommand struct {
	Left  MotorCommand
	Right MotorCommand
}

// Side returns the command for the requested motor
func (d DriveCommand) Side(s Side) MotorCommand {
	if s == Right {
		return d.Right
	}
	return d.Left
}
