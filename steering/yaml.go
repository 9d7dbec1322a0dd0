package steering

import (
	"fmt"
	"io"
	"strings"

	lf "github.com/calvinmclean/linefollower"
	"gopkg.in/yaml.v3"
)

type yamlMotor struct {
	Direction string `yaml:"direction"`
	Duty      uint8  `yaml:"duty"`
}

type yamlDrive struct {
	Left  yamlMotor `yaml:"left"`
	Right yamlMotor `yaml:"right"`
}

func toYAMLMotor(m lf.MotorCommand) yamlMotor {
	return yamlMotor{Direction: strings.ToLower(m.Direction.String()), Duty: m.Duty}
}

func (ym yamlMotor) command() (lf.MotorCommand, error) {
	switch strings.ToLower(ym.Direction) {
	case "forward", "f":
		return lf.MotorCommand{Direction: lf.Forward, Duty: ym.Duty}, nil
	case "backward", "b":
		return lf.MotorCommand{Direction: lf.Backward, Duty: ym.Duty}, nil
	default:
		return lf.MotorCommand{}, fmt.Errorf("invalid direction %q", ym.Direction)
	}
}

// MarshalYAML writes the table keyed by state name
func (c Calibration) MarshalYAML() (any, error) {
	out := make(map[string]yamlDrive, len(c))
	for _, s := range lf.SteeringStates {
		out[s.String()] = yamlDrive{Left: toYAMLMotor(c[s].Left), Right: toYAMLMotor(c[s].Right)}
	}
	return out, nil
}

// UnmarshalYAML starts from the defaults so a file only needs the states it changes
func (c *Calibration) UnmarshalYAML(node *yaml.Node) error {
	raw := map[string]yamlDrive{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*c = DefaultCalibration()
	for name, drive := range raw {
		s, ok := stateByName(name)
		if !ok {
			return fmt.Errorf("unknown steering state %q", name)
		}

		left, err := drive.Left.command()
		if err != nil {
			return fmt.Errorf("%s left: %w", name, err)
		}
		right, err := drive.Right.command()
		if err != nil {
			return fmt.Errorf("%s right: %w", name, err)
		}
		c[s] = lf.DriveCommand{Left: left, Right: right}
	}
	return nil
}

func stateByName(name string) (lf.SteeringState, bool) {
	for _, s := range lf.SteeringStates {
		if strings.EqualFold(s.String(), name) {
			return s, true
		}
	}
	return lf.Centered, false
}

// LoadCalibration decodes a YAML calibration and checks it against the PWM period
func LoadCalibration(r io.Reader, period uint8) (Calibration, error) {
	var c Calibration
	err := yaml.NewDecoder(r).Decode(&c)
	if err == io.EOF {
		return DefaultCalibration(), nil
	}
	if err != nil {
		return Calibration{}, fmt.Errorf("error decoding calibration: %w", err)
	}

	if err := c.Validate(period); err != nil {
		return Calibration{}, err
	}
	return c, nil
}

// WriteCalibration encodes c as YAML
func WriteCalibration(w io.Writer, c Calibration) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("error encoding calibration: %w", err)
	}
	return enc.Close()
}
