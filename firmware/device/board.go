//go:build rp2040

package device

import (
	"machine"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/hal"
)

// Board implements hal.Board on GPIO pins
type Board struct {
	cfg BoardConfig
}

var _ hal.Board = (*Board)(nil)

// NewBoard configures every pin. Motors start coasting with the direction lines low
func NewBoard(cfg BoardConfig) *Board {
	for _, p := range cfg.Sensors {
		p.Configure(machine.PinConfig{Mode: machine.PinInput})
	}
	for _, m := range []MotorConfig{cfg.Left, cfg.Right} {
		for _, p := range []machine.Pin{m.Enable[0], m.Enable[1], m.DirA, m.DirB} {
			p.Configure(machine.PinConfig{Mode: machine.PinOutput})
			p.Low()
		}
	}
	cfg.Jumpers.LineJumper.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	cfg.Jumpers.HaltJumper.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	return &Board{cfg: cfg}
}

func (b *Board) motor(side lf.Side) *MotorConfig {
	if side == lf.Right {
		return &b.cfg.Right
	}
	return &b.cfg.Left
}

// ReadSensor implements hal.SensorReader
func (b *Board) ReadSensor(index int) bool {
	return b.cfg.Sensors[index].Get()
}

// SetEnable implements hal.EnableWriter. It runs in the timer interrupt
func (b *Board) SetEnable(side lf.Side, on bool) {
	m := b.motor(side)
	m.Enable[0].Set(on)
	m.Enable[1].Set(on)
}

// SetDirection implements hal.DirectionWriter
func (b *Board) SetDirection(side lf.Side, a, bLine bool) {
	m := b.motor(side)
	m.DirA.Set(a)
	m.DirB.Set(bLine)
}

// LineJumper implements hal.JumperReader. A high level selects a light line
func (b *Board) LineJumper() bool {
	return b.cfg.Jumpers.LineJumper.Get()
}

// HaltJumper implements hal.JumperReader. A high level selects halt, so a board without jumpers stays parked
func (b *Board) HaltJumper() bool {
	return b.cfg.Jumpers.HaltJumper.Get()
}
