//go:build rp2040

package main

import (
	"machine"
	"time"

	"github.com/calvinmclean/linefollower/console"
	"github.com/calvinmclean/linefollower/firmware/device"
	"github.com/calvinmclean/linefollower/vehicle"
)

func main() {
	boardCfg := device.BoardConfig{
		// The array is wired right to left starting at GP2
		Sensors: [7]machine.Pin{machine.GP8, machine.GP7, machine.GP6, machine.GP5, machine.GP4, machine.GP3, machine.GP2},
		Left: device.MotorConfig{
			Enable: [2]machine.Pin{machine.GP10, machine.GP11},
			DirA:   machine.GP12,
			DirB:   machine.GP13,
		},
		Right: device.MotorConfig{
			Enable: [2]machine.Pin{machine.GP14, machine.GP15},
			DirA:   machine.GP16,
			DirB:   machine.GP17,
		},
		Jumpers: device.JumperConfig{
			LineJumper: machine.GP20,
			HaltJumper: machine.GP21,
		},
	}
	timerCfg := device.TimerConfig{
		Interval: 100 * time.Microsecond,
	}

	board := device.NewBoard(boardCfg)
	dev := console.NewDevice(machine.Serial)

	cfg := vehicle.DefaultConfig()
	cfg.Guard = &device.IRQLocker{}
	cfg.Observer = dev

	v, err := vehicle.New(board, cfg)
	if err != nil {
		panic(err)
	}
	dev.Attach(v)

	if !v.Boot() {
		println("halt selected")
		select {}
	}
	println("polarity", v.Polarity().String())

	device.StartTimer(timerCfg, v.Tick)

	con := console.New(dev, machine.Serial)
	for {
		v.Step()
		con.Poll()
		dev.Flush()
	}
}
