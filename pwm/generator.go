// Package pwm generates the motor enable waveforms in software.
//
// Tick is called from the timer interrupt. It only compares, increments and resets counters, so its run time is
// constant and short compared to the tick period.
package pwm

import (
	"errors"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/hal"
)

// DutySource provides the current duty for each side. It is read on every tick, so a duty change takes effect
// mid-period without waiting for the counter to wrap
type DutySource interface {
	Duty(side lf.Side) uint8
}

// Config sets up a Generator
type Config struct {
	// Period is the number of ticks in one window. Defaults to linefollower.DefaultPeriod
	Period uint8
	// LeftOffset and RightOffset are the starting counters. Different offsets keep both motors from switching on the
	// same tick
	LeftOffset  uint8
	RightOffset uint8
}

// DefaultConfig is the reference 90 tick window with the right motor starting 15 ticks in
func DefaultConfig() Config {
	return Config{
		Period:      lf.DefaultPeriod,
		LeftOffset:  0,
		RightOffset: 15,
	}
}

// Generator holds one free-running counter per motor
type Generator struct {
	period   uint8
	counters [2]uint8

	duty DutySource
	out  hal.EnableWriter
}

// New creates a Generator
func New(cfg Config, duty DutySource, out hal.EnableWriter) (*Generator, error) {
	if cfg.Period == 0 {
		cfg.Period = lf.DefaultPeriod
	}
	if cfg.LeftOffset >= cfg.Period || cfg.RightOffset >= cfg.Period {
		return nil, errors.New("counter offset must be less than the period")
	}
	if duty == nil || out == nil {
		return nil, errors.New("duty source and enable writer are required")
	}

	return &Generator{
		period:   cfg.Period,
		counters: [2]uint8{cfg.LeftOffset, cfg.RightOffset},
		duty:     duty,
		out:      out,
	}, nil
}

// Tick advances both motors by one tick
func (g *Generator) Tick() {
	g.tick(lf.Left)
	g.tick(lf.Right)
}

// tick drives the enable lines high while the counter is at or below the duty. A duty at or above the period keeps
// the lines high for the whole window
func (g *Generator) tick(side lf.Side) {
	c := g.counters[side]

	g.out.SetEnable(side, c <= g.duty.Duty(side))

	c++
	if c >= g.period {
		c = 0
	}
	g.counters[side] = c
}

// Counter returns the value the next Tick will compare for side. Callers outside the tick handler must hold the same
// guard the motor driver uses
func (g *Generator) Counter(side lf.Side) uint8 {
	return g.counters[side]
}

// Period returns the window length in ticks
func (g *Generator) Period() uint8 {
	return g.period
}
