//go:build rp2040

package device

import (
	"device/rp"
	"runtime/interrupt"
	"sync"
)

// onTick is called from the alarm interrupt. The handler passed to interrupt.New cannot capture variables
var (
	onTick   func()
	interval uint32
)

// StartTimer arms hardware alarm 1 to call tick every cfg.Interval until the board resets
func StartTimer(cfg TimerConfig, tick func()) {
	onTick = tick
	interval = uint32(cfg.Interval.Microseconds())
	if interval == 0 {
		interval = 100
	}

	intr := interrupt.New(rp.IRQ_TIMER_IRQ_1, func(interrupt.Interrupt) {
		rp.TIMER.INTR.Set(rp.TIMER_INTR_ALARM_1)
		rp.TIMER.ALARM1.Set(rp.TIMER.TIMERAWL.Get() + interval)
		onTick()
	})

	rp.TIMER.INTE.SetBits(rp.TIMER_INTE_ALARM_1)
	rp.TIMER.ALARM1.Set(rp.TIMER.TIMERAWL.Get() + interval)
	intr.SetPriority(0x00)
	intr.Enable()
}

// IRQLocker masks interrupts while held so the tick never sees a half-written motor command
type IRQLocker struct {
	state interrupt.State
}

var _ sync.Locker = (*IRQLocker)(nil)

func (l *IRQLocker) Lock() {
	l.state = interrupt.Disable()
}

func (l *IRQLocker) Unlock() {
	interrupt.Restore(l.state)
}
