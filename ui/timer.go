package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows the time since a reference point. The reference is moved by telemetry so the display follows the
// device's clock instead of the host's
type timer struct {
	showMillis bool
	startTime  time.Time
	mtx        *sync.Mutex
	text       *canvas.Text
	stop       chan struct{}
}

func newTimer(showMillis bool) *timer {
	initText := "00:00"
	if showMillis {
		initText = "00:00.000"
	}
	return &timer{
		showMillis: showMillis,
		startTime:  time.Time{},
		mtx:        &sync.Mutex{},
		text:       canvas.NewText(initText, nil),
		stop:       make(chan struct{}),
	}
}

// Set moves the reference point
func (t *timer) Set(start time.Time) {
	t.mtx.Lock()
	t.startTime = start
	t.mtx.Unlock()
}

// SetElapsed moves the reference so the timer currently reads elapsed
func (t *timer) SetElapsed(elapsed time.Duration) {
	t.Set(time.Now().Add(-elapsed))
}

func (t *timer) Stop() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}

// Go refreshes the text until Stop. Nothing is shown before the first Set
func (t *timer) Go() {
	d := time.Second
	if t.showMillis {
		d = 64 * time.Millisecond
	}

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
			}

			t.mtx.Lock()
			start := t.startTime
			t.mtx.Unlock()
			if start.IsZero() {
				continue
			}

			text := format(time.Since(start), t.showMillis)
			fyne.Do(func() {
				t.text.Text = text
				t.text.Refresh()
			})
		}
	}()
}

func format(elapsed time.Duration, showMillis bool) string {
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	if showMillis {
		millis := int(elapsed.Milliseconds()) % 1000
		return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
