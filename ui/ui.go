package ui

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/monitor"
	"github.com/calvinmclean/linefollower/telemetry"
)

var _ monitor.Sink = (*Dashboard)(nil)

// Dashboard shows the telemetry of one vehicle. It is a monitor.Sink
type Dashboard struct {
	app    fyne.App
	window fyne.Window
	period uint8

	lamps [lf.SensorCount]*canvas.Circle
	state *canvas.Text
	left  *widget.Label
	right *widget.Label

	runTimer    *timer
	changeTimer *timer

	mtx       sync.Mutex
	lastState lf.SteeringState
	hasState  bool

	device *deviceWrapper
}

// NewDashboard creates the window. device receives console commands and may be nil when there is no device to tune,
// like in the simulator
func NewDashboard(application fyne.App, device io.Writer, period uint8) *Dashboard {
	if application == nil {
		application = app.New()
	}
	if period == 0 {
		period = lf.DefaultPeriod
	}

	d := &Dashboard{
		app:         application,
		window:      application.NewWindow("Line Follower"),
		period:      period,
		state:       canvas.NewText("-", nil),
		left:        widget.NewLabel(motorText(lf.Left, lf.MotorCommand{}, period)),
		right:       widget.NewLabel(motorText(lf.Right, lf.MotorCommand{}, period)),
		runTimer:    newTimer(false),
		changeTimer: newTimer(true),
	}
	if device != nil {
		d.device = &deviceWrapper{writer: device}
	}

	d.state.TextSize = 28
	d.state.TextStyle = fyne.TextStyle{Bold: true}

	lamps := make([]fyne.CanvasObject, 0, lf.SensorCount)
	for i := range d.lamps {
		d.lamps[i] = canvas.NewCircle(lampColor(false))
		lamps = append(lamps, d.lamps[i])
	}

	content := container.NewVBox(
		container.NewHBox(
			container.NewPadded(d.runTimer.text),
			layout.NewSpacer(),
			container.NewPadded(d.changeTimer.text),
		),
		container.NewGridWrap(fyne.NewSize(24, 24), lamps...),
		container.NewCenter(d.state),
		d.left,
		d.right,
	)
	if d.device != nil {
		content.Add(d.createDeviceControls())
	}

	d.window.SetContent(content)
	d.window.Resize(fyne.NewSize(320, 240))
	return d
}

// Record implements monitor.Sink
func (d *Dashboard) Record(_ context.Context, f telemetry.Frame) error {
	d.mtx.Lock()
	changed := !d.hasState || d.lastState != f.State
	d.lastState, d.hasState = f.State, true
	d.mtx.Unlock()

	if f.Elapsed > 0 {
		d.runTimer.SetElapsed(f.Elapsed)
	} else if !d.hasStarted() {
		d.runTimer.Set(time.Now())
	}
	if changed {
		d.changeTimer.Set(time.Now())
	}

	fyne.Do(func() {
		for i, on := range f.Reading {
			d.lamps[i].FillColor = lampColor(on)
			d.lamps[i].Refresh()
		}
		d.state.Text = f.State.String()
		d.state.Color = stateColor(f.State)
		d.state.Refresh()
		d.left.SetText(motorText(lf.Left, f.Command.Left, d.period))
		d.right.SetText(motorText(lf.Right, f.Command.Right, d.period))
	})
	return nil
}

func (d *Dashboard) hasStarted() bool {
	d.runTimer.mtx.Lock()
	defer d.runTimer.mtx.Unlock()
	return !d.runTimer.startTime.IsZero()
}

// Show opens the window on an app that is already running, for example from a ConfigWindow's OnSubmit
func (d *Dashboard) Show() {
	d.runTimer.Go()
	d.changeTimer.Go()
	d.window.SetOnClosed(func() {
		d.runTimer.Stop()
		d.changeTimer.Stop()
	})
	d.window.Show()
}

// Run shows the window and blocks until it is closed or ctx is done. It must be called from the main goroutine
func (d *Dashboard) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			d.app.Quit()
		})
	}()

	d.Show()
	d.app.Run()
}

// createDeviceControls builds the buttons that send console commands to the firmware
func (d *Dashboard) createDeviceControls() *fyne.Container {
	states := make([]string, 0, len(lf.SteeringStates))
	for _, s := range lf.SteeringStates {
		states = append(states, s.String())
	}

	stateSelect := widget.NewSelect(states, nil)
	stateSelect.SetSelected(lf.Centered.String())
	sideSelect := widget.NewSelect([]string{lf.Left.String(), lf.Right.String()}, nil)
	sideSelect.SetSelected(lf.Left.String())
	dirSelect := widget.NewSelect([]string{lf.Forward.String(), lf.Backward.String()}, nil)
	dirSelect.SetSelected(lf.Forward.String())

	dutyEntry := widget.NewEntry()
	dutyEntry.SetPlaceHolder("duty")

	tuneButton := widget.NewButton("Tune", func() {
		duty, err := strconv.Atoi(dutyEntry.Text)
		if err != nil || duty < 0 || duty > int(d.period) {
			dialog.ShowError(errInvalidDuty, d.window)
			return
		}

		cmd := lf.MotorCommand{Direction: lf.Forward, Duty: uint8(duty)}
		if dirSelect.Selected == lf.Backward.String() {
			cmd.Direction = lf.Backward
		}
		side := lf.Left
		if sideSelect.Selected == lf.Right.String() {
			side = lf.Right
		}
		state := lf.SteeringStates[stateSelect.SelectedIndex()]

		if err := d.device.Tune(state, side, cmd); err != nil {
			dialog.ShowError(err, d.window)
		}
	})

	return container.NewVBox(
		container.NewGridWithColumns(4, stateSelect, sideSelect, dirSelect, dutyEntry),
		container.NewHBox(
			tuneButton,
			widget.NewButton("Debug", func() { d.sendOrShow(d.device.Debug()) }),
			widget.NewButton("Verbose", func() { d.sendOrShow(d.device.Verbose()) }),
		),
	)
}

func (d *Dashboard) sendOrShow(err error) {
	if err != nil {
		dialog.ShowError(err, d.window)
	}
}
