package ui

import (
	"errors"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/calvinmclean/linefollower/monitor"
)

var errInvalidDuty = errors.New("duty must be a number between 0 and the PWM period")

// ConfigWindow asks for the monitor settings before the dashboard opens
type ConfigWindow struct {
	app      fyne.App
	OnSubmit func()
}

func NewConfigWindow(app fyne.App) *ConfigWindow {
	return &ConfigWindow{
		app: app,
	}
}

func (cw *ConfigWindow) loadConfigFromPreferences(cfg *monitor.Config) {
	prefs := cw.app.Preferences()
	cfg.SerialPort = prefs.StringWithFallback("serialPort", cfg.SerialPort)
	cfg.BaudRate = prefs.IntWithFallback("baudRate", cfg.BaudRate)
	cfg.TWChartAddr = prefs.StringWithFallback("twchartAddr", cfg.TWChartAddr)
	cfg.RedisAddr = prefs.StringWithFallback("redisAddr", cfg.RedisAddr)
	cfg.RunName = prefs.StringWithFallback("runName", cfg.RunName)
}

func (cw *ConfigWindow) saveConfigToPreferences(cfg *monitor.Config) {
	prefs := cw.app.Preferences()
	prefs.SetString("serialPort", cfg.SerialPort)
	prefs.SetInt("baudRate", cfg.BaudRate)
	prefs.SetString("twchartAddr", cfg.TWChartAddr)
	prefs.SetString("redisAddr", cfg.RedisAddr)
	prefs.SetString("runName", cfg.RunName)
}

// Show opens the window. Values from the environment are used when nothing was saved yet
func (cw *ConfigWindow) Show(cfg *monitor.Config) {
	window := cw.app.NewWindow("Line Follower - Configuration")
	window.Resize(fyne.NewSize(400, 250))
	window.SetCloseIntercept(func() {
		// Treat window close as cancel
		window.Close()
		cw.app.Quit()
	})
	window.Show()

	cw.loadConfigFromPreferences(cfg)

	serialPorts, err := monitor.SerialPorts()
	if err != nil && !errors.Is(err, monitor.ErrNoUSBSerial) {
		showError(cw.app, window, fmt.Errorf("error getting serial ports: %w", err))
		return
	}

	serialPorts = append(serialPorts, monitor.SerialPortNone)

	serialEntry := widget.NewSelect(serialPorts, nil)
	if cfg.SerialPort == "" {
		cfg.SerialPort = serialPorts[0]
	}
	serialEntry.Bind(binding.BindString(&cfg.SerialPort))

	baudRate := strconv.Itoa(cfg.BaudRate)
	baudRateEntry := widget.NewEntry()
	baudRateEntry.Bind(binding.BindString(&baudRate))

	runNameEntry := widget.NewEntry()
	runNameEntry.Bind(binding.BindString(&cfg.RunName))

	twchartAddrEntry := widget.NewEntry()
	twchartAddrEntry.SetPlaceHolder("optional")
	twchartAddrEntry.Bind(binding.BindString(&cfg.TWChartAddr))

	redisAddrEntry := widget.NewEntry()
	redisAddrEntry.SetPlaceHolder("optional")
	redisAddrEntry.Bind(binding.BindString(&cfg.RedisAddr))

	submitButton := widget.NewButton("Submit", func() {
		rate, err := strconv.Atoi(baudRate)
		if err != nil || rate <= 0 {
			dialog.ShowError(fmt.Errorf("invalid baud rate %q", baudRate), window)
			return
		}
		cfg.BaudRate = rate

		cw.saveConfigToPreferences(cfg)
		cw.OnSubmit()
		window.Close()
	})
	submitButton.Disable()

	validateForm := func() {
		allFieldsValid := cfg.SerialPort != "" &&
			cfg.RunName != "" &&
			baudRate != ""

		if allFieldsValid {
			submitButton.Enable()
		} else {
			submitButton.Disable()
		}
	}

	// Add listeners to field changes
	serialEntry.OnChanged = func(_ string) { validateForm() }
	runNameEntry.OnChanged = func(_ string) { validateForm() }
	baudRateEntry.OnChanged = func(_ string) { validateForm() }

	// Initial validation
	validateForm()

	form := container.NewVBox(
		widget.NewCard("Configuration", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("Serial Port:"),
				serialEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				baudRateEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Run Name:"),
				runNameEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("TWChart Address:"),
				twchartAddrEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Redis Address:"),
				redisAddrEntry,
			),
		)),
		container.NewHBox(
			widget.NewButton("Cancel", func() {
				window.Close()
				cw.app.Quit()
			}),
			submitButton,
		),
	)

	window.SetContent(form)
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
