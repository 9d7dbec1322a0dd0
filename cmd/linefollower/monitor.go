package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/monitor"
	"github.com/calvinmclean/linefollower/ui"
)

func init() {
	cfg := loadConfig()

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Follow the firmware's telemetry over a serial port",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if !cfg.EnableUI {
				return runMonitor(ctx, cfg, os.Stdin)
			}

			var runErr error
			application := app.NewWithID("com.calvinmclean.linefollower")
			configWindow := ui.NewConfigWindow(application)
			configWindow.OnSubmit = func() {
				port, err := openDevice(cfg)
				if err != nil {
					runErr = err
					application.Quit()
					return
				}

				var device io.Writer
				if port != nil {
					device = port
				}
				dashboard := ui.NewDashboard(application, device, lf.DefaultPeriod)
				dashboard.Show()

				go func() {
					defer fyne.Do(application.Quit)
					if err := runMonitorOn(ctx, cfg, port, dashboard, nil); err != nil {
						fmt.Fprintln(os.Stderr, err)
					}
				}()
			}
			configWindow.Show(&cfg)
			application.Run()
			return runErr
		},
	}

	cmd.Flags().StringVar(&cfg.SerialPort, "port", cfg.SerialPort, "Serial port of the firmware. Empty picks the first USB port")
	cmd.Flags().IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "Baud rate")
	addMonitorFlags(cmd, &cfg)

	rootCmd.AddCommand(cmd)
}

// openDevice returns a nil port when SerialPortNone was selected
func openDevice(cfg monitor.Config) (io.ReadWriteCloser, error) {
	if cfg.SerialPort == monitor.SerialPortNone {
		return nil, nil
	}
	return monitor.OpenSerial(cfg.SerialPort, cfg.BaudRate)
}

// runMonitor copies console input from stdin to the device
func runMonitor(ctx context.Context, cfg monitor.Config, stdin io.Reader) error {
	port, err := openDevice(cfg)
	if err != nil {
		return err
	}
	return runMonitorOn(ctx, cfg, port, nil, stdin)
}

func runMonitorOn(ctx context.Context, cfg monitor.Config, port io.ReadWriteCloser, extra monitor.Sink, stdin io.Reader) error {
	p, err := newPipeline(ctx, cfg)
	if err != nil {
		if port != nil {
			port.Close()
		}
		return err
	}
	defer p.Close()

	if extra != nil {
		p.monitor.AddSink("ui", extra)
	}

	if port == nil {
		p.logger.Info("no serial port selected, waiting")
		<-ctx.Done()
		return nil
	}

	// closing the port unblocks the reader
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	if stdin != nil {
		go func() {
			_, err := io.Copy(port, stdin)
			if err != nil && ctx.Err() == nil {
				p.logger.Warn("stopped forwarding stdin", "error", err)
			}
		}()
	}

	p.logger.Info("monitoring", "port", cfg.SerialPort, "baud", cfg.BaudRate)
	return p.monitor.Run(ctx, port)
}
