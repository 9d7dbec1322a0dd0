package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/sim"
	"github.com/calvinmclean/linefollower/steering"
	"github.com/calvinmclean/linefollower/telemetry"
	"github.com/calvinmclean/linefollower/ui"
	"github.com/calvinmclean/linefollower/vehicle"
)

func init() {
	cfg := loadConfig()
	var (
		duration        time.Duration
		stepInterval    time.Duration
		tickInterval    time.Duration
		calibrationFile string
		lightLine       bool
		halt            bool
		startOffset     float64
	)

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the controller against a simulated track",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if duration > 0 {
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			vehicleCfg := vehicle.DefaultConfig()
			if calibrationFile != "" {
				c, err := readCalibration(calibrationFile, vehicleCfg.PWM.Period)
				if err != nil {
					return err
				}
				vehicleCfg.Calibration = c
			}

			p, err := newPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			frames := make(chan telemetry.Frame, 64)
			start := time.Now()
			vehicleCfg.Observer = vehicle.ObserverFunc(func(t vehicle.Transition) {
				if !t.Changed() {
					return
				}
				select {
				case frames <- telemetry.Frame{State: t.To, Reading: t.Reading, Command: t.Command, Elapsed: time.Since(start)}:
				default:
					p.logger.Warn("telemetry buffer full, dropping frame", "state", t.To.String())
				}
			})

			s, err := sim.New(sim.Config{
				Vehicle:      vehicleCfg,
				Track:        sim.DefaultTrackConfig(),
				StepInterval: stepInterval,
				TickInterval: tickInterval,
				LightLine:    lightLine,
				Halt:         halt,
			})
			if err != nil {
				return err
			}
			s.Track().Place(startOffset)

			if cfg.EnableUI {
				dashboard := ui.NewDashboard(nil, nil, s.Vehicle().Period())
				p.monitor.AddSink("ui", dashboard)
				go runSim(ctx, cancel, s, p, frames)
				dashboard.Run(ctx)
				cancel()
				return nil
			}

			runSim(ctx, cancel, s, p, frames)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long. Zero runs until interrupted")
	cmd.Flags().DurationVar(&stepInterval, "step", time.Millisecond, "Main loop interval")
	cmd.Flags().DurationVar(&tickInterval, "tick", 100*time.Microsecond, "PWM timer interval")
	cmd.Flags().StringVar(&calibrationFile, "calibration", "", "YAML calibration file")
	cmd.Flags().BoolVar(&lightLine, "light-line", false, "Set the line jumper for a light line on a dark background")
	cmd.Flags().BoolVar(&halt, "halt", false, "Set the halt jumper")
	cmd.Flags().Float64Var(&startOffset, "offset", 0, "Where the line starts under the array, in sensor pitches from the center")
	addMonitorFlags(cmd, &cfg)

	rootCmd.AddCommand(cmd)
}

func runSim(ctx context.Context, cancel context.CancelFunc, s *sim.Simulation, p *pipeline, frames chan telemetry.Frame) {
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.monitor.Consume(ctx, frames)
	}()

	if err := s.Run(ctx); err != nil {
		p.logger.Error("simulation failed", "error", err)
	}
	if s.Vehicle().Halted() {
		p.logger.Info("halt jumper set, vehicle stayed idle")
	}
	<-done

	leftHigh, leftTotal := s.Board().HighTicks(lf.Left)
	rightHigh, rightTotal := s.Board().HighTicks(lf.Right)
	p.logger.Info("simulation finished",
		"state", s.Vehicle().State().String(),
		"distance", fmt.Sprintf("%.1f", s.Track().Distance()),
		"offset", fmt.Sprintf("%.2f", s.Track().Offset()),
		"left_enable_ticks", fmt.Sprintf("%d/%d", leftHigh, leftTotal),
		"right_enable_ticks", fmt.Sprintf("%d/%d", rightHigh, rightTotal),
	)
}

func readCalibration(path string, period uint8) (steering.Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return steering.Calibration{}, fmt.Errorf("error opening calibration: %w", err)
	}
	defer f.Close()

	return steering.LoadCalibration(f, period)
}
