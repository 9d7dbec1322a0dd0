// Package monitor follows the vehicle from the host. It reads telemetry frames from the serial port (or from the
// simulator) and hands each one to a list of sinks: logs, metrics, Redis, a TWChart run log and the dashboard.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/calvinmclean/linefollower/telemetry"
)

// Sink receives every frame in order
type Sink interface {
	Record(context.Context, telemetry.Frame) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(context.Context, telemetry.Frame) error

// Record implements Sink
func (f SinkFunc) Record(ctx context.Context, fr telemetry.Frame) error { return f(ctx, fr) }

type namedSink struct {
	name string
	sink Sink
}

// Monitor dispatches frames to sinks. A failing sink is logged and does not stop the others
type Monitor struct {
	logger  *slog.Logger
	metrics *Metrics
	sinks   []namedSink

	mtx     sync.RWMutex
	last    telemetry.Frame
	hasLast bool
}

// New creates a Monitor. metrics is optional
func New(logger *slog.Logger, metrics *Metrics) *Monitor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Monitor{logger: logger, metrics: metrics}
	if metrics != nil {
		m.AddSink("metrics", metrics)
	}
	return m
}

// AddSink registers a sink. It is not safe to call while frames are being handled
func (m *Monitor) AddSink(name string, s Sink) {
	m.sinks = append(m.sinks, namedSink{name: name, sink: s})
}

// Handle records the frame and sends it to every sink
func (m *Monitor) Handle(ctx context.Context, f telemetry.Frame) {
	m.mtx.Lock()
	prev, hadLast := m.last, m.hasLast
	m.last, m.hasLast = f, true
	m.mtx.Unlock()

	if !hadLast || prev.State != f.State {
		m.logger.Info("steering state",
			"state", f.State.String(),
			"sensors", f.Reading.String(),
			"left", f.Command.Left.Direction.String(),
			"left_duty", f.Command.Left.Duty,
			"right", f.Command.Right.Direction.String(),
			"right_duty", f.Command.Right.Duty,
			"elapsed", f.Elapsed,
		)
	} else {
		m.logger.Debug("frame", "frame", f.String())
	}

	for _, s := range m.sinks {
		if err := s.sink.Record(ctx, f); err != nil {
			m.logger.Error("sink failed", "sink", s.name, "error", err)
			if m.metrics != nil {
				m.metrics.SinkError(s.name)
			}
		}
	}
}

// HandleLine parses a frame line. Other lines from the device are logged as they are
func (m *Monitor) HandleLine(ctx context.Context, line string) {
	if !telemetry.IsFrame(line) {
		if line != "" {
			m.logger.Info("device", "line", line)
		}
		return
	}

	f, err := telemetry.Parse(line)
	if err != nil {
		m.logger.Warn("dropping frame", "line", line, "error", err)
		if m.metrics != nil {
			m.metrics.Malformed()
		}
		return
	}
	m.Handle(ctx, f)
}

// Run reads lines until r is exhausted or ctx is done. Closing r is the caller's job
func (m *Monitor) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		m.HandleLine(ctx, scanner.Text())
	}

	err := scanner.Err()
	if err != nil && !errors.Is(err, io.ErrClosedPipe) && ctx.Err() == nil {
		return fmt.Errorf("error reading telemetry: %w", err)
	}
	return nil
}

// Consume handles frames from a channel until it is closed or ctx is done
func (m *Monitor) Consume(ctx context.Context, frames <-chan telemetry.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			m.Handle(ctx, f)
		}
	}
}

// Last returns the most recent frame
func (m *Monitor) Last() (telemetry.Frame, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.last, m.hasLast
}
