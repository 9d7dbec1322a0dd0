package monitor

import (
	"context"
	"strconv"
	"sync"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Sink exporting the telemetry to Prometheus
type Metrics struct {
	frames      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	duty        *prometheus.GaugeVec
	sensors     *prometheus.GaugeVec
	sinkErrors  *prometheus.CounterVec
	malformed   prometheus.Counter

	mtx     sync.Mutex
	last    lf.SteeringState
	hasLast bool
}

// NewMetrics creates and registers the collectors
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linefollower_frames_total",
			Help: "Telemetry frames received, by steering state",
		}, []string{"state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linefollower_transitions_total",
			Help: "Steering state changes",
		}, []string{"from", "to"}),
		duty: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "linefollower_motor_duty",
			Help: "Commanded duty in ticks per period, negative when driving backward",
		}, []string{"side"}),
		sensors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "linefollower_sensor_on_line",
			Help: "1 when the sensor sees the line, 0 is the leftmost sensor",
		}, []string{"sensor"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linefollower_sink_errors_total",
			Help: "Errors returned by telemetry sinks",
		}, []string{"sink"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linefollower_malformed_frames_total",
			Help: "Telemetry lines that could not be parsed",
		}),
	}
	reg.MustRegister(m.frames, m.transitions, m.duty, m.sensors, m.sinkErrors, m.malformed)
	return m
}

// Record implements Sink
func (m *Metrics) Record(_ context.Context, f telemetry.Frame) error {
	m.frames.WithLabelValues(f.State.String()).Inc()

	m.mtx.Lock()
	if m.hasLast && m.last != f.State {
		m.transitions.WithLabelValues(m.last.String(), f.State.String()).Inc()
	}
	m.last, m.hasLast = f.State, true
	m.mtx.Unlock()

	m.duty.WithLabelValues(lf.Left.String()).Set(signedDuty(f.Command.Left))
	m.duty.WithLabelValues(lf.Right.String()).Set(signedDuty(f.Command.Right))

	for i, on := range f.Reading {
		v := 0.0
		if on {
			v = 1
		}
		m.sensors.WithLabelValues(strconv.Itoa(i)).Set(v)
	}
	return nil
}

// SinkError counts a failure of the named sink
func (m *Metrics) SinkError(name string) {
	m.sinkErrors.WithLabelValues(name).Inc()
}

// Malformed counts a line that could not be parsed
func (m *Metrics) Malformed() {
	m.malformed.Inc()
}

func signedDuty(c lf.MotorCommand) float64 {
	if c.Direction == lf.Backward {
		return -float64(c.Duty)
	}
	return float64(c.Duty)
}
