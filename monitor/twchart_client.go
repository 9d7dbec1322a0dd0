package monitor

import (
	"context"
	"fmt"
	"time"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/telemetry"
	"github.com/calvinmclean/linefollower/twchart"
)

type twchartClient interface {
	StartRun(ctx context.Context, name string, start time.Time) (string, error)
	AddTransition(ctx context.Context, f telemetry.Frame, at time.Time) error
	AddPhase(ctx context.Context, p twchart.Phase, at time.Time) error
	Finish(ctx context.Context, at time.Time) error
}

var _ twchartClient = (*twchart.Client)(nil)

type noopTWChartClient struct{}

var _ twchartClient = noopTWChartClient{}

// StartRun implements twchartClient.
func (n noopTWChartClient) StartRun(ctx context.Context, name string, start time.Time) (string, error) {
	return "", nil
}

// AddTransition implements twchartClient.
func (n noopTWChartClient) AddTransition(ctx context.Context, f telemetry.Frame, at time.Time) error {
	return nil
}

// AddPhase implements twchartClient.
func (n noopTWChartClient) AddPhase(ctx context.Context, p twchart.Phase, at time.Time) error {
	return nil
}

// Finish implements twchartClient.
func (n noopTWChartClient) Finish(ctx context.Context, at time.Time) error {
	return nil
}

// RunLog is a Sink recording a run as a TWChart session. Every state change is an event and the run is split into
// stages while the line is followed or lost
type RunLog struct {
	client  twchartClient
	runName string
	now     func() time.Time

	started   bool
	lastState lf.SteeringState
	lastPhase twchart.Phase
}

// NewRunLog records to client. A nil client records nothing
func NewRunLog(client twchartClient, runName string) *RunLog {
	if client == nil {
		client = noopTWChartClient{}
	}
	return &RunLog{client: client, runName: runName, now: time.Now}
}

// Record implements Sink. It is called from a single goroutine
func (r *RunLog) Record(ctx context.Context, f telemetry.Frame) error {
	now := r.now()

	phase := twchart.PhaseFor(f.State)
	if !r.started {
		if _, err := r.client.StartRun(ctx, r.runName, now); err != nil {
			return fmt.Errorf("error starting run: %w", err)
		}
		r.started = true
		if err := r.client.AddPhase(ctx, phase, now); err != nil {
			return fmt.Errorf("error adding stage: %w", err)
		}
	} else if f.State == r.lastState {
		return nil
	} else if phase != r.lastPhase {
		if err := r.client.AddPhase(ctx, phase, now); err != nil {
			return fmt.Errorf("error adding stage: %w", err)
		}
	}
	r.lastState, r.lastPhase = f.State, phase

	if err := r.client.AddTransition(ctx, f, now); err != nil {
		return fmt.Errorf("error adding event: %w", err)
	}
	return nil
}

// Close marks the session done
func (r *RunLog) Close(ctx context.Context) error {
	if !r.started {
		return nil
	}
	return r.client.Finish(ctx, r.now())
}
