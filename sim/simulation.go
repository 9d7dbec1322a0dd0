package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	lf "github.com/calvinmclean/linefollower"
	"github.com/calvinmclean/linefollower/vehicle"
)

// Interrupt calls Handler every Interval while holding Guard, the way a timer interrupt preempts the main loop
type Interrupt struct {
	Interval time.Duration
	Guard    sync.Locker
	Handler  func()
}

// Run blocks until ctx is done
func (i Interrupt) Run(ctx context.Context) {
	ticker := time.NewTicker(i.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.Guard.Lock()
			i.Handler()
			i.Guard.Unlock()
		}
	}
}

// Config sets up a Simulation
type Config struct {
	Vehicle vehicle.Config
	Track   TrackConfig

	// StepInterval paces the main loop. Defaults to 1ms
	StepInterval time.Duration
	// TickInterval is the timer period. Defaults to 100µs
	TickInterval time.Duration

	LightLine bool
	Halt      bool
}

// Simulation drives a Vehicle around a Track
type Simulation struct {
	board   *Board
	track   *Track
	vehicle *vehicle.Vehicle
	guard   *sync.Mutex

	stepInterval time.Duration
	tickInterval time.Duration
}

// New creates a Simulation. cfg.Vehicle.Guard is replaced with the mutex shared by the main loop and the interrupt
func New(cfg Config) (*Simulation, error) {
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = time.Millisecond
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Microsecond
	}

	board := NewBoard()
	board.SetJumpers(cfg.LightLine, cfg.Halt)

	guard := &sync.Mutex{}
	cfg.Vehicle.Guard = guard

	v, err := vehicle.New(board, cfg.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("error creating vehicle: %w", err)
	}

	return &Simulation{
		board:        board,
		track:        NewTrack(cfg.Track),
		vehicle:      v,
		guard:        guard,
		stepInterval: cfg.StepInterval,
		tickInterval: cfg.TickInterval,
	}, nil
}

// Board returns the simulated pins
func (s *Simulation) Board() *Board { return s.board }

// Track returns the line model
func (s *Simulation) Track() *Track { return s.track }

// Vehicle returns the controller under test
func (s *Simulation) Vehicle() *vehicle.Vehicle { return s.vehicle }

// Boot reads the jumpers. It returns false when the halt jumper is set
func (s *Simulation) Boot() bool {
	return s.vehicle.Boot()
}

// Step runs one main loop iteration and then moves the vehicle for dt using the commands it issued
func (s *Simulation) Step(dt time.Duration) vehicle.Transition {
	s.board.SetSensors(s.track.Levels(s.vehicle.Polarity()))

	t := s.vehicle.Step()
	if s.vehicle.Halted() {
		return t
	}

	period := s.vehicle.Period()
	s.track.Advance(dt,
		Power(s.vehicle.Command(lf.Left), period),
		Power(s.vehicle.Command(lf.Right), period),
	)
	return t
}

// Run starts the interrupt and steps the main loop every StepInterval until ctx is done. A halted vehicle only waits
func (s *Simulation) Run(ctx context.Context) error {
	if !s.Boot() {
		<-ctx.Done()
		return nil
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		Interrupt{Interval: s.tickInterval, Guard: s.guard, Handler: s.vehicle.Tick}.Run(ctx)
	}()

	ticker := time.NewTicker(s.stepInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Step(now.Sub(last))
			last = now
		}
	}
}

// Counters returns both PWM counters while the interrupt is excluded
func (s *Simulation) Counters() (left, right uint8) {
	s.guard.Lock()
	defer s.guard.Unlock()
	return s.vehicle.Counter(lf.Left), s.vehicle.Counter(lf.Right)
}
