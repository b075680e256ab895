package sim

import (
	"context"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/metrics"
	"github.com/san-kum/springfarm/internal/topology"
)

// Simulator owns the authoritative configuration and the live state derived
// from it. All methods are safe for concurrent use; State returns the live
// state itself and is only safe to read from the goroutine driving Step.
type Simulator struct {
	mu         sync.Mutex
	config     topology.Configuration
	state      *topology.State
	integrator integrators.Integrator
	dt         float64
	metrics    []Metric
	observers  []Observer
	logger     *log.Logger
	degenerate int
}

type Option func(*Simulator)

// WithIntegrator replaces the default leapfrog integrator.
func WithIntegrator(integ integrators.Integrator) Option {
	return func(s *Simulator) { s.integrator = integ }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

func WithMetrics(m ...Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m...) }
}

// New resolves cfg and returns a simulator at frame 0.
func New(cfg topology.Configuration, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		integrator: integrators.NewLeapfrog(),
		dt:         integrators.Dt,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ResetTo(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// ResetTo makes a copy of cfg the authoritative configuration and rebuilds the
// state at frame 0. If cfg does not resolve, the simulator is left untouched
// and the error is returned.
func (s *Simulator) ResetTo(cfg topology.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(cfg.Clone())
}

// Reset rebuilds the state from the current configuration at frame 0.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// the current configuration resolved when it was committed
	st, err := topology.Resolve(s.config)
	if err != nil {
		panic("sim: committed configuration no longer resolves: " + err.Error())
	}
	s.install(st)
}

// commit takes ownership of cfg. Callers hold s.mu.
func (s *Simulator) commit(cfg topology.Configuration) error {
	st, err := topology.Resolve(cfg)
	if err != nil {
		s.logger.Warn("configuration rejected", "err", err)
		return err
	}
	s.config = cfg
	s.install(st)
	return nil
}

func (s *Simulator) install(st *topology.State) {
	s.state = st
	s.degenerate = 0
	for _, m := range s.metrics {
		m.Reset()
	}
	s.logger.Debug("reset", "atoms", len(st.Atoms), "springs", len(st.Springs))
}

// Step advances the state by one fixed timestep and increments the frame.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
}

func (s *Simulator) step() integrators.Report {
	rep := s.integrator.Step(s.state, s.dt)
	s.state.Frame++

	if rep.DegenerateSprings > 0 {
		s.degenerate += rep.DegenerateSprings
		s.logger.Debug("degenerate spring geometry", "frame", s.state.Frame, "springs", rep.DegenerateSprings)
	}
	for _, m := range s.metrics {
		m.Observe(s.state)
	}
	for _, o := range s.observers {
		o.OnStep(s.state, rep)
	}
	return rep
}

// Configuration returns a deep copy of the authoritative configuration.
func (s *Simulator) Configuration() topology.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Clone()
}

// State returns the live state. Callers must not modify it.
func (s *Simulator) State() *topology.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a deep copy of the live state.
func (s *Simulator) Snapshot() *topology.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Simulator) Frame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Frame
}

// DegenerateSprings counts zero-length spring evaluations since the last reset.
func (s *Simulator) DegenerateSprings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degenerate
}

func (s *Simulator) Integrator() string {
	return s.integrator.Name()
}

// Run advances the simulation by steps frames from its current state,
// recording a snapshot every recordEvery frames (and the first and last).
// It stops early when ctx is done or the state diverges.
func (s *Simulator) Run(ctx context.Context, steps, recordEvery int) (*Result, error) {
	if recordEvery <= 0 {
		recordEvery = 1
	}

	result := &Result{
		Frames:   make([]int, 0, steps/recordEvery+2),
		States:   make([]*topology.State, 0, steps/recordEvery+2),
		Energy:   make([]float64, 0, steps/recordEvery+2),
		Momentum: make([]mgl64.Vec2, 0, steps/recordEvery+2),
		Metrics:  make(map[string]float64),
	}

	s.mu.Lock()
	for _, m := range s.metrics {
		m.Reset()
	}
	initialEnergy := metrics.TotalEnergy(s.state)
	s.record(result)
	s.mu.Unlock()

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		s.mu.Lock()
		rep := s.step()
		result.StepsTaken++
		result.DegenerateSprings += rep.DegenerateSprings
		if !s.state.IsValid() {
			runErr = &SimError{Frame: s.state.Frame, Message: "invalid state (NaN/Inf)", Wrapped: ErrUnstable}
			s.record(result)
			s.mu.Unlock()
			break
		}
		if s.state.Frame%recordEvery == 0 || i == steps-1 {
			s.record(result)
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	finalEnergy := metrics.TotalEnergy(s.state)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.mu.Unlock()

	return result, runErr
}

func (s *Simulator) record(result *Result) {
	n := len(result.Frames)
	if n > 0 && result.Frames[n-1] == s.state.Frame {
		return
	}
	result.Frames = append(result.Frames, s.state.Frame)
	result.States = append(result.States, s.state.Clone())
	result.Energy = append(result.Energy, metrics.TotalEnergy(s.state))
	result.Momentum = append(result.Momentum, metrics.Momentum(s.state))
}
