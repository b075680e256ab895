package sim

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/metrics"
	"github.com/san-kum/springfarm/internal/topology"
)

func pairConfig() topology.Configuration {
	return topology.Configuration{
		Atoms: []topology.Atom{
			{ID: 1, Mass: 1, X: -10, VX: 1},
			{ID: 2, Mass: 1, X: 10, VX: -1},
		},
		Springs: []topology.Spring{{ID: 1, Atom1: 1, Atom2: 2, Req: 15, K: 0.5}},
	}
}

func TestRun_RecordsFrames(t *testing.T) {
	s, err := New(pairConfig())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	result, err := s.Run(context.Background(), 10, 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []int{0, 3, 6, 9, 10}
	if !reflect.DeepEqual(result.Frames, want) {
		t.Errorf("frames = %v, want %v", result.Frames, want)
	}
	if len(result.States) != len(want) || len(result.Energy) != len(want) || len(result.Momentum) != len(want) {
		t.Errorf("series lengths differ: %d states, %d energy, %d momentum",
			len(result.States), len(result.Energy), len(result.Momentum))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if s.Frame() != 10 {
		t.Errorf("expected frame 10, got %d", s.Frame())
	}
	for i, st := range result.States {
		if st.Frame != want[i] {
			t.Errorf("state %d has frame %d", i, st.Frame)
		}
	}
}

func TestRun_SnapshotsAreCopies(t *testing.T) {
	s, _ := New(pairConfig())
	result, _ := s.Run(context.Background(), 2, 1)
	first := result.States[0].Atoms[0].X
	s.Step()
	if result.States[0].Atoms[0].X != first {
		t.Error("recorded state changed after stepping")
	}
	if first != -10 {
		t.Errorf("expected first recorded x -10, got %f", first)
	}
}

func TestRun_Cancelled(t *testing.T) {
	s, _ := New(pairConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, 100, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
	if s.Frame() != 0 {
		t.Errorf("expected frame 0, got %d", s.Frame())
	}
}

func TestRun_Unstable(t *testing.T) {
	cfg := topology.Configuration{
		Atoms: []topology.Atom{{ID: 1, Mass: 1, X: math.MaxFloat64, VX: math.MaxFloat64}},
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	_, err = s.Run(context.Background(), 5, 1)
	if !errors.Is(err, ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}
	var simErr *SimError
	if !errors.As(err, &simErr) || simErr.Frame != 1 {
		t.Errorf("expected SimError at frame 1, got %v", err)
	}
}

func TestRun_Metrics(t *testing.T) {
	s, _ := New(pairConfig(), WithMetrics(metrics.NewEnergyDrift(), metrics.NewMomentumDrift()))

	result, err := s.Run(context.Background(), 200, 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	drift, ok := result.Metrics["energy_drift"]
	if !ok {
		t.Fatal("energy_drift missing")
	}
	if drift < 0 || drift > 0.05 {
		t.Errorf("leapfrog energy drift too large: %f", drift)
	}
	if p := result.Metrics["momentum_drift"]; p > 1e-9 {
		t.Errorf("momentum drift %g", p)
	}
}

func TestObserver_CalledEveryStep(t *testing.T) {
	s, _ := New(pairConfig())
	var frames []int
	s.AddObserver(ObserverFunc(func(st *topology.State, rep integrators.Report) {
		frames = append(frames, st.Frame)
	}))
	for i := 0; i < 4; i++ {
		s.Step()
	}
	if !reflect.DeepEqual(frames, []int{1, 2, 3, 4}) {
		t.Errorf("observer saw frames %v", frames)
	}
}

func TestReset_PanicsOnBrokenConfiguration(t *testing.T) {
	s, _ := New(pairConfig())
	s.config.Springs[0].Atom2 = 99

	defer func() {
		if recover() == nil {
			t.Error("expected panic for a configuration that no longer resolves")
		}
	}()
	s.Reset()
}

func TestSimulator_ConcurrentUse(t *testing.T) {
	s, err := New(pairConfig())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	const rounds = 200
	errs := make(chan error, 4*rounds)
	var wg sync.WaitGroup
	wg.Add(5)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			s.Step()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			cfg := s.Configuration()
			cfg.Atoms[0].VX += 0.01
			errs <- s.ResetTo(cfg)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			errs <- s.EditSpring(1, func(sp *topology.Spring) { sp.K = 0.5 + float64(i%3)*0.1 })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			snap := s.Snapshot()
			if len(snap.Atoms) != 2 || len(snap.Springs) != 1 {
				errs <- errors.New("snapshot saw a partial state")
			}
			snap.Atoms[0].X = 1e9
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			s.Reset()
			_ = s.Frame()
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent call failed: %v", err)
		}
	}

	cfg := s.Configuration()
	if _, err := topology.Resolve(cfg); err != nil {
		t.Errorf("configuration left invalid: %v", err)
	}
	if st := s.Snapshot(); st.Atoms[0].X == 1e9 {
		t.Error("snapshot aliased the live state")
	}
}

func TestEnsemble_Run(t *testing.T) {
	names := []string{"leapfrog", "rk4", "symplectic_euler"}
	e := NewEnsemble(pairConfig(), names, func() []Metric {
		return []Metric{metrics.NewEnergyDrift()}
	}, nil)

	results, err := e.Run(context.Background(), 50, 25)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != len(names) {
		t.Fatalf("expected %d results, got %d", len(names), len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 50 {
			t.Errorf("%s: expected 50 steps, got %d", names[i], r.StepsTaken)
		}
		if _, ok := r.Metrics["energy_drift"]; !ok {
			t.Errorf("%s: energy_drift missing", names[i])
		}
	}

	// the leapfrog run matches a plain simulator
	s, _ := New(pairConfig())
	solo, _ := s.Run(context.Background(), 50, 25)
	if !reflect.DeepEqual(solo.States, results[0].States) {
		t.Error("ensemble leapfrog differs from a standalone run")
	}
}

func TestEnsemble_UnknownIntegrator(t *testing.T) {
	e := NewEnsemble(pairConfig(), []string{"leapfrog", "verlet9"}, nil, nil)
	if _, err := e.Run(context.Background(), 1, 1); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
