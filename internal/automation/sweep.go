package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/metrics"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
)

// ParameterSweep runs one scene repeatedly while varying a single field of
// one atom or spring across [ParamMin, ParamMax].
type ParameterSweep struct {
	Integrator string
	Target     string // "atom" or "spring"
	TargetID   int
	ParamName  string // mass for atoms; k or req for springs
	ParamMin   float64
	ParamMax   float64
	NumSteps   int
	Steps      int
}

type SweepResult struct {
	ParamValue  float64
	FinalState  *topology.State
	MaxEnergy   float64
	MinEnergy   float64
	EnergyDrift float64
	Stable      bool
}

func (sw *ParameterSweep) apply(cfg *topology.Configuration, v float64) error {
	switch sw.Target {
	case "atom":
		i, ok := cfg.AtomIndex(sw.TargetID)
		if !ok {
			return topology.ErrUnknownAtom
		}
		if sw.ParamName != "mass" {
			return fmt.Errorf("atom parameter %s cannot be swept", sw.ParamName)
		}
		cfg.Atoms[i].Mass = v
	case "spring":
		i, ok := cfg.SpringIndex(sw.TargetID)
		if !ok {
			return topology.ErrUnknownSpring
		}
		switch sw.ParamName {
		case "k":
			cfg.Springs[i].K = v
		case "req":
			cfg.Springs[i].Req = v
		default:
			return fmt.Errorf("spring parameter %s cannot be swept", sw.ParamName)
		}
	default:
		return fmt.Errorf("unknown sweep target: %s", sw.Target)
	}
	return nil
}

// RunSweep executes a parameter sweep. A run that diverges is reported as
// unstable rather than failing the sweep.
func RunSweep(ctx context.Context, base topology.Configuration, sweep *ParameterSweep, logger *log.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if sweep.NumSteps < 1 {
		return nil, errors.New("sweep needs at least one value")
	}
	if _, err := integrators.New(sweep.Integrator); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base.Clone()
		if err := sweep.apply(&cfg, paramVal); err != nil {
			return nil, err
		}

		integ, _ := integrators.New(sweep.Integrator)
		s, err := sim.New(cfg, sim.WithIntegrator(integ))
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		result, err := s.Run(ctx, sweep.Steps, 1)
		stable := true
		if err != nil {
			if !errors.Is(err, sim.ErrUnstable) {
				return nil, err
			}
			stable = false
		}

		summary := metrics.Summarize(result.Energy)
		results = append(results, SweepResult{
			ParamValue:  paramVal,
			FinalState:  s.Snapshot(),
			MaxEnergy:   summary.Max,
			MinEnergy:   summary.Min,
			EnergyDrift: result.EnergyDrift,
			Stable:      stable,
		})

		logger.Info("sweep", "run", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal, "stable", stable)
	}

	return results, nil
}

// MonteCarloConfig perturbs every atom position uniformly by up to
// Perturbation in each axis.
type MonteCarloConfig struct {
	Integrator   string
	Perturbation float64
	NumTrials    int
	Steps        int
	Radius       float64
	Seed         int64
}

type MonteCarloResult struct {
	TrialID    int
	Initial    topology.Configuration
	FinalState *topology.State
	Stable     bool // stayed finite and inside Radius for every frame
}

func RunMonteCarlo(ctx context.Context, base topology.Configuration, cfg *MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if _, err := integrators.New(cfg.Integrator); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		initial := base.Clone()
		for i := range initial.Atoms {
			initial.Atoms[i].X += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
			initial.Atoms[i].Y += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		}

		integ, _ := integrators.New(cfg.Integrator)
		stability := metrics.NewStability(cfg.Radius)
		s, err := sim.New(initial, sim.WithIntegrator(integ), sim.WithMetrics(stability))
		if err != nil {
			return nil, err
		}

		_, err = s.Run(ctx, cfg.Steps, cfg.Steps)
		if err != nil && !errors.Is(err, sim.ErrUnstable) {
			return nil, err
		}

		results = append(results, MonteCarloResult{
			TrialID:    trial,
			Initial:    initial,
			FinalState: s.Snapshot(),
			Stable:     err == nil && stability.Value() == 1,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "trials", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
