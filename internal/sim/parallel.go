package sim

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/topology"
)

// Ensemble runs one configuration under several integrators side by side.
// Every run owns its own simulator and state.
type Ensemble struct {
	config      topology.Configuration
	integrators []string
	metrics     func() []Metric
	logger      *log.Logger
}

func NewEnsemble(cfg topology.Configuration, integratorNames []string, metrics func() []Metric, logger *log.Logger) *Ensemble {
	return &Ensemble{
		config:      cfg.Clone(),
		integrators: integratorNames,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run returns one result per integrator, in the order they were given.
func (e *Ensemble) Run(ctx context.Context, steps, recordEvery int) ([]*Result, error) {
	sims := make([]*Simulator, len(e.integrators))
	for i, name := range e.integrators {
		integ, err := integrators.New(name)
		if err != nil {
			return nil, err
		}
		opts := []Option{WithIntegrator(integ)}
		if e.metrics != nil {
			opts = append(opts, WithMetrics(e.metrics()...))
		}
		if e.logger != nil {
			opts = append(opts, WithLogger(e.logger.With("integrator", name)))
		}
		s, err := New(e.config, opts...)
		if err != nil {
			return nil, err
		}
		sims[i] = s
	}

	results := make([]*Result, len(sims))
	errs := make([]error, len(sims))

	var wg sync.WaitGroup
	for i := range sims {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = sims[idx].Run(ctx, steps, recordEvery)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}

	return results, nil
}
