package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/topology"
)

// ErrUnstable is reported by Run when a step produces NaN or Inf.
var ErrUnstable = errors.New("sim: state diverged (NaN or Inf)")

// Metric accumulates a scalar over the frames it observes.
type Metric interface {
	Name() string
	Observe(st *topology.State)
	Value() float64
	Reset()
}

// Observer is told about every completed step. The state is the live state
// and must not be modified or retained; observers must not call back into the
// simulator.
type Observer interface {
	OnStep(st *topology.State, rep integrators.Report)
}

type ObserverFunc func(st *topology.State, rep integrators.Report)

func (f ObserverFunc) OnStep(st *topology.State, rep integrators.Report) { f(st, rep) }

type Result struct {
	Frames            []int
	States            []*topology.State
	Energy            []float64
	Momentum          []mgl64.Vec2
	Metrics           map[string]float64
	EnergyDrift       float64
	StepsTaken        int
	DegenerateSprings int
}

type SimError struct {
	Frame   int
	Message string
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("frame %d: %s", e.Frame, e.Message)
}

func (e *SimError) Unwrap() error { return e.Wrapped }
