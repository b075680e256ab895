package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
	"gopkg.in/yaml.v3"
)

var ErrUnknownOp = errors.New("automation: unknown action")

// Script is a sequence of edits and steps applied to one simulator.
type Script struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Actions     []Action `yaml:"actions"`
}

// Action is one scripted operation. Which fields matter depends on Op:
//
//	add_atom       atom
//	add_spring     spring
//	connect        atom1, atom2, k
//	remove_atom    id
//	remove_spring  id
//	edit_atom      id, set (mass, x, y, vx, vy)
//	edit_spring    id, set (req, k, atom1, atom2)
//	step           steps (default 1)
//	reset
type Action struct {
	Op     string             `yaml:"op"`
	ID     int                `yaml:"id,omitempty"`
	Atom   *topology.Atom     `yaml:"atom,omitempty"`
	Spring *topology.Spring   `yaml:"spring,omitempty"`
	Atom1  int                `yaml:"atom1,omitempty"`
	Atom2  int                `yaml:"atom2,omitempty"`
	K      float64            `yaml:"k,omitempty"`
	Steps  int                `yaml:"steps,omitempty"`
	Set    map[string]float64 `yaml:"set,omitempty"`
}

// ActionError reports which action of a script failed.
type ActionError struct {
	Index int
	Op    string
	Err   error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s): %v", e.Index+1, e.Op, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	return &script, nil
}

// Runner applies scripts to a simulator.
type Runner struct {
	sim    *sim.Simulator
	logger *log.Logger
}

func NewRunner(s *sim.Simulator, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{sim: s, logger: logger}
}

// Run applies every action in order and stops at the first failure. Actions
// applied before the failure stay applied.
func (r *Runner) Run(ctx context.Context, script *Script) error {
	for i, a := range script.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Debug("action", "index", i+1, "op", a.Op)
		if err := r.apply(ctx, a); err != nil {
			return &ActionError{Index: i, Op: a.Op, Err: err}
		}
	}
	r.logger.Info("script done", "name", script.Name, "actions", len(script.Actions), "frame", r.sim.Frame())
	return nil
}

func (r *Runner) apply(ctx context.Context, a Action) error {
	switch a.Op {
	case "add_atom":
		if a.Atom == nil {
			return errors.New("missing atom")
		}
		atom := *a.Atom
		if atom.ID == 0 {
			atom.ID = r.sim.Configuration().NextAtomID()
		}
		return r.sim.AddAtom(atom)

	case "add_spring":
		if a.Spring == nil {
			return errors.New("missing spring")
		}
		spring := *a.Spring
		if spring.ID == 0 {
			spring.ID = r.sim.Configuration().NextSpringID()
		}
		return r.sim.AddSpring(spring)

	case "connect":
		_, err := r.sim.Connect(a.Atom1, a.Atom2, a.K)
		return err

	case "remove_atom":
		return r.sim.RemoveAtom(a.ID)

	case "remove_spring":
		return r.sim.RemoveSpring(a.ID)

	case "edit_atom":
		// reject unknown fields before anything is committed
		if err := SetAtom(&topology.Atom{}, a.Set); err != nil {
			return err
		}
		return r.sim.EditAtom(a.ID, func(atom *topology.Atom) {
			_ = SetAtom(atom, a.Set)
		})

	case "edit_spring":
		if err := SetSpring(&topology.Spring{}, a.Set); err != nil {
			return err
		}
		return r.sim.EditSpring(a.ID, func(sp *topology.Spring) {
			_ = SetSpring(sp, a.Set)
		})

	case "step":
		n := a.Steps
		if n <= 0 {
			n = 1
		}
		_, err := r.sim.Run(ctx, n, n)
		return err

	case "reset":
		r.sim.Reset()
		return nil
	}
	return ErrUnknownOp
}

// SetAtom assigns the named fields (mass, x, y, vx, vy) of atom.
func SetAtom(atom *topology.Atom, set map[string]float64) error {
	for k, v := range set {
		switch k {
		case "mass":
			atom.Mass = v
		case "x":
			atom.X = v
		case "y":
			atom.Y = v
		case "vx":
			atom.VX = v
		case "vy":
			atom.VY = v
		default:
			return fmt.Errorf("unknown atom field: %s", k)
		}
	}
	return nil
}

// SetSpring assigns the named fields (req, k, atom1, atom2) of sp.
func SetSpring(sp *topology.Spring, set map[string]float64) error {
	for k, v := range set {
		switch k {
		case "req":
			sp.Req = v
		case "k":
			sp.K = v
		case "atom1":
			sp.Atom1 = int(v)
		case "atom2":
			sp.Atom2 = int(v)
		default:
			return fmt.Errorf("unknown spring field: %s", k)
		}
	}
	return nil
}
