package storage

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
)

// Float is a float64 that encodes NaN and Inf as JSON null, so a diverged
// run can still be exported. null decodes back to NaN.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

type ExportAtom struct {
	ID    int    `json:"id"`
	Mass  Float  `json:"mass"`
	X     Float  `json:"x"`
	Y     Float  `json:"y"`
	VX    Float  `json:"vx"`
	VY    Float  `json:"vy"`
	Color string `json:"color,omitempty"`
}

type ExportFrame struct {
	Frame  int          `json:"frame"`
	Energy Float        `json:"energy"`
	Atoms  []ExportAtom `json:"atoms"`
}

type ExportData struct {
	Scene      string                 `json:"scene"`
	Integrator string                 `json:"integrator"`
	Dt         float64                `json:"dt"`
	Steps      int                    `json:"steps"`
	Initial    topology.Configuration `json:"initial"`
	Frames     []ExportFrame          `json:"frames"`
	Metrics    map[string]float64     `json:"metrics"`
}

// ExportJSON writes every recorded frame of result as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	data := ExportData{
		Scene:      info.Scene,
		Integrator: info.Integrator,
		Dt:         info.Dt,
		Steps:      result.StepsTaken,
		Initial:    info.Initial,
		Frames:     make([]ExportFrame, len(result.States)),
		Metrics:    finite(result.Metrics),
	}

	for i, st := range result.States {
		atoms := make([]ExportAtom, len(st.Atoms))
		for j, a := range st.Atoms {
			atoms[j] = ExportAtom{
				ID:    a.ID,
				Mass:  Float(a.Mass),
				X:     Float(a.X),
				Y:     Float(a.Y),
				VX:    Float(a.VX),
				VY:    Float(a.VY),
				Color: a.Color,
			}
		}
		data.Frames[i] = ExportFrame{
			Frame:  st.Frame,
			Energy: Float(result.Energy[i]),
			Atoms:  atoms,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
