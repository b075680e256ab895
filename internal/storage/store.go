package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID                string                 `json:"id"`
	Scene             string                 `json:"scene"`
	Timestamp         time.Time              `json:"timestamp"`
	Dt                float64                `json:"dt"`
	Steps             int                    `json:"steps"`
	RecordEvery       int                    `json:"record_every"`
	Integrator        string                 `json:"integrator"`
	Atoms             int                    `json:"atoms"`
	Springs           int                    `json:"springs"`
	EnergyDrift       float64                `json:"energy_drift"`
	DegenerateSprings int                    `json:"degenerate_springs"`
	Metrics           map[string]float64     `json:"metrics"`
	Initial           topology.Configuration `json:"initial"`
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Scene       string
	Integrator  string
	Dt          float64
	RecordEvery int
	Initial     topology.Configuration
}

// Save writes result under a new run directory and returns its id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", info.Scene, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:                runID,
		Scene:             info.Scene,
		Timestamp:         time.Now(),
		Dt:                info.Dt,
		Steps:             result.StepsTaken,
		RecordEvery:       info.RecordEvery,
		Integrator:        info.Integrator,
		Atoms:             len(info.Initial.Atoms),
		Springs:           len(info.Initial.Springs),
		EnergyDrift:       orZero(result.EnergyDrift),
		DegenerateSprings: result.DegenerateSprings,
		Metrics:           finite(result.Metrics),
		Initial:           info.Initial,
	}

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// Header returns the states.csv columns for a state with the given atoms.
func Header(atoms []topology.Atom) []string {
	header := []string{"frame", "energy", "px", "py"}
	for _, a := range atoms {
		header = append(header,
			fmt.Sprintf("a%d_x", a.ID),
			fmt.Sprintf("a%d_y", a.ID),
			fmt.Sprintf("a%d_vx", a.ID),
			fmt.Sprintf("a%d_vy", a.ID),
		)
	}
	return header
}

func writeStates(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(result.States) > 0 {
		if err := w.Write(Header(result.States[0].Atoms)); err != nil {
			return err
		}
	}

	for i, st := range result.States {
		row := []string{
			strconv.Itoa(st.Frame),
			formatFloat(result.Energy[i]),
			formatFloat(result.Momentum[i].X()),
			formatFloat(result.Momentum[i].Y()),
		}
		for _, a := range st.Atoms {
			row = append(row, formatFloat(a.X), formatFloat(a.Y), formatFloat(a.VX), formatFloat(a.VY))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// finite drops NaN and Inf values, which encoding/json refuses.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func orZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Table is the parsed content of a states.csv file.
type Table struct {
	Header []string
	Rows   [][]float64
}

// Column returns every value of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	col := -1
	for i, h := range t.Header {
		if h == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("unknown column: %s", name)
	}

	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if col < len(row) {
			out = append(out, row[col])
		}
	}
	return out, nil
}

func (s *Store) LoadStates(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	table := &Table{Rows: make([][]float64, 0)}
	if len(records) == 0 {
		return table, nil
	}
	table.Header = records[0]

	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				name := strconv.Itoa(j + 1)
				if j < len(table.Header) {
					name = table.Header[j]
				}
				return nil, fmt.Errorf("states.csv line %d column %s: %w", i+2, name, err)
			}
			row[j] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
