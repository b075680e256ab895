package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
)

func pair() topology.Configuration {
	return topology.Configuration{
		Atoms: []topology.Atom{
			{ID: 3, Mass: 1, X: -10, VX: 1},
			{ID: 7, Mass: 1, X: 10, VX: -1},
		},
		Springs: []topology.Spring{{ID: 1, Atom1: 3, Atom2: 7, Req: 15, K: 0.5}},
	}
}

func runPair(t *testing.T, steps, every int) (RunInfo, *sim.Result) {
	t.Helper()
	s, err := sim.New(pair())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	result, err := s.Run(context.Background(), steps, every)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	info := RunInfo{
		Scene:       "pair",
		Integrator:  s.Integrator(),
		Dt:          integrators.Dt,
		RecordEvery: every,
		Initial:     pair(),
	}
	return info, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	info, result := runPair(t, 20, 5)
	runID, err := st.Save(info, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "pair_") || len(runID) != len("pair_")+8 {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "pair" || meta.Integrator != "leapfrog" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Steps != 20 || meta.Atoms != 2 || meta.Springs != 1 {
		t.Errorf("unexpected counts: %+v", meta)
	}
	if len(meta.Initial.Atoms) != 2 || meta.Initial.Atoms[1].ID != 7 {
		t.Errorf("initial configuration not stored: %+v", meta.Initial)
	}

	table, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(table.Rows) != 5 {
		t.Errorf("expected 5 rows (frames 0,5,10,15,20), got %d", len(table.Rows))
	}
	if len(table.Header) != 4+2*4 {
		t.Errorf("unexpected header %v", table.Header)
	}
	if table.Header[4] != "a3_x" || table.Header[8] != "a7_x" {
		t.Errorf("atom columns not named by id: %v", table.Header)
	}
}

func TestTableColumn(t *testing.T) {
	st := New(t.TempDir())
	info, result := runPair(t, 10, 1)
	runID, err := st.Save(info, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	table, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}

	frames, err := table.Column("frame")
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 11 || frames[0] != 0 || frames[10] != 10 {
		t.Errorf("unexpected frames %v", frames)
	}

	x, err := table.Column("a3_x")
	if err != nil {
		t.Fatal(err)
	}
	if x[0] != -10 {
		t.Errorf("expected first x -10, got %f", x[0])
	}

	if _, err := table.Column("a99_x"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	info, result := runPair(t, 3, 1)
	for i := 0; i < 2; i++ {
		if _, err := st.Save(info, result); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	info, result := runPair(t, 1, 1)
	runID, err := st.Save(info, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "states.csv")); os.IsNotExist(err) {
		t.Error("states.csv not created")
	}
}

func TestExportJSON(t *testing.T) {
	info, result := runPair(t, 4, 2)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, info, result); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Steps != 4 || len(data.Frames) != 3 {
		t.Errorf("expected 4 steps and 3 frames, got %d and %d", data.Steps, len(data.Frames))
	}
	if data.Frames[2].Frame != 4 || len(data.Frames[2].Atoms) != 2 {
		t.Errorf("unexpected last frame %+v", data.Frames[2])
	}
}

func TestExportJSON_NonFinite(t *testing.T) {
	st := &topology.State{Atoms: []topology.Atom{{ID: 1, Mass: 1, X: math.NaN(), VX: math.Inf(1)}}}
	result := &sim.Result{
		Frames:   []int{0},
		States:   []*topology.State{st},
		Energy:   []float64{math.NaN()},
		Momentum: []mgl64.Vec2{{}},
		Metrics:  map[string]float64{"energy_drift": math.Inf(1)},
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunInfo{Scene: "diverged"}, result); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"energy": null`) {
		t.Errorf("expected null energy, got %s", buf.String())
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	a := data.Frames[0].Atoms[0]
	if !math.IsNaN(float64(a.X)) || !math.IsNaN(float64(a.VX)) || a.Mass != 1 {
		t.Errorf("unexpected atom %+v", a)
	}
	if _, ok := data.Metrics["energy_drift"]; ok {
		t.Error("non-finite metric exported")
	}
}

func TestLoadStates_Malformed(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{"bad value", "frame,energy\n0,x\n", "column energy"},
		{"extra field", "frame,energy\n0,1,x\n", "column 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.MkdirAll(filepath.Join(dir, "run"), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, "run", "states.csv"), []byte(tt.csv), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := New(dir).LoadStates("run")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
