package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springfarm/internal/analysis"
	"github.com/san-kum/springfarm/internal/export"
	"github.com/san-kum/springfarm/internal/metrics"
	"github.com/san-kum/springfarm/internal/storage"
	"github.com/san-kum/springfarm/internal/topology"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tINTEG\tATOMS\tSPRINGS\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\t%d\t%.2e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Integrator,
			run.Atoms,
			run.Springs,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	table, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(table.Rows))

	columns := []string{"energy", "px", "py"}
	if column != "" {
		columns = []string{column}
	}

	for _, name := range columns {
		data, err := table.Column(name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs frame"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	table, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, integrator: %s, frames: %d\n\n", meta.Scene, meta.Integrator, len(table.Rows))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, name := range table.Header {
		if name == "frame" {
			continue
		}
		data, err := table.Column(name)
		if err != nil {
			return err
		}
		s := metrics.Summarize(data)
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	energy, err := table.Column("energy")
	if err != nil {
		return err
	}
	fmt.Printf("\nenergy spread: %.3e\n", metrics.Summarize(energy).RelativeSpread())
	if meta.DegenerateSprings > 0 {
		fmt.Printf("degenerate springs: %d\n", meta.DegenerateSprings)
	}

	every := max(meta.RecordEvery, 1)
	frames, err := table.Column("frame")
	if err != nil {
		return err
	}
	n := onGrid(frames, every)
	interval := meta.Dt * float64(every)
	fmt.Println("\ndominant frequencies:")
	for _, a := range meta.Initial.Atoms {
		name := fmt.Sprintf("a%d_x", a.ID)
		xs, err := table.Column(name)
		if err != nil {
			return err
		}
		freq, amp := analysis.DominantFrequency(xs[:min(n, len(xs))], interval)
		if freq == 0 {
			fmt.Printf("  %s: none\n", name)
			continue
		}
		fmt.Printf("  %s: %.4f (period %.2f, amplitude %.3g)\n", name, freq, 1/freq, amp)
	}
	return nil
}

// onGrid returns how many leading samples are exactly every frames apart.
// A run whose length is not a multiple of every records one extra last frame.
func onGrid(frames []float64, every int) int {
	step := float64(every)
	for i := 1; i < len(frames); i++ {
		if frames[i]-frames[i-1] != step {
			return i
		}
	}
	return len(frames)
}

// phasePlot draws one atom's x against vx, or y against vy with --axis y.
func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]
	atomID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid atom id %q: %w", args[1], err)
	}
	if phaseAxis != "x" && phaseAxis != "y" {
		return fmt.Errorf("axis must be x or y, got %q", phaseAxis)
	}

	st := storage.New(dataDir)
	table, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	posName := fmt.Sprintf("a%d_%s", atomID, phaseAxis)
	velName := fmt.Sprintf("a%d_v%s", atomID, phaseAxis)
	xs, err := table.Column(posName)
	if err != nil {
		return err
	}
	vs, err := table.Column(velName)
	if err != nil {
		return err
	}

	p := analysis.NewPortrait(posName, xs, velName, vs)
	if len(p.Points) == 0 {
		return fmt.Errorf("no data to plot")
	}
	lo, hi := p.Bounds()

	fmt.Printf("phase space: %s\n", runID)
	fmt.Printf("%s in [%.2f, %.2f], %s in [%.2f, %.2f]\n\n", posName, lo[0], hi[0], velName, lo[1], hi[1])
	fmt.Print(p.ASCII(70, 20))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// svgRun draws the run's initial scene moved to its last recorded frame,
// with every recorded position as a trail.
func svgRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data")
	}

	scene, trails, err := lastFrame(meta.Initial, table)
	if err != nil {
		return err
	}
	svg := export.SceneToSVG(scene, trails)

	if svgOut == "" {
		_, err = fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

// lastFrame replays the recorded positions of table onto initial.
func lastFrame(initial topology.Configuration, table *storage.Table) (topology.Configuration, map[int][]mgl64.Vec2, error) {
	scene := initial.Clone()
	trails := make(map[int][]mgl64.Vec2, len(scene.Atoms))

	for i := range scene.Atoms {
		a := &scene.Atoms[i]
		prefix := "a" + strconv.Itoa(a.ID)
		xs, err := table.Column(prefix + "_x")
		if err != nil {
			return topology.Configuration{}, nil, err
		}
		ys, err := table.Column(prefix + "_y")
		if err != nil {
			return topology.Configuration{}, nil, err
		}

		n := min(len(xs), len(ys))
		trail := make([]mgl64.Vec2, n)
		for j := 0; j < n; j++ {
			trail[j] = mgl64.Vec2{xs[j], ys[j]}
		}
		trails[a.ID] = trail
		if n > 0 {
			a.X, a.Y = xs[n-1], ys[n-1]
		}
	}
	return scene, trails, nil
}
