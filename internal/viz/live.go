package viz

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springfarm/internal/export"
	"github.com/san-kum/springfarm/internal/metrics"
	"github.com/san-kum/springfarm/internal/sim"
	"github.com/san-kum/springfarm/internal/topology"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 46
	historyCapacity = 600
	trailLength     = 40
	cursorStep      = 5.0
	massFactor      = 1.25
	defaultK        = 1.0
)

type TickMsg time.Time

// Model is the live host: it steps the simulator on every tick while
// playing and turns key presses into edits.
type Model struct {
	sim    *sim.Simulator
	logger *log.Logger
	name   string
	tick   time.Duration

	playing       bool
	width, height int
	canvas        *Canvas
	camera        *Camera

	cursor    mgl64.Vec2
	selAtom   int
	selSpring int
	endpoint  int // first atom of a spring being connected
	editor    *editor

	energyHistory  []float64
	kineticHistory []float64
	trails         map[int][]mgl64.Vec2
	showTrails     bool

	status   string
	failed   bool
	frames   int
	recorder *Recorder
	showHelp bool

	nextColor int
	gifPath   string
	svgPath   string
}

type Option func(*Model)

func WithLogger(logger *log.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithTick sets the interval between simulation steps while playing.
func WithTick(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tick = d
		}
	}
}

// WithOutput sets where the g and w keys write their GIF and SVG files.
func WithOutput(gifPath, svgPath string) Option {
	return func(m *Model) {
		m.gifPath, m.svgPath = gifPath, svgPath
	}
}

// NewModel starts paused, like a freshly loaded scene.
func NewModel(s *sim.Simulator, name string, opts ...Option) Model {
	m := Model{
		sim:            s,
		logger:         log.New(io.Discard),
		name:           name,
		tick:           50 * time.Millisecond,
		width:          width,
		height:         height,
		canvas:         NewCanvas(width-panelWidth, height-2),
		energyHistory:  make([]float64, 0, historyCapacity),
		kineticHistory: make([]float64, 0, historyCapacity),
		trails:         make(map[int][]mgl64.Vec2),
		showTrails:     true,
		status:         "press space to play, ? for help",
		nextColor:      len(s.Configuration().Atoms),
		gifPath:        "springfarm.gif",
		svgPath:        "springfarm.svg",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.camera = NewCamera(m.fps())
	m.record(s.State())
	return m
}

func (m Model) fps() int {
	fps := int(time.Second / m.tick)
	if fps < 1 {
		return 1
	}
	return fps
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if m.editor != nil {
			return m.editorKey(msg), nil
		}
		return m.handleKey(msg)
	case TickMsg:
		if m.playing {
			m.advance()
		}
		m.camera.Update()
		m.frames++
		if m.recorder != nil {
			m.draw()
			m.recorder.Capture(m.canvas)
		}
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cw := max(w-panelWidth-4, 20)
	ch := max(h-2, 8)
	m.canvas = NewCanvas(cw, ch)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recorder != nil {
			m.stopRecording()
		}
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case " ":
		m.playing = !m.playing
	case "n":
		if !m.playing {
			m.advance()
		}
	case "r":
		m.playing = false
		m.sim.Reset()
		m.clearHistory()
		m.say("stopped at frame 0")
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "enter":
		m.selectNearest()
	case "tab":
		m.cycleAtom(1)
	case "shift+tab":
		m.cycleAtom(-1)
	case "s":
		m.cycleSpring()
	case "a":
		m.addAtom()
	case "c":
		m.connect()
	case "esc":
		if m.endpoint != 0 {
			m.endpoint = 0
			m.say("spring cancelled")
		}
	case "x":
		m.deleteAtom()
	case "d":
		m.deleteSpring()
	case "+", "=":
		m.scaleMass(massFactor)
	case "-", "_":
		m.scaleMass(1 / massFactor)
	case "e":
		m.openAtomEditor()
	case "E":
		m.openSpringEditor()
	case "z":
		m.camera.ZoomIn()
	case "Z":
		m.camera.ZoomOut()
	case "t":
		NextTheme()
	case "p":
		m.showTrails = !m.showTrails
	case "g":
		if m.recorder != nil {
			m.stopRecording()
		} else {
			m.recorder = NewRecorder(int(m.tick / (10 * time.Millisecond)))
			m.say("recording")
		}
	case "w":
		m.writeSVG()
	}
	return m, nil
}

// advance steps once and records the new state. A diverged state pauses
// the simulation.
func (m *Model) advance() {
	m.sim.Step()
	st := m.sim.State()
	if !st.IsValid() {
		m.playing = false
		m.fail(fmt.Errorf("state diverged at frame %d, press r", st.Frame))
		return
	}
	m.record(st)
}

func (m *Model) record(st *topology.State) {
	m.energyHistory = append(m.energyHistory, metrics.TotalEnergy(st))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	m.kineticHistory = append(m.kineticHistory, metrics.KineticEnergy(st))
	if len(m.kineticHistory) > historyCapacity {
		m.kineticHistory = m.kineticHistory[1:]
	}
	for _, a := range st.Atoms {
		trail := append(m.trails[a.ID], a.Pos())
		if len(trail) > trailLength {
			trail = trail[1:]
		}
		m.trails[a.ID] = trail
	}
}

func (m *Model) clearHistory() {
	m.energyHistory = m.energyHistory[:0]
	m.kineticHistory = m.kineticHistory[:0]
	m.trails = make(map[int][]mgl64.Vec2)
	m.record(m.sim.State())
}

func (m *Model) say(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.failed = false
}

func (m *Model) fail(err error) {
	m.status = err.Error()
	m.failed = true
	m.logger.Warn("edit failed", "err", err)
}

// edited reports whether err is nil. Successful edits restart the
// simulation, so the recorded history is dropped.
func (m *Model) edited(err error, format string, args ...any) bool {
	if err != nil {
		m.fail(err)
		return false
	}
	m.clearHistory()
	m.say(format, args...)
	m.logger.Info(m.status)
	return true
}

func (m *Model) moveCursor(dx, dy float64) {
	step := cursorStep / m.camera.Target()
	m.cursor = m.cursor.Add(mgl64.Vec2{dx * step, dy * step})
}

func (m *Model) selectAtom(id int) {
	m.selAtom = id
	if a, ok := m.sim.State().AtomByID(id); ok {
		m.cursor = a.Pos()
	}
}

func (m *Model) selectNearest() {
	best, bestDist := 0, math.Inf(1)
	for _, a := range m.sim.State().Atoms {
		if d := a.Pos().Sub(m.cursor).Len(); d < bestDist {
			best, bestDist = a.ID, d
		}
	}
	if best == 0 {
		m.say("no atoms")
		return
	}
	m.selectAtom(best)
}

func (m *Model) cycleAtom(dir int) {
	atoms := m.sim.Configuration().Atoms
	if len(atoms) == 0 {
		m.selAtom = 0
		return
	}
	next := 0
	if dir < 0 {
		next = len(atoms) - 1
	}
	for i, a := range atoms {
		if a.ID == m.selAtom {
			next = (i + dir + len(atoms)) % len(atoms)
			break
		}
	}
	m.selectAtom(atoms[next].ID)
}

func (m *Model) cycleSpring() {
	springs := m.sim.Configuration().Springs
	if len(springs) == 0 {
		m.selSpring = 0
		return
	}
	next := 0
	for i, sp := range springs {
		if sp.ID == m.selSpring {
			next = (i + 1) % len(springs)
			break
		}
	}
	m.selSpring = springs[next].ID
}

func (m *Model) addAtom() {
	atom := topology.Atom{
		ID:    m.sim.Configuration().NextAtomID(),
		Mass:  1,
		X:     m.cursor.X(),
		Y:     m.cursor.Y(),
		Color: AtomColors[m.nextColor%len(AtomColors)],
	}
	if m.edited(m.sim.AddAtom(atom), "added atom %d", atom.ID) {
		m.nextColor++
		m.selAtom = atom.ID
	}
}

// connect picks the selected atom as the first endpoint, or joins it to the
// endpoint picked before.
func (m *Model) connect() {
	switch {
	case m.selAtom == 0:
		m.say("select an atom first")
	case m.endpoint == 0:
		m.endpoint = m.selAtom
		m.say("spring from atom %d: select the other end, c to join", m.endpoint)
	case m.endpoint == m.selAtom:
		m.say("select a different atom")
	default:
		from, to := m.endpoint, m.selAtom
		m.endpoint = 0
		id, err := m.sim.Connect(from, to, defaultK)
		if m.edited(err, "spring %d joins atoms %d and %d", id, from, to) {
			m.selSpring = id
		}
	}
}

func (m *Model) deleteAtom() {
	if m.selAtom == 0 {
		m.say("no atom selected")
		return
	}
	id := m.selAtom
	if !m.edited(m.sim.RemoveAtom(id), "deleted atom %d", id) {
		return
	}
	m.selAtom = 0
	if m.endpoint == id {
		m.endpoint = 0
	}
	if _, ok := m.sim.Configuration().Spring(m.selSpring); !ok {
		m.selSpring = 0
	}
}

func (m *Model) deleteSpring() {
	if m.selSpring == 0 {
		m.say("no spring selected")
		return
	}
	id := m.selSpring
	if m.edited(m.sim.RemoveSpring(id), "deleted spring %d", id) {
		m.selSpring = 0
	}
}

func (m *Model) scaleMass(f float64) {
	if m.selAtom == 0 {
		m.say("no atom selected")
		return
	}
	var mass float64
	err := m.sim.EditAtom(m.selAtom, func(a *topology.Atom) {
		a.Mass *= f
		mass = a.Mass
	})
	m.edited(err, "atom %d mass %.3g", m.selAtom, mass)
}

func (m *Model) stopRecording() {
	n := m.recorder.Frames()
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.fail(err)
	} else {
		m.say("wrote %d frames to %s", n, m.gifPath)
	}
	m.recorder = nil
}

// writeSVG saves the live positions with the current configuration's
// springs and colors.
func (m *Model) writeSVG() {
	cfg := m.sim.Configuration()
	for _, a := range m.sim.State().Atoms {
		if i, ok := cfg.AtomIndex(a.ID); ok {
			cfg.Atoms[i].X, cfg.Atoms[i].Y = a.X, a.Y
		}
	}
	var trails map[int][]mgl64.Vec2
	if m.showTrails {
		trails = m.trails
	}
	if err := os.WriteFile(m.svgPath, []byte(export.SceneToSVG(cfg, trails)), 0644); err != nil {
		m.fail(err)
		return
	}
	m.say("wrote %s", m.svgPath)
}

func (m *Model) draw() {
	c := m.canvas
	c.Clear()
	cw, ch := c.SubSize()
	project := func(p mgl64.Vec2) (int, int) { return m.camera.Project(p, cw, ch) }

	ox, oy := project(mgl64.Vec2{})
	c.DrawDashed(0, oy, cw-1, oy)
	c.DrawDashed(ox, 0, ox, ch-1)

	st := m.sim.State()
	colors := make(map[int]string, len(st.Atoms))
	for _, a := range st.Atoms {
		colors[a.ID] = a.Color
	}

	if m.showTrails {
		for id, trail := range m.trails {
			for _, p := range trail {
				x, y := project(p)
				c.SetInk(x, y, colors[id])
			}
		}
	}

	for _, sp := range st.Springs {
		x1, y1 := project(st.Atoms[sp.Index1].Pos())
		x2, y2 := project(st.Atoms[sp.Index2].Pos())
		ink := "spring"
		if sp.ID == m.selSpring {
			ink = "select"
		}
		c.DrawLineInk(x1, y1, x2, y2, ink)
	}

	if m.endpoint != 0 {
		if a, ok := st.AtomByID(m.endpoint); ok {
			x1, y1 := project(a.Pos())
			x2, y2 := project(m.cursor)
			c.DrawDashed(x1, y1, x2, y2)
		}
	}

	for _, a := range st.Atoms {
		x, y := project(a.Pos())
		r := m.camera.Radius(export.AtomRadius(a.Mass), cw, ch)
		c.Disc(x, y, r, a.Color)
		if a.ID == m.selAtom {
			c.Ring(x, y, r+2, "select")
		}
	}

	cx, cy := project(m.cursor)
	c.Cross(cx, cy, 2, "cursor")
}

// View renders the canvas with the side panel.
func (m Model) View() string {
	m.draw()
	base := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	canvasView := lipgloss.NewStyle().Padding(0, 1).Render(m.canvas.Render(base, Ink))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle().Render(m.panel()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func (m Model) panel() string {
	var s strings.Builder
	st := m.sim.State()

	s.WriteString(GradientText("SPRINGFARM", CurrentTheme.Primary, CurrentTheme.Accent))
	s.WriteString("  " + valueStyle().Render(m.name) + "\n")

	status := "⏸ PAUSED"
	if m.playing {
		status = "▶ PLAYING " + AnimatedSpinner(m.frames)
	}
	s.WriteString(statusStyle(m.playing).Render(status))
	if m.recorder != nil {
		s.WriteString("  " + errorStyle().Render(fmt.Sprintf("● REC %d", m.recorder.Frames())))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle().Render(label) + valueStyle().Render(value) + "\n")
	}

	kinetic, total := metrics.KineticEnergy(st), metrics.TotalEnergy(st)
	row("Frame", fmt.Sprintf("%d", st.Frame))
	row("Energy", fmt.Sprintf("%.3f", total))
	if total > 0 {
		row("Kinetic", ProgressBar(kinetic/total, 16))
	}
	if n := len(m.kineticHistory); n > 1 {
		row("", Sparkline(m.kineticHistory[max(0, n-48):], 24))
	}
	row("Momentum", fmt.Sprintf("%.3g", metrics.Momentum(st).Len()))
	com := metrics.CenterOfMass(st)
	row("Center", fmt.Sprintf("%.1f, %.1f", com.X(), com.Y()))
	row("Atoms", fmt.Sprintf("%d", len(st.Atoms)))
	row("Springs", fmt.Sprintf("%d", len(st.Springs)))
	row("Integrator", m.sim.Integrator())
	if n := m.sim.DegenerateSprings(); n > 0 {
		row("Degenerate", fmt.Sprintf("%d", n))
	}
	row("Zoom", fmt.Sprintf("%.2fx", m.camera.Zoom))

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("energy"))
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(chart) + "\n")
	}

	s.WriteString("\n" + Separator(panelWidth-6) + "\n")
	cfg := m.sim.Configuration()
	if a, ok := cfg.Atom(m.selAtom); ok {
		s.WriteString(selectedStyle().Render(fmt.Sprintf("atom %d", a.ID)) + "\n")
		if live, ok := st.AtomByID(a.ID); ok {
			row("Position", fmt.Sprintf("%.1f, %.1f", live.X, live.Y))
			row("Velocity", fmt.Sprintf("%.2f, %.2f", live.VX, live.VY))
		}
		row("Mass", fmt.Sprintf("%.3g", a.Mass))
	}
	if sp, ok := cfg.Spring(m.selSpring); ok {
		s.WriteString(selectedStyle().Render(fmt.Sprintf("spring %d", sp.ID)) + "\n")
		row("Atoms", fmt.Sprintf("%d - %d", sp.Atom1, sp.Atom2))
		row("Rest", fmt.Sprintf("%.2f", sp.Req))
		row("Stiffness", fmt.Sprintf("%.3g", sp.K))
	}
	if m.editor != nil {
		s.WriteString("\n" + m.editor.view())
	}

	s.WriteString("\n")
	if m.failed {
		s.WriteString(errorStyle().Render(m.status) + "\n")
	} else {
		s.WriteString(hintStyle().Render(m.status) + "\n")
	}
	s.WriteString("\n" + keyStyle().Render("spc") + hintStyle().Render(" play ") +
		keyStyle().Render("a") + hintStyle().Render(" atom ") +
		keyStyle().Render("c") + hintStyle().Render(" spring ") +
		keyStyle().Render("?") + hintStyle().Render(" help"))
	return s.String()
}

const helpText = `
╔══════════════════════════════════════════╗
║             KEYBOARD SHORTCUTS           ║
╠══════════════════════════════════════════╣
║  Space      play / pause                 ║
║  N          single step while paused     ║
║  R          stop and reset to frame 0    ║
║  Arrows/HJKL move cursor                 ║
║  Enter      select atom nearest cursor   ║
║  Tab        select next atom             ║
║  S          select next spring           ║
║  A          add atom at cursor           ║
║  C          pick spring ends (Esc abort) ║
║  X / D      delete atom / spring         ║
║  + / -      heavier / lighter atom       ║
║  E / Shift+E edit atom / spring fields   ║
║  Z / Shift+Z zoom in / out               ║
║  P          toggle trails                ║
║  T          cycle themes                 ║
║  G          start / stop GIF recording   ║
║  W          write SVG snapshot           ║
║  Q          quit                         ║
╚══════════════════════════════════════════╝
`

// Run hosts s in a full-screen terminal UI until the user quits.
func Run(s *sim.Simulator, name string, opts ...Option) error {
	_, err := tea.NewProgram(NewModel(s, name, opts...), tea.WithAltScreen()).Run()
	return err
}
