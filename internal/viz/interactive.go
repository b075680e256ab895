package viz

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/san-kum/springfarm/internal/config"
	"github.com/san-kum/springfarm/internal/integrators"
	"github.com/san-kum/springfarm/internal/sim"
)

const (
	stateMenu = iota
	stateSim
)

// menu picks a preset scene and then hands over to the live host.
type menu struct {
	state, cursor int
	presets       []string
	logger        *log.Logger
	opts          []Option
	live          Model
	width, height int
	err           error
}

func NewInteractiveApp(logger *log.Logger, opts ...Option) *menu {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &menu{
		state:   stateMenu,
		presets: config.ListPresets(),
		logger:  logger,
		opts:    opts,
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (tea.Model, tea.Cmd) {
	name := m.presets[m.cursor]
	cfg := config.GetPreset(name)

	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		m.err = err
		return m, nil
	}
	s, err := sim.New(cfg.Configuration(), sim.WithIntegrator(integ), sim.WithLogger(m.logger))
	if err != nil {
		m.err = err
		return m, nil
	}

	opts := append([]Option{WithLogger(m.logger), WithTick(time.Duration(cfg.TickMS) * time.Millisecond)}, m.opts...)
	m.live = NewModel(s, name, opts...)
	if m.width > 0 {
		m.live.resize(m.width, m.height)
	}
	m.state = stateSim
	m.logger.Info("scene loaded", "preset", name, "atoms", len(cfg.Scene.Atoms), "springs", len(cfg.Scene.Springs))
	return m, m.live.Init()
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	b.WriteString("\n\n    " + GradientText("SPRINGFARM", CurrentTheme.Primary, CurrentTheme.Accent) + "\n    " +
		sub.Render("mass-spring playground") + "\n    " + sub.Render("─────────────────────────") + "\n\n")

	for i, name := range m.presets {
		desc := config.GetPreset(name).Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				keyStyle().Render("▸"),
				selectedStyle().Render(fmt.Sprintf("%-10s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n",
				sub.Render(fmt.Sprintf("  %-10s", name)),
				sub.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle().Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n    " + keyStyle().Render("j/k") + sub.Render(" navigate  ") +
		keyStyle().Render("enter") + sub.Render(" open  ") +
		keyStyle().Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive shows the preset menu and then the live host.
func RunInteractive(logger *log.Logger, opts ...Option) error {
	_, err := tea.NewProgram(NewInteractiveApp(logger, opts...), tea.WithAltScreen()).Run()
	return err
}
