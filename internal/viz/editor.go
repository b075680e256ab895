package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/springfarm/internal/automation"
	"github.com/san-kum/springfarm/internal/topology"
)

// editor types new values into the fields of one configured atom or spring.
type editor struct {
	kind   string // "atom" or "spring"
	id     int
	fields []string
	values map[string]float64
	cursor int
	typing bool
	buf    string
}

var (
	atomFields   = []string{"mass", "x", "y", "vx", "vy"}
	springFields = []string{"req", "k"}
)

func (m *Model) openAtomEditor() {
	a, ok := m.sim.Configuration().Atom(m.selAtom)
	if !ok {
		m.say("no atom selected")
		return
	}
	m.editor = &editor{
		kind:   "atom",
		id:     a.ID,
		fields: atomFields,
		values: map[string]float64{"mass": a.Mass, "x": a.X, "y": a.Y, "vx": a.VX, "vy": a.VY},
	}
}

func (m *Model) openSpringEditor() {
	sp, ok := m.sim.Configuration().Spring(m.selSpring)
	if !ok {
		m.say("no spring selected")
		return
	}
	m.editor = &editor{
		kind:   "spring",
		id:     sp.ID,
		fields: springFields,
		values: map[string]float64{"req": sp.Req, "k": sp.K},
	}
}

func (m Model) editorKey(msg tea.KeyMsg) Model {
	e := m.editor
	if e.typing {
		switch msg.String() {
		case "enter":
			m.commitField()
		case "esc":
			e.typing, e.buf = false, ""
		case "backspace":
			if len(e.buf) > 0 {
				e.buf = e.buf[:len(e.buf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					e.buf += s
				}
			}
		}
		return m
	}

	switch msg.String() {
	case "esc", "q":
		m.editor = nil
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < len(e.fields)-1 {
			e.cursor++
		}
	case "enter", " ":
		e.typing = true
		e.buf = strconv.FormatFloat(e.values[e.fields[e.cursor]], 'g', -1, 64)
	}
	return m
}

// commitField applies the typed value. The editor stays open on failure so
// the value can be corrected.
func (m *Model) commitField() {
	e := m.editor
	field := e.fields[e.cursor]
	v, err := strconv.ParseFloat(e.buf, 64)
	if err != nil {
		m.fail(fmt.Errorf("%s: not a number", field))
		return
	}
	set := map[string]float64{field: v}

	switch e.kind {
	case "atom":
		err = m.sim.EditAtom(e.id, func(a *topology.Atom) { _ = automation.SetAtom(a, set) })
	case "spring":
		err = m.sim.EditSpring(e.id, func(sp *topology.Spring) { _ = automation.SetSpring(sp, set) })
	}
	if m.edited(err, "%s %d %s = %g", e.kind, e.id, field, v) {
		e.values[field] = v
		e.typing, e.buf = false, ""
	}
}

func (e *editor) view() string {
	var b strings.Builder
	b.WriteString(selectedStyle().Render(fmt.Sprintf("edit %s %d", e.kind, e.id)) + "\n")
	for i, f := range e.fields {
		val := fmt.Sprintf("%10.4g", e.values[f])
		if e.typing && i == e.cursor {
			val = fmt.Sprintf("%10s", e.buf+"_")
		}
		line := fmt.Sprintf("%-6s %s", f, val)
		if i == e.cursor {
			b.WriteString(selectedStyle().Render("▸ "+line) + "\n")
		} else {
			b.WriteString("  " + valueStyle().Render(line) + "\n")
		}
	}
	b.WriteString(hintStyle().Render("j/k field  enter type  esc close") + "\n")
	return b.String()
}
