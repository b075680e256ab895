package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springfarm/internal/topology"
)

// ViewBox is the visible world square, centred on the origin.
const ViewBox = 100.0

// AtomRadius is the drawn radius of an atom of the given mass.
func AtomRadius(mass float64) float64 {
	return 3 * math.Sqrt(mass)
}

// DefaultColor fills atoms that carry no color of their own.
const DefaultColor = "#00ff00"

// SceneToSVG draws the springs and atoms of cfg in world coordinates, y
// growing downwards as on screen. Atoms are drawn with AtomRadius.
// trails maps atom ids to past positions and may be nil.
func SceneToSVG(cfg topology.Configuration, trails map[int][]mgl64.Vec2) string {
	var sb strings.Builder

	size := 2 * ViewBox
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="600" height="600" viewBox="%.0f %.0f %.0f %.0f">
<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="#0a0a0a"/>
`, -ViewBox, -ViewBox, size, size, -ViewBox, -ViewBox, size, size))

	ids := make([]int, 0, len(trails))
	for id := range trails {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		color := DefaultColor
		if a, ok := cfg.Atom(id); ok && a.Color != "" {
			color = a.Color
		}
		sb.WriteString(trailPath(trails[id], color))
	}

	sb.WriteString(`<g stroke="#888888" stroke-width="1">` + "\n")
	for _, sp := range cfg.Springs {
		a1, ok1 := cfg.Atom(sp.Atom1)
		a2, ok2 := cfg.Atom(sp.Atom2)
		if !ok1 || !ok2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
			a1.X, a1.Y, a2.X, a2.Y))
	}
	sb.WriteString("</g>\n")

	for _, a := range cfg.Atoms {
		color := a.Color
		if color == "" {
			color = DefaultColor
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
			a.X, a.Y, AtomRadius(a.Mass), color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func trailPath(points []mgl64.Vec2, color string) string {
	if len(points) < 2 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.4" stroke-width="0.8" d="M`, color))
	for i, p := range points {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X(), p.Y()))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X(), p.Y()))
		}
	}
	sb.WriteString(`"/>` + "\n")
	return sb.String()
}

