package analysis

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springfarm/internal/viz"
)

// Portrait is a trajectory in a two-dimensional phase plane, such as one
// atom's x against its vx.
type Portrait struct {
	XLabel, YLabel string
	Points         []mgl64.Vec2
}

// NewPortrait pairs xs with ys; the longer series is truncated.
func NewPortrait(xLabel string, xs []float64, yLabel string, ys []float64) *Portrait {
	n := min(len(xs), len(ys))
	p := &Portrait{XLabel: xLabel, YLabel: yLabel, Points: make([]mgl64.Vec2, n)}
	for i := 0; i < n; i++ {
		p.Points[i] = mgl64.Vec2{xs[i], ys[i]}
	}
	return p
}

// Bounds returns the extent of the points padded by a tenth on every side.
// A flat axis is given a unit range.
func (p *Portrait) Bounds() (lo, hi mgl64.Vec2) {
	if len(p.Points) == 0 {
		return mgl64.Vec2{}, mgl64.Vec2{}
	}
	lo, hi = p.Points[0], p.Points[0]
	for _, pt := range p.Points[1:] {
		lo = mgl64.Vec2{math.Min(lo[0], pt[0]), math.Min(lo[1], pt[1])}
		hi = mgl64.Vec2{math.Max(hi[0], pt[0]), math.Max(hi[1], pt[1])}
	}
	for i := 0; i < 2; i++ {
		span := hi[i] - lo[i]
		if span == 0 {
			span = 1
		}
		lo[i] -= span * 0.1
		hi[i] += span * 0.1
	}
	return lo, hi
}

// ASCII draws the portrait on a width x height braille canvas, with dashed
// axes wherever zero is in view.
func (p *Portrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	c := viz.NewCanvas(width, height)
	sw, sh := c.SubSize()
	lo, hi := p.Bounds()
	span := hi.Sub(lo)

	toCol := func(x float64) int { return int((x - lo[0]) / span[0] * float64(sw-1)) }
	toRow := func(y float64) int { return sh - 1 - int((y-lo[1])/span[1]*float64(sh-1)) }

	if lo[0] <= 0 && hi[0] >= 0 {
		col := toCol(0)
		c.DrawDashed(col, 0, col, sh-1)
	}
	if lo[1] <= 0 && hi[1] >= 0 {
		row := toRow(0)
		c.DrawDashed(0, row, sw-1, row)
	}

	prevX, prevY := toCol(p.Points[0][0]), toRow(p.Points[0][1])
	for _, pt := range p.Points[1:] {
		x, y := toCol(pt[0]), toRow(pt[1])
		c.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
	c.Set(prevX, prevY)

	return c.String()
}
