package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springfarm/internal/export"
)

const (
	MinZoom = 0.25
	MaxZoom = 8.0
)

// Camera maps world coordinates onto the canvas. At zoom 1 the square
// -100..100 fills the shorter canvas side; zoom changes ease towards their
// target with a critically damped spring.
type Camera struct {
	Zoom     float64
	Center   mgl64.Vec2
	target   float64
	velocity float64
	spring   harmonica.Spring
}

func NewCamera(fps int) *Camera {
	return &Camera{
		Zoom:   1,
		target: 1,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
	}
}

func (c *Camera) ZoomIn()  { c.target = math.Min(c.target*1.25, MaxZoom) }
func (c *Camera) ZoomOut() { c.target = math.Max(c.target/1.25, MinZoom) }

func (c *Camera) Target() float64 { return c.target }

// Update advances the zoom animation by one frame.
func (c *Camera) Update() {
	c.Zoom, c.velocity = c.spring.Update(c.Zoom, c.velocity, c.target)
}

// Settled reports whether the zoom has reached its target.
func (c *Camera) Settled() bool {
	return math.Abs(c.Zoom-c.target) < 1e-3 && math.Abs(c.velocity) < 1e-3
}

func (c *Camera) scale(cw, ch int) float64 {
	side := cw
	if ch < side {
		side = ch
	}
	return float64(side) / (2 * export.ViewBox) * c.Zoom
}

// Project maps a world point to sub-pixel coordinates on a cw x ch canvas.
// World y grows downwards, like the screen.
func (c *Camera) Project(p mgl64.Vec2, cw, ch int) (int, int) {
	s := c.scale(cw, ch)
	q := p.Sub(c.Center).Mul(s)
	return int(math.Round(float64(cw)/2 + q.X())), int(math.Round(float64(ch)/2 + q.Y()))
}

// Radius converts a world length to sub-pixels, never less than one.
func (c *Camera) Radius(r float64, cw, ch int) int {
	px := int(math.Round(r * c.scale(cw, ch)))
	if px < 1 {
		return 1
	}
	return px
}
