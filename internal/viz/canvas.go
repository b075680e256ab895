package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Canvas is a grid of braille cells, each holding 2x4 sub-pixels. Ink holds
// an optional color name per cell; the last inked pixel in a cell wins.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Ink           [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Ink:    make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Ink[i] = make([]string, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// SubSize returns the canvas size in sub-pixels.
func (c *Canvas) SubSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// SetInk sets a pixel and colors its cell.
func (c *Canvas) SetInk(x, y int, color string) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Ink[row][col] = color
}

func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &= ^rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Ink[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.walk(x0, y0, x1, y1, c.Set)
}

// DrawLineInk draws a colored line.
func (c *Canvas) DrawLineInk(x0, y0, x1, y1 int, color string) {
	c.walk(x0, y0, x1, y1, func(x, y int) { c.SetInk(x, y, color) })
}

// DrawDashed draws every other run of three pixels of a line.
func (c *Canvas) DrawDashed(x0, y0, x1, y1 int) {
	n := 0
	c.walk(x0, y0, x1, y1, func(x, y int) {
		if (n/3)%2 == 0 {
			c.Set(x, y)
		}
		n++
	})
}

func (c *Canvas) walk(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Disc fills a disc of radius r sub-pixels around (x, y).
func (c *Canvas) Disc(x, y, r int, color string) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.SetInk(x+dx, y+dy, color)
			}
		}
	}
}

// Ring outlines a square of half-size r around (x, y).
func (c *Canvas) Ring(x, y, r int, color string) {
	for d := -r; d <= r; d++ {
		c.SetInk(x+d, y-r, color)
		c.SetInk(x+d, y+r, color)
		c.SetInk(x-r, y+d, color)
		c.SetInk(x+r, y+d, color)
	}
}

// Cross draws a small plus sign, used for the cursor.
func (c *Canvas) Cross(x, y, r int, color string) {
	for d := -r; d <= r; d++ {
		c.SetInk(x+d, y, color)
		c.SetInk(x, y+d, color)
	}
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the canvas, coloring inked cells with the given palette.
// Uninked cells use base.
func (c *Canvas) Render(base lipgloss.Style, palette func(name string) lipgloss.Color) string {
	var b strings.Builder
	for i, row := range c.Grid {
		var run strings.Builder
		ink := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := base
			if ink != "" {
				style = base.Foreground(palette(ink))
			}
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
		for j, r := range row {
			if c.Ink[i][j] != ink {
				flush()
				ink = c.Ink[i][j]
			}
			run.WriteRune(r)
		}
		flush()
		b.WriteString("\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
