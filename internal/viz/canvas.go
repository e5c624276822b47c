package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a character grid drawn at braille dot resolution, two dots
// across and four down per cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at x, y. Dots off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine is Bresenham's line.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
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
		c.Set(x0, y0)
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

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps world x/z (metres) to canvas dots, z pointing up the
// screen. It is centred on Center and shows Span metres across the
// shorter canvas side.
type Viewport struct {
	Center [2]float64
	Span   float64
}

func (v Viewport) Project(c *Canvas, x, z float64) (int, int) {
	w, h := c.Dots()
	scale := float64(min(w, h)) / v.Span
	px := float64(w)/2 + (x-v.Center[0])*scale
	py := float64(h)/2 - (z-v.Center[1])*scale
	return int(math.Round(px)), int(math.Round(py))
}

// Follow recentres the view when the point leaves the middle half.
func (v *Viewport) Follow(x, z float64) {
	limit := v.Span / 4
	if dx := x - v.Center[0]; math.Abs(dx) > limit {
		v.Center[0] = x - math.Copysign(limit, dx)
	}
	if dz := z - v.Center[1]; math.Abs(dz) > limit {
		v.Center[1] = z - math.Copysign(limit, dz)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
