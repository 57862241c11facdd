// Package canvas provides a braille-dot drawing surface for the terminal.
package canvas

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pursuit/internal/model"
)

// DefaultSurface is the side of the square logical drawing surface.
const DefaultSurface = 1000

const (
	dotsPerCellX = 2
	dotsPerCellY = 4
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as #RRGGBB.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Palette used by the recorder and the replayer.
var (
	Red   = RGB{R: 255}
	White = RGB{R: 255, G: 255, B: 255}
	Black = RGB{}
)

// Canvas maps a square logical surface onto a grid of braille cells.
type Canvas struct {
	surface int
	cols    int
	rows    int
	masks   [][]uint8
	colors  [][]RGB
}

// New creates a canvas of cols×rows terminal cells for a square logical
// surface of the given side.
func New(surface, cols, rows int) *Canvas {
	if surface <= 0 {
		surface = DefaultSurface
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c := &Canvas{surface: surface, cols: cols, rows: rows}
	c.masks = makeCells(rows, cols)
	c.colors = make([][]RGB, rows)
	for y := range c.colors {
		c.colors[y] = make([]RGB, cols)
	}
	return c
}

// Surface returns the logical surface side.
func (c *Canvas) Surface() int { return c.surface }

// Size returns the grid size in cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// Clear erases every dot.
func (c *Canvas) Clear() {
	for y := range c.masks {
		for x := range c.masks[y] {
			c.masks[y][x] = 0
			c.colors[y][x] = RGB{}
		}
	}
}

func (c *Canvas) dotsX() int { return c.cols * dotsPerCellX }
func (c *Canvas) dotsY() int { return c.rows * dotsPerCellY }

// toDot maps a logical position to dot coordinates. Positions far off the
// surface map to dots far off the grid; callers clip before walking.
func (c *Canvas) toDot(p model.Point) (float64, float64) {
	x := math.Floor(float64(p.X) * float64(c.dotsX()) / float64(c.surface))
	y := math.Floor(float64(p.Y) * float64(c.dotsY()) / float64(c.surface))
	return x, y
}

// FromCell maps a terminal cell to the logical position at its center.
func (c *Canvas) FromCell(col, row int) model.Point {
	x := (col*dotsPerCellX + 1) * c.surface / c.dotsX()
	y := (row*dotsPerCellY + dotsPerCellY/2) * c.surface / c.dotsY()
	return model.Point{X: clamp(x, 0, c.surface-1), Y: clamp(y, 0, c.surface-1)}
}

// Line draws a segment between two logical positions.
func (c *Canvas) Line(from, to model.Point, color RGB) {
	x0, y0 := c.toDot(from)
	x1, y1 := c.toDot(to)
	maxX, maxY := c.dotsX()-1, c.dotsY()-1
	x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, float64(maxX), float64(maxY))
	if !ok {
		return
	}
	ix0, iy0 := clamp(int(math.Round(x0)), 0, maxX), clamp(int(math.Round(y0)), 0, maxY)
	ix1, iy1 := clamp(int(math.Round(x1)), 0, maxX), clamp(int(math.Round(y1)), 0, maxY)
	drawLine(ix0, iy0, ix1, iy1, func(x, y int) {
		c.setDot(x, y, color)
	})
}

// Polyline draws consecutive segments through points.
func (c *Canvas) Polyline(points []model.Point, color RGB) {
	for i := 1; i < len(points); i++ {
		c.Line(points[i-1], points[i], color)
	}
}

// Disc draws a filled circle with a logical radius.
func (c *Canvas) Disc(center model.Point, radius int, color RGB) {
	fx, fy := c.toDot(center)
	rx := radius * c.dotsX() / c.surface
	ry := radius * c.dotsY() / c.surface
	if rx < 1 {
		rx = 1
	}
	if ry < 1 {
		ry = 1
	}
	if fx+float64(rx) < 0 || fy+float64(ry) < 0 ||
		fx-float64(rx) >= float64(c.dotsX()) || fy-float64(ry) >= float64(c.dotsY()) {
		return
	}
	cx, cy := int(fx), int(fy)
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			// Ellipse test so the disc stays round on non-square cells.
			if dx*dx*ry*ry+dy*dy*rx*rx <= rx*rx*ry*ry {
				c.setDot(cx+dx, cy+dy, color)
			}
		}
	}
}

func (c *Canvas) setDot(x, y int, color RGB) {
	if setBrailleDot(c.masks, x, y) {
		c.colors[y/dotsPerCellY][x/dotsPerCellX] = color
	}
}

// Dots returns the number of set dots.
func (c *Canvas) Dots() int {
	n := 0
	for _, row := range c.masks {
		for _, mask := range row {
			for ; mask != 0; mask &= mask - 1 {
				n++
			}
		}
	}
	return n
}

// Lines renders the grid as plain braille text, one string per row.
func (c *Canvas) Lines() []string {
	out := make([]string, c.rows)
	for y := 0; y < c.rows; y++ {
		var b strings.Builder
		for x := 0; x < c.cols; x++ {
			b.WriteRune(brailleFromMask(c.masks[y][x]))
		}
		out[y] = b.String()
	}
	return out
}

// Render renders the grid with each cell in its last drawn color.
func (c *Canvas) Render() string {
	styles := map[RGB]lipgloss.Style{}
	rows := make([]string, c.rows)
	for y := 0; y < c.rows; y++ {
		var b strings.Builder
		for x := 0; x < c.cols; x++ {
			mask := c.masks[y][x]
			ch := string(brailleFromMask(mask))
			if mask == 0 {
				b.WriteString(ch)
				continue
			}
			color := c.colors[y][x]
			style, ok := styles[color]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex()))
				styles[color] = style
			}
			b.WriteString(style.Render(ch))
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

// clipSegment clips a segment to the rectangle [0,maxX]×[0,maxY]
// (Liang–Barsky). It reports false when nothing of the segment is inside.
func clipSegment(x0, y0, x1, y1, maxX, maxY float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	}
	for _, edge := range edges {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
