package viz

import (
	"math"
	"strings"
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

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y). The canvas is Width*2 by Height*4 dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
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

// Empty reports whether no dot is set.
func (c *Canvas) Empty() bool {
	for _, row := range c.Grid {
		for _, r := range row {
			if r != blank {
				return false
			}
		}
	}
	return true
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Frame maps data coordinates onto a canvas, y growing upwards.
type Frame struct {
	XMin, XMax float64
	YMin, YMax float64
	canvas     *Canvas
}

// NewFrame sizes the frame to the bounding box of xs and ys.
// Degenerate ranges are widened so a constant series lands mid-canvas.
func NewFrame(c *Canvas, xs, ys []float64) *Frame {
	f := &Frame{canvas: c}
	f.XMin, f.XMax = bounds(xs)
	f.YMin, f.YMax = bounds(ys)
	return f
}

// Project returns the sub-pixel position of (x, y). ok is false for
// non-finite coordinates and for points outside the frame.
func (f *Frame) Project(x, y float64) (px, py int, ok bool) {
	w := float64(f.canvas.Width*2 - 1)
	h := float64(f.canvas.Height*4 - 1)
	// halved so spans near the float64 limit do not overflow
	fx := (x/2 - f.XMin/2) / (f.XMax/2 - f.XMin/2) * w
	fy := h - (y/2-f.YMin/2)/(f.YMax/2-f.YMin/2)*h
	fx, fy = math.Round(fx), math.Round(fy)
	if !(fx >= 0 && fx <= w && fy >= 0 && fy <= h) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

func (f *Frame) Plot(x, y float64) {
	if px, py, ok := f.Project(x, y); ok {
		f.canvas.Set(px, py)
	}
}

// Line skips segments with an endpoint that cannot be projected.
func (f *Frame) Line(x0, y0, x1, y1 float64) {
	ax, ay, ok0 := f.Project(x0, y0)
	bx, by, ok1 := f.Project(x1, y1)
	if ok0 && ok1 {
		f.canvas.DrawLine(ax, ay, bx, by)
	}
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	switch {
	case lo > hi:
		return 0, 1
	case lo == hi:
		pad := math.Max(math.Abs(lo)*0.1, 0.5)
		lo, hi = lo-pad, hi+pad
	}
	return math.Max(lo, -math.MaxFloat64), math.Min(hi, math.MaxFloat64)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
