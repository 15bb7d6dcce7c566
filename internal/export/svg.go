package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/popdyn/internal/analysis"
	"github.com/san-kum/popdyn/internal/dynamo"
)

var Palette = []string{"#00ccff", "#ff4466", "#00ff88", "#ffcc00"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

// newBounds pads the finite extent of the points by 10% on each side.
func newBounds(xs, ys []float64) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		b.minX, b.maxX = math.Min(b.minX, xs[i]), math.Max(b.maxX, xs[i])
		b.minY, b.maxY = math.Min(b.minY, ys[i]), math.Max(b.maxY, ys[i])
	}
	if b.minX > b.maxX {
		return bounds{0, 1, 0, 1}
	}

	b.minX, b.maxX = pad(b.minX, b.maxX)
	b.minY, b.maxY = pad(b.minY, b.maxY)
	return b
}

// pad widens [lo, hi] by 10% of its span, staying within float64 range.
func pad(lo, hi float64) (float64, float64) {
	half := hi/2 - lo/2
	if half == 0 {
		half = 0.5
	}
	return math.Max(lo-half*0.2, -math.MaxFloat64), math.Min(hi+half*0.2, math.MaxFloat64)
}

// project works on halved values so spans near the float64 limit do not overflow.
func (b bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x/2 - b.minX/2) / (b.maxX/2 - b.minX/2) * float64(width)
	py := float64(height) - (y/2-b.minY/2)/(b.maxY/2-b.minY/2)*float64(height)
	return px, py
}

func header(sb *strings.Builder, width, height int, title string) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="16" fill="#cccccc" font-family="monospace" font-size="12">%s</text>
`, escape(title)))
	}
}

// TrajectorySVG draws every component against the step index, one path per
// component. Non-finite values break the path.
func TrajectorySVG(traj dynamo.Trajectory, labels []string, title string, width, height int) string {
	if traj.Len() < 2 {
		return ""
	}

	var xs, ys []float64
	for i := 0; i < traj.Dim(); i++ {
		for t, v := range traj.Column(i) {
			xs = append(xs, float64(t))
			ys = append(ys, v)
		}
	}
	b := newBounds(xs, ys)

	var sb strings.Builder
	header(&sb, width, height, title)

	for i := 0; i < traj.Dim(); i++ {
		color := Palette[i%len(Palette)]
		name := fmt.Sprintf("x%d", i)
		if i < len(labels) {
			name = labels[i]
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))
		pen := false
		for t, v := range traj.Column(i) {
			if !finite(v) {
				pen = false
				continue
			}
			x, y := b.project(float64(t), v, width, height)
			if pen {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", x, y))
				pen = true
			}
		}
		sb.WriteString(`"/>
`)
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, width-120, 16+14*i, color, escape(name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ScatterSVG draws one dot per finite point. connect joins consecutive points,
// which suits phase portraits.
func ScatterSVG(points []analysis.Point, title string, width, height int, connect bool) string {
	if len(points) == 0 {
		return ""
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	b := newBounds(xs, ys)

	var sb strings.Builder
	header(&sb, width, height, title)

	if connect && len(points) > 1 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.4" stroke-width="1" d="M`, Palette[0]))
		for i, p := range points {
			x, y := b.project(p.X, p.Y, width, height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(`"/>
`)
	}

	sb.WriteString(fmt.Sprintf(`<g fill="%s">
`, Palette[2]))
	for _, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		x, y := b.project(p.X, p.Y, width, height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.2"/>
`, x, y))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// BifurcationPoints flattens a sweep into scatter points.
func BifurcationPoints(points []analysis.BifurcationPoint) []analysis.Point {
	var out []analysis.Point
	for _, p := range points {
		for _, v := range p.Values {
			out = append(out, analysis.Point{X: p.Param, Y: v})
		}
	}
	return out
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
