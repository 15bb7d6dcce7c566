package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/popdyn/internal/analysis"
	"github.com/san-kum/popdyn/internal/dynamo"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 15
)

// RenderConfig controls the text renderers.
type RenderConfig struct {
	Title       string
	ParamString string
	Labels      []string // component names; Hosts/Parasitoids for 2-D when empty
	Width       int
	Height      int
}

func (c RenderConfig) size() (int, int) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

func (c RenderConfig) caption() string {
	switch {
	case c.Title != "" && c.ParamString != "":
		return fmt.Sprintf("%s (%s)", c.Title, c.ParamString)
	case c.Title != "":
		return c.Title
	}
	return c.ParamString
}

// Label names component i of a dim-component state.
func (c RenderConfig) Label(i, dim int) string {
	if i < len(c.Labels) && c.Labels[i] != "" {
		return c.Labels[i]
	}
	if dim == 2 {
		return []string{"Hosts", "Parasitoids"}[i]
	}
	if dim == 1 {
		return "Population"
	}
	return fmt.Sprintf("x%d", i)
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
}

// TimeSeries plots every component of every trajectory against time. labels
// names the trajectories when several are overlaid and may be nil; unnamed
// overlaid trajectories are called "Model 1", "Model 2", ...
func TimeSeries(trajs []dynamo.Trajectory, labels []string, cfg RenderConfig) string {
	var (
		series [][]float64
		names  []string
	)
	for ti, traj := range trajs {
		dim := traj.Dim()
		prefix := ""
		switch {
		case ti < len(labels) && labels[ti] != "":
			prefix = labels[ti] + " "
		case len(trajs) > 1:
			prefix = fmt.Sprintf("Model %d ", ti+1)
		}
		for i := 0; i < dim; i++ {
			name := prefix + cfg.Label(i, dim)
			series = append(series, plottable(traj.Column(i)))
			names = append(names, name)
		}
	}

	if !anyFinite(series) {
		return "no finite values to plot\n"
	}

	caption := cfg.caption()
	if spanOverflows(series) {
		for _, vs := range series {
			for i := range vs {
				vs[i] /= 2
			}
		}
		caption = strings.TrimSpace(caption + " [values scaled by 0.5]")
	}

	width, height := cfg.size()
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(seriesColors[:min(len(series), len(seriesColors))]...),
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}

	var b strings.Builder
	b.WriteString(asciigraph.PlotMany(series, opts...))
	b.WriteString("\n")
	b.WriteString(legend(names))
	return b.String()
}

// PhasePortrait draws component 1 against component 0. A 1-D trajectory is
// drawn as its return map x(t+1) against x(t).
func PhasePortrait(traj dynamo.Trajectory, cfg RenderConfig) string {
	var (
		points         []analysis.Point
		xLabel, yLabel string
	)
	if traj.Dim() >= 2 {
		points, _ = analysis.PhasePortrait(traj, 0, 1)
		xLabel, yLabel = cfg.Label(0, traj.Dim()), cfg.Label(1, traj.Dim())
	} else {
		points = analysis.ReturnMap(traj.Column(0))
		xLabel, yLabel = "x(t)", "x(t+1)"
	}
	if len(points) == 0 {
		return "no finite points to plot\n"
	}

	width, height := cfg.size()
	c := NewCanvas(width, height)
	xs, ys := split(points)
	f := NewFrame(c, xs, ys)

	if traj.Dim() >= 2 {
		for i := 1; i < len(points); i++ {
			f.Line(points[i-1].X, points[i-1].Y, points[i].X, points[i].Y)
		}
	}
	for _, p := range points {
		f.Plot(p.X, p.Y)
	}

	return frameView(cfg, c, f, xLabel, yLabel)
}

// BifurcationScatter plots the settled values of each sweep point against its parameter value.
func BifurcationScatter(points []analysis.BifurcationPoint, cfg RenderConfig) string {
	var xs, ys []float64
	for _, p := range points {
		for _, v := range p.Values {
			xs = append(xs, p.Param)
			ys = append(ys, v)
		}
	}
	if len(xs) == 0 {
		return "no finite points to plot\n"
	}

	width, height := cfg.size()
	c := NewCanvas(width, height)
	f := NewFrame(c, xs, ys)
	for i := range xs {
		f.Plot(xs[i], ys[i])
	}

	xLabel := "param"
	if len(cfg.Labels) > 0 {
		xLabel = cfg.Labels[0]
	}
	return frameView(cfg, c, f, xLabel, "x*")
}

func frameView(cfg RenderConfig, c *Canvas, f *Frame, xLabel, yLabel string) string {
	var b strings.Builder
	if caption := cfg.caption(); caption != "" {
		b.WriteString(TitleStyle.Render(caption) + "\n")
	}
	b.WriteString(c.String())
	b.WriteString(fmt.Sprintf("%s: [%.4g, %.4g]  %s: [%.4g, %.4g]\n",
		xLabel, f.XMin, f.XMax, yLabel, f.YMin, f.YMax))
	return b.String()
}

func legend(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "■ " + n
	}
	return strings.Join(parts, "  ") + "\n"
}

// plottable replaces Inf with NaN, which asciigraph leaves as a gap.
func plottable(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// spanOverflows reports whether max-min over the finite values exceeds float64.
func spanOverflows(series [][]float64) bool {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if finiteValue(v) {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
	}
	return lo <= hi && math.IsInf(hi-lo, 0)
}

func anyFinite(series [][]float64) bool {
	for _, s := range series {
		for _, v := range s {
			if finiteValue(v) {
				return true
			}
		}
	}
	return false
}

func finiteValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func split(points []analysis.Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}
