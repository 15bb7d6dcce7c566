package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/popdyn/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// Metric summarises one run while it is being simulated.
type Metric interface {
	dynamo.Observer
	Name() string
	Value() float64
}

// Defaults returns the metrics attached to every experiment for a model of the given dimension.
func Defaults(dim int) []Metric {
	ms := []Metric{
		NewNonFinite(),
		NewExtinction(1e-9),
		NewBounded(1e6),
	}
	for i := 0; i < dim; i++ {
		ms = append(ms, NewMean(i), NewAmplitude(i))
	}
	return ms
}

// Amplitude is max-min of a component over its finite values.
type Amplitude struct {
	component int
	min, max  float64
	samples   int
}

func NewAmplitude(component int) *Amplitude { return &Amplitude{component: component} }

func (a *Amplitude) Name() string { return fmt.Sprintf("amplitude_x%d", a.component) }

func (a *Amplitude) Observe(t int, x dynamo.State) {
	if a.component >= len(x) || !finite(x[a.component]) {
		return
	}
	v := x[a.component]
	if a.samples == 0 || v < a.min {
		a.min = v
	}
	if a.samples == 0 || v > a.max {
		a.max = v
	}
	a.samples++
}

func (a *Amplitude) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.max - a.min
}

func (a *Amplitude) Reset() { *a = Amplitude{component: a.component} }

// Mean is the mean of a component over its finite values.
type Mean struct {
	component int
	values    []float64
}

func NewMean(component int) *Mean { return &Mean{component: component} }

func (m *Mean) Name() string { return fmt.Sprintf("mean_x%d", m.component) }

func (m *Mean) Observe(t int, x dynamo.State) {
	if m.component < len(x) && finite(x[m.component]) {
		m.values = append(m.values, x[m.component])
	}
}

func (m *Mean) Value() float64 {
	if len(m.values) == 0 {
		return 0
	}
	return stat.Mean(m.values, nil)
}

func (m *Mean) Reset() { m.values = m.values[:0] }

// NonFinite counts states holding NaN or Inf.
type NonFinite struct {
	count int
}

func NewNonFinite() *NonFinite { return &NonFinite{} }

func (n *NonFinite) Name() string { return "non_finite" }

func (n *NonFinite) Observe(t int, x dynamo.State) {
	if !x.IsValid() {
		n.count++
	}
}

func (n *NonFinite) Value() float64 { return float64(n.count) }
func (n *NonFinite) Reset()         { n.count = 0 }

// Extinction records the first step at which every component is below the
// threshold, or -1 if the populations never collapse.
type Extinction struct {
	threshold float64
	step      int
}

func NewExtinction(threshold float64) *Extinction {
	return &Extinction{threshold: threshold, step: -1}
}

func (e *Extinction) Name() string { return "extinction_step" }

func (e *Extinction) Observe(t int, x dynamo.State) {
	if e.step >= 0 {
		return
	}
	for _, v := range x {
		if !(math.Abs(v) < e.threshold) {
			return
		}
	}
	e.step = t
}

func (e *Extinction) Value() float64 { return float64(e.step) }
func (e *Extinction) Reset()         { e.step = -1 }

// Bounded is the fraction of states whose components all stay within the threshold.
type Bounded struct {
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{threshold: threshold}
}

func (b *Bounded) Name() string { return "bounded" }

func (b *Bounded) Observe(t int, x dynamo.State) {
	b.samples++
	for _, v := range x {
		if !(math.Abs(v) <= b.threshold) {
			b.violations++
			break
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
