package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/popdyn/internal/dynamo"
	"github.com/san-kum/popdyn/internal/experiment"
)

const (
	historyCapacity = 200
	tickInterval    = time.Second / 20
)

const (
	stateMenu = iota
	stateSim
)

type TickMsg time.Time

// Explorer is the interactive model browser: pick a registered model, then
// watch it iterate while nudging its parameters.
type Explorer struct {
	registry *experiment.Registry
	models   []string
	cursor   int
	state    int

	entry     experiment.Entry
	model     *dynamo.Model
	params    dynamo.Params
	paramKeys []string
	selected  int
	x         dynamo.State
	t         int
	history   dynamo.Trajectory
	running   bool
	err       error

	width, height int
}

// NewExplorer opens on the menu, or straight on model when it is non-empty.
func NewExplorer(r *experiment.Registry, model string) (*Explorer, error) {
	e := &Explorer{
		registry: r,
		models:   r.ListModels(),
		width:    DefaultWidth,
		height:   DefaultHeight,
	}
	if model != "" {
		if err := e.open(model); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Explorer) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if e.state == stateMenu {
			return e, e.menuKey(msg)
		}
		return e, e.simKey(msg)
	case tea.WindowSizeMsg:
		e.width = max(msg.Width-30, 20)
		e.height = max(msg.Height-12, 5)
	case TickMsg:
		if e.state == stateSim && e.running {
			e.step()
		}
		return e, tick()
	}
	return e, nil
}

func (e *Explorer) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < len(e.models)-1 {
			e.cursor++
		}
	case "enter", " ":
		if len(e.models) > 0 {
			e.err = e.open(e.models[e.cursor])
		}
	}
	return nil
}

func (e *Explorer) simKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc", "m":
		e.state, e.running = stateMenu, false
	case " ":
		e.running = !e.running
	case "r":
		e.reset()
	case "n", "right", "l":
		e.step()
	case "tab":
		if len(e.paramKeys) > 0 {
			e.selected = (e.selected + 1) % len(e.paramKeys)
		}
	case "up", "k":
		e.adjust(1)
	case "down", "j":
		e.adjust(-1)
	}
	return nil
}

func (e *Explorer) open(name string) error {
	entry, err := e.registry.Get(name)
	if err != nil {
		return err
	}
	e.entry = entry
	e.params = entry.Defaults.Clone()
	e.paramKeys = make([]string, 0, len(e.params))
	for k := range e.params {
		e.paramKeys = append(e.paramKeys, k)
	}
	sort.Strings(e.paramKeys)
	e.selected = 0
	e.state = stateSim
	e.running = true
	e.reset()
	return nil
}

func (e *Explorer) reset() {
	e.model = e.entry.New(e.params)
	e.x = e.entry.DefaultState.Clone()
	e.t = 0
	e.err = nil
	e.history = append(dynamo.Trajectory{}, e.x.Clone())
}

// adjust moves the selected parameter by 1% of its magnitude, at least 0.01,
// and restarts the run under the new value.
func (e *Explorer) adjust(dir float64) {
	if len(e.paramKeys) == 0 {
		return
	}
	key := e.paramKeys[e.selected]
	v := e.params[key]
	delta := max(0.01*absFloat(v), 0.01)
	e.params[key] = v + dir*delta
	e.reset()
}

func (e *Explorer) step() {
	if e.model == nil || e.err != nil {
		return
	}
	next, err := e.model.Step(e.x)
	if err != nil {
		e.err = err
		e.running = false
		return
	}
	e.x = next
	e.t++
	e.history = append(e.history, next.Clone())
	if len(e.history) > historyCapacity {
		e.history = e.history[1:]
	}
	if !next.IsValid() {
		e.running = false
	}
}

func (e *Explorer) View() string {
	if e.state == stateMenu {
		return e.viewMenu()
	}
	return e.viewSim()
}

func (e *Explorer) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n  " + TitleStyle.Render("POPDYN") + "\n  " + Subtle.Render("discrete-time population models") + "\n\n")
	for i, name := range e.models {
		entry, _ := e.registry.Get(name)
		if i == e.cursor {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", Selected.Render("▸"), Selected.Render(fmt.Sprintf("%-14s", name)), entry.Description))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", fmt.Sprintf("%-14s", name), Subtle.Render(entry.Description)))
		}
	}
	if e.err != nil {
		b.WriteString("\n  " + StatusFailed.Render(e.err.Error()) + "\n")
	}
	b.WriteString("\n  " + KeyHint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

func (e *Explorer) viewSim() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(strings.ToUpper(e.entry.Name)) + "  ")

	switch {
	case e.err != nil:
		b.WriteString(StatusFailed.Render("FAILED: " + e.err.Error()))
	case !e.x.IsValid():
		b.WriteString(StatusFailed.Render("NON-FINITE"))
	case e.running:
		b.WriteString(StatusRunning.Render("RUNNING"))
	default:
		b.WriteString(StatusPaused.Render("PAUSED"))
	}
	b.WriteString("\n\n")

	cfg := RenderConfig{
		ParamString: e.params.String(),
		Labels:      e.entry.Labels,
		Width:       e.width,
		Height:      e.height,
	}
	b.WriteString(PlotPanel.Render(strings.TrimRight(TimeSeries([]dynamo.Trajectory{e.history}, nil, cfg), "\n")))
	b.WriteString("\n\n")

	b.WriteString(MetricLabel.Render("t") + MetricValue.Render(fmt.Sprintf("%d", e.t)) + "\n")
	for i, v := range e.x {
		b.WriteString(MetricLabel.Render(cfg.Label(i, len(e.x))) + MetricValue.Render(fmt.Sprintf("%-12.6g", v)) +
			" " + Sparkline(e.history.Tail(30).Column(i), 30) + "\n")
	}

	b.WriteString("\n" + Separator(30) + "\n")
	for i, k := range e.paramKeys {
		line := fmt.Sprintf("%-4s %10.4f", k, e.params[k])
		if i == e.selected {
			b.WriteString(Selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + KeyHint.Render("space pause  n step  r reset  tab param  j/k tune  esc menu  q quit") + "\n")
	return b.String()
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// RunExplore starts the explorer full screen and blocks until it exits.
func RunExplore(r *experiment.Registry, model string) error {
	e, err := NewExplorer(r, model)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(e, tea.WithAltScreen()).Run()
	return err
}
