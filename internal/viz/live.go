package viz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lumagrid/internal/engine"
	"github.com/san-kum/lumagrid/internal/loader"
	"github.com/san-kum/lumagrid/internal/modulation"
)

const traceCapacity = 60

type TickMsg time.Time

// SlotLoadedMsg carries the result of one image future.
type SlotLoadedMsg loader.Result

// trace keeps the recent rotation of one cell for the sparkline.
type trace struct {
	mu     sync.Mutex
	cell   int
	values []float64
}

func (t *trace) OnSample(_ float64, cell int, s modulation.Sample) {
	if cell != t.cell {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = append(t.values, s.Rotation.Y+s.Rotation.X+s.Scale)
	if len(t.values) > traceCapacity {
		t.values = t.values[1:]
	}
}

func (t *trace) snapshot() []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]float64, len(t.values))
	copy(out, t.values)
	return out
}

// Model drives an engine from bubbletea ticks and shows it on a TermSurface.
type Model struct {
	ctx           context.Context
	eng           *engine.Engine
	surface       *TermSurface
	paths         []string
	fps           int
	running       bool
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	loaded        []bool
	lastErr       error
	trace         *trace
	frame         int
}

// NewModel wires eng, which must render into surface, to the image paths
// (slot i loads paths[i]).
func NewModel(ctx context.Context, eng *engine.Engine, surface *TermSurface, paths []string) Model {
	params := eng.Params()
	keys := make([]string, 0, len(params))
	initial := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initial[k] = v
	}
	sort.Strings(keys)

	tr := &trace{cell: 0}
	eng.AddObserver(tr)

	fps := eng.Config().FPS
	if fps <= 0 {
		fps = 30
	}

	return Model{
		ctx:           ctx,
		eng:           eng,
		surface:       surface,
		paths:         paths,
		fps:           fps,
		running:       true,
		params:        params,
		initialParams: initial,
		paramKeys:     keys,
		loaded:        make([]bool, len(paths)),
		trace:         tr,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LoadCmd resolves one loader future into a SlotLoadedMsg.
func LoadCmd(ctx context.Context, slot int, path string) tea.Cmd {
	return func() tea.Msg {
		return SlotLoadedMsg(<-loader.Load(ctx, slot, path))
	}
}

func (m Model) loadAll() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.paths))
	for i, p := range m.paths {
		cmds[i] = LoadCmd(m.ctx, i, p)
	}
	return tea.Batch(cmds...)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.loadAll())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "[":
			m.cycleParam(-1)
		case "]":
			m.cycleParam(1)
		case "+", "=":
			m.adjustParam(1.1)
		case "-", "_":
			m.adjustParam(0.9)
		case "r":
			for i := range m.loaded {
				m.loaded[i] = false
			}
			return m, m.loadAll()
		}
	case SlotLoadedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err
			return m, nil
		}
		if err := m.eng.SubmitImage(msg.Slot, msg.Image); err != nil {
			m.lastErr = err
			return m, nil
		}
		m.lastErr = nil
		if msg.Slot >= 0 && msg.Slot < len(m.loaded) {
			m.loaded[msg.Slot] = true
		}
	case TickMsg:
		if m.running {
			m.eng.Tick()
			m.frame++
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) cycleParam(dir int) {
	n := len(m.paramKeys)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if val == 0 {
		val = 1e-3 * factor
	}
	if err := m.eng.SetParam(key, val); err != nil {
		m.lastErr = err
		return
	}
	m.params[key] = val
}

func (m Model) status() string {
	switch {
	case m.lastErr != nil:
		return StatusError.Render("ERROR: " + m.lastErr.Error())
	case m.eng.Grid() == nil:
		return StatusPaused.Render(fmt.Sprintf("WAITING FOR IMAGES (%d/%d)", countTrue(m.loaded), len(m.loaded)))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.eng.Strategy()), "#00ffff", "#ff00ff") + "\n")
	s.WriteString(m.status() + "\n\n")

	g := m.eng.Grid()
	if g != nil {
		s.WriteString(MetricLabel.Render("Generation") + MetricValue.Render(fmt.Sprintf("%d", g.Generation)) + "\n")
		s.WriteString(MetricLabel.Render("Grid") + MetricValue.Render(fmt.Sprintf("%dx%d", g.Width, g.Height)) + "\n")
		s.WriteString(MetricLabel.Render("Instances") + MetricValue.Render(fmt.Sprintf("%d", m.surface.Len())) + "\n")
		s.WriteString(MetricLabel.Render("Elapsed") + MetricValue.Render(fmt.Sprintf("%.1fs", m.eng.Elapsed(m.eng.Now())/1000)) + "\n")
	}
	s.WriteString(MetricLabel.Render("Frame") + MetricValue.Render(fmt.Sprintf("%d", m.frame)) + "\n")

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(MetricLabel.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-18s %s %s", k, ParamBar(m.params[k], m.initialParams[k], 10), formatParam(m.params[k]))
		if i == m.selected {
			s.WriteString(ActiveParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}

	s.WriteString("\nCELL 0\n" + SparklineChart(m.trace.snapshot(), 30) + "\n")
	s.WriteString("\n" + Separator(36) + "\n")
	s.WriteString(KeyHint.Render("SP:Pause R:Reload Q:Quit\n[ ]:Param +/-:Tune"))

	side := Panel.Render(s.String())
	grid := lipgloss.NewStyle().Padding(1, 2).Render(m.surface.Render())
	return lipgloss.JoinHorizontal(lipgloss.Top, grid, side)
}

func formatParam(v float64) string {
	if math.Abs(v) >= 100 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3f", v)
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
