// Package probe is a terminal front end for inspecting a scene without a
// window system: move a probe point with the arrow keys and read potential
// and field at it, with an optional character heatmap.
package probe

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/heatmap"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/view"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	warm   = lipgloss.NewStyle().Foreground(lipgloss.Color("209"))
	cool   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

const (
	mapW = 72
	mapH = 22

	defaultStep = 0.1
)

// shadeRamp indexes brightness for the character heatmap.
var shadeRamp = []rune(" .:-=+*#%@")

type Model struct {
	charges []scene.Charge
	solver  *field.Solver
	v       view.View

	px, py  float64
	step    float64
	showMap bool

	width, height int
}

func New(charges []scene.Charge, solver *field.Solver, v view.View) Model {
	return Model{
		charges: charges,
		solver:  solver,
		v:       v,
		px:      (v.MinX + v.MaxX) / 2,
		py:      (v.MinY + v.MaxY) / 2,
		step:    defaultStep,
		showMap: true,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.py = clamp(m.py-m.step, m.v.MinY, m.v.MaxY)
		case "down", "j":
			m.py = clamp(m.py+m.step, m.v.MinY, m.v.MaxY)
		case "left", "h":
			m.px = clamp(m.px-m.step, m.v.MinX, m.v.MaxX)
		case "right", "l":
			m.px = clamp(m.px+m.step, m.v.MinX, m.v.MaxX)
		case "+", "=":
			m.step = math.Min(m.step*2, 2)
		case "-", "_":
			m.step = math.Max(m.step/2, 0.0125)
		case "m":
			m.showMap = !m.showMap
		}
	}
	return m, nil
}

func (m Model) Probe() (x, y float64) { return m.px, m.py }

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n   " + cyan.Render("efield probe") + "  " +
		dim.Render(fmt.Sprintf("%d charges", len(m.charges))) + "\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 40)) + "\n\n")

	v, ex, ey := m.solver.At(m.charges, m.px, m.py)
	mag := math.Hypot(ex, ey)
	b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
		dim.Render("probe"), white.Render(fmt.Sprintf("(%+.3f, %+.3f)", m.px, m.py)),
		dim.Render("step"), white.Render(fmt.Sprintf("%.4g m", m.step))))
	b.WriteString(fmt.Sprintf("   %s %s   %s %s\n",
		dim.Render("V   "), signed(v).Render(fmt.Sprintf("%+.4g V", v)),
		dim.Render("|E| "), white.Render(fmt.Sprintf("%.4g V/m", mag))))
	b.WriteString(fmt.Sprintf("   %s %s\n\n",
		dim.Render("E   "), white.Render(fmt.Sprintf("(%+.4g, %+.4g) V/m", ex, ey))))

	if m.showMap {
		b.WriteString(m.viewMap())
		b.WriteString("\n")
	}

	b.WriteString(m.viewScanline())
	b.WriteString("\n" + dim.Render("   arrows move  +/- step  m map  q quit") + "\n")
	return b.String()
}

// viewMap renders the potential as a character raster, probe marked with ✚.
func (m Model) viewMap() string {
	grid := make([]float64, mapW*mapH)
	maxAbs := 0.0
	for j := 0; j < mapH; j++ {
		wy := m.v.MinY + (float64(j)+0.5)/mapH*m.v.Height()
		for i := 0; i < mapW; i++ {
			wx := m.v.MinX + (float64(i)+0.5)/mapW*m.v.Width()
			p := m.solver.Potential(m.charges, wx, wy)
			grid[j*mapW+i] = p
			if a := math.Abs(p); a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	pi := int((m.px - m.v.MinX) / m.v.Width() * mapW)
	pj := int((m.py - m.v.MinY) / m.v.Height() * mapH)

	var b strings.Builder
	for j := 0; j < mapH; j++ {
		b.WriteString("   ")
		for i := 0; i < mapW; i++ {
			if i == pi && j == pj {
				b.WriteString(white.Render("✚"))
				continue
			}
			p := grid[j*mapW+i]
			t := heatmap.Intensity(p, maxAbs)
			idx := int(t * float64(len(shadeRamp)-1))
			ch := string(shadeRamp[idx])
			if p >= 0 {
				b.WriteString(warm.Render(ch))
			} else {
				b.WriteString(cool.Render(ch))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// viewScanline plots |E| along the horizontal line through the probe.
func (m Model) viewScanline() string {
	const samples = 72
	data := make([]float64, samples)
	for i := 0; i < samples; i++ {
		wx := m.v.MinX + (float64(i)+0.5)/samples*m.v.Width()
		data[i] = m.solver.Magnitude(m.charges, wx, m.py)
	}
	chart := asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(samples),
		asciigraph.Caption(fmt.Sprintf("|E| along y=%+.2f", m.py)),
	)
	return dim.Render(indent(chart, "   ")) + "\n"
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func signed(v float64) lipgloss.Style {
	if v >= 0 {
		return warm
	}
	return cool
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run starts the probe UI and blocks until the user quits.
func Run(charges []scene.Charge, solver *field.Solver, v view.View) error {
	p := tea.NewProgram(New(charges, solver, v), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
