package probe

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/view"
)

func testModel() Model {
	charges := []scene.Charge{{ID: 1, X: 0, Y: 0, Q: 1}}
	v := view.View{MinX: -2, MinY: -2, MaxX: 2, MaxY: 2, PxW: 100, PxH: 100}
	return New(charges, field.NewSolver(), v)
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{}
}

func TestArrowKeysMoveProbe(t *testing.T) {
	m := testModel()
	x0, y0 := m.Probe()

	next, _ := m.Update(key("right"))
	m = next.(Model)
	x1, _ := m.Probe()
	if x1 <= x0 {
		t.Errorf("right arrow should move the probe in +x: %v -> %v", x0, x1)
	}

	next, _ = m.Update(key("up"))
	m = next.(Model)
	_, y1 := m.Probe()
	if y1 >= y0 {
		t.Errorf("up arrow should move the probe in -y: %v -> %v", y0, y1)
	}
}

func TestProbeClampsToViewport(t *testing.T) {
	m := testModel()
	for i := 0; i < 200; i++ {
		next, _ := m.Update(key("left"))
		m = next.(Model)
	}
	x, _ := m.Probe()
	if x < m.v.MinX {
		t.Errorf("probe escaped the viewport: x=%v", x)
	}
}

func TestStepAdjust(t *testing.T) {
	m := testModel()
	s0 := m.step

	next, _ := m.Update(key("+"))
	m = next.(Model)
	if m.step <= s0 {
		t.Errorf("+ should widen the step: %v -> %v", s0, m.step)
	}

	for i := 0; i < 20; i++ {
		next, _ = m.Update(key("-"))
		m = next.(Model)
	}
	if m.step <= 0 {
		t.Errorf("step must stay positive: %v", m.step)
	}
}

func TestViewShowsReadout(t *testing.T) {
	m := testModel()
	out := m.View()
	if !strings.Contains(out, "V/m") {
		t.Error("view should include a field magnitude readout")
	}
	if !strings.Contains(out, "probe") {
		t.Error("view should label the probe position")
	}
	if !strings.Contains(out, "✚") {
		t.Error("map should mark the probe point")
	}
}

func TestMapToggle(t *testing.T) {
	m := testModel()
	next, _ := m.Update(key("m"))
	m = next.(Model)
	if strings.Contains(m.View(), "✚") {
		t.Error("map should be hidden after toggling")
	}
}

func TestQuitKey(t *testing.T) {
	m := testModel()
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
}
