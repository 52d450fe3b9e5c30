package app

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colPositive = color.RGBA{235, 120, 60, 255}
	colNegative = color.RGBA{70, 130, 235, 255}
	colNeutral  = color.RGBA{150, 150, 150, 255}
	colSelect   = color.RGBA{255, 255, 255, 255}
	colCarrier  = color.RGBA{250, 245, 220, 200}
	colGlyph    = color.RGBA{200, 200, 200, 90}
	colProbe    = color.RGBA{255, 255, 255, 180}
)

func (a *App) Draw(screen *ebiten.Image) {
	a.drawHeat(screen)
	if a.showGlyphs {
		a.drawGlyphs(screen)
	}
	a.drawCarriers(screen)
	a.drawCharges(screen)
	a.drawMeasure(screen)
	a.drawHUD(screen)
}

func (a *App) drawHeat(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(
		float64(a.v.PxW)/float64(a.raster.W),
		float64(a.v.PxH)/float64(a.raster.H),
	)
	screen.DrawImage(a.heatImg, op)
}

func (a *App) drawGlyphs(screen *ebiten.Image) {
	for _, g := range a.glyphs {
		x1, y1 := a.v.WorldToPixel(g.X1, g.Y1)
		x2, y2 := a.v.WorldToPixel(g.X2, g.Y2)
		vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, colGlyph, true)
		// Arrowhead dot on the downstream end.
		vector.DrawFilledCircle(screen, float32(x2), float32(y2), 1.5, colGlyph, true)
	}
}

func (a *App) drawCarriers(screen *ebiten.Image) {
	for _, c := range a.integ.Carriers() {
		px, py := a.v.WorldToPixel(c.X, c.Y)
		vector.DrawFilledCircle(screen, float32(px), float32(py), 1.5, colCarrier, true)
	}
}

func (a *App) drawCharges(screen *ebiten.Image) {
	selected := a.scn.SelectedID()
	for _, c := range a.scn.Snapshot() {
		px, py := a.v.WorldToPixel(c.X, c.Y)
		r := chargeRadius(c.Q)
		vector.DrawFilledCircle(screen, float32(px), float32(py), r, chargeColor(c.Q), true)
		if c.ID == selected {
			vector.StrokeCircle(screen, float32(px), float32(py), r+4, 2, colSelect, true)
		}
	}
}

func chargeRadius(q float64) float32 {
	r := 6 + 3*math.Log1p(math.Abs(q))
	return float32(r)
}

func chargeColor(q float64) color.RGBA {
	switch {
	case q > 0:
		return colPositive
	case q < 0:
		return colNegative
	default:
		return colNeutral
	}
}

func (a *App) drawMeasure(screen *ebiten.Image) {
	if !a.ctrl.Measure() {
		return
	}
	m, ok := a.ctrl.Probe()
	if !ok {
		return
	}
	px, py := a.v.WorldToPixel(m.X, m.Y)
	x, y := float32(px), float32(py)
	vector.StrokeLine(screen, x-8, y, x+8, y, 1, colProbe, true)
	vector.StrokeLine(screen, x, y-8, x, y+8, 1, colProbe, true)

	label := fmt.Sprintf("(%.2f, %.2f)  V=%s  |E|=%.3g V/m", m.X, m.Y, fmtVolts(m.V), m.Mag)
	if m.Dist > 0 {
		fx, fy := a.v.WorldToPixel(m.FromX, m.FromY)
		vector.StrokeLine(screen, float32(fx), float32(fy), x, y, 1, colProbe, true)
		label += fmt.Sprintf("  d=%.2f m", m.Dist)
	}
	ebitenutil.DebugPrintAt(screen, label, int(px)+12, int(py)-16)
}

func (a *App) drawHUD(screen *ebiten.Image) {
	scale := "auto"
	if !a.scn.AutoScale() {
		scale = fmtVolts(a.scn.RangeV())
	}
	line := fmt.Sprintf("charges %d  scale %s  clip %s", a.scn.Len(), scale, fmtVolts(a.raster.LastClip()))
	if sel, ok := a.scn.Selected(); ok {
		line += fmt.Sprintf("  sel %+.2f uC", sel.Q)
	}
	if a.ctrl.Measure() {
		line += "  [measure]"
	}
	if a.hasStatus {
		if a.lastStatus.Err != nil {
			line += "  save FAILED"
		} else {
			line += "  saved " + a.lastStatus.At.Format("15:04:05")
		}
	}
	ebitenutil.DebugPrintAt(screen, line, 8, a.v.PxH-18)
	ebitenutil.DebugPrintAt(screen,
		"tap place  drag move  alt-drag clone  arrows magnitude  [/] range  A auto  M measure  1-4 presets  O/S file  Q quit",
		8, 4)
}
