// Package app binds the solver, rasterizer, flow animator, and interaction
// controller into the Ebitengine window loop.
package app

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"

	"github.com/san-kum/efield/internal/config"
	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/flow"
	"github.com/san-kum/efield/internal/heatmap"
	"github.com/san-kum/efield/internal/input"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/store"
	"github.com/san-kum/efield/internal/view"
)

const (
	renderScale = 2 // screen pixels per heatmap cell
	glyphStepPx = 28

	magnitudeStep = 0.25 // µC per keypress
	rangeFactor   = 1.25
)

type App struct {
	cfg *config.Config
	log zerolog.Logger

	scn    *scene.Scene
	solver *field.Solver
	raster *heatmap.Raster
	integ  *flow.Integrator
	ctrl   *input.Controller
	saver  *store.Saver
	v      view.View

	heatImg    *ebiten.Image
	glyphs     []heatmap.Glyph
	showGlyphs bool

	lastStatus store.SaveStatus
	hasStatus  bool

	touchIDs    []ebiten.TouchID
	activeTouch ebiten.TouchID
	touchDown   bool
	mouseDown   bool

	opened     chan *store.Document
	dialogOpen bool
}

func New(cfg *config.Config, st store.Store, log zerolog.Logger) *App {
	solver := field.NewSolver()
	solver.Softening = cfg.Solver.Softening

	integ := flow.NewIntegrator(solver)
	integ.CarriersPerSource = cfg.Flow.CarriersPerSource
	integ.SpeedBase = cfg.Flow.SpeedBase
	integ.MaxAge = cfg.Flow.MaxAge
	integ.SinkRadius = cfg.Flow.SinkRadius
	integ.SeedRadius = cfg.Flow.SeedRadius

	scn := scene.New()
	ctrl := input.NewController(scn, solver)
	ctrl.MouseRadius = cfg.Input.MouseRadius
	ctrl.TouchFactor = cfg.Input.TouchFactor
	ctrl.DragDeadZone = cfg.Input.DragDeadZone
	ctrl.PlaceMagnitude = cfg.Input.PlaceMagnitude

	a := &App{
		cfg:        cfg,
		log:        log,
		scn:        scn,
		solver:     solver,
		raster:     heatmap.New(cfg.Grid.W, cfg.Grid.H, solver),
		integ:      integ,
		ctrl:       ctrl,
		saver:      store.NewSaver(st, saveDelay(cfg), log),
		showGlyphs: true,
		opened:     make(chan *store.Document, 1),
		v: view.View{
			MinX: cfg.Viewport.MinX, MinY: cfg.Viewport.MinY,
			MaxX: cfg.Viewport.MaxX, MaxY: cfg.Viewport.MaxY,
			PxW: cfg.Grid.W * renderScale, PxH: cfg.Grid.H * renderScale,
		},
	}
	a.heatImg = ebiten.NewImage(cfg.Grid.W, cfg.Grid.H)

	doc, err := store.LoadOrDefault(st)
	if err != nil {
		log.Warn().Err(err).Msg("starting from the default scene")
	}
	if err := doc.Apply(scn); err != nil {
		log.Warn().Err(err).Msg("stored scene rejected, starting empty")
		scn.Clear()
	}
	return a
}

func saveDelay(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Save.DebounceMs) * time.Millisecond
}

// Run opens the window and blocks until the user quits, flushing any pending
// save on the way out.
func (a *App) Run() error {
	ebiten.SetWindowSize(a.v.PxW, a.v.PxH)
	ebiten.SetWindowTitle("efield")
	ebiten.SetTPS(60)

	err := ebiten.RunGame(a)
	if cerr := a.saver.Close(); cerr != nil {
		a.log.Error().Err(cerr).Msg("final save failed")
	}
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.v.PxW, a.v.PxH
}

func (a *App) Update() error {
	a.drainStatus()
	a.drainOpened()

	if err := a.handleKeys(); err != nil {
		return err
	}
	a.handlePointers()

	if a.scn.ConsumeHeatDirty() {
		charges := a.scn.Snapshot()
		a.raster.Compute(charges, a.v, a.scn.AutoScale(), a.scn.RangeV())
		a.heatImg.WritePixels(a.raster.Pix())
		a.glyphs = a.raster.Glyphs(charges, a.v, glyphStepPx)
	}
	if a.scn.ConsumeFlowDirty() {
		a.integ.Reseed(a.scn.Snapshot())
	}
	a.integ.Step(a.scn.Snapshot(), a.v)

	if a.scn.ConsumePersistDirty() {
		a.saver.Request(store.Snapshot(a.scn))
	}
	return nil
}

func (a *App) drainStatus() {
	for {
		select {
		case st := <-a.saver.Status():
			a.lastStatus = st
			a.hasStatus = true
		default:
			return
		}
	}
}

func (a *App) drainOpened() {
	select {
	case doc := <-a.opened:
		a.dialogOpen = false
		if doc == nil {
			return
		}
		if err := doc.Apply(a.scn); err != nil {
			a.log.Error().Err(err).Msg("opened scene rejected")
		}
	default:
	}
}

func (a *App) handleKeys() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.ctrl.SetMeasure(!a.ctrl.Measure())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		a.scn.SetAutoScale(!a.scn.AutoScale())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		a.showGlyphs = !a.showGlyphs
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		a.scn.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if id := a.scn.SelectedID(); id != 0 {
			a.scn.Remove(id)
		}
	}

	a.handleMagnitudeKeys()
	a.handleRangeKeys()
	a.handlePresetKeys()

	if inpututil.IsKeyJustPressed(ebiten.KeyO) && !a.dialogOpen {
		a.dialogOpen = true
		go a.openDialog()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) && !a.dialogOpen {
		a.dialogOpen = true
		doc := store.Snapshot(a.scn)
		go a.saveDialog(doc)
	}
	return nil
}

func (a *App) handleMagnitudeKeys() {
	id := a.scn.SelectedID()
	if id == 0 {
		return
	}
	step := magnitudeStep
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step *= 4
	}
	delta := 0.0
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		delta = step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		delta = -step
	}
	if delta == 0 {
		return
	}
	if ch, ok := a.scn.ByID(id); ok {
		if err := a.scn.SetMagnitude(id, ch.Q+delta); err != nil {
			a.log.Debug().Err(err).Msg("magnitude change rejected")
		}
	}
}

func (a *App) handleRangeKeys() {
	if a.scn.AutoScale() {
		return
	}
	factor := 0.0
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		factor = rangeFactor
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		factor = 1 / rangeFactor
	}
	if factor == 0 {
		return
	}
	if err := a.scn.SetRangeV(a.scn.RangeV() * factor); err != nil {
		a.log.Debug().Err(err).Msg("range change rejected")
	}
}

func (a *App) handlePresetKeys() {
	keys := []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}
	names := config.ListPresets()
	for i, k := range keys {
		if i >= len(names) || !inpututil.IsKeyJustPressed(k) {
			continue
		}
		doc, _ := config.GetPreset(names[i])
		if err := doc.Apply(a.scn); err != nil {
			a.log.Error().Err(err).Str("preset", names[i]).Msg("preset rejected")
		}
	}
}

// handlePointers feeds mouse and touch into the gesture controller. The first
// touch owns the gesture; extra fingers are ignored until it lifts.
func (a *App) handlePointers() {
	mods := input.Modifiers{Duplicate: ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyD)}

	mx, my := ebiten.CursorPosition()
	wx, wy := a.v.PixelToWorld(float64(mx), float64(my))
	mouse := input.Pointer{X: wx, Y: wy, Source: input.SourceMouse}

	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case pressed && !a.mouseDown:
		a.mouseDown = true
		a.ctrl.Down(mouse, mods)
	case pressed && a.mouseDown:
		a.ctrl.Move(mouse)
	case !pressed && a.mouseDown:
		a.mouseDown = false
		a.ctrl.Up(mouse)
	default:
		if a.ctrl.Measure() {
			a.ctrl.Move(mouse) // hover probing
		}
	}

	a.touchIDs = ebiten.AppendTouchIDs(a.touchIDs[:0])
	if !a.touchDown {
		for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
			tx, ty := ebiten.TouchPosition(id)
			twx, twy := a.v.PixelToWorld(float64(tx), float64(ty))
			a.touchDown = true
			a.activeTouch = id
			// A second finger on screen at press time signals duplicate.
			tmods := mods
			if len(a.touchIDs) > 1 {
				tmods.Duplicate = true
			}
			a.ctrl.Down(input.Pointer{X: twx, Y: twy, Source: input.SourceTouch}, tmods)
			break
		}
		return
	}
	if inpututil.IsTouchJustReleased(a.activeTouch) {
		x, y := inpututil.TouchPositionInPreviousTick(a.activeTouch)
		twx, twy := a.v.PixelToWorld(float64(x), float64(y))
		a.touchDown = false
		a.ctrl.Up(input.Pointer{X: twx, Y: twy, Source: input.SourceTouch})
		return
	}
	tx, ty := ebiten.TouchPosition(a.activeTouch)
	twx, twy := a.v.PixelToWorld(float64(tx), float64(ty))
	a.ctrl.Move(input.Pointer{X: twx, Y: twy, Source: input.SourceTouch})
}

func (a *App) openDialog() {
	path, err := zenity.SelectFile(
		zenity.Title("Open Scene"),
		zenity.FileFilters{{Name: "Scene files", Patterns: []string{"*.json"}}},
	)
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			a.log.Error().Err(err).Msg("open dialog failed")
		}
		a.opened <- nil
		return
	}
	doc, err := store.NewFileStore(path).Load()
	if err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("scene load failed")
		a.opened <- nil
		return
	}
	a.opened <- &doc
}

func (a *App) saveDialog(doc store.Document) {
	defer func() { a.opened <- nil }() // reuse the channel to clear dialogOpen
	path, err := zenity.SelectFileSave(
		zenity.Title("Save Scene As"),
		zenity.ConfirmOverwrite(),
		zenity.Filename("scene.json"),
		zenity.FileFilters{{Name: "Scene files", Patterns: []string{"*.json"}}},
	)
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			a.log.Error().Err(err).Msg("save dialog failed")
		}
		return
	}
	if err := store.NewFileStore(path).Save(doc); err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("scene save failed")
	}
}

func fmtVolts(v float64) string {
	if math.Abs(v) >= 1000 {
		return fmt.Sprintf("%.3g kV", v/1000)
	}
	return fmt.Sprintf("%.3g V", v)
}
