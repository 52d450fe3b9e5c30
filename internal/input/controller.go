// Package input turns raw pointer gestures (mouse or touch) into scene edits:
// tap to place, drag to move, modifier-drag to duplicate, and a non-mutating
// measure mode that probes the field under the pointer.
package input

import (
	"math"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/scene"
)

type Source int

const (
	SourceMouse Source = iota
	SourceTouch
)

// Pointer is one pointer sample in world coordinates. The front end converts
// from screen space before handing it over.
type Pointer struct {
	X, Y   float64
	Source Source
}

// Modifiers carries gesture modifiers captured at press time.
type Modifiers struct {
	Duplicate bool
}

const (
	DefaultMouseRadius    = 0.12 // world meters
	DefaultTouchFactor    = 1.4  // touch hit radius multiplier, fingers are blunt
	DefaultDragDeadZone   = 0.02 // world meters before a press becomes a drag
	DefaultPlaceMagnitude = 1.0  // µC for tap-placed charges
)

// Measurement is a field probe readout at a world position. While a measure
// gesture is held, From anchors the press point and Dist is the length of the
// press-to-current segment; hover probes leave Dist at zero.
type Measurement struct {
	X, Y         float64
	V            float64
	Ex, Ey       float64
	Mag          float64
	FromX, FromY float64
	Dist         float64
}

// Controller runs the single-gesture pointer state machine. A press either
// grabs a charge (topmost wins), clones one under the duplicate modifier, or
// arms a tap-to-place; release commits whichever the movement decided.
type Controller struct {
	MouseRadius    float64
	TouchFactor    float64
	DragDeadZone   float64
	PlaceMagnitude float64

	scn    *scene.Scene
	solver *field.Solver

	measure          bool
	probe            Measurement
	probed           bool
	anchored         bool
	anchorX, anchorY float64

	active         bool
	source         Source
	startX, startY float64
	moved          bool
	dragID         scene.ChargeID
	offX, offY     float64
}

func NewController(scn *scene.Scene, solver *field.Solver) *Controller {
	return &Controller{
		MouseRadius:    DefaultMouseRadius,
		TouchFactor:    DefaultTouchFactor,
		DragDeadZone:   DefaultDragDeadZone,
		PlaceMagnitude: DefaultPlaceMagnitude,
		scn:            scn,
		solver:         solver,
	}
}

// HitRadius returns the pick radius for a pointer source. Touch gets a wider
// target than the mouse so a fingertip can grab what it covers.
func (c *Controller) HitRadius(src Source) float64 {
	if src == SourceTouch {
		return c.MouseRadius * c.TouchFactor
	}
	return c.MouseRadius
}

// HitTest finds the charge under the pointer, scanning in reverse creation
// order so the topmost drawn charge wins when several overlap.
func (c *Controller) HitTest(p Pointer) (scene.ChargeID, bool) {
	r := c.HitRadius(p.Source)
	r2 := r * r
	charges := c.scn.Snapshot()
	for i := len(charges) - 1; i >= 0; i-- {
		dx := p.X - charges[i].X
		dy := p.Y - charges[i].Y
		if dx*dx+dy*dy <= r2 {
			return charges[i].ID, true
		}
	}
	return 0, false
}

// Down begins a gesture. While a gesture is active, presses from other
// pointers are ignored; one drag at a time.
func (c *Controller) Down(p Pointer, mods Modifiers) {
	if c.active {
		return
	}
	c.active = true
	c.source = p.Source
	c.startX, c.startY = p.X, p.Y
	c.moved = false
	c.dragID = 0

	if c.measure {
		c.anchored = true
		c.anchorX, c.anchorY = p.X, p.Y
		c.updateProbe(p.X, p.Y)
		return
	}

	id, ok := c.HitTest(p)
	if !ok {
		return // release decides between tap-to-place and nothing
	}
	if mods.Duplicate {
		if clone, ok := c.scn.Duplicate(id); ok {
			id = clone // the clone rides the drag, the original stays put
		}
	}
	c.scn.Select(id)
	ch, _ := c.scn.ByID(id)
	c.dragID = id
	c.offX = ch.X - p.X
	c.offY = ch.Y - p.Y
	// Defer heat/flow invalidation until release so the drag stays smooth and
	// the carriers keep flowing instead of reseeding every move.
	c.scn.HoldRender()
}

// Move advances the active gesture. Movement inside the dead zone keeps a
// press eligible for tap semantics.
func (c *Controller) Move(p Pointer) {
	if c.measure {
		c.updateProbe(p.X, p.Y)
	}
	if !c.active || c.measure {
		return
	}
	dx := p.X - c.startX
	dy := p.Y - c.startY
	if !c.moved && math.Hypot(dx, dy) > c.DragDeadZone {
		c.moved = true
	}
	if c.dragID != 0 && c.moved {
		c.scn.Move(c.dragID, p.X+c.offX, p.Y+c.offY)
	}
}

// Up ends the gesture. A press on empty space that never left the dead zone
// places a new charge at the press point and selects it.
func (c *Controller) Up(p Pointer) {
	if !c.active {
		return
	}
	if !c.measure && c.dragID == 0 && !c.moved {
		if id, err := c.scn.Add(c.startX, c.startY, c.PlaceMagnitude); err == nil {
			c.scn.Select(id)
		}
	}
	if c.dragID != 0 {
		c.scn.ReleaseRender()
	}
	c.active = false
	c.dragID = 0
	c.moved = false
	c.anchored = false
}

// Dragging reports the charge currently riding the pointer, if any.
func (c *Controller) Dragging() (scene.ChargeID, bool) {
	if c.active && c.dragID != 0 {
		return c.dragID, true
	}
	return 0, false
}

// SetMeasure toggles measure mode. While on, gestures probe the field and
// never mutate the scene; the last probe stays visible for the overlay.
func (c *Controller) SetMeasure(on bool) {
	c.measure = on
	if !on {
		c.probed = false
	}
}

func (c *Controller) Measure() bool { return c.measure }

// Probe returns the latest measurement, valid only while measure mode is on
// and at least one pointer sample has arrived.
func (c *Controller) Probe() (Measurement, bool) {
	return c.probe, c.probed
}

func (c *Controller) updateProbe(x, y float64) {
	charges := c.scn.Snapshot()
	v, ex, ey := c.solver.At(charges, x, y)
	m := Measurement{X: x, Y: y, V: v, Ex: ex, Ey: ey, Mag: math.Hypot(ex, ey)}
	if c.anchored {
		m.FromX, m.FromY = c.anchorX, c.anchorY
		m.Dist = math.Hypot(x-c.anchorX, y-c.anchorY)
	}
	c.probe = m
	c.probed = true
}
