package scene

import (
	"fmt"
	"math"
)

// ChargeID identifies a charge for the lifetime of the scene. IDs are never
// reused, so a stale ID simply fails to resolve.
type ChargeID uint64

// Charge is a point charge in world space. Position in meters, magnitude in
// microcoulombs. Zero magnitude is legal and acts as a neutral marker.
type Charge struct {
	ID ChargeID
	X  float64
	Y  float64
	Q  float64
}

const (
	DefaultRangeV = 5000.0
	MaxRangeV     = 1e9
	MaxMagnitude  = 1e4
)

// Scene is the single source of truth for the charge configuration and the
// display settings. All mutation goes through its methods; consumers receive
// value snapshots per frame.
type Scene struct {
	charges  []Charge
	nextID   ChargeID
	selected ChargeID

	autoScale bool
	rangeV    float64

	heatDirty    bool
	flowDirty    bool
	persistDirty bool

	holding  bool
	heldHeat bool
	heldFlow bool
}

func New() *Scene {
	return &Scene{
		nextID:    1,
		autoScale: true,
		rangeV:    DefaultRangeV,
		heatDirty: true,
		flowDirty: true,
	}
}

// Add creates a charge at (x, y) with magnitude q and returns its ID.
func (s *Scene) Add(x, y, q float64) (ChargeID, error) {
	if err := validFinite(x, y, q); err != nil {
		return 0, err
	}
	id := s.nextID
	s.nextID++
	s.charges = append(s.charges, Charge{ID: id, X: x, Y: y, Q: q})
	s.markChanged()
	return id, nil
}

// Duplicate clones the charge with the given ID in place (same position, same
// magnitude) and returns the clone's ID. The clone is appended, so it sits on
// top of the original for hit-testing.
func (s *Scene) Duplicate(id ChargeID) (ChargeID, bool) {
	c, ok := s.ByID(id)
	if !ok {
		return 0, false
	}
	clone, err := s.Add(c.X, c.Y, c.Q)
	if err != nil {
		return 0, false
	}
	return clone, true
}

// Move repositions a charge. Non-finite coordinates are rejected so that the
// position invariant holds no matter what the input layer feeds in.
func (s *Scene) Move(id ChargeID, x, y float64) bool {
	if err := validFinite(x, y, 0); err != nil {
		return false
	}
	for i := range s.charges {
		if s.charges[i].ID == id {
			s.charges[i].X = x
			s.charges[i].Y = y
			s.markChanged()
			return true
		}
	}
	return false
}

// SetMagnitude updates a charge's magnitude in µC. Rejects non-finite and
// out-of-sane-bounds values, keeping the prior value.
func (s *Scene) SetMagnitude(id ChargeID, q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) || math.Abs(q) > MaxMagnitude {
		return fmt.Errorf("magnitude out of bounds: %v", q)
	}
	for i := range s.charges {
		if s.charges[i].ID == id {
			s.charges[i].Q = q
			s.markChanged()
			return nil
		}
	}
	return fmt.Errorf("no charge with id %d", id)
}

func (s *Scene) Remove(id ChargeID) bool {
	for i := range s.charges {
		if s.charges[i].ID == id {
			s.charges = append(s.charges[:i], s.charges[i+1:]...)
			if s.selected == id {
				s.selected = 0
			}
			s.markChanged()
			return true
		}
	}
	return false
}

// Select records the selected charge. The reference is weak: the ID may stop
// resolving once the charge is removed, and Selected simply reports no hit.
func (s *Scene) Select(id ChargeID) { s.selected = id }

func (s *Scene) Selected() (Charge, bool) {
	return s.ByID(s.selected)
}

func (s *Scene) SelectedID() ChargeID { return s.selected }

func (s *Scene) ByID(id ChargeID) (Charge, bool) {
	if id == 0 {
		return Charge{}, false
	}
	for _, c := range s.charges {
		if c.ID == id {
			return c, true
		}
	}
	return Charge{}, false
}

func (s *Scene) Len() int { return len(s.charges) }

// Snapshot returns a value copy of the charge list in creation order.
// Rasterizer and integrator work against a snapshot taken at the start of a
// pass so a drag update cannot corrupt in-flight sampling.
func (s *Scene) Snapshot() []Charge {
	out := make([]Charge, len(s.charges))
	copy(out, s.charges)
	return out
}

func (s *Scene) AutoScale() bool { return s.autoScale }

func (s *Scene) SetAutoScale(on bool) {
	if s.autoScale == on {
		return
	}
	s.autoScale = on
	s.heatDirty = true
	s.persistDirty = true
}

func (s *Scene) RangeV() float64 { return s.rangeV }

// SetRangeV sets the manual display range. The value is taken exactly as
// given; it is deliberately not capped against the last auto-computed
// amplitude. Non-finite or non-positive input is rejected and the prior value
// retained.
func (s *Scene) SetRangeV(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxRangeV {
		return fmt.Errorf("display range out of bounds: %v", v)
	}
	s.rangeV = v
	s.heatDirty = true
	s.persistDirty = true
	return nil
}

// Replace swaps in a whole new charge set, used by scene loading. Fresh IDs
// are assigned; selection is cleared.
func (s *Scene) Replace(charges []Charge, autoScale bool, rangeV float64) error {
	for _, c := range charges {
		if err := validFinite(c.X, c.Y, c.Q); err != nil {
			return err
		}
	}
	if math.IsNaN(rangeV) || math.IsInf(rangeV, 0) || rangeV <= 0 {
		return fmt.Errorf("display range out of bounds: %v", rangeV)
	}
	s.charges = s.charges[:0]
	for _, c := range charges {
		id := s.nextID
		s.nextID++
		s.charges = append(s.charges, Charge{ID: id, X: c.X, Y: c.Y, Q: c.Q})
	}
	s.selected = 0
	s.autoScale = autoScale
	s.rangeV = rangeV
	s.markChanged()
	return nil
}

// Clear resets to the default empty scene.
func (s *Scene) Clear() {
	s.charges = s.charges[:0]
	s.selected = 0
	s.autoScale = true
	s.rangeV = DefaultRangeV
	s.markChanged()
}

func (s *Scene) markChanged() {
	s.persistDirty = true
	if s.holding {
		s.heldHeat = true
		s.heldFlow = true
		return
	}
	s.heatDirty = true
	s.flowDirty = true
}

// HoldRender starts a continuous edit. Heat and flow invalidation accumulates
// until ReleaseRender, so dragging a charge does not trigger a full raster
// recompute and carrier reseed on every move.
func (s *Scene) HoldRender() { s.holding = true }

// ReleaseRender ends a continuous edit and flushes any accumulated
// invalidation into the dirty flags.
func (s *Scene) ReleaseRender() {
	s.holding = false
	if s.heldHeat {
		s.heatDirty = true
		s.heldHeat = false
	}
	if s.heldFlow {
		s.flowDirty = true
		s.heldFlow = false
	}
}

// ConsumeHeatDirty reports and clears the heat-dirty flag.
func (s *Scene) ConsumeHeatDirty() bool {
	d := s.heatDirty
	s.heatDirty = false
	return d
}

func (s *Scene) ConsumeFlowDirty() bool {
	d := s.flowDirty
	s.flowDirty = false
	return d
}

func (s *Scene) ConsumePersistDirty() bool {
	d := s.persistDirty
	s.persistDirty = false
	return d
}

func (s *Scene) HeatDirty() bool { return s.heatDirty }

func (s *Scene) FlowDirty() bool { return s.flowDirty }

func validFinite(x, y, q float64) error {
	for _, v := range [3]float64{x, y, q} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value: %v", v)
		}
	}
	return nil
}
