package field

import (
	"math"
	"testing"

	"github.com/san-kum/efield/internal/scene"
)

func TestSingleChargePotential(t *testing.T) {
	s := NewSolver()
	charges := []scene.Charge{{ID: 1, X: 0, Y: 0, Q: 2.0}}

	r := 1.5 // well clear of the softening radius
	got := s.Potential(charges, r, 0)
	want := Coulomb * 2.0 * 1e-6 / r

	if math.Abs(got-want)/want > 1e-12 {
		t.Errorf("potential at r=%v: got %v, want %v", r, got, want)
	}
}

func TestPotentialIndependentOfListPosition(t *testing.T) {
	s := NewSolver()
	probe := scene.Charge{ID: 9, X: 0, Y: 0, Q: 3.0}
	padding := []scene.Charge{
		{ID: 1, X: 100, Y: 100, Q: 0},
		{ID: 2, X: -100, Y: 50, Q: 0},
	}

	first := append([]scene.Charge{probe}, padding...)
	last := append(append([]scene.Charge{}, padding...), probe)

	vFirst := s.Potential(first, 2, 0)
	vLast := s.Potential(last, 2, 0)

	// Zero-magnitude padding contributes exactly zero, so the sums must agree
	// bit-for-bit regardless of where the probe charge sits in the list.
	if vFirst != vLast {
		t.Errorf("potential depends on list position: %v vs %v", vFirst, vLast)
	}
}

func TestLikeChargesMidpointFieldCancels(t *testing.T) {
	s := NewSolver()
	charges := []scene.Charge{
		{ID: 1, X: -1, Y: 0, Q: 5},
		{ID: 2, X: 1, Y: 0, Q: 5},
	}

	ex, ey := s.Vector(charges, 0, 0)
	if math.Hypot(ex, ey) > 1e-9 {
		t.Errorf("field at midpoint of like charges should cancel, got (%v, %v)", ex, ey)
	}
}

func TestOppositeChargesMidpointPotentialCancels(t *testing.T) {
	s := NewSolver()
	charges := []scene.Charge{
		{ID: 1, X: -1, Y: 0, Q: 5},
		{ID: 2, X: 1, Y: 0, Q: -5},
	}

	v := s.Potential(charges, 0, 0)
	if math.Abs(v) > 1e-9 {
		t.Errorf("potential at dipole midpoint should cancel, got %v", v)
	}
}

func TestSofteningBoundsSingularity(t *testing.T) {
	s := NewSolver()
	charges := []scene.Charge{{ID: 1, X: 0, Y: 0, Q: 10}}

	atCenter := s.Potential(charges, 0, 0)
	atSoftening := s.Potential(charges, s.Softening, 0)

	if math.IsInf(atCenter, 0) || math.IsNaN(atCenter) {
		t.Fatal("potential at charge center must stay finite")
	}
	if atCenter != atSoftening {
		t.Errorf("inside the softening radius the potential should plateau: %v vs %v",
			atCenter, atSoftening)
	}

	exIn, eyIn := s.Vector(charges, s.Softening/10, 0)
	if math.IsInf(exIn, 0) || math.IsNaN(exIn) || math.IsInf(eyIn, 0) {
		t.Error("field inside the softening radius must stay finite")
	}
}

func TestFieldPointsAwayFromPositiveCharge(t *testing.T) {
	s := NewSolver()
	charges := []scene.Charge{{ID: 1, X: 0, Y: 0, Q: 1}}

	ex, ey := s.Vector(charges, 1, 0)
	if ex <= 0 || math.Abs(ey) > 1e-15 {
		t.Errorf("field right of a positive charge should point +x, got (%v, %v)", ex, ey)
	}

	charges[0].Q = -1
	ex, _ = s.Vector(charges, 1, 0)
	if ex >= 0 {
		t.Errorf("field right of a negative charge should point -x, got %v", ex)
	}
}

func TestEmptySceneIsZero(t *testing.T) {
	s := NewSolver()
	v, ex, ey := s.At(nil, 3, 4)
	if v != 0 || ex != 0 || ey != 0 {
		t.Errorf("empty scene should give zero everywhere, got %v (%v, %v)", v, ex, ey)
	}
}
