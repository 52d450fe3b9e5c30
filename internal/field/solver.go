// Package field computes electrostatic potential and field by superposition
// of point charges. Everything here is pure: charges in, numbers out.
package field

import (
	"math"

	"github.com/san-kum/efield/internal/scene"
)

// Coulomb is the Coulomb constant in N·m²/C².
const Coulomb = 8.9875517873681764e9

// microCoulomb scales charge magnitudes, which the scene stores in µC.
const microCoulomb = 1e-6

// DefaultSoftening is the minimum distance substituted near a charge center.
// It is a numerical-stability device that keeps 1/r and 1/r³ bounded right at
// a point charge; it is not a physical parameter.
const DefaultSoftening = 0.01

type Solver struct {
	Softening float64
}

func NewSolver() *Solver {
	return &Solver{Softening: DefaultSoftening}
}

// At returns the potential V and field vector E = -∇V at (x, y), superposed
// over the charges in slice order. The iteration order is deterministic so
// that floating-point results are reproducible for the same input.
func (s *Solver) At(charges []scene.Charge, x, y float64) (v, ex, ey float64) {
	soft := s.Softening
	if soft <= 0 {
		soft = DefaultSoftening
	}
	for i := range charges {
		c := &charges[i]
		dx := x - c.X
		dy := y - c.Y
		r := math.Sqrt(dx*dx + dy*dy)
		if r < soft {
			r = soft
		}
		kq := Coulomb * c.Q * microCoulomb
		v += kq / r
		r3 := r * r * r
		ex += kq * dx / r3
		ey += kq * dy / r3
	}
	return v, ex, ey
}

// Potential returns only the scalar potential at (x, y).
func (s *Solver) Potential(charges []scene.Charge, x, y float64) float64 {
	v, _, _ := s.At(charges, x, y)
	return v
}

// Vector returns only the field vector at (x, y).
func (s *Solver) Vector(charges []scene.Charge, x, y float64) (ex, ey float64) {
	_, ex, ey = s.At(charges, x, y)
	return ex, ey
}

// Magnitude returns |E| at (x, y).
func (s *Solver) Magnitude(charges []scene.Charge, x, y float64) float64 {
	_, ex, ey := s.At(charges, x, y)
	return math.Hypot(ex, ey)
}
