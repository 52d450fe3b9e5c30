// Package flow animates charge carriers drifting along field lines. The
// integrator is an explicit-Euler particle tracer seeded around positive
// charges; it is illustrative, not a quantitative field-line solver.
package flow

import (
	"math"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/view"
)

const (
	DefaultCarriersPerSource = 12
	DefaultSpeedBase         = 0.02 // meters per frame
	DefaultMaxAge            = 900  // frames before forced recycle (breaks orbit lock)
	DefaultSinkRadius        = 0.05
	DefaultSeedRadius        = 0.04

	// emphasisRef is the field magnitude mapped to full carrier speed.
	emphasisRef = 1e3
)

// Carrier is one animated flow particle.
type Carrier struct {
	X, Y float64
	Age  int
	Seed scene.ChargeID

	angle float64 // current seed angle, advanced on each respawn
}

type Integrator struct {
	CarriersPerSource int
	SpeedBase         float64
	MaxAge            int
	SinkRadius        float64
	SeedRadius        float64

	solver   *field.Solver
	carriers []Carrier
}

func NewIntegrator(solver *field.Solver) *Integrator {
	return &Integrator{
		CarriersPerSource: DefaultCarriersPerSource,
		SpeedBase:         DefaultSpeedBase,
		MaxAge:            DefaultMaxAge,
		SinkRadius:        DefaultSinkRadius,
		SeedRadius:        DefaultSeedRadius,
		solver:            solver,
	}
}

// Reseed rebuilds the carrier pool: a fixed number of carriers per positive
// charge at evenly spaced angles. Called when the charge configuration
// changes, never per frame.
func (in *Integrator) Reseed(charges []scene.Charge) {
	in.carriers = in.carriers[:0]
	for _, c := range charges {
		if c.Q <= 0 {
			continue
		}
		for k := 0; k < in.CarriersPerSource; k++ {
			angle := 2 * math.Pi * float64(k) / float64(in.CarriersPerSource)
			in.carriers = append(in.carriers, in.spawn(c, angle))
		}
	}
}

func (in *Integrator) spawn(seed scene.Charge, angle float64) Carrier {
	return Carrier{
		X:     seed.X + in.SeedRadius*math.Cos(angle),
		Y:     seed.Y + in.SeedRadius*math.Sin(angle),
		Seed:  seed.ID,
		angle: angle,
	}
}

// Step advances every live carrier one frame along the normalized field
// direction, recycling carriers that leave the viewport, exceed the age
// limit, or come within the sink radius of a negative charge.
func (in *Integrator) Step(charges []scene.Charge, bounds view.View) {
	kept := in.carriers[:0]
	for _, ca := range in.carriers {
		ex, ey := in.solver.Vector(charges, ca.X, ca.Y)
		mag := math.Hypot(ex, ey)
		if mag > 1e-12 {
			speed := in.SpeedBase * emphasis(mag)
			ca.X += speed * ex / mag
			ca.Y += speed * ey / mag
		}
		ca.Age++

		if ca.Age > in.MaxAge || !bounds.Contains(ca.X, ca.Y) || in.nearSink(charges, ca.X, ca.Y) {
			seed, ok := chargeByID(charges, ca.Seed)
			if !ok || seed.Q <= 0 {
				continue // seed gone or flipped sign; pool shrinks until next reseed
			}
			// Advance the angle so a recycled carrier traces a neighboring line.
			ca = in.spawn(seed, ca.angle+math.Pi/float64(in.CarriersPerSource))
			if !bounds.Contains(ca.X, ca.Y) {
				continue // seed ring left the viewport; drop until the next reseed
			}
		}
		kept = append(kept, ca)
	}
	in.carriers = kept
}

// Carriers exposes the live pool for drawing. Callers must not retain the
// slice across frames.
func (in *Integrator) Carriers() []Carrier { return in.carriers }

func (in *Integrator) nearSink(charges []scene.Charge, x, y float64) bool {
	r2 := in.SinkRadius * in.SinkRadius
	for i := range charges {
		c := &charges[i]
		if c.Q >= 0 {
			continue
		}
		dx := x - c.X
		dy := y - c.Y
		if dx*dx+dy*dy < r2 {
			return true
		}
	}
	return false
}

// emphasis scales carrier speed with local field strength, clamped so
// carriers stay visible in weak regions and sane near singularities.
func emphasis(mag float64) float64 {
	f := 0.4 + 0.6*mag/emphasisRef
	if f > 1.6 {
		f = 1.6
	}
	return f
}

func chargeByID(charges []scene.Charge, id scene.ChargeID) (scene.Charge, bool) {
	for _, c := range charges {
		if c.ID == id {
			return c, true
		}
	}
	return scene.Charge{}, false
}
