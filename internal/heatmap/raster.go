// Package heatmap rasterizes the scalar potential of a charge snapshot into
// an RGBA pixel buffer, clipping magnitudes against an auto- or user-supplied
// display range.
package heatmap

import (
	"math"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/view"
)

const (
	DefaultGridW = 480
	DefaultGridH = 332
)

type Raster struct {
	W, H   int
	solver *field.Solver

	grid []float64 // potential per cell, row-major
	pix  []byte    // RGBA, W*H*4

	lastClip float64
}

func New(w, h int, solver *field.Solver) *Raster {
	if w <= 0 {
		w = DefaultGridW
	}
	if h <= 0 {
		h = DefaultGridH
	}
	return &Raster{
		W:      w,
		H:      h,
		solver: solver,
		grid:   make([]float64, w*h),
		pix:    make([]byte, w*h*4),
	}
}

// Compute samples the solver over the full grid and recolors the pixel
// buffer. It returns the clip value actually used.
//
// With autoScale the clip is the maximum |V| observed across the grid this
// pass. With manual scaling the clip is rangeV exactly as given — it is never
// capped against the last observed amplitude, so users can widen the range
// past the scene's current maximum.
func (r *Raster) Compute(charges []scene.Charge, v view.View, autoScale bool, rangeV float64) float64 {
	maxAbs := 0.0
	for j := 0; j < r.H; j++ {
		wy := v.MinY + (float64(j)+0.5)/float64(r.H)*v.Height()
		for i := 0; i < r.W; i++ {
			wx := v.MinX + (float64(i)+0.5)/float64(r.W)*v.Width()
			p := r.solver.Potential(charges, wx, wy)
			r.grid[j*r.W+i] = p
			if a := math.Abs(p); a > maxAbs {
				maxAbs = a
			}
		}
	}

	clip := rangeV
	if autoScale {
		clip = maxAbs
	}
	if clip <= 0 || math.IsNaN(clip) || math.IsInf(clip, 0) {
		clip = 1 // empty scene under auto scale; any clip shades everything neutral
	}

	for idx, p := range r.grid {
		cr, cg, cb := shade(p, clip)
		o := idx * 4
		r.pix[o+0] = cr
		r.pix[o+1] = cg
		r.pix[o+2] = cb
		r.pix[o+3] = 0xff
	}

	r.lastClip = clip
	return clip
}

// Pix exposes the RGBA buffer for upload to the rendering surface.
func (r *Raster) Pix() []byte { return r.pix }

// At returns the sampled potential of grid cell (i, j) from the last pass.
func (r *Raster) At(i, j int) float64 {
	if i < 0 || i >= r.W || j < 0 || j >= r.H {
		return 0
	}
	return r.grid[j*r.W+i]
}

// LastClip returns the clip value used by the last Compute pass.
func (r *Raster) LastClip() float64 { return r.lastClip }

// Intensity maps a potential against a clip value to the normalized ramp
// coordinate in [0, 1]. Monotonic in |p| up to the clip, then saturated.
func Intensity(p, clip float64) float64 {
	t := math.Abs(p) / clip
	if t > 1 {
		t = 1
	}
	return t
}

// shade maps a potential to a diverging ramp: warm for positive, cool for
// negative, brightness monotonic in |p|/clip. The exact palette is a visual
// choice; the clamp and monotonicity are contractual.
func shade(p, clip float64) (byte, byte, byte) {
	t := Intensity(p, clip)
	base := 18.0
	hi := base + t*(255-base)
	mid := base + t*t*150
	lo := base * (1 - t)
	if p >= 0 {
		return byte(hi), byte(mid), byte(lo)
	}
	return byte(lo), byte(mid), byte(hi)
}

// Glyph is one field-direction arrow segment in world coordinates.
type Glyph struct {
	X1, Y1 float64
	X2, Y2 float64
	Mag    float64
}

// Glyphs samples the field direction on a coarse stepPx grid and returns
// arrow segments for the vector overlay. Cells with negligible field are
// skipped so the overlay stays readable around neutral regions.
func (r *Raster) Glyphs(charges []scene.Charge, v view.View, stepPx int) []Glyph {
	if stepPx <= 0 {
		stepPx = 24
	}
	length := float64(stepPx) * 0.4 * v.MetersPerPixel()
	var out []Glyph
	for py := stepPx / 2; py < v.PxH; py += stepPx {
		for px := stepPx / 2; px < v.PxW; px += stepPx {
			wx, wy := v.PixelToWorld(float64(px), float64(py))
			ex, ey := r.solver.Vector(charges, wx, wy)
			mag := math.Hypot(ex, ey)
			if mag < 1e-12 {
				continue
			}
			ux, uy := ex/mag, ey/mag
			out = append(out, Glyph{
				X1: wx - ux*length/2, Y1: wy - uy*length/2,
				X2: wx + ux*length/2, Y2: wy + uy*length/2,
				Mag: mag,
			})
		}
	}
	return out
}
