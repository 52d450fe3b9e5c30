// Package view maps between world space (meters) and raster space (pixels).
package view

// View is a world-space rectangle rendered onto a raster of PxW×PxH pixels.
type View struct {
	MinX, MinY float64
	MaxX, MaxY float64
	PxW, PxH   int
}

func (v View) Width() float64  { return v.MaxX - v.MinX }
func (v View) Height() float64 { return v.MaxY - v.MinY }

// WorldToPixel converts world coordinates to raster coordinates.
func (v View) WorldToPixel(wx, wy float64) (float64, float64) {
	px := (wx - v.MinX) / v.Width() * float64(v.PxW)
	py := (wy - v.MinY) / v.Height() * float64(v.PxH)
	return px, py
}

// PixelToWorld converts raster coordinates to world coordinates.
func (v View) PixelToWorld(px, py float64) (float64, float64) {
	wx := v.MinX + px/float64(v.PxW)*v.Width()
	wy := v.MinY + py/float64(v.PxH)*v.Height()
	return wx, wy
}

// CellCenter returns the world position of the center of raster cell (i, j).
func (v View) CellCenter(i, j int) (float64, float64) {
	return v.PixelToWorld(float64(i)+0.5, float64(j)+0.5)
}

// Contains reports whether the world point lies inside the viewport.
func (v View) Contains(wx, wy float64) bool {
	return wx >= v.MinX && wx <= v.MaxX && wy >= v.MinY && wy <= v.MaxY
}

// MetersPerPixel returns the horizontal world size of one pixel.
func (v View) MetersPerPixel() float64 {
	return v.Width() / float64(v.PxW)
}
