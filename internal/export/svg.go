// Package export renders a scene snapshot to a standalone SVG, for reports
// and docs where a live window is not available.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/efield/internal/heatmap"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/view"
)

// SceneSVG rasterizes the potential through r and draws the charge markers
// and field glyphs on top. The raster cells become SVG rects at cellPx pixels
// each.
func SceneSVG(r *heatmap.Raster, charges []scene.Charge, v view.View, autoScale bool, rangeV float64, cellPx int) string {
	if cellPx <= 0 {
		cellPx = 2
	}
	r.Compute(charges, v, autoScale, rangeV)

	width := r.W * cellPx
	height := r.H * cellPx

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, width, height, width, height))

	pix := r.Pix()
	sb.WriteString("<g shape-rendering=\"crispEdges\">\n")
	for j := 0; j < r.H; j++ {
		// Run-length merge identical neighbors so the file stays small.
		i := 0
		for i < r.W {
			o := (j*r.W + i) * 4
			cr, cg, cb := pix[o], pix[o+1], pix[o+2]
			run := 1
			for i+run < r.W {
				no := (j*r.W + i + run) * 4
				if pix[no] != cr || pix[no+1] != cg || pix[no+2] != cb {
					break
				}
				run++
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="#%02x%02x%02x"/>
`, i*cellPx, j*cellPx, run*cellPx, cellPx, cr, cg, cb))
			i += run
		}
	}
	sb.WriteString("</g>\n")

	pxView := v
	pxView.PxW = width
	pxView.PxH = height

	sb.WriteString("<g stroke=\"#c8c8c8\" stroke-opacity=\"0.5\" stroke-width=\"1\">\n")
	for _, g := range r.Glyphs(charges, pxView, 14*cellPx) {
		x1, y1 := pxView.WorldToPixel(g.X1, g.Y1)
		x2, y2 := pxView.WorldToPixel(g.X2, g.Y2)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
	}
	sb.WriteString("</g>\n")

	for _, c := range charges {
		cx, cy := pxView.WorldToPixel(c.X, c.Y)
		fill := "#969696"
		if c.Q > 0 {
			fill = "#eb783c"
		} else if c.Q < 0 {
			fill = "#4682eb"
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%d" fill="%s" stroke="#ffffff" stroke-width="1"/>
`, cx, cy, 3*cellPx, fill))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSceneSVG renders and writes the SVG to path.
func WriteSceneSVG(path string, r *heatmap.Raster, charges []scene.Charge, v view.View, autoScale bool, rangeV float64, cellPx int) error {
	return os.WriteFile(path, []byte(SceneSVG(r, charges, v, autoScale, rangeV, cellPx)), 0644)
}
