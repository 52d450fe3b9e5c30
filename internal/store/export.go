package store

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/view"
)

// ExportCSV samples potential and field over a w×h grid and writes one row
// per cell, for offline analysis of a scene.
func ExportCSV(path string, charges []scene.Charge, solver *field.Solver, v view.View, w, h int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	defer cw.Flush()

	if err := cw.Write([]string{"x", "y", "v", "ex", "ey"}); err != nil {
		return err
	}

	for j := 0; j < h; j++ {
		wy := v.MinY + (float64(j)+0.5)/float64(h)*v.Height()
		for i := 0; i < w; i++ {
			wx := v.MinX + (float64(i)+0.5)/float64(w)*v.Width()
			pot, ex, ey := solver.At(charges, wx, wy)
			row := []string{
				strconv.FormatFloat(wx, 'f', 6, 64),
				strconv.FormatFloat(wy, 'f', 6, 64),
				strconv.FormatFloat(pot, 'g', 9, 64),
				strconv.FormatFloat(ex, 'g', 9, 64),
				strconv.FormatFloat(ey, 'g', 9, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return cw.Error()
}

type sampleLine struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	V   float64 `json:"v"`
	Ex  float64 `json:"ex"`
	Ey  float64 `json:"ey"`
	Mag float64 `json:"mag"`
}

// ExportLineJSON samples n points along the segment (x1,y1)-(x2,y2) and
// writes them as a JSON array, for plotting a field transect.
func ExportLineJSON(path string, charges []scene.Charge, solver *field.Solver, x1, y1, x2, y2 float64, n int) error {
	if n < 2 {
		n = 2
	}
	lines := make([]sampleLine, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		x := x1 + t*(x2-x1)
		y := y1 + t*(y2-y1)
		pot, ex, ey := solver.At(charges, x, y)
		lines[i] = sampleLine{X: x, Y: y, V: pot, Ex: ex, Ey: ey, Mag: math.Hypot(ex, ey)}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(lines)
}
