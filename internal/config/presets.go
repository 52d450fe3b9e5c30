package config

import (
	"sort"

	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/store"
)

// Presets are named starting scenes, handy for demos and for the CLI.
var Presets = map[string]store.Document{
	"single": {
		Charges:   []store.ChargeRecord{{X: 0, Y: 0, Q: 1}},
		AutoScale: true, RangeV: scene.DefaultRangeV,
	},
	"dipole": {
		Charges: []store.ChargeRecord{
			{X: -1, Y: 0, Q: 1},
			{X: 1, Y: 0, Q: -1},
		},
		AutoScale: true, RangeV: scene.DefaultRangeV,
	},
	"quadrupole": {
		Charges: []store.ChargeRecord{
			{X: -1, Y: -1, Q: 1},
			{X: 1, Y: -1, Q: -1},
			{X: 1, Y: 1, Q: 1},
			{X: -1, Y: 1, Q: -1},
		},
		AutoScale: true, RangeV: scene.DefaultRangeV,
	},
	"line": {
		Charges: []store.ChargeRecord{
			{X: -2, Y: 0, Q: 0.5},
			{X: -1, Y: 0, Q: 0.5},
			{X: 0, Y: 0, Q: 0.5},
			{X: 1, Y: 0, Q: 0.5},
			{X: 2, Y: 0, Q: 0.5},
		},
		AutoScale: true, RangeV: scene.DefaultRangeV,
	},
}

func GetPreset(name string) (store.Document, bool) {
	d, ok := Presets[name]
	return d, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
