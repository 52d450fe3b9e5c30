// Package store persists scene documents. The on-disk shape is a small JSON
// document; backends implement the Store interface, and a debounced Saver
// keeps disk writes off the interaction path.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/efield/internal/scene"
)

// ErrMalformedScene marks any document that fails structural or numeric
// validation. Callers fall back to the default document rather than loading
// a scene that would violate solver invariants.
var ErrMalformedScene = errors.New("malformed scene document")

type ChargeRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Q float64 `json:"q"`
}

// Document is the persisted scene: charge list plus display settings.
type Document struct {
	Charges   []ChargeRecord `json:"charges"`
	AutoScale bool           `json:"autoScale"`
	RangeV    float64        `json:"rangeV"`
}

// DefaultDocument is the empty scene every fallback path lands on.
func DefaultDocument() Document {
	return Document{AutoScale: true, RangeV: scene.DefaultRangeV}
}

// Snapshot captures the scene's persistable state.
func Snapshot(s *scene.Scene) Document {
	charges := s.Snapshot()
	doc := Document{
		Charges:   make([]ChargeRecord, len(charges)),
		AutoScale: s.AutoScale(),
		RangeV:    s.RangeV(),
	}
	for i, c := range charges {
		doc.Charges[i] = ChargeRecord{X: c.X, Y: c.Y, Q: c.Q}
	}
	return doc
}

// Apply loads the document into the scene, assigning fresh IDs.
func (d Document) Apply(s *scene.Scene) error {
	charges := make([]scene.Charge, len(d.Charges))
	for i, r := range d.Charges {
		charges[i] = scene.Charge{X: r.X, Y: r.Y, Q: r.Q}
	}
	return s.Replace(charges, d.AutoScale, d.RangeV)
}

func Encode(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Decode parses and validates a scene document. Any structural defect, a
// non-finite number, or an out-of-bounds magnitude or range yields
// ErrMalformedScene.
func Decode(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedScene, err)
	}
	if err := d.validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (d Document) validate() error {
	for i, c := range d.Charges {
		for _, v := range [3]float64{c.X, c.Y, c.Q} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: charge %d has a non-finite value", ErrMalformedScene, i)
			}
		}
		if math.Abs(c.Q) > scene.MaxMagnitude {
			return fmt.Errorf("%w: charge %d magnitude %v out of bounds", ErrMalformedScene, i, c.Q)
		}
	}
	if math.IsNaN(d.RangeV) || math.IsInf(d.RangeV, 0) || d.RangeV <= 0 || d.RangeV > scene.MaxRangeV {
		return fmt.Errorf("%w: display range %v out of bounds", ErrMalformedScene, d.RangeV)
	}
	return nil
}
