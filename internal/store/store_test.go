package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/view"
)

func TestDocumentRoundTrip(t *testing.T) {
	scn := scene.New()
	if _, err := scn.Add(1, 2, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := scn.Add(-0.5, 0, -1.25); err != nil {
		t.Fatal(err)
	}
	scn.SetAutoScale(false)
	if err := scn.SetRangeV(1234); err != nil {
		t.Fatal(err)
	}

	data, err := Encode(Snapshot(scn))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	loaded := scene.New()
	if err := doc.Apply(loaded); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 charges, got %d", loaded.Len())
	}
	if loaded.AutoScale() {
		t.Error("autoScale should round-trip as false")
	}
	if loaded.RangeV() != 1234 {
		t.Errorf("rangeV round-trip: got %v, want 1234", loaded.RangeV())
	}
	got := loaded.Snapshot()
	if got[1].X != -0.5 || got[1].Q != -1.25 {
		t.Errorf("charge order or values lost: %+v", got[1])
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "{charges"},
		{"non-finite magnitude", `{"charges":[{"x":0,"y":0,"q":1e999}],"autoScale":true,"rangeV":100}`},
		{"magnitude out of bounds", `{"charges":[{"x":0,"y":0,"q":99999}],"autoScale":true,"rangeV":100}`},
		{"zero range", `{"charges":[],"autoScale":false,"rangeV":0}`},
		{"negative range", `{"charges":[],"autoScale":false,"rangeV":-5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode([]byte(tc.data)); !errors.Is(err, ErrMalformedScene) {
				t.Errorf("expected ErrMalformedScene, got %v", err)
			}
		})
	}
}

func TestFileStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	fs := NewFileStore(path)

	doc := DefaultDocument()
	doc.Charges = []ChargeRecord{{X: 1, Y: -1, Q: 2}}
	if err := fs.Save(doc); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got.Charges) != 1 || got.Charges[0].Q != 2 {
		t.Errorf("loaded %+v, want the saved charge", got.Charges)
	}

	// No stray temp file after a successful save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	doc, err := LoadOrDefault(fs)
	if err == nil {
		t.Error("expected the underlying load error to be reported")
	}
	if !doc.AutoScale || doc.RangeV != scene.DefaultRangeV {
		t.Errorf("fallback should be the default document, got %+v", doc)
	}
}

type failingStore struct{ err error }

func (f failingStore) Load() (Document, error) { return Document{}, f.err }
func (f failingStore) Save(Document) error     { return f.err }

type memStore struct {
	mu    sync.Mutex
	doc   Document
	saves int
	has   bool
}

func (m *memStore) Load() (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.has {
		return Document{}, os.ErrNotExist
	}
	return m.doc, nil
}

func (m *memStore) Save(d Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = d
	m.has = true
	m.saves++
	return nil
}

func (m *memStore) stats() (int, Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves, m.doc
}

func TestFallbackUsesBackupWhenPrimaryFails(t *testing.T) {
	dead := failingStore{err: errors.New("remote unreachable")}
	backup := &memStore{}
	fb := Fallback{Primary: dead, Backup: backup}

	doc := DefaultDocument()
	doc.Charges = []ChargeRecord{{X: 0, Y: 0, Q: 1}}
	if err := fb.Save(doc); err == nil {
		t.Error("save should report the degraded primary")
	}
	saves, saved := backup.stats()
	if saves != 1 || len(saved.Charges) != 1 {
		t.Fatalf("backup should hold the document, saves=%d", saves)
	}

	got, err := fb.Load()
	if err != nil {
		t.Fatalf("load should fall back to backup: %v", err)
	}
	if len(got.Charges) != 1 {
		t.Errorf("loaded %+v, want the backup's document", got.Charges)
	}
}

func TestSaverCoalescesBursts(t *testing.T) {
	backend := &memStore{}
	s := NewSaver(backend, 20*time.Millisecond, zerolog.Nop())
	defer s.Close()

	for i := 0; i < 5; i++ {
		doc := DefaultDocument()
		doc.RangeV = float64(100 * (i + 1))
		s.Request(doc)
	}

	select {
	case st := <-s.Status():
		if st.Err != nil {
			t.Fatalf("save failed: %v", st.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no save status within the debounce window")
	}

	saves, doc := backend.stats()
	if saves != 1 {
		t.Errorf("burst of 5 requests should coalesce to 1 save, got %d", saves)
	}
	if doc.RangeV != 500 {
		t.Errorf("the last request should win, rangeV=%v", doc.RangeV)
	}
}

func TestSaverFlushWritesPending(t *testing.T) {
	backend := &memStore{}
	s := NewSaver(backend, time.Hour, zerolog.Nop())

	doc := DefaultDocument()
	doc.Charges = []ChargeRecord{{X: 1, Y: 1, Q: -1}}
	s.Request(doc)

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	saves, saved := backend.stats()
	if saves != 1 || len(saved.Charges) != 1 {
		t.Errorf("close should flush the pending document, saves=%d", saves)
	}
}

func TestExportCSVWritesGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.csv")
	charges := []scene.Charge{{ID: 1, X: 0, Y: 0, Q: 1}}
	v := view.View{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1, PxW: 4, PxH: 4}

	if err := ExportCSV(path, charges, field.NewSolver(), v, 4, 4); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1+4*4 {
		t.Errorf("expected header plus 16 rows, got %d lines", len(lines))
	}
	if lines[0] != "x,y,v,ex,ey" {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestExportLineJSONSamplesEndpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.json")
	charges := []scene.Charge{{ID: 1, X: 0, Y: 0, Q: 1}}

	if err := ExportLineJSON(path, charges, field.NewSolver(), -1, 0, 1, 0, 5); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var samples []struct {
		X   float64 `json:"x"`
		Mag float64 `json:"mag"`
	}
	if err := json.Unmarshal(data, &samples); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if samples[0].X != -1 || samples[4].X != 1 {
		t.Errorf("samples should span the segment endpoints: %v .. %v", samples[0].X, samples[4].X)
	}
	for _, s := range samples {
		if s.Mag <= 0 {
			t.Error("field magnitude should be positive near a charge")
		}
	}
}
