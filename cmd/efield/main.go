package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/efield/internal/app"
	"github.com/san-kum/efield/internal/config"
	"github.com/san-kum/efield/internal/export"
	"github.com/san-kum/efield/internal/field"
	"github.com/san-kum/efield/internal/heatmap"
	"github.com/san-kum/efield/internal/probe"
	"github.com/san-kum/efield/internal/scene"
	"github.com/san-kum/efield/internal/store"
	"github.com/san-kum/efield/internal/view"
)

var (
	configFile string
	scenePath  string
	presetName string
	verbose    bool

	sampleOut string
	sampleW   int
	sampleH   int
	lineFlag  []float64
	lineN     int

	renderOut    string
	renderCellPx int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "efield",
		Short: "interactive 2d electrostatics visualizer",
		RunE:  runGUI,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&scenePath, "scene", "", "scene file path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "start from a named preset scene")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "inspect a scene in the terminal",
		RunE:  runProbe,
	}

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "sample the field to a file",
		Long:  "sample the potential and field over the viewport grid (csv) or along a line segment (json)",
		RunE:  runSample,
	}
	sampleCmd.Flags().StringVar(&sampleOut, "out", "field.csv", "output path")
	sampleCmd.Flags().IntVar(&sampleW, "grid-w", 0, "sample grid width (default: config grid)")
	sampleCmd.Flags().IntVar(&sampleH, "grid-h", 0, "sample grid height (default: config grid)")
	sampleCmd.Flags().Float64SliceVar(&lineFlag, "line", nil, "x1,y1,x2,y2 line segment instead of the grid")
	sampleCmd.Flags().IntVar(&lineN, "samples", 100, "samples along the line")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a scene to an svg file",
		RunE:  runRender,
	}
	renderCmd.Flags().StringVar(&renderOut, "out", "scene.svg", "output path")
	renderCmd.Flags().IntVar(&renderCellPx, "cell-px", 2, "pixels per heatmap cell")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				doc, _ := config.GetPreset(name)
				fmt.Printf("  %-12s %d charges\n", name, len(doc.Charges))
			}
			return nil
		},
	}

	rootCmd.AddCommand(probeCmd, sampleCmd, renderCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

func sceneStore(cfg *config.Config) (store.Store, error) {
	path := cfg.Save.Path
	if scenePath != "" {
		path = scenePath
	}
	// Autosaves that cannot reach the configured path land in a temp-dir
	// backup instead of being lost.
	var st store.Store = store.Fallback{
		Primary: store.NewFileStore(path),
		Backup:  store.NewFileStore(filepath.Join(os.TempDir(), "efield-scene.json")),
	}
	if presetName != "" {
		doc, ok := config.GetPreset(presetName)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		st = presetStore{doc: doc, backing: st}
	}
	return st, nil
}

// presetStore serves a preset as the initial document while saves keep going
// to the real backing store.
type presetStore struct {
	doc     store.Document
	backing store.Store
}

func (p presetStore) Load() (store.Document, error) { return p.doc, nil }
func (p presetStore) Save(d store.Document) error   { return p.backing.Save(d) }

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := sceneStore(cfg)
	if err != nil {
		return err
	}
	return app.New(cfg, st, newLogger()).Run()
}

func loadCharges(cfg *config.Config) ([]scene.Charge, error) {
	st, err := sceneStore(cfg)
	if err != nil {
		return nil, err
	}
	doc, err := store.LoadOrDefault(st)
	if err != nil && presetName == "" && scenePath != "" {
		return nil, err
	}
	scn := scene.New()
	if err := doc.Apply(scn); err != nil {
		return nil, err
	}
	return scn.Snapshot(), nil
}

func viewport(cfg *config.Config) view.View {
	return view.View{
		MinX: cfg.Viewport.MinX, MinY: cfg.Viewport.MinY,
		MaxX: cfg.Viewport.MaxX, MaxY: cfg.Viewport.MaxY,
		PxW: cfg.Grid.W, PxH: cfg.Grid.H,
	}
}

func newSolver(cfg *config.Config) *field.Solver {
	s := field.NewSolver()
	s.Softening = cfg.Solver.Softening
	return s
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	charges, err := loadCharges(cfg)
	if err != nil {
		return err
	}
	return probe.Run(charges, newSolver(cfg), viewport(cfg))
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := sceneStore(cfg)
	if err != nil {
		return err
	}
	doc, err := store.LoadOrDefault(st)
	if err != nil && presetName == "" && scenePath != "" {
		return err
	}
	scn := scene.New()
	if err := doc.Apply(scn); err != nil {
		return err
	}

	r := heatmap.New(cfg.Grid.W, cfg.Grid.H, newSolver(cfg))
	if err := export.WriteSceneSVG(renderOut, r, scn.Snapshot(), viewport(cfg),
		scn.AutoScale(), scn.RangeV(), renderCellPx); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", renderOut)
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	charges, err := loadCharges(cfg)
	if err != nil {
		return err
	}
	solver := newSolver(cfg)

	if len(lineFlag) > 0 {
		if len(lineFlag) != 4 {
			return fmt.Errorf("--line wants x1,y1,x2,y2, got %d values", len(lineFlag))
		}
		if err := store.ExportLineJSON(sampleOut, charges, solver,
			lineFlag[0], lineFlag[1], lineFlag[2], lineFlag[3], lineN); err != nil {
			return err
		}
		fmt.Printf("wrote %d line samples to %s\n", lineN, sampleOut)
		return nil
	}

	w, h := sampleW, sampleH
	if w <= 0 {
		w = cfg.Grid.W
	}
	if h <= 0 {
		h = cfg.Grid.H
	}
	if err := store.ExportCSV(sampleOut, charges, solver, viewport(cfg), w, h); err != nil {
		return err
	}
	fmt.Printf("wrote %dx%d grid samples to %s\n", w, h, sampleOut)
	return nil
}
