package main

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gridhero/internal/config"
	"github.com/san-kum/gridhero/internal/export"
	"github.com/san-kum/gridhero/internal/frame"
	"github.com/san-kum/gridhero/internal/hero"
	"github.com/san-kum/gridhero/internal/render"
	"github.com/san-kum/gridhero/internal/sim"
	"github.com/san-kum/gridhero/internal/store"
	"github.com/san-kum/gridhero/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) runLive(cmd *cobra.Command, args []string) error {
	src := a.sources(cmd)
	cfg, err := src.Resolve()
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	return viz.RunLive(cfg, a.configFile, viz.Options{Log: a.log, OutputDir: out, Reload: src.Resolve})
}

// simulate runs the renderer headless for the --frames flag at the
// configured frame rate.
func (a *app) simulate(cmd *cobra.Command, cfg *config.Config, observers ...hero.Observer) (*sim.Result, error) {
	frames, _ := cmd.Flags().GetInt("frames")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s := sim.New(cfg, a.log)
	for _, o := range observers {
		s.AddObserver(o)
	}
	run := s.Run
	if a.realtime {
		run = s.RunRealtime
	}
	start := time.Now()
	result, err := run(ctx, sim.Config{Frames: frames, Interval: frame.FromFPS(cfg.FPS)})
	if err != nil {
		return nil, err
	}
	a.log.Info("simulated",
		zap.Int("frames", result.Frames),
		zap.Duration("simulated", result.Elapsed),
		zap.Duration("wall", time.Since(start)),
		zap.Int("recycled", result.Recycled))
	return result, nil
}

// lastFrame keeps a copy of the most recent frame.
type lastFrame struct {
	img *image.RGBA
}

func (l *lastFrame) OnFrame(_ hero.Frame, img image.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if l.img == nil || l.img.Bounds() != b {
		l.img = image.NewRGBA(b)
	}
	draw.Draw(l.img, b, img, b.Min, draw.Src)
}

func (a *app) runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	path, err := outputPath(args, "gridhero.png")
	if err != nil {
		return err
	}

	last := &lastFrame{}
	if _, err := a.simulate(cmd, cfg, last); err != nil {
		return err
	}
	if last.img == nil {
		return export.ErrNoFrames
	}
	if err := export.WritePNG(path, last.img); err != nil {
		return err
	}
	fmt.Printf("snapshot saved to %s (%dx%d)\n", path, last.img.Bounds().Dx(), last.img.Bounds().Dy())
	return nil
}

func (a *app) runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	path, err := outputPath(args, "gridhero.gif")
	if err != nil {
		return err
	}
	every, _ := cmd.Flags().GetInt("every")
	every = max(1, every)

	rec := export.NewGIFRecorder(every, 0)
	if _, err := a.simulate(cmd, cfg, rec); err != nil {
		return err
	}
	delay := max(1, 100*every/cfg.FPS)
	if err := rec.Save(path, delay); err != nil {
		return err
	}
	fmt.Printf("recorded %d frames to %s\n", rec.Len(), path)
	return nil
}

func (a *app) runSVG(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	path, err := outputPath(args, "gridhero.svg")
	if err != nil {
		return err
	}
	palette, err := cfg.ResolvePalette()
	if err != nil {
		return err
	}

	result, err := a.simulate(cmd, cfg)
	if err != nil {
		return err
	}
	svg := export.FrameToSVG(result.Final, palette, cfg.CellSize, cfg.StreakLength)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("svg saved to %s\n", path)
	return nil
}

func (a *app) runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}

	if runs, _ := cmd.Flags().GetInt("runs"); runs > 1 {
		return a.compareSeeds(cmd, cfg, runs)
	}

	rec := store.NewTraceRecorder(cfg.CellSize, cfg.StreakLength)
	result, err := a.simulate(cmd, cfg, rec)
	if err != nil {
		return err
	}

	jsonPath, _ := cmd.Flags().GetString("json")
	switch jsonPath {
	case "":
	case "-":
		return rec.ExportJSONStdout()
	default:
		if err := rec.ExportJSON(jsonPath); err != nil {
			return err
		}
		fmt.Printf("trace written to %s\n", jsonPath)
	}

	series := rec.ProgressSeries()
	if len(series) == 0 || len(series[0]) == 0 {
		return nil
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue),
		asciigraph.Caption(fmt.Sprintf("streak progress, %d frames, %d recycled", result.Frames, result.Recycled)),
	)
	fmt.Println(graph)
	return nil
}

// compareSeeds runs one renderer per seed in parallel and tabulates how
// often each recycled its lines.
func (a *app) compareSeeds(cmd *cobra.Command, cfg *config.Config, runs int) error {
	frames, _ := cmd.Flags().GetInt("frames")
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	traces := make([]*store.TraceRecorder, runs)
	e := sim.NewEnsemble(sim.New(cfg, a.log), runs, seed).WithObservers(func(run int) []hero.Observer {
		traces[run] = store.NewTraceRecorder(cfg.CellSize, cfg.StreakLength)
		return []hero.Observer{traces[run]}
	})
	results, err := e.Run(cmd.Context(), sim.Config{Frames: frames, Interval: frame.FromFPS(cfg.FPS)})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFRAMES\tELAPSED\tRECYCLED\tDRAWN")
	for i, r := range results {
		drawn := 0
		for _, f := range traces[i].Frames() {
			drawn += len(f.Drawn)
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%d\t%d\n", seed+int64(i), r.Frames, r.Elapsed, r.Recycled, drawn)
	}
	return w.Flush()
}

func (a *app) listThemes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTOP\tBOTTOM\tACCENT")
	for _, name := range render.ThemeNames() {
		p, _ := render.GetTheme(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.BackgroundTop.Hex(), p.BackgroundBottom.Hex(), p.Accent.Hex())
	}
	return w.Flush()
}

func (a *app) listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTHEME\tCELL\tSPEED\tSIZE")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%gx%g\n", name, p.Theme, p.CellSize, p.Speed, p.Width, p.Height)
	}
	return w.Flush()
}

func (a *app) configInit(cmd *cobra.Command, args []string) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}
	path, err := outputPath(args, "gridhero.yaml")
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", path)
	return nil
}
